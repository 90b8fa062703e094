package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codeplatform/auth-service/internal/core/domain"
	"github.com/codeplatform/auth-service/internal/core/ports"
)

// ProfileHandler serves the authenticated routes behind the bearer middleware.
type ProfileHandler struct {
	identities ports.IdentityRepository
}

func NewProfileHandler(identities ports.IdentityRepository) *ProfileHandler {
	return &ProfileHandler{identities: identities}
}

// ctxClaims extracts the claims injected by the Auth middleware and performs a
// fast-fail check before any store call: both fields must be present, and the
// role must still be one of the enumerated values (presence proves the
// middleware ran).
func ctxClaims(c echo.Context) (email, role string, err error) {
	email, _ = c.Get("email").(string)
	role, _ = c.Get("role").(string)
	if email == "" || !domain.ValidRole(role) {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return email, role, nil
}

// Me returns the public fields of the authenticated identity, re-read from
// the store so a deleted account cannot keep presenting a live token's copy.
//
// @Summary      Current identity
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  identityResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	email, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	identity, err := h.identities.FindByEmailAndRole(c.Request().Context(), email, role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, identityResponse{
		ID:       identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Role:     identity.Role,
	})
}

// StudentDashboard greets an authenticated student.
//
// @Summary      Student dashboard
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /dashboard/student [get]
func (h *ProfileHandler) StudentDashboard(c echo.Context) error {
	return dashboard(c, domain.RoleStudent)
}

// LecturerDashboard greets an authenticated lecturer.
//
// @Summary      Lecturer dashboard
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /dashboard/lecturer [get]
func (h *ProfileHandler) LecturerDashboard(c echo.Context) error {
	return dashboard(c, domain.RoleLecturer)
}

func dashboard(c echo.Context, role string) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Welcome to the " + role + " dashboard",
	})
}
