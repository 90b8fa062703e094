package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/codeplatform/auth-service/internal/api/metrics"
	"github.com/codeplatform/auth-service/internal/core/domain"
	"github.com/codeplatform/auth-service/internal/core/ports"
)

// AuditSink accepts audit events without blocking the request.
type AuditSink interface {
	Enqueue(event domain.AuditEvent)
}

type AuthHandler struct {
	authService ports.AuthService
	audit       AuditSink
}

func NewAuthHandler(authService ports.AuthService, audit AuditSink) *AuthHandler {
	return &AuthHandler{authService: authService, audit: audit}
}

type signupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type signupResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type identityResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type signinResponse struct {
	Token     string           `json:"token"`
	TokenType string           `json:"token_type"`
	Identity  identityResponse `json:"identity"`
	Message   string           `json:"message"`
}

// Signup creates a new student or lecturer account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := h.authService.SignUp(c.Request().Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(metricRole(req.Role), resultLabel(err)).Inc()
		h.recordOutcome(req.Email, req.Role, domain.AuditActionSignUp, err)
		return err
	}

	metrics.SignupsTotal.WithLabelValues(identity.Role, "ok").Inc()
	h.recordOutcome(identity.Email, identity.Role, domain.AuditActionSignUp, nil)

	return c.JSON(http.StatusCreated, signupResponse{
		ID:      identity.ID,
		Message: fmt.Sprintf("%s account created successfully", roleTitle(identity.Role)),
	})
}

// Signin verifies credentials and returns a bearer token.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signinRequest  true  "Credentials"
// @Success      200   {object}  signinResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, identity, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		metrics.SigninsTotal.WithLabelValues(metricRole(req.Role), resultLabel(err)).Inc()
		h.recordOutcome(req.Email, req.Role, domain.AuditActionSignIn, err)
		return err
	}

	metrics.SigninsTotal.WithLabelValues(identity.Role, "ok").Inc()
	h.recordOutcome(identity.Email, identity.Role, domain.AuditActionSignIn, nil)

	return c.JSON(http.StatusOK, signinResponse{
		Token:     token,
		TokenType: "bearer",
		Identity: identityResponse{
			ID:       identity.ID,
			Username: identity.Username,
			Email:    identity.Email,
			Role:     identity.Role,
		},
		Message: fmt.Sprintf("Welcome back, %s!", identity.Username),
	})
}

// recordOutcome enqueues an audit event for a definite auth outcome. Store
// failures are skipped: the outcome is unknown and the audit store is likely
// down too.
func (h *AuthHandler) recordOutcome(email, role, action string, err error) {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return
	}
	result := domain.AuditResultOK
	if err != nil {
		result = domain.AuditResultRejected
	}
	h.audit.Enqueue(domain.AuditEvent{
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Role:       role,
		Action:     action,
		Result:     result,
		OccurredAt: time.Now().UTC(),
	})
}

// resultLabel buckets an auth error for metrics: business rejections vs
// collaborator failures.
func resultLabel(err error) string {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return "error"
	}
	return "rejected"
}

// metricRole guards the role label against unbounded cardinality from
// arbitrary request input.
func metricRole(role string) string {
	if domain.ValidRole(role) {
		return role
	}
	return "unknown"
}

func roleTitle(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
