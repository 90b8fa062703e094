package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codeplatform/auth-service/internal/api/handler"
	"github.com/codeplatform/auth-service/internal/api/middleware"
	"github.com/codeplatform/auth-service/internal/core/domain"
	"github.com/codeplatform/auth-service/internal/core/service"
	"github.com/codeplatform/auth-service/internal/infrastructure/config"
	mongodb "github.com/codeplatform/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/codeplatform/auth-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The identity repository it wires is returned alongside so the caller can
// run index bootstrap before serving.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger, audit handler.AuditSink) (*echo.Echo, *mongodb.MongoIdentityRepository) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	// the Next.js frontend is served from another origin
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("codeplatform_auth"))

	// --- Dependencies ---
	identityRepo := mongodb.NewIdentityRepository(db)
	cache := redisdb.NewIdentityCache(rdb, 0)
	cachedRepo := redisdb.NewCachedIdentityRepository(identityRepo, cache, log)

	hasher := service.NewBcryptHasher(0)
	tokens := service.NewJWTTokenService(cfg.Auth.JWTSecret)
	authService := service.NewAuthService(cachedRepo, hasher, tokens, cfg.Auth.TokenTTL)

	authHandler := handler.NewAuthHandler(authService, audit)
	profileHandler := handler.NewProfileHandler(cachedRepo)
	authMiddleware := middleware.Auth(tokens)

	// --- Public routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Code Platform API!"})
	})
	e.POST("/signup", authHandler.Signup)
	e.POST("/signin", authHandler.Signin)

	// --- Authenticated routes ---
	e.GET("/me", profileHandler.Me, authMiddleware)
	e.GET("/dashboard/student", profileHandler.StudentDashboard, authMiddleware, middleware.RBAC(domain.RoleStudent))
	e.GET("/dashboard/lecturer", profileHandler.LecturerDashboard, authMiddleware, middleware.RBAC(domain.RoleLecturer))

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e, identityRepo
}
