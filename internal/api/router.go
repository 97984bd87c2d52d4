package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/DentShare/Mystom/docs"
	"github.com/DentShare/Mystom/internal/api/handler"
	"github.com/DentShare/Mystom/internal/api/middleware"
	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

// Deps are the services the router mounts.
type Deps struct {
	Verifier middleware.Verifier
	Limiter  middleware.Limiter
	Accounts ports.AccountService
	Access   ports.AccessService
	Teams    ports.TeamService
	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger
}

// manageTeam gates every owner-side team operation.
var manageTeam = domain.Requirement{Feature: domain.FeatureSettings, Level: domain.LevelEdit, MinTier: domain.TierBasic}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))

	// --- Handlers ---
	healthHandler := handler.NewHealthHandler(d.Checks)
	accessHandler := handler.NewAccessHandler(d.Access)
	teamHandler := handler.NewTeamHandler(d.Teams)
	accountHandler := handler.NewAccountHandler(d.Accounts)
	adminHandler := handler.NewAdminHandler(d.Accounts)

	// --- Probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Middleware chains ---
	authenticated := []echo.MiddlewareFunc{
		middleware.InitData(d.Verifier, d.Log),
		middleware.Throttle(d.Limiter, d.Log),
	}
	resolved := append(authenticated[:len(authenticated):len(authenticated)], middleware.LoadAccess(d.Accounts, d.Access, d.Log))
	admin := append(authenticated[:len(authenticated):len(authenticated)], middleware.RequireAdmin(d.Accounts.IsAdmin))
	requireManage := middleware.RequireAccess(manageTeam)

	// --- Admin panel ---
	e.GET("/api/me", adminHandler.Me, admin...)
	users := e.Group("/api/users", admin...)
	users.GET("", adminHandler.ListUsers)
	users.PATCH("/:id", adminHandler.UpdateUser)
	users.DELETE("/:id", adminHandler.DeleteUser)

	// --- Access ---
	e.GET("/api/access", accessHandler.Get, resolved...)
	e.GET("/api/access/check", accessHandler.Check, authenticated...)
	e.DELETE("/api/account", accountHandler.Delete, resolved...)

	// --- Team ---
	team := e.Group("/api/team", resolved...)
	team.GET("", teamHandler.Team)
	team.POST("/redeem", teamHandler.Redeem)
	team.POST("/leave", teamHandler.Leave)
	team.POST("/invites", teamHandler.CreateInvite, requireManage)
	team.DELETE("/delegates/:telegram_id", teamHandler.Unbind, requireManage)
	team.PUT("/delegates/:telegram_id/permissions", teamHandler.SetPermissions, requireManage)
	team.POST("/delegates/:telegram_id/permissions/:feature/cycle", teamHandler.CyclePermission, requireManage)

	return e
}
