// Package router wires the HTTP surface: which handler answers which
// route and which middleware guards it.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/spieltreff/backend/internal/auth"
	"github.com/spieltreff/backend/internal/config"
	"github.com/spieltreff/backend/internal/handler"
	"github.com/spieltreff/backend/internal/middleware"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Auth     *handler.AuthHandler
	Admin    *handler.AdminHandler
	Events   *handler.EventHandler
	Games    *handler.GameHandler
	BGG      *handler.BGGHandler
	Sessions *auth.SessionService
	Accounts auth.AccountStore
	Tokens   *auth.EventTokenService
	Cache    config.CacheConfig
	Redis    *redis.Client
}

// Register attaches every route to e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Public catalog proxy.  Responses are cacheable and identical for
	// every caller, so the Redis response cache sits in front.
	catalog := e.Group("/v1/bgg", middleware.NewRedisCache(d.Cache, d.Redis))
	catalog.GET("/search", d.BGG.Search)
	catalog.GET("/things/:id", d.BGG.Thing)
	catalog.GET("/things/:id/thumbnail", d.BGG.Thumbnail)

	// Credential exchange.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)

	// Account-token routes.
	me := e.Group("/v1", middleware.RequireAuth(d.Sessions, d.Accounts))
	me.POST("/auth/logout", d.Auth.Logout)
	me.GET("/me", d.Auth.Me)
	me.PUT("/me/password", d.Auth.ChangePassword)
	me.POST("/me/deactivate", d.Auth.Deactivate)
	me.GET("/sessions", d.Auth.ListSessions)
	me.DELETE("/sessions/:id", d.Auth.DeleteSession)
	me.POST("/events", d.Events.Create)
	me.GET("/events", d.Events.List)
	me.PUT("/events/:id", d.Events.Update)
	me.POST("/events/:id/token", d.Events.IssueToken)

	// The event detail handler tells anonymous, non-owner and owner
	// callers apart itself, so it rides OptionalAuth rather than the
	// blanket gate.
	e.GET("/v1/events/:id", d.Events.Get, middleware.OptionalAuth(d.Sessions, d.Accounts))

	// Event-token guest routes.
	guest := e.Group("/v1/event", middleware.RequireEventToken(d.Tokens))
	guest.GET("/games", d.Games.List)
	guest.POST("/games", d.Games.Register)
	guest.DELETE("/games/:id", d.Games.Delete)
	guest.PUT("/games/:id/players", d.Games.SetPlayer)
	guest.PUT("/games/:id/bringers", d.Games.SetBringer)

	// Admin routes.  RequireAdmin runs after RequireAuth.
	admin := e.Group("/v1/admin",
		middleware.RequireAuth(d.Sessions, d.Accounts),
		middleware.RequireAdmin())
	admin.GET("/accounts", d.Admin.ListAccounts)
	admin.PUT("/accounts/:id/role", d.Admin.UpdateRole)
	admin.PUT("/accounts/:id/status", d.Admin.UpdateStatus)
	admin.POST("/accounts/:id/logout", d.Admin.ForceLogout)
	admin.POST("/accounts/:id/password-reset", d.Admin.ResetPassword)
}
