package httptransport

import (
	"log/slog"

	"github.com/emeeran/prompt-saver-web-app/internal/transport/http/handler"
	"github.com/emeeran/prompt-saver-web-app/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	promptHandler *handler.PromptHandler,
	sessions middleware.SessionParser,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Session(sessions))

	// Public auth routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/magic-link", authHandler.RequestMagicLink)
	r.GET("/login/verify/:token", authHandler.VerifyMagicLink)
	r.POST("/forgot-password", authHandler.RequestPasswordReset)
	r.POST("/reset-password/:token", authHandler.ResetPassword)

	// Authenticated routes
	authed := r.Group("", middleware.RequireAuth())
	authed.GET("/logout", authHandler.Logout)
	authed.GET("/dashboard", promptHandler.Dashboard)
	authed.POST("/prompt/new", promptHandler.Create)
	authed.GET("/prompt/:id", promptHandler.GetByID)
	authed.POST("/prompt/:id/edit", promptHandler.Update)
	authed.POST("/prompt/:id/delete", promptHandler.Delete)

	return r
}
