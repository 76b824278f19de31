// Package handlers exposes the job board over HTTP, bridging gin
// routes and the controller services and translating tagged service
// errors into HTTP responses.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/openhire/hireboard/internal/board/auth"
	"go.uber.org/zap"
)

// Server wraps a gin engine in an http.Server for graceful shutdown.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(port int, logger *zap.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: engine,
		},
		logger: logger,
	}
}

// RegisterRoutes mounts the API. Job and company reads are public; all
// mutations sit behind token validation.
func (s *Server) RegisterRoutes(h *Handler, jwtSecret string) {
	api := s.engine.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/jobs", h.ListJobs)
	api.GET("/jobs/:id", h.GetJob)
	api.GET("/companies/:id", h.GetCompany)

	authed := api.Group("", auth.Middleware(jwtSecret))
	{
		authed.GET("/profile", h.GetProfile)
		authed.PUT("/profile", h.UpsertProfile)
		authed.POST("/profile/avatar", h.UploadAvatar)

		authed.POST("/companies", h.RegisterCompany)
		authed.PUT("/company", h.UpdateCompany)
		authed.POST("/company/logo", h.UploadLogo)
		authed.POST("/company/members", h.AddMember)
		authed.POST("/company/subscription", h.PurchaseSubscription)
		authed.GET("/company/dashboard", h.GetDashboard)

		authed.GET("/company/job-limit", h.CheckJobLimit)
		authed.POST("/jobs", h.CreateJob)
		authed.PUT("/jobs/:id", h.UpdateJob)
		authed.DELETE("/jobs/:id", h.DeleteJob)

		authed.POST("/jobs/:id/applications", h.Apply)
		authed.GET("/jobs/:id/applications", h.ListJobApplications)
		authed.GET("/applications", h.ListMyApplications)
		authed.GET("/applications/:id", h.GetApplication)
		authed.PATCH("/applications/:id/status", h.UpdateApplicationStatus)

		authed.GET("/notifications", h.ListNotifications)
		authed.POST("/notifications/:id/read", h.MarkNotificationRead)
		authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP serve error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Server stopped")
}
