package bridge

import (
	"net/http"
	"time"

	"giteeup/internal/middleware"
	"giteeup/internal/svc"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, s *svc.ServiceContext) {
	h := NewHandler(s)

	events := r.Group("/events")
	events.Use(middleware.RateLimitMiddleware(s.Cache, "events", 30, time.Minute))
	{
		events.POST("/paste", h.HandlePaste)
		events.POST("/drop", h.HandleDrop)
	}

	prompts := r.Group("/prompt")
	{
		prompts.PUT("/:id/subpath", h.UpdateSubPath)
		prompts.POST("/:id/submit", h.SubmitPrompt)
		prompts.DELETE("/:id", h.CancelPrompt)
	}

	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)

	r.GET("/attachments", h.ListAttachments)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
