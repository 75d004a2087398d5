package webserver

import (
	"net/http"

	"github.com/castforge/castforge/src/CFBot/components/pipeline"
	"github.com/castforge/castforge/src/CFBot/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Processor accepts gated webhook deliveries for background processing.
type Processor interface {
	Accept(event pipeline.Event) bool
}

func New(cfg config.Config, pipe Processor, db *gorm.DB) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	g.Use(cors.Default())

	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	wh := &webhookHandler{secret: cfg.WebhookSecret, pipe: pipe}
	g.POST("/webhook", wh.handle)

	api := g.Group("/api/v1")
	api.Use(jwtAuth(cfg.JWTSecret))
	api.GET("/creations", listCreations(db))

	return g
}
