// Package api wires the single HTTP surface this service exposes.
package api

import (
	"github.com/JakobStaudinger/cinnabar/internal/api/middleware"
	"github.com/JakobStaudinger/cinnabar/internal/webhook"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the Gin engine. POST /webhook is the only route.
func NewRouter(webhookHandler *webhook.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))

	router.POST("/webhook", webhookHandler.HandleWebhook)

	return router
}
