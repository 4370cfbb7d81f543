// Package router provides the assistant service routing.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kova-io/estate-x/internal/assistant/handler"
	"github.com/kova-io/estate-x/internal/assistant/metrics"
)

// Register registers the assistant service routes.
func Register(engine *gin.Engine, chat *handler.ChatHandler, docs *handler.DocumentHandler) {
	logger.Info("Registering assistant routes...")

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metricz", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.Get().Snapshot())
	})

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/chat", chat.Chat)

		conversations := v1.Group("/conversations")
		{
			conversations.GET("", chat.ListConversations)
			conversations.GET("/:id/messages", chat.ListMessages)
			conversations.DELETE("/:id", chat.DeleteConversation)
		}

		documents := v1.Group("/documents")
		{
			documents.POST("", docs.Upload)
			documents.GET("", docs.List)
			documents.GET("/:id", docs.Get)
			documents.DELETE("/:id", docs.Delete)
			documents.POST("/:id/reindex", docs.Reindex)
			documents.GET("/:id/summary", docs.Summary)
		}

		v1.GET("/stats", docs.Stats)
	}

	logger.Info("HTTP routes registered")
}
