// Package server provides the gin-based HTTP server of the service.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	httpopts "github.com/kova-io/estate-x/pkg/options/server/http"
)

// Server is the HTTP server implementation.
type Server struct {
	opts   *httpopts.Options
	engine *gin.Engine
	server *http.Server
}

// New creates a new HTTP server with the given options.
func New(opts *httpopts.Options) *Server {
	if opts == nil {
		opts = httpopts.NewOptions()
	}

	gin.SetMode(gin.ReleaseMode)

	// 不使用默认中间件，恢复、请求 ID 与访问日志自己挂
	engine := gin.New()
	engine.MaxMultipartMemory = opts.MaxUploadSize
	engine.Use(Recovery(), RequestID(), AccessLog("/healthz", "/metricz"))

	return &Server{
		opts:   opts,
		engine: engine,
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
}

// Engine returns the underlying gin.Engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start runs the server until Shutdown is called. It blocks.
func (s *Server) Start() error {
	logger.Infow("HTTP server starting", "addr", s.opts.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("HTTP server shutting down...")
	return s.server.Shutdown(ctx)
}
