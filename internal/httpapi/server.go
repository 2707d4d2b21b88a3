package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ironsheep/background-remover/internal/bgremove"
	"github.com/ironsheep/background-remover/internal/config"
)

const requestIDHeader = "X-Request-ID"

// shutdownTimeout bounds how long in-flight requests may finish after the
// context passed to Run is done.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end.
type Server struct {
	cfg     *config.Config
	remover *bgremove.Remover
	logger  *log.Logger
	engine  *gin.Engine
	version string
}

// New builds the server and its routes. A nil cfg selects config.Default()
// and a nil logger selects log.Default().
func New(cfg *config.Config, logger *log.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:     cfg,
		remover: cfg.NewRemover(logger),
		logger:  logger,
		version: "dev",
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestID(), s.accessLog())
	// Keep uploads up to the limit in memory.
	engine.MaxMultipartMemory = cfg.MaxFileSize()

	engine.GET("/healthz", s.handleHealth)
	api := engine.Group("/api/tools")
	api.GET("/background-remover", s.handleOptions)
	api.POST("/background-remover", s.handleRemove)

	s.engine = engine
	return s
}

// SetVersion sets the version reported by /healthz.
func (s *Server) SetVersion(v string) {
	s.version = v
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// requestID tags every request with an ID, reusing the caller's if given.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"id", c.GetString(requestIDHeader),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}
