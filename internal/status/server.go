// Package status serves a small read-only HTTP API describing the running bot.
package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bernbot/datastore"
	"bernbot/internal/bot"
	"bernbot/internal/logger"
	"bernbot/internal/version"
)

// Sources are the things the status API reports on. Nil fields are skipped.
type Sources struct {
	Bot     *bot.Bot
	Storage func() datastore.Stats
	Jobs    func() []string
}

type Server struct {
	addr    string
	src     Sources
	log     *logger.Logger
	started time.Time
	router  *gin.Engine
}

func New(addr string, src Sources, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{addr: addr, src: src, log: log, started: time.Now()}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", s.health)
	r.GET("/stats", s.stats)
	s.router = r
	return s
}

// Handler exposes the routes, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("status server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.String(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) stats(c *gin.Context) {
	out := gin.H{}
	if s.src.Bot != nil {
		out["bot"] = s.src.Bot.Stats()
	}
	if s.src.Storage != nil {
		out["storage"] = s.src.Storage()
	}
	if s.src.Jobs != nil {
		out["jobs"] = s.src.Jobs()
	}
	c.JSON(http.StatusOK, out)
}
