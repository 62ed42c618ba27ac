// Package server is the habitshared HTTP API: the REST habit, share and
// upvote stores, account endpoints and the real-time chat endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/habitshare/internal/auth"
	"github.com/julianstephens/habitshare/internal/config"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/realtime"
	"github.com/julianstephens/habitshare/internal/storage"
)

type Server struct {
	cfg      config.Server
	store    storage.Provider
	users    *auth.PasswordAuthenticator
	tokens   *auth.TokenManager
	realtime *realtime.Server
	metrics  *metrics
	registry *prometheus.Registry
	limiter  *writeLimiter
	engine   *gin.Engine
	now      func() time.Time
}

type Option func(*Server)

// WithAuthenticator replaces the default bcrypt authenticator
func WithAuthenticator(a *auth.PasswordAuthenticator) Option {
	return func(s *Server) { s.users = a }
}

// WithRealtime mounts rt at /rt
func WithRealtime(rt *realtime.Server) Option {
	return func(s *Server) { s.realtime = rt }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(cfg config.Server, store storage.Provider, tokens *auth.TokenManager, opts ...Option) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:      cfg,
		store:    store,
		users:    auth.NewPasswordAuthenticator(store),
		tokens:   tokens,
		registry: reg,
		metrics:  newMetrics(reg),
		limiter:  newWriteLimiter(cfg.WriteRate, cfg.WriteBurst),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.metrics.middleware())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	a := r.Group("/auth", s.requirePublishableKey())
	{
		a.POST("/register", s.register)
		a.POST("/login", s.login)
	}

	// lists and single reads are public
	r.GET("/habits", s.listHabits)
	r.GET("/shares", s.listShares)
	r.GET("/shares/:id", s.getShare)
	r.GET("/upvotes", s.listUpvotes)

	w := r.Group("", s.requireAuth(), s.rateLimit())
	{
		w.POST("/habits", s.createHabit)
		w.PUT("/habits/:id", s.updateHabit)
		w.DELETE("/habits/:id", s.deleteHabit)

		w.POST("/shares", s.createShare)
		w.PUT("/shares/:id", s.updateShare)
		w.POST("/shares/:id/upvote", s.upvoteShare)
		w.DELETE("/shares/:id", s.deleteShare)

		w.POST("/upvotes", s.createUpvote)
	}

	if s.realtime != nil {
		r.GET("/rt", s.realtime.Handle)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
