package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/julianstephens/habitshare/internal/auth"
	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/logger"
)

const identityKey = "identity"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= 500:
			logger.Error("Request failed", kv...)
		case status >= 400:
			logger.Warn("Request rejected", kv...)
		default:
			logger.Debug("Request", kv...)
		}
	}
}

func (s *Server) requirePublishableKey() gin.HandlerFunc {
	want := []byte(s.cfg.PublishableKey)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(constants.HeaderPubKey))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid publishable key"})
			return
		}
		c.Next()
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, constants.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		id, err := s.tokens.Validate(strings.TrimPrefix(h, constants.BearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identity(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(auth.Identity)
	return id
}

// limiterIdle is how long a user's bucket may sit unused before it is swept
const limiterIdle = 10 * time.Minute

type userLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// writeLimiter hands out one token bucket per user. Buckets that are idle and
// full again are dropped, since a fresh bucket starts full anyway.
type writeLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	limiters  map[string]*userLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newWriteLimiter(perSecond float64, burst int) *writeLimiter {
	return &writeLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*userLimiter),
		now:      time.Now,
	}
}

func (w *writeLimiter) allow(userID string) bool {
	now := w.now()

	w.mu.Lock()
	if now.Sub(w.lastSweep) >= limiterIdle {
		w.sweep(now)
	}
	ul, ok := w.limiters[userID]
	if !ok {
		ul = &userLimiter{lim: rate.NewLimiter(w.limit, w.burst)}
		w.limiters[userID] = ul
	}
	ul.lastSeen = now
	w.mu.Unlock()

	return ul.lim.AllowN(now, 1)
}

// sweep must be called with mu held
func (w *writeLimiter) sweep(now time.Time) {
	for id, ul := range w.limiters {
		if now.Sub(ul.lastSeen) >= limiterIdle && ul.lim.TokensAt(now) >= float64(w.burst) {
			delete(w.limiters, id)
		}
	}
	w.lastSweep = now
}

// size reports how many users currently hold a bucket
func (w *writeLimiter) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.limiters)
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.allow(identity(c).UserID) {
			s.metrics.rateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
