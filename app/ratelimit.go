package app

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(s.every, s.burst)
		s.limiters[ip] = l
	}
	return l
}

// RateLimit allows perMinute requests per client IP with a full minute of
// burst. perMinute <= 0 turns it off.
func RateLimit(perMinute int, log *zap.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	s := &limiterStore{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !s.get(ip).Allow() {
			log.Warn("rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, H{"error": "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}
