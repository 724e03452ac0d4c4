package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID reuses the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logging logs each request on completion. 4xx logs at warn, 5xx at error.
func Logging(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}
		event = event.
			Str("request_id", requestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Int("response_size", c.Writer.Size()).
			Str("ip", c.ClientIP())
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.Msg("request completed")
	}
}

// Recovery turns a handler panic into a 500 response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", requestID(c)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Interface("panic", err).
					Msg("panic recovered")
				writeError(c, 500, ErrCodeInternal, "internal server error", false)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// CORS allows the listed origins, or any origin when the list is empty or "*".
func CORS(origins []string) gin.HandlerFunc {
	policy := newOriginPolicy(origins)
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case policy.all:
			c.Header("Access-Control-Allow-Origin", "*")
		case policy.allows(origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", strings.Join([]string{"Origin", "Content-Type", "Accept", RequestIDHeader}, ", "))
		c.Header("Access-Control-Expose-Headers", strings.Join([]string{"Content-Disposition", RequestIDHeader}, ", "))
		c.Header("Access-Control-Max-Age", strconv.Itoa(12*60*60))

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// originPolicy is the allow list shared by CORS and the WebSocket upgrader.
// An empty list or "*" allows every origin.
type originPolicy struct {
	all     bool
	allowed map[string]bool
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{all: len(origins) == 0, allowed: make(map[string]bool, len(origins))}
	for _, o := range origins {
		if o == "*" {
			p.all = true
		}
		p.allowed[o] = true
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	return p.all || p.allowed[origin]
}
