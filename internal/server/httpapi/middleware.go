package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

const userKey = "user"

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if u := currentUser(c); u != nil {
			fields = append(fields, "user_id", u.ID)
		}

		ctx := c.Request.Context()
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields, "trace_id", sc.TraceID().String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, "HTTP request", fields...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, "HTTP request", fields...)
		default:
			s.logger.Info(ctx, "HTTP request", fields...)
		}
	}
}

// requireAuth resolves the bearer token to the current user row.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader(common.AuthorizationHeader))
		if token == "" {
			s.respondError(c, common.Wrap(common.ErrorUnauthorized, "missing bearer token"))
			return
		}

		user, err := s.services.Users.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// requireAdmin must run after requireAuth.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			s.respondError(c, common.ErrorUnauthorized)
			return
		}
		if u.Role != common.RoleAdmin {
			s.respondError(c, common.Wrap(common.ErrorForbidden, "admin access required"))
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
