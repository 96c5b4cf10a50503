package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSConfig lists what cross-origin callers may do. An empty field emits no header.
type CORSConfig struct {
	AllowOrigins  []string // "*" allows any origin
	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string
	MaxAge        time.Duration
}

// DefaultCORSConfig lets the upload page be served from any origin
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Accept", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        time.Hour,
	}
}

// CORS sets the response headers for config and answers preflight requests
// with 204 without reaching the handlers.
func CORS(config CORSConfig) gin.HandlerFunc {
	anyOrigin := lo.Contains(config.AllowOrigins, "*")
	origins := lo.SliceToMap(config.AllowOrigins, func(o string) (string, struct{}) {
		return o, struct{}{}
	})

	static := map[string]string{}
	if len(config.AllowMethods) > 0 {
		static["Access-Control-Allow-Methods"] = strings.Join(config.AllowMethods, ", ")
	}
	if len(config.AllowHeaders) > 0 {
		static["Access-Control-Allow-Headers"] = strings.Join(config.AllowHeaders, ", ")
	}
	if len(config.ExposeHeaders) > 0 {
		static["Access-Control-Expose-Headers"] = strings.Join(config.ExposeHeaders, ", ")
	}
	if seconds := int(config.MaxAge / time.Second); seconds > 0 {
		static["Access-Control-Max-Age"] = strconv.Itoa(seconds)
	}

	return func(c *gin.Context) {
		switch origin := c.GetHeader("Origin"); {
		case anyOrigin:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := origins[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}
		for k, v := range static {
			c.Header(k, v)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
