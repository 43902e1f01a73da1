package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeadersConfig selects the optional response headers.
type SecurityHeadersConfig struct {
	// HSTS adds Strict-Transport-Security. Only enable it behind TLS.
	HSTS bool
}

var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	// patient records must not sit in shared caches
	{"Cache-Control", "no-store"},
}

// SecurityHeaders marks every response as a non-cacheable JSON API response
// that browsers must not sniff, frame or embed.
func SecurityHeaders(cfg SecurityHeadersConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range apiHeaders {
				h.Set(kv[0], kv[1])
			}
			if cfg.HSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			return next(c)
		}
	}
}
