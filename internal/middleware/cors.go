package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/leetcurve/backend/internal/infrastructure"
)

// NewCORS builds the CORS handler for the API. Origins may carry one
// wildcard, e.g. "chrome-extension://*" for any installed extension.
func NewCORS(config *infrastructure.CORSConfig) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: config.AllowOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"Content-Length",
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           config.MaxAge,
	})
}
