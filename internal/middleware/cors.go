package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dulanjanabandara/job-recommender-system/internal/config"
)

// apiMethods are the verbs the job and user routes answer to.
var apiMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions,
}

// apiHeaders must stay readable by browser clients: the request id for bug
// reports and the quota headers for backing off.
var apiHeaders = []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}

// CORS opens the API to the configured origins, or to any origin when the
// list is empty or holds "*". Credentials are never sent to a wildcard.
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = apiMethods
	}
	for _, h := range apiHeaders {
		if !slices.Contains(corsConfig.ExposeHeaders, h) {
			corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders, h)
		}
	}

	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}

	return cors.New(corsConfig)
}
