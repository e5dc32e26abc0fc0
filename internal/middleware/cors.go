package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Cors lets browsers from allowedOrigins call the API. Requests without an
// Origin header (curl, crawlers, server side) pass untouched. Preflight
// requests are answered here and never reach the handlers.
func Cors(allowedOrigins ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				if !allowed[origin] && !allowed["*"] {
					log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
