package middleware

import (
	"net/http"
	"strings"

	"triviarooms/internal/config"
)

// CORS answers preflight requests and sets the allow headers from config.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := strings.Join(orDefault(cfg.Origins, "*"), ", ")
	methods := strings.Join(orDefault(cfg.Methods, "GET", "POST", "PUT", "DELETE", "OPTIONS"), ", ")
	headers := strings.Join(orDefault(cfg.Headers, "Content-Type", "Authorization"), ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func orDefault(v []string, def ...string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
