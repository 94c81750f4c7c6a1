package handler

import (
	"log/slog"
	"mime"
	"net/http"
)

// requireJSON rejects state-changing requests whose body is not JSON, so a
// cross-site form post cannot drive the quiz.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		ct := r.Header.Get("Content-Type")
		if ct == "" && r.ContentLength == 0 {
			// Bodyless POSTs (restart, abandon) carry no form data.
			next.ServeHTTP(w, r)
			return
		}
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			slog.Warn("rejected non-JSON request", "method", r.Method, "path", r.URL.Path, "content_type", ct)
			writeJSON(w, http.StatusUnsupportedMediaType, apiError{
				Error: http.StatusText(http.StatusUnsupportedMediaType),
				Code:  "unsupported_media_type",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
