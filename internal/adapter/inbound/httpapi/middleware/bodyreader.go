package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/jonny/edudiag/pkg/apierror"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// BodyReader buffers the request body up to maxBytes so handlers can decode
// it after logging. Larger bodies are rejected with 413.
func BodyReader(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			_ = r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					apierror.Write(w, apierror.New(http.StatusRequestEntityTooLarge, "request body too large"))
					return
				}
				apierror.Write(w, apierror.BadRequest("failed to read request body"))
				return
			}

			// Restore body so downstream handlers can read it again
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
