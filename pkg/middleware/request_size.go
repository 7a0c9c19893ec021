package middleware

import (
	"net/http"

	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
)

// MaxRequestSize rejects bodies whose declared length exceeds maxBytes and
// caps the reader for bodies of unknown length.
func MaxRequestSize(maxBytes int64, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				reject(w, r, log, apperrors.Rejected(apperrors.CodeTooLarge, "Request body too large"),
					"content_length", r.ContentLength,
					"max_bytes", maxBytes,
				)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
