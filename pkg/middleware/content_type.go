package middleware

import (
	"mime"
	"net/http"

	apperrors "hotelbook/pkg/errors"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"
)

// ContentTypeValidation requires JSON on writes that carry a body. Bodiless
// POSTs such as cancel pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !carriesBody(r) {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				reject(w, r, log, apperrors.Rejected(apperrors.CodeMediaType, "Content-Type must be application/json"),
					"content_type", r.Header.Get("Content-Type"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func carriesBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

// reject logs why a request was refused and writes the error body.
func reject(w http.ResponseWriter, r *http.Request, log *logger.Logger, appErr *apperrors.AppError, attrs ...any) {
	args := append([]any{
		"request_id", RequestID(r),
		"method", r.Method,
		"path", r.URL.Path,
		"code", appErr.Code,
	}, attrs...)
	log.Warn("Request rejected", args...)

	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("failed to write error response", "request_id", RequestID(r), "error", err)
	}
}
