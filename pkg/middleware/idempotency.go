package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	apperrors "hotelbook/pkg/errors"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
)

const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotentReplayed  = "Idempotent-Replayed"
	authorizationPrefixLength = 16
	maxIdempotencyKeyLength   = 255
)

// IdempotencyGate decides whether a keyed request runs. Begin returns a
// non-nil record when a finished response should be replayed, an AppError
// when the request must be refused, and (nil, nil) when the caller owns the
// key and should execute.
type IdempotencyGate interface {
	Begin(ctx context.Context, key, endpoint, requestHash string) (*model.IdempotencyRecord, error)
	Complete(ctx context.Context, key string, status int, body []byte) error
	Fail(ctx context.Context, key string, status int, body []byte) error
	Abandon(ctx context.Context, key string) error
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

func Idempotency(gate IdempotencyGate, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderIdempotencyKey)
			if key == "" || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLength {
				writeGateError(w, log, apperrors.InvalidInput("Idempotency-Key must be at most 255 characters"))
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				writeGateError(w, log, apperrors.InvalidInput("Failed to read request body"))
				return
			}

			endpoint := r.Method + " " + r.URL.Path
			replay, err := gate.Begin(r.Context(), key, endpoint, RequestFingerprint(r, body))
			if err != nil {
				log.Info("Idempotent request refused",
					"request_id", RequestID(r),
					"idempotency_key", key,
					"error", err,
				)
				writeGateError(w, log, err)
				return
			}
			if replay != nil {
				log.Info("Replaying idempotent response",
					"request_id", RequestID(r),
					"idempotency_key", key,
					"status", replay.ResponseStatus,
				)
				replayResponse(w, replay)
				return
			}

			capture := captureResponse(w)
			completed := false
			defer func() {
				// A panicking handler leaves no response worth caching.
				if !completed {
					abandon(gate, log, r, key)
				}
			}()

			next.ServeHTTP(capture, r)
			completed = true
			recordOutcome(gate, log, r, key, capture)
		})
	}
}

// RequestFingerprint hashes the parts of a request that identify one logical
// operation: method, URL, body, a prefix of the Authorization header and the
// caller id.
func RequestFingerprint(r *http.Request, body []byte) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > authorizationPrefixLength {
		auth = auth[:authorizationPrefixLength]
	}

	h := sha256.New()
	for _, part := range [][]byte{
		[]byte(r.Method),
		[]byte(r.URL.RequestURI()),
		body,
		[]byte(auth),
		[]byte(r.Header.Get(httputil.HeaderUserID)),
	} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func captureResponse(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		body:           &bytes.Buffer{},
	}
}

func replayResponse(w http.ResponseWriter, rec *model.IdempotencyRecord) {
	status := rec.ResponseStatus
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderIdempotentReplayed, "true")
	w.WriteHeader(status)
	_, _ = w.Write(rec.ResponseData)
}

// recordOutcome stores 2xx as completed and 4xx as failed so both replay.
// A 504 leaves the work in an unknown state, so the key stays pending until
// the gate's pending timeout. Anything else frees the key for a retry.
func recordOutcome(gate IdempotencyGate, log *logger.Logger, r *http.Request, key string, capture *responseCapture) {
	ctx := context.WithoutCancel(r.Context())
	status := capture.statusCode
	body := capture.body.Bytes()

	var err error
	switch {
	case status >= 200 && status < 300:
		err = gate.Complete(ctx, key, status, body)
	case status >= 400 && status < 500:
		err = gate.Fail(ctx, key, status, body)
	case status == http.StatusGatewayTimeout:
		log.Warn("Idempotency key left pending after timeout",
			"request_id", RequestID(r),
			"idempotency_key", key,
		)
		return
	default:
		err = gate.Abandon(ctx, key)
	}

	if err != nil {
		log.Error("Failed to record idempotent outcome",
			"request_id", RequestID(r),
			"idempotency_key", key,
			"status", status,
			"error", err,
		)
	}
}

func abandon(gate IdempotencyGate, log *logger.Logger, r *http.Request, key string) {
	if err := gate.Abandon(context.WithoutCancel(r.Context()), key); err != nil {
		log.Error("Failed to abandon idempotency key",
			"request_id", RequestID(r),
			"idempotency_key", key,
			"error", err,
		)
	}
}

func writeGateError(w http.ResponseWriter, log *logger.Logger, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.Error("failed to write error response", "middleware", "Idempotency", "operation", "WriteError", "error", writeErr)
	}
}
