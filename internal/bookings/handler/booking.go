package handler

import (
	"encoding/json"
	"net/http"

	"hotelbook/internal/bookings/service"
	apperrors "hotelbook/pkg/errors"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/middleware"
	"hotelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// userHandle is a route that runs on behalf of the caller in X-User-ID. A
// returned error is rendered as the response.
type userHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string) error

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.asUser("Create", h.create))
	router.GET("/api/v1/bookings", h.asUser("List", h.list))
	router.GET("/api/v1/bookings/id/:id", h.asUser("GetByID", h.getByID))
	router.POST("/api/v1/bookings/id/:id/cancel", h.asUser("Cancel", h.cancel))
}

func (h *BookingHandler) asUser(op string, next userHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		userID, err := httputil.ExtractUserID(r)
		if err == nil {
			err = next(w, r, ps, userID)
		}
		if err == nil {
			return
		}
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", op, "request_id", middleware.RequestID(r), "error", writeErr)
		}
	}
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request, _ httprouter.Params, userID string) error {
	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}

	result, err := h.service.Create(r.Context(), userID, &req, requestMeta(r))
	if err != nil {
		return err
	}
	h.logWrite(r, "Create", httputil.WriteCreated(w, result))
	return nil
}

func (h *BookingHandler) getByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string) error {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"), userID)
	if err != nil {
		return err
	}
	h.logWrite(r, "GetByID", httputil.WriteSuccess(w, booking))
	return nil
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, _ httprouter.Params, userID string) error {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		return err
	}

	bookings, total, err := h.service.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		return err
	}
	h.logWrite(r, "List", httputil.WritePaginated(w, bookings, total, limit, offset))
	return nil
}

func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string) error {
	booking, err := h.service.Cancel(r.Context(), ps.ByName("id"), userID, requestMeta(r))
	if err != nil {
		return err
	}
	h.logWrite(r, "Cancel", httputil.WriteSuccess(w, booking))
	return nil
}

// logWrite records a response that could not be written. The status line is
// already out by then, so nothing else can be sent.
func (h *BookingHandler) logWrite(r *http.Request, op string, err error) {
	if err != nil {
		h.log.Error("failed to write response", "handler", op, "request_id", middleware.RequestID(r), "error", err)
	}
}

func requestMeta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{
		IdempotencyKey: r.Header.Get(httputil.HeaderIdempotencyKey),
		CorrelationID:  middleware.RequestID(r),
	}
}
