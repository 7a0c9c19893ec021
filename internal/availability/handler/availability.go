package handler

import (
	"net/http"
	"strconv"

	"hotelbook/internal/availability/service"
	"hotelbook/internal/availability/validator"
	apperrors "hotelbook/pkg/errors"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service   service.AvailabilityService
	validator *validator.AvailabilityValidator
	log       *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, validator *validator.AvailabilityValidator, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	rooms := 1
	if roomsStr := query.Get("rooms"); roomsStr != "" {
		var err error
		rooms, err = strconv.Atoi(roomsStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid rooms parameter: "+roomsStr)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Check", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	in, err := h.validator.Parse(&validator.AvailabilityQuery{
		RoomTypeID: query.Get("room_type_id"),
		CheckIn:    query.Get("check_in"),
		CheckOut:   query.Get("check_out"),
		Rooms:      rooms,
	})
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Check", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.service.Check(r.Context(), in)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Check", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Check)
}
