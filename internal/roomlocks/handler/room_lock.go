package handler

import (
	"encoding/json"
	"net/http"

	"hotelbook/internal/roomlocks/service"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RoomLockHandler struct {
	service service.RoomLockService
	log     *logger.Logger
}

func NewRoomLockHandler(service service.RoomLockService, log *logger.Logger) *RoomLockHandler {
	return &RoomLockHandler{
		service: service,
		log:     log,
	}
}

type SweepResponse struct {
	Expired int64 `json:"expired"`
}

func (h *RoomLockHandler) Acquire(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Acquire", err)
		return
	}

	var req model.AcquireLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Acquire", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	lock, err := h.service.Acquire(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, "Acquire", err)
		return
	}

	if err := httputil.WriteCreated(w, lock); err != nil {
		h.log.Error("failed to write created response", "handler", "Acquire", "operation", "WriteCreated", "error", err)
	}
}

func (h *RoomLockHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Release", err)
		return
	}

	if err := h.service.Release(r.Context(), ps.ByName("id"), userID); err != nil {
		h.writeError(w, "Release", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RoomLockHandler) Sweep(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	expired, err := h.service.Sweep(r.Context())
	if err != nil {
		h.writeError(w, "Sweep", err)
		return
	}

	if err := httputil.WriteSuccess(w, SweepResponse{Expired: expired}); err != nil {
		h.log.Error("failed to write success response", "handler", "Sweep", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomLockHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RoomLockHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/room-locks", h.Acquire)
	router.DELETE("/api/v1/room-locks/id/:id", h.Release)
	router.POST("/api/v1/room-locks/sweep", h.Sweep)
}
