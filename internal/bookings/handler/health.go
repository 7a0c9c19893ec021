package handler

import (
	"context"
	"net/http"
	"time"

	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const probeTimeout = 2 * time.Second

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Check is one dependency the service needs before it can take bookings.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

func MongoCheck(db Pinger) Check {
	return Check{
		Name:  "mongo",
		Probe: func(ctx context.Context) error { return db.Ping(ctx, readpref.Primary()) },
	}
}

type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves /health, which only says the process is up, and
// /ready, which probes every dependency.
type HealthHandler struct {
	checks []Check
	log    *logger.Logger
}

func NewHealthHandler(log *logger.Logger, checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.live)
	router.GET("/ready", h.ready)
}

func (h *HealthHandler) live(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.write(w, http.StatusOK, HealthStatus{Status: "ok"})
}

func (h *HealthHandler) ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	result := HealthStatus{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for _, c := range h.checks {
		if err := c.Probe(ctx); err != nil {
			h.log.Error("Readiness probe failed", "check", c.Name, "error", err)
			result.Checks[c.Name] = "error"
			result.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		result.Checks[c.Name] = "ok"
	}
	h.write(w, status, result)
}

func (h *HealthHandler) write(w http.ResponseWriter, status int, body HealthStatus) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.log.Error("failed to write health response", "status", body.Status, "error", err)
	}
}
