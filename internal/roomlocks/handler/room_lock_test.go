package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotelbook/internal/roomlocks/service"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockRoomLockService struct {
	service.RoomLockService
	acquireFunc func(ctx context.Context, userID string, req *model.AcquireLockRequest) (*model.RoomLock, error)
	releaseFunc func(ctx context.Context, lockID, userID string) error
}

func (m *mockRoomLockService) Acquire(ctx context.Context, userID string, req *model.AcquireLockRequest) (*model.RoomLock, error) {
	return m.acquireFunc(ctx, userID, req)
}

func (m *mockRoomLockService) Release(ctx context.Context, lockID, userID string) error {
	return m.releaseFunc(ctx, lockID, userID)
}

func (m *mockRoomLockService) Sweep(ctx context.Context) (int64, error) {
	return 2, nil
}

func newRouter(svc service.RoomLockService) *httprouter.Router {
	router := httprouter.New()
	NewRoomLockHandler(svc, logger.NewNop()).RegisterRoutes(router)
	return router
}

func TestAcquire(t *testing.T) {
	svc := &mockRoomLockService{acquireFunc: func(ctx context.Context, userID string, req *model.AcquireLockRequest) (*model.RoomLock, error) {
		if userID != "alice" || req.RoomID != "room-1" {
			t.Errorf("userID = %s, req = %+v", userID, req)
		}
		return &model.RoomLock{ID: "lock-1", RoomID: req.RoomID, Status: model.LockStatusActive, LockedUntil: time.Now()}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/room-locks", strings.NewReader(`{"hotel_id":"h","room_id":"room-1"}`))
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAcquire_RequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/room-locks", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	newRouter(&mockRoomLockService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRelease(t *testing.T) {
	svc := &mockRoomLockService{releaseFunc: func(ctx context.Context, lockID, userID string) error {
		if userID != "alice" {
			return apperrors.NotFoundWithID("RoomLock", lockID)
		}
		return nil
	}}

	tests := []struct {
		user   string
		status int
	}{
		{user: "alice", status: http.StatusNoContent},
		{user: "bob", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/room-locks/id/lock-1", nil)
		req.Header.Set("X-User-ID", tt.user)
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Errorf("user %s: status = %d, want %d", tt.user, rec.Code, tt.status)
		}
	}
}

func TestSweep(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/room-locks/sweep", nil)
	rec := httptest.NewRecorder()
	newRouter(&mockRoomLockService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"expired":2`) {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
