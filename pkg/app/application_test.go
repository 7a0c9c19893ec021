package app

import (
	"context"
	"errors"
	"testing"

	"hotelbook/pkg/config"
	"hotelbook/pkg/logger"
)

func TestRunWorker_StopsBackgroundInReverseOrder(t *testing.T) {
	a := NewApplication(&config.Config{Log: logger.NewNop()})

	var order []string
	a.OnShutdown(func() { order = append(order, "mongo") })
	a.OnShutdown(func() { order = append(order, "consumer") })

	a.RunWorker(func(ctx context.Context) error {
		return errors.New("broker gone")
	})

	if len(order) != 2 || order[0] != "consumer" || order[1] != "mongo" {
		t.Errorf("shutdown order = %v, want [consumer mongo]", order)
	}
	if a.Context().Err() == nil {
		t.Error("application context must be cancelled after the worker stops")
	}
}

func TestRunWorker_ClosersRunOnce(t *testing.T) {
	a := NewApplication(&config.Config{Log: logger.NewNop()})
	calls := 0
	a.OnShutdown(func() { calls++ })

	a.RunWorker(func(ctx context.Context) error { return nil })
	a.stopBackground()

	if calls != 1 {
		t.Errorf("closer calls = %d, want 1", calls)
	}
}
