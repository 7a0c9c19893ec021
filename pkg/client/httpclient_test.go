package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

func TestHttpClient_RetriesKeyedWrites(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewHttpClient(srv.URL)
	resp, err := c.Post(context.Background(), "/x", map[string]string{"a": "b"}, map[string]string{headerIdempotencyKey: "k1"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestHttpClient_DoesNotRetryUnkeyedWrites(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHttpClient(srv.URL)
	resp, err := c.Post(context.Background(), "/x", nil, nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestHttpClient_KeyedWriteDoesNotRetryGatewayTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = w.Write([]byte(`{"error":"Request timed out","code":"TIMEOUT"}`))
	}))
	defer srv.Close()

	resp, err := NewHttpClient(srv.URL).Post(context.Background(), "/x", map[string]int{"guests": 2}, map[string]string{headerIdempotencyKey: "k1"})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, a timed out write must not be sent again", calls.Load())
	}
	var apiErr *APIError
	if !errors.As(resp.Err(), &apiErr) || apiErr.Code != "TIMEOUT" {
		t.Errorf("Err() = %v, want TIMEOUT", resp.Err())
	}
}

func TestHttpClient_GetRetriesGatewayTimeoutAndKeepsLastBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = w.Write([]byte(`{"error":"Request timed out","code":"TIMEOUT"}`))
	}))
	defer srv.Close()

	resp, err := NewHttpClient(srv.URL).Get(context.Background(), "/x", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls.Load() != defaultMaxAttempts {
		t.Errorf("calls = %d, want %d", calls.Load(), defaultMaxAttempts)
	}
	if resp.StatusCode != http.StatusGatewayTimeout || GetErrorMessage(resp) != "Request timed out" {
		t.Errorf("last response = %d %q", resp.StatusCode, GetErrorMessage(resp))
	}
}

func TestHttpClient_ResendsBodyOnRetry(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		n := len(bodies)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if _, err := NewHttpClient(srv.URL).Post(context.Background(), "/x", map[string]int{"guests": 2}, map[string]string{headerIdempotencyKey: "k2"}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[1] != `{"guests":2}` {
		t.Errorf("bodies = %q, want the same payload twice", bodies)
	}
}

func TestHttpClient_SetsDefaultHeaders(t *testing.T) {
	var gotAgent, gotAccept, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	if _, err := NewHttpClient(srv.URL).Get(context.Background(), "/", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotAgent != userAgent || gotAccept != "application/json" {
		t.Errorf("User-Agent = %q, Accept = %q", gotAgent, gotAccept)
	}
	if gotContentType != "" {
		t.Errorf("Content-Type = %q, want none on bodiless request", gotContentType)
	}
}
