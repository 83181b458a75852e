package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/stockmarket/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(logger.Nop())
	if client.httpClient == nil {
		t.Fatal("Expected http.Client to be initialized")
	}
	if client.retryConfig.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", client.retryConfig.MaxRetries)
	}
}

func TestNewWithTimeout(t *testing.T) {
	timeout := 5 * time.Second
	client := NewWithTimeout(logger.Nop(), timeout)

	if client.httpClient.Timeout != timeout {
		t.Errorf("Expected timeout=%v, got %v", timeout, client.httpClient.Timeout)
	}
}

func TestWithRetry(t *testing.T) {
	client := New(logger.Nop()).DisableRetry().WithRetry(5, time.Millisecond)

	if !client.retryConfig.Enabled {
		t.Error("Expected retry to be enabled")
	}
	if client.retryConfig.MaxRetries != 5 {
		t.Errorf("Expected MaxRetries=5, got %d", client.retryConfig.MaxRetries)
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"ACME","count":3}`))
	}))
	defer server.Close()

	var out struct {
		Symbol string `json:"symbol"`
		Count  int    `json:"count"`
	}
	if err := New(logger.Nop()).GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Symbol != "ACME" || out.Count != 3 {
		t.Errorf("unexpected body %+v", out)
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json, got %s", ct)
		}

		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"echo": in["value"]})
	}))
	defer server.Close()

	var out map[string]string
	err := New(logger.Nop()).PostJSON(context.Background(), server.URL, map[string]string{"value": "hi"}, &out)
	if err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if out["echo"] != "hi" {
		t.Errorf("Expected echo=hi, got %q", out["echo"])
	}
}

func TestStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"stock NOPE not found"}`))
	}))
	defer server.Close()

	err := New(logger.Nop()).GetJSON(context.Background(), server.URL, &struct{}{})

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", se.StatusCode)
	}
	if se.Message != "stock NOPE not found" {
		t.Errorf("Unexpected message %q", se.Message)
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"n":1}` {
			t.Errorf("attempt %d saw body %q", attempts.Load()+1, body)
		}
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(logger.Nop()).WithRetry(3, time.Millisecond)
	if err := client.PostJSON(context.Background(), server.URL, map[string]int{"n": 1}, nil); err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestRetryGivesUp(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(logger.Nop()).WithRetry(2, time.Millisecond)
	err := client.GetJSON(context.Background(), server.URL, nil)

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected 500 StatusError, got %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := New(logger.Nop()).DisableRetry().Delete(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		if got := IsRetryableError(tt.code); got != tt.want {
			t.Errorf("IsRetryableError(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
