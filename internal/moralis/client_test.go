package moralis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testHash = "0xa3f1b2c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f80"

func noSleep(t *testing.T, calls *int32) SleepFunc {
	t.Helper()
	return func(ctx context.Context, d time.Duration) error {
		atomic.AddInt32(calls, 1)
		return nil
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, sleeps *int32) *Client {
	t.Helper()
	return NewClient(srv.URL, "test-key", "base", 3, 3*time.Second, zap.NewNop(), WithSleep(noSleep(t, sleeps)), WithHTTPClient(srv.Client()))
}

func TestTransactionSuccess(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
	}{
		{"integer status", `{"from_address":"0xAAA1","to_address":"0xBBB2","receipt_status":1}`, true},
		{"string status", `{"from_address":"0xAAA1","to_address":"0xBBB2","receipt_status":"1"}`, true},
		{"status name", `{"from_address":"0xAAA1","to_address":"0xBBB2","receipt_status_name":"Success"}`, true},
		{"status code field", `{"from_address":"0xAAA1","to_address":"0xBBB2","receipt_status_code":1}`, true},
		{"failed status", `{"from_address":"0xAAA1","to_address":"0xBBB2","receipt_status":0}`, false},
		{"null status", `{"from_address":"0xAAA1","to_address":"0xBBB2","receipt_status":null}`, false},
		{"absent status", `{"from_address":"0xAAA1","to_address":"0xBBB2"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("X-API-Key"); got != "test-key" {
					t.Errorf("X-API-Key = %q, want %q", got, "test-key")
				}
				if got := r.URL.Query().Get("chain"); got != "base" {
					t.Errorf("chain = %q, want %q", got, "base")
				}
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			var sleeps int32
			c := newTestClient(t, srv, &sleeps)

			tx, err := c.Transaction(context.Background(), testHash)
			if err != nil {
				t.Fatalf("Transaction() error = %v", err)
			}
			if tx.From != "0xaaa1" || tx.To != "0xbbb2" {
				t.Errorf("addresses not lower-cased: from=%q to=%q", tx.From, tx.To)
			}
			if tx.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", tx.Success, tt.wantSuccess)
			}
			if sleeps != 0 {
				t.Errorf("slept %d times on a clean response", sleeps)
			}
		})
	}
}

func TestTransactionRetriesThenSucceeds(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"from_address":"0xaaa1","to_address":"0xbbb2","receipt_status":1}`)
	}))
	defer srv.Close()

	var sleeps int32
	c := newTestClient(t, srv, &sleeps)

	tx, err := c.Transaction(context.Background(), testHash)
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if !tx.Success {
		t.Error("expected success after retries")
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 3", hits)
	}
	if sleeps != 2 {
		t.Errorf("sleeps = %d, want 2", sleeps)
	}
}

func TestTransactionGivesUpAfterBudget(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var sleeps int32
	c := newTestClient(t, srv, &sleeps)

	_, err := c.Transaction(context.Background(), testHash)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Transaction() error = %v, want ErrUnavailable", err)
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 3", hits)
	}
	if sleeps != 2 {
		t.Errorf("sleeps = %d, want 2", sleeps)
	}
}

func TestTransactionDoesNotRetryOnChainFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, `{"from_address":"0xaaa1","to_address":"0xbbb2","receipt_status":0}`)
	}))
	defer srv.Close()

	var sleeps int32
	c := newTestClient(t, srv, &sleeps)

	tx, err := c.Transaction(context.Background(), testHash)
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if tx.Success {
		t.Error("expected definitive failure result")
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1: an on-chain failure is not a transient fault", hits)
	}
}

func TestTransactionCancelledDuringSleep(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(srv.URL, "test-key", "base", 3, 3*time.Second, zap.NewNop(),
		WithHTTPClient(srv.Client()),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		}),
	)

	_, err := c.Transaction(ctx, testHash)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Transaction() error = %v, want context.Canceled", err)
	}
}
