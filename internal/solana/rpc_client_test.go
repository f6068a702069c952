package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// noSleep keeps retry tests free of wall-clock delays.
func noSleep(_ context.Context, _ time.Duration) error {
	return nil
}

func TestHTTPClient_GetTokenAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "getTokenAccounts" {
			t.Errorf("expected method getTokenAccounts, got %s", req.Method)
		}

		params, ok := req.Params.(map[string]interface{})
		if !ok {
			t.Fatalf("expected object params, got %T", req.Params)
		}
		if params["mint"] != "mint123" {
			t.Errorf("expected mint mint123, got %v", params["mint"])
		}
		if params["limit"] != float64(PageLimit) {
			t.Errorf("expected limit %d, got %v", PageLimit, params["limit"])
		}
		if params["page"] != float64(2) {
			t.Errorf("expected page 2, got %v", params["page"])
		}
		if _, ok := params["displayOptions"]; !ok {
			t.Error("expected displayOptions in params")
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"token_accounts": []map[string]interface{}{
					{"owner": "wallet1", "amount": "1500000000"},
					{"owner": "wallet2", "amount": "250000000"},
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	ctx := context.Background()

	accounts, err := client.GetTokenAccounts(ctx, "mint123", 2)
	if err != nil {
		t.Fatalf("GetTokenAccounts: %v", err)
	}

	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	if accounts[0].Owner != "wallet1" {
		t.Errorf("expected owner wallet1, got %s", accounts[0].Owner)
	}

	if accounts[0].Amount != "1500000000" {
		t.Errorf("expected amount 1500000000, got %s", accounts[0].Amount)
	}
}

func TestHTTPClient_GetTokenAccounts_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"token_accounts": []map[string]interface{}{},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	accounts, err := client.GetTokenAccounts(context.Background(), "mint123", 5)
	if err != nil {
		t.Fatalf("GetTokenAccounts: %v", err)
	}

	if len(accounts) != 0 {
		t.Errorf("expected empty page, got %d accounts", len(accounts))
	}
}

func TestHTTPClient_RetriesRateLimit(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"token_accounts": []map[string]interface{}{
					{"owner": "wallet1", "amount": "100"},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithSleepFunc(noSleep))

	accounts, err := client.GetTokenAccounts(context.Background(), "mint123", 1)
	if err != nil {
		t.Fatalf("GetTokenAccounts after retries: %v", err)
	}

	if len(accounts) != 1 {
		t.Errorf("expected 1 account, got %d", len(accounts))
	}

	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts total, got %d", got)
	}
}

func TestHTTPClient_RetriesExhausted(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithSleepFunc(noSleep))

	_, err := client.GetTokenAccounts(context.Background(), "mint123", 1)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}

	// Initial attempt plus DefaultMaxRetries retries.
	if got := attempts.Load(); got != int32(DefaultMaxRetries)+1 {
		t.Errorf("expected %d attempts, got %d", DefaultMaxRetries+1, got)
	}
}

func TestHTTPClient_NonRetryableStatus(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithSleepFunc(noSleep))

	_, err := client.GetTokenAccounts(context.Background(), "mint123", 1)
	if err == nil {
		t.Fatal("expected error for non-retryable status")
	}

	if got := attempts.Load(); got != 1 {
		t.Errorf("expected a single attempt, got %d", got)
	}
}

func TestHTTPClient_MalformedResponseNotRetried(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		// Result without the token_accounts array.
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{"something_else": true},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithSleepFunc(noSleep))

	_, err := client.GetTokenAccounts(context.Background(), "mint123", 1)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}

	if got := attempts.Load(); got != 1 {
		t.Errorf("expected a single attempt, got %d", got)
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32602,
				"message": "Invalid param: could not find mint",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithSleepFunc(noSleep))

	_, err := client.GetTokenSupply(context.Background(), "notamint")
	if err == nil {
		t.Fatal("expected RPC error")
	}

	var rpcErr *rpcError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected rpcError, got %T: %v", err, err)
	}

	if got := attempts.Load(); got != 1 {
		t.Errorf("expected a single attempt, got %d", got)
	}
}

func TestHTTPClient_GetTokenSupply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "getTokenSupply" {
			t.Errorf("expected method getTokenSupply, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": map[string]interface{}{
					"amount":   "1000000000000",
					"decimals": 9,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	supply, err := client.GetTokenSupply(context.Background(), "mint123")
	if err != nil {
		t.Fatalf("GetTokenSupply: %v", err)
	}

	if supply.Decimals != 9 {
		t.Errorf("expected decimals 9, got %d", supply.Decimals)
	}

	if supply.Amount != "1000000000000" {
		t.Errorf("expected amount 1000000000000, got %s", supply.Amount)
	}
}

func TestHTTPClient_GetTokenSupply_MissingValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	_, err := client.GetTokenSupply(context.Background(), "mint123")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestHTTPClient_GetTokenSupply_MissingDecimals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": map[string]interface{}{
					"amount": "1000000000000",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	// A value object without decimals must not pass as decimals=0;
	// unscaled amounts would corrupt every downstream computation.
	_, err := client.GetTokenSupply(context.Background(), "mint123")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetTokenAccounts(ctx, "mint123", 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
