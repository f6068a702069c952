package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
)

// ErrMalformedResponse is returned when the RPC response does not have the
// expected shape. Protocol violations are never retried.
var ErrMalformedResponse = errors.New("malformed RPC response")

// RetryPolicy controls retry behavior for transient failures.
// Only the listed HTTP statuses and transport-level errors are retried;
// every other failure surfaces immediately.
type RetryPolicy struct {
	MaxRetries        int
	Delay             time.Duration
	RetryableStatuses map[int]bool
}

// DefaultRetryPolicy retries 429 and 503 up to three times with a fixed
// one second delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		Delay:      DefaultRetryDelay,
		RetryableStatuses: map[int]bool{
			http.StatusTooManyRequests:    true,
			http.StatusServiceUnavailable: true,
		},
	}
}

// SleepFunc pauses between retry attempts. It must honor ctx cancellation.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint  string
	client    *http.Client
	policy    RetryPolicy
	sleep     SleepFunc
	requestID atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *HTTPClient) {
		c.policy = p
	}
}

// WithSleepFunc replaces the inter-attempt sleep. Tests inject a no-op
// sleep to run without wall-clock delays.
func WithSleepFunc(fn SleepFunc) ClientOption {
	return func(c *HTTPClient) {
		c.sleep = fn
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new ledger RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		policy:   DefaultRetryPolicy(),
		sleep:    defaultSleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request. Params may be positional
// (array) or named (object), depending on the method.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call. Transport failures and retryable HTTP
// statuses are retried sequentially up to MaxRetries with a fixed delay;
// anything else surfaces on the first attempt.
func (c *HTTPClient) call(ctx context.Context, method string, params any, result any) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error

	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.policy.Delay); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			if c.policy.RetryableStatuses[resp.StatusCode] {
				lastErr = statusErr
				continue
			}
			return statusErr
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			// Not transient: the endpoint is speaking something other
			// than JSON-RPC.
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("%w: unmarshal result: %v", ErrMalformedResponse, err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// getTokenAccountsResult is the raw RPC response for getTokenAccounts.
// TokenAccounts stays a RawMessage so a missing or non-array field can be
// told apart from an empty page.
type getTokenAccountsResult struct {
	TokenAccounts json.RawMessage `json:"token_accounts"`
}

// GetTokenAccounts retrieves one page of token accounts for a mint.
func (c *HTTPClient) GetTokenAccounts(ctx context.Context, mint string, page int) ([]TokenAccount, error) {
	params := map[string]any{
		"page":           page,
		"limit":          PageLimit,
		"mint":           mint,
		"displayOptions": map[string]any{},
	}

	var result getTokenAccountsResult
	if err := c.call(ctx, "getTokenAccounts", params, &result); err != nil {
		return nil, err
	}

	if result.TokenAccounts == nil {
		return nil, fmt.Errorf("%w: missing token_accounts array", ErrMalformedResponse)
	}

	var accounts []TokenAccount
	if err := json.Unmarshal(result.TokenAccounts, &accounts); err != nil {
		return nil, fmt.Errorf("%w: token_accounts is not an array: %v", ErrMalformedResponse, err)
	}

	return accounts, nil
}

// getTokenSupplyResult is the raw RPC response for getTokenSupply.
// Decimals stays a pointer so a missing field can be told apart from a
// zero-decimal mint.
type getTokenSupplyResult struct {
	Value *struct {
		Amount   string `json:"amount"`
		Decimals *uint8 `json:"decimals"`
	} `json:"value"`
}

// GetTokenSupply retrieves the supply metadata for a mint.
func (c *HTTPClient) GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error) {
	params := []any{mint}

	var result getTokenSupplyResult
	if err := c.call(ctx, "getTokenSupply", params, &result); err != nil {
		return nil, err
	}

	if result.Value == nil {
		return nil, fmt.Errorf("%w: missing supply value", ErrMalformedResponse)
	}
	if result.Value.Decimals == nil {
		return nil, fmt.Errorf("%w: missing decimals field", ErrMalformedResponse)
	}

	return &TokenSupply{
		Amount:   result.Value.Amount,
		Decimals: *result.Value.Decimals,
	}, nil
}
