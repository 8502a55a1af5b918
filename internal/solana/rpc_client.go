package solana

import (
	"context"
	"encoding/base64"
	"fmt"

	"token-ingest/internal/rpc"
)

// MaxMultipleAccounts is the getMultipleAccounts per-request limit.
const MaxMultipleAccounts = 100

// DefaultCommitment is used for account reads.
const DefaultCommitment = "confirmed"

// HTTPClient reads Solana accounts over JSON-RPC 2.0.
type HTTPClient struct {
	endpoint   string
	caller     rpc.Caller
	policy     *rpc.Policy
	commitment string
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithCaller sets the transport used for requests.
func WithCaller(c rpc.Caller) ClientOption {
	return func(h *HTTPClient) {
		h.caller = c
	}
}

// WithPolicy overrides the transport default retry policy for this client.
func WithPolicy(p rpc.Policy) ClientOption {
	return func(h *HTTPClient) {
		h.policy = &p
	}
}

// WithCommitment sets the commitment level.
func WithCommitment(c string) ClientOption {
	return func(h *HTTPClient) {
		h.commitment = c
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:   endpoint,
		commitment: DefaultCommitment,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.caller == nil {
		c.caller = rpc.NewTransport()
	}
	return c
}

var _ AccountReader = (*HTTPClient)(nil)

func (c *HTTPClient) call(ctx context.Context, method string, params []any, result any) error {
	return c.caller.Call(ctx, c.endpoint, method, params, c.policy, result)
}

func (c *HTTPClient) accountConfig() map[string]any {
	return map[string]any{
		"encoding":   "base64",
		"commitment": c.commitment,
	}
}

// GetAccountInfo retrieves account info by address.
// Returns nil if account not found.
func (c *HTTPClient) GetAccountInfo(ctx context.Context, address Address) (*AccountInfo, error) {
	params := []any{address.String(), c.accountConfig()}

	var result getAccountInfoResult
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, nil
	}
	info, err := result.Value.toAccountInfo()
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo %s: %w", address, err)
	}
	return info, nil
}

// GetMultipleAccountsInfo retrieves accounts in request chunks of
// MaxMultipleAccounts, preserving input order.
func (c *HTTPClient) GetMultipleAccountsInfo(ctx context.Context, addresses []Address) ([]*AccountInfo, error) {
	out := make([]*AccountInfo, 0, len(addresses))
	for start := 0; start < len(addresses); start += MaxMultipleAccounts {
		end := min(start+MaxMultipleAccounts, len(addresses))

		keys := make([]string, 0, end-start)
		for _, a := range addresses[start:end] {
			keys = append(keys, a.String())
		}

		var result getMultipleAccountsResult
		if err := c.call(ctx, "getMultipleAccounts", []any{keys, c.accountConfig()}, &result); err != nil {
			return nil, err
		}
		if len(result.Value) != len(keys) {
			return nil, fmt.Errorf("getMultipleAccounts: got %d accounts for %d keys", len(result.Value), len(keys))
		}

		for i, v := range result.Value {
			if v == nil {
				out = append(out, nil)
				continue
			}
			info, err := v.toAccountInfo()
			if err != nil {
				return nil, fmt.Errorf("getMultipleAccounts %s: %w", keys[i], err)
			}
			out = append(out, info)
		}
	}
	return out, nil
}

// GetSlot retrieves the current slot.
func (c *HTTPClient) GetSlot(ctx context.Context) (int64, error) {
	var result int64
	if err := c.call(ctx, "getSlot", []any{map[string]any{"commitment": c.commitment}}, &result); err != nil {
		return 0, err
	}
	return result, nil
}

type getAccountInfoResult struct {
	Value *accountValue `json:"value"`
}

type getMultipleAccountsResult struct {
	Value []*accountValue `json:"value"`
}

type accountValue struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"` // [base64_data, encoding]
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
}

func (v *accountValue) toAccountInfo() (*AccountInfo, error) {
	owner, err := ParseAddress(v.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	info := &AccountInfo{
		Lamports:   v.Lamports,
		Owner:      owner,
		Executable: v.Executable,
		RentEpoch:  v.RentEpoch,
	}
	if len(v.Data) >= 1 && v.Data[0] != "" {
		data, err := base64.StdEncoding.DecodeString(v.Data[0])
		if err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
		info.Data = data
	}
	return info, nil
}
