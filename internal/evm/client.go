// Package evm reads ERC-20 token data from EVM chains over JSON-RPC.
package evm

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"token-ingest/internal/rpc"
)

// BlockLatest is the default block tag.
const BlockLatest = "latest"

// TokenInfo is the ERC-20 metadata of a contract. Fields whose call
// reverted are empty; Decimals is -1 and TotalSupply nil in that case.
type TokenInfo struct {
	Address     Address
	Name        string
	Symbol      string
	Decimals    int
	TotalSupply *big.Int
}

// Client calls one EVM endpoint.
type Client struct {
	chain    string
	endpoint string
	caller   rpc.Caller
	policy   *rpc.Policy
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCaller sets the transport.
func WithCaller(c rpc.Caller) Option {
	return func(cl *Client) {
		cl.caller = c
	}
}

// WithPolicy overrides the transport retry policy for this client.
func WithPolicy(p rpc.Policy) Option {
	return func(cl *Client) {
		cl.policy = &p
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a client for chain at endpoint.
func NewClient(chain, endpoint string, opts ...Option) *Client {
	c := &Client{
		chain:    chain,
		endpoint: endpoint,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.caller == nil {
		c.caller = rpc.NewTransport(rpc.WithLogger(c.logger))
	}
	return c
}

// Chain returns the chain name.
func (c *Client) Chain() string {
	return c.chain
}

type callMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Call runs eth_call against to at block ("" means latest) and returns the
// raw return data.
func (c *Client) Call(ctx context.Context, to Address, data []byte, block string) ([]byte, error) {
	if block == "" {
		block = BlockLatest
	}
	var result string
	params := []any{callMsg{To: to.String(), Data: "0x" + hex.EncodeToString(data)}, block}
	if err := c.caller.Call(ctx, c.endpoint, "eth_call", params, c.policy, &result); err != nil {
		return nil, err
	}
	out, err := decodeHex(result)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s: %w", to, err)
	}
	return out, nil
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var result string
	if err := c.caller.Call(ctx, c.endpoint, "eth_blockNumber", []any{}, c.policy, &result); err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(result, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block number %q: %w", result, err)
	}
	return n, nil
}

// TokenInfo reads name, symbol, decimals and totalSupply. A reverted call
// leaves its field empty; transport failures are returned.
func (c *Client) TokenInfo(ctx context.Context, token Address) (*TokenInfo, error) {
	info := &TokenInfo{Address: token, Decimals: -1}

	data, err := c.optionalCall(ctx, token, selName)
	if err != nil {
		return nil, err
	}
	info.Name = DecodeString(data)

	if data, err = c.optionalCall(ctx, token, selSymbol); err != nil {
		return nil, err
	}
	info.Symbol = DecodeString(data)

	if data, err = c.optionalCall(ctx, token, selDecimals); err != nil {
		return nil, err
	}
	if v, ok := DecodeUint256(data); ok && v.IsInt64() && v.Int64() <= 255 {
		info.Decimals = int(v.Int64())
	}

	if data, err = c.optionalCall(ctx, token, selTotalSupply); err != nil {
		return nil, err
	}
	if v, ok := DecodeUint256(data); ok {
		info.TotalSupply = v
	}
	return info, nil
}

// BalanceOf returns the ERC-20 balance of holder.
func (c *Client) BalanceOf(ctx context.Context, token, holder Address) (*big.Int, error) {
	data, err := c.Call(ctx, token, EncodeCall(selBalanceOf, holder), BlockLatest)
	if err != nil {
		return nil, err
	}
	v, ok := DecodeUint256(data)
	if !ok {
		return nil, fmt.Errorf("balanceOf %s on %s: short return data (%d bytes)", holder, token, len(data))
	}
	return v, nil
}

// optionalCall treats terminal RPC errors (reverts, missing methods) as an
// empty result.
func (c *Client) optionalCall(ctx context.Context, to Address, sel [4]byte) ([]byte, error) {
	data, err := c.Call(ctx, to, EncodeCall(sel), BlockLatest)
	var te *rpc.TransportError
	if errors.As(err, &te) && te.Kind == rpc.KindRPC && !te.Retryable {
		c.logger.Debug("token call reverted",
			zap.String("chain", c.chain),
			zap.String("token", to.String()),
			zap.String("selector", hex.EncodeToString(sel[:])),
			zap.String("message", te.Message))
		return nil, nil
	}
	return data, err
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}
