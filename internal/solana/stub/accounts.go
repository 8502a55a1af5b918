// Package stub provides in-memory Solana collaborators for tests.
package stub

import (
	"context"
	"sync"

	"token-ingest/internal/solana"
)

// AccountReader implements solana.AccountReader from an in-memory map.
type AccountReader struct {
	mu       sync.Mutex
	accounts map[solana.Address]*solana.AccountInfo
	calls    map[solana.Address]int

	// Err, when set, is returned by every call.
	Err error
}

var _ solana.AccountReader = (*AccountReader)(nil)

// NewAccountReader creates an empty stub reader.
func NewAccountReader() *AccountReader {
	return &AccountReader{
		accounts: make(map[solana.Address]*solana.AccountInfo),
		calls:    make(map[solana.Address]int),
	}
}

// Put stores an account owned by owner with the given data.
func (r *AccountReader) Put(address, owner solana.Address, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[address] = &solana.AccountInfo{Owner: owner, Data: data, Lamports: 1}
}

// Calls returns how many times address was requested.
func (r *AccountReader) Calls(address solana.Address) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[address]
}

// GetAccountInfo returns the stored account or nil.
func (r *AccountReader) GetAccountInfo(_ context.Context, address solana.Address) (*solana.AccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[address]++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.accounts[address], nil
}

// GetMultipleAccountsInfo returns stored accounts in request order.
func (r *AccountReader) GetMultipleAccountsInfo(_ context.Context, addresses []solana.Address) ([]*solana.AccountInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*solana.AccountInfo, len(addresses))
	for i, a := range addresses {
		r.calls[a]++
		out[i] = r.accounts[a]
	}
	return out, nil
}
