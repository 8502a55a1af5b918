package solana

import "context"

// AccountReader fetches account snapshots.
type AccountReader interface {
	// GetAccountInfo returns nil when the account does not exist.
	GetAccountInfo(ctx context.Context, address Address) (*AccountInfo, error)

	// GetMultipleAccountsInfo returns one entry per address, nil for missing accounts.
	GetMultipleAccountsInfo(ctx context.Context, addresses []Address) ([]*AccountInfo, error)
}

// AccountInfo is a point-in-time account snapshot. Decoders must not modify Data.
type AccountInfo struct {
	Data       []byte
	Executable bool
	Lamports   uint64
	Owner      Address
	RentEpoch  uint64
}
