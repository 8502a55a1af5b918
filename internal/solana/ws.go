package solana

import "context"

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeProgram streams account updates for accounts owned by a program.
	SubscribeProgram(ctx context.Context, filter ProgramFilter) (<-chan ProgramNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// ProgramFilter selects program-owned accounts.
type ProgramFilter struct {
	Program Address
	// DataSize restricts notifications to accounts of exactly this size. Zero disables it.
	DataSize uint64
}

// ProgramNotification is a single programSubscribe update.
type ProgramNotification struct {
	Pubkey  Address
	Slot    int64
	Account AccountInfo
}
