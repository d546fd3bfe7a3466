package domain

import "context"

// LedgerRepository is the boundary to the currency ledger. The engine never
// mints or manages supply; it only moves value between accounts. Debits into
// escrow require a prior allowance approval from the owner, mirroring an
// ERC-20 approve/transferFrom flow.
type LedgerRepository interface {
	BalanceOf(ctx context.Context, address string) (int64, error)
	// AllowanceOf returns the amount the owner has approved for escrow debits.
	AllowanceOf(ctx context.Context, owner string) (int64, error)
	Approve(ctx context.Context, owner string, amount int64) error
	// DebitForEscrow moves amount out of the owner's balance, consuming
	// allowance. Fails with InsufficientFundsError on a short balance or
	// allowance.
	DebitForEscrow(ctx context.Context, owner string, amount int64) error
	Credit(ctx context.Context, address string, amount int64) error
}
