package usecase

import (
	"context"

	"daliah-backend/internal/domain"
)

// WalletUsecase exposes the caller-facing slice of the currency ledger:
// balance queries and escrow allowance approvals. Supply management is out
// of scope and has no operation here.
type WalletUsecase struct {
	ledgerRepo domain.LedgerRepository
}

func NewWalletUsecase(ledgerRepo domain.LedgerRepository) *WalletUsecase {
	return &WalletUsecase{ledgerRepo: ledgerRepo}
}

// WalletView is the caller's ledger snapshot.
type WalletView struct {
	Address         string `json:"address"`
	Balance         int64  `json:"balance"`
	EscrowAllowance int64  `json:"escrowAllowance"`
}

func (u *WalletUsecase) GetWallet(ctx context.Context, caller domain.Principal) (*WalletView, error) {
	balance, err := u.ledgerRepo.BalanceOf(ctx, caller.Address)
	if err != nil {
		return nil, err
	}
	allowance, err := u.ledgerRepo.AllowanceOf(ctx, caller.Address)
	if err != nil {
		return nil, err
	}
	return &WalletView{Address: caller.Address, Balance: balance, EscrowAllowance: allowance}, nil
}

// Approve sets the amount the escrow may pull from the caller's balance.
func (u *WalletUsecase) Approve(ctx context.Context, caller domain.Principal, amount int64) (*WalletView, error) {
	if amount < 0 {
		return nil, domain.Validationf("allowance must not be negative")
	}
	if err := u.ledgerRepo.Approve(ctx, caller.Address, amount); err != nil {
		return nil, err
	}
	return u.GetWallet(ctx, caller)
}
