package postgres

import (
	"context"
	"errors"

	"daliah-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ledgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) BalanceOf(ctx context.Context, address string) (int64, error) {
	q := queryFrom(ctx, r.db)
	var balance int64
	err := q.QueryRow(ctx, `SELECT balance FROM ledger_accounts WHERE address = $1`, address).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (r *ledgerRepository) AllowanceOf(ctx context.Context, owner string) (int64, error) {
	q := queryFrom(ctx, r.db)
	var allowance int64
	err := q.QueryRow(ctx, `SELECT escrow_allowance FROM ledger_accounts WHERE address = $1`, owner).Scan(&allowance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return allowance, err
}

func (r *ledgerRepository) Approve(ctx context.Context, owner string, amount int64) error {
	if amount < 0 {
		return domain.Validationf("allowance must not be negative")
	}
	q := queryFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO ledger_accounts (address, escrow_allowance) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET escrow_allowance = $2`, owner, amount)
	return err
}

// DebitForEscrow consumes balance and allowance in one conditional update.
// Zero affected rows means the account is short on either, which surfaces as
// InsufficientFundsError per the escrow contract.
func (r *ledgerRepository) DebitForEscrow(ctx context.Context, owner string, amount int64) error {
	if amount <= 0 {
		return domain.Validationf("debit amount must be positive")
	}
	q := queryFrom(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE ledger_accounts
		SET balance = balance - $2, escrow_allowance = escrow_allowance - $2
		WHERE address = $1 AND balance >= $2 AND escrow_allowance >= $2`, owner, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.InsufficientFundsError{Address: owner, Required: amount}
	}
	return nil
}

func (r *ledgerRepository) Credit(ctx context.Context, address string, amount int64) error {
	if amount < 0 {
		return domain.Validationf("credit amount must not be negative")
	}
	q := queryFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO ledger_accounts (address, balance) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET balance = ledger_accounts.balance + $2`, address, amount)
	return err
}
