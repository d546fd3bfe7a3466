package postgres

import (
	"context"
	"errors"

	"daliah-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type escrowRepository struct {
	db *pgxpool.Pool
}

func NewEscrowRepository(db *pgxpool.Pool) domain.EscrowRepository {
	return &escrowRepository{db: db}
}

func (r *escrowRepository) Create(ctx context.Context, account *domain.EscrowAccount) error {
	q := queryFrom(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO escrow_accounts (order_id, custodied_amount)
		VALUES ($1, $2)`,
		account.OrderID, account.CustodiedAmount)
	return err
}

func (r *escrowRepository) GetByOrderID(ctx context.Context, orderID int64) (*domain.EscrowAccount, error) {
	q := queryFrom(ctx, r.db)
	var a domain.EscrowAccount
	err := q.QueryRow(ctx, `
		SELECT order_id, custodied_amount, released, release_destination, released_at
		FROM escrow_accounts WHERE order_id = $1`, orderID,
	).Scan(&a.OrderID, &a.CustodiedAmount, &a.Released, &a.ReleaseDestination, &a.ReleasedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("escrow account", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Release flips released atomically. The NOT released predicate is the
// idempotent-on-replay guard: a replayed or duplicated release sees zero
// affected rows and fails with a StateError instead of moving funds twice.
func (r *escrowRepository) Release(ctx context.Context, orderID int64, destination string) (*domain.EscrowAccount, error) {
	q := queryFrom(ctx, r.db)
	var a domain.EscrowAccount
	err := q.QueryRow(ctx, `
		UPDATE escrow_accounts
		SET released = true, release_destination = $2, released_at = now()
		WHERE order_id = $1 AND NOT released
		RETURNING order_id, custodied_amount, released, release_destination, released_at`,
		orderID, destination,
	).Scan(&a.OrderID, &a.CustodiedAmount, &a.Released, &a.ReleaseDestination, &a.ReleasedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Statef("escrow for order %d already released or absent", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
