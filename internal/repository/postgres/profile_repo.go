package postgres

import (
	"context"
	"errors"

	"daliah-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type profileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	q := queryFrom(ctx, r.db)
	tag, err := q.Exec(ctx, `
		INSERT INTO profiles (address, role, name, physical_address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO NOTHING`,
		profile.Address, profile.Role, profile.Name, profile.PhysicalAddress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Statef("profile for %s already registered", profile.Address)
	}
	return nil
}

func (r *profileRepository) GetByAddress(ctx context.Context, address string) (*domain.Profile, error) {
	q := queryFrom(ctx, r.db)
	var p domain.Profile
	err := q.QueryRow(ctx, `
		SELECT address, role, name, physical_address, created_at
		FROM profiles WHERE address = $1`, address,
	).Scan(&p.Address, &p.Role, &p.Name, &p.PhysicalAddress, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("profile", address)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Exists(ctx context.Context, address string) (bool, error) {
	q := queryFrom(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE address = $1)`, address).Scan(&exists)
	return exists, err
}
