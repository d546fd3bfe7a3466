package postgres

import (
	"context"
	"errors"

	"daliah-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type inventoryRepository struct {
	db *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) domain.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) CreateCatalogueProduct(ctx context.Context, product *domain.CatalogueProduct) error {
	q := queryFrom(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO catalogue_products (farmer_address, name, monthly_volume, photo_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		product.FarmerAddress, product.Name, product.MonthlyVolume, product.PhotoHash,
	).Scan(&product.ID, &product.CreatedAt)
}

func (r *inventoryRepository) ListCatalogue(ctx context.Context, farmerAddress string) ([]domain.CatalogueProduct, error) {
	q := queryFrom(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT id, farmer_address, name, monthly_volume, photo_hash, created_at
		FROM catalogue_products
		WHERE ($1 = '' OR farmer_address = $1)
		ORDER BY id`, farmerAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.CatalogueProduct
	for rows.Next() {
		var p domain.CatalogueProduct
		if err := rows.Scan(&p.ID, &p.FarmerAddress, &p.Name, &p.MonthlyVolume, &p.PhotoHash, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const harvestColumns = `id, catalogue_product_id, farmer_address, photo_hash, capture_date,
	ph_level, ec_level, water_level, quantity, min_order_quantity, price_per_unit, expiry_date, created_at`

func scanHarvest(row pgx.Row) (*domain.HarvestBatch, error) {
	var h domain.HarvestBatch
	err := row.Scan(&h.ID, &h.CatalogueProductID, &h.FarmerAddress, &h.PhotoHash, &h.CaptureDate,
		&h.PHLevel, &h.ECLevel, &h.WaterLevel, &h.Quantity, &h.MinOrderQuantity,
		&h.PricePerUnit, &h.ExpiryDate, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *inventoryRepository) CreateHarvest(ctx context.Context, batch *domain.HarvestBatch) error {
	q := queryFrom(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO harvest_batches (
			catalogue_product_id, farmer_address, photo_hash, capture_date,
			ph_level, ec_level, water_level, quantity, min_order_quantity, price_per_unit, expiry_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		batch.CatalogueProductID, batch.FarmerAddress, batch.PhotoHash, batch.CaptureDate,
		batch.PHLevel, batch.ECLevel, batch.WaterLevel, batch.Quantity,
		batch.MinOrderQuantity, batch.PricePerUnit, batch.ExpiryDate,
	).Scan(&batch.ID, &batch.CreatedAt)
}

func (r *inventoryRepository) GetHarvest(ctx context.Context, id int64) (*domain.HarvestBatch, error) {
	q := queryFrom(ctx, r.db)
	batch, err := scanHarvest(q.QueryRow(ctx, `SELECT `+harvestColumns+` FROM harvest_batches WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("harvest batch", id)
	}
	return batch, err
}

func (r *inventoryRepository) GetHarvestForUpdate(ctx context.Context, id int64) (*domain.HarvestBatch, error) {
	q := queryFrom(ctx, r.db)
	batch, err := scanHarvest(q.QueryRow(ctx, `SELECT `+harvestColumns+` FROM harvest_batches WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("harvest batch", id)
	}
	return batch, err
}

func (r *inventoryRepository) ListHarvests(ctx context.Context) ([]domain.HarvestBatch, error) {
	q := queryFrom(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+harvestColumns+` FROM harvest_batches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []domain.HarvestBatch
	for rows.Next() {
		batch, err := scanHarvest(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *batch)
	}
	return batches, rows.Err()
}

// DecrementQuantity is conditional so the available quantity can never go
// negative, regardless of interleaving.
func (r *inventoryRepository) DecrementQuantity(ctx context.Context, id int64, qty int64) error {
	q := queryFrom(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE harvest_batches SET quantity = quantity - $2
		WHERE id = $1 AND quantity >= $2`, id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.Statef("harvest batch %d has insufficient quantity for %d", id, qty)
	}
	return nil
}
