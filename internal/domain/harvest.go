package domain

import (
	"context"
	"time"
)

// --- Inventory Registry Entities ---

// CatalogueProduct is an item a farmer offers year-round; harvest batches
// reference a catalogue entry.
type CatalogueProduct struct {
	ID            int64     `json:"id"`
	FarmerAddress string    `json:"farmerAddress"`
	Name          string    `json:"name"`
	MonthlyVolume int64     `json:"monthlyVolume"`
	PhotoHash     string    `json:"photoHash"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HarvestBatch is a quantity of a catalogued product available for order.
// Quantity is the remaining available amount and is decremented atomically
// with order creation.
type HarvestBatch struct {
	ID                 int64     `json:"id"`
	CatalogueProductID int64     `json:"catalogueProductId"`
	FarmerAddress      string    `json:"farmerAddress"`
	PhotoHash          string    `json:"photoHash"`
	CaptureDate        time.Time `json:"captureDate"`
	PHLevel            float64   `json:"phLevel"`
	ECLevel            float64   `json:"ecLevel"`
	WaterLevel         float64   `json:"waterLevel"`
	Quantity           int64     `json:"quantity"`
	MinOrderQuantity   int64     `json:"minOrderQuantity"`
	PricePerUnit       int64     `json:"pricePerUnit"`
	ExpiryDate         time.Time `json:"expiryDate"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Expired reports whether the batch has passed its expiry date.
func (h *HarvestBatch) Expired(now time.Time) bool {
	return !h.ExpiryDate.IsZero() && now.After(h.ExpiryDate)
}

type InventoryRepository interface {
	CreateCatalogueProduct(ctx context.Context, product *CatalogueProduct) error
	ListCatalogue(ctx context.Context, farmerAddress string) ([]CatalogueProduct, error)

	CreateHarvest(ctx context.Context, batch *HarvestBatch) error
	GetHarvest(ctx context.Context, id int64) (*HarvestBatch, error)
	// GetHarvestForUpdate locks the batch row for the enclosing transaction.
	GetHarvestForUpdate(ctx context.Context, id int64) (*HarvestBatch, error)
	ListHarvests(ctx context.Context) ([]HarvestBatch, error)
	// DecrementQuantity subtracts qty from the available quantity, failing
	// with a StateError if the remaining quantity is insufficient.
	DecrementQuantity(ctx context.Context, id int64, qty int64) error
}
