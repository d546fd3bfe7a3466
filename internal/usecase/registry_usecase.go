package usecase

import (
	"context"
	"fmt"
	"time"

	"daliah-backend/internal/domain"
	"daliah-backend/pkg/cache"
	"daliah-backend/pkg/logger"
	"daliah-backend/pkg/utils"
)

// RegistryUsecase covers the identity and inventory registries: participant
// profiles, the product catalogue and harvest batches. The engine core only
// ever reads from here; writes come in through farmer-facing operations.
type RegistryUsecase struct {
	profileRepo   domain.ProfileRepository
	inventoryRepo domain.InventoryRepository
	cache         cache.CacheService
	harvestTTL    time.Duration
	tokenExpiry   time.Duration
}

func NewRegistryUsecase(
	profileRepo domain.ProfileRepository,
	inventoryRepo domain.InventoryRepository,
	cacheService cache.CacheService,
	harvestTTL time.Duration,
	tokenExpiry time.Duration,
) *RegistryUsecase {
	return &RegistryUsecase{
		profileRepo:   profileRepo,
		inventoryRepo: inventoryRepo,
		cache:         cacheService,
		harvestTTL:    harvestTTL,
		tokenExpiry:   tokenExpiry,
	}
}

// RegisterResult carries the stored profile and the bearer token that makes
// the address an authenticated principal.
type RegisterResult struct {
	Profile *domain.Profile `json:"profile"`
	Token   string          `json:"token"`
}

// Register stores a participant profile and issues the principal token.
// There is no identity verification beyond the address itself.
func (u *RegistryUsecase) Register(ctx context.Context, role, address, name, physicalAddress string) (*RegisterResult, error) {
	if !validRole(role) {
		return nil, domain.Validationf("unknown role %q", role)
	}
	if address == "" || name == "" {
		return nil, domain.Validationf("address and name must not be empty")
	}

	profile := &domain.Profile{
		Address:         address,
		Role:            role,
		Name:            name,
		PhysicalAddress: physicalAddress,
	}
	if err := u.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(address, role, u.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	logger.WithContext(ctx).Info().Str("address", address).Str("role", role).Msg("Profile registered")
	return &RegisterResult{Profile: profile, Token: token}, nil
}

func (u *RegistryUsecase) GetProfile(ctx context.Context, address string) (*domain.Profile, error) {
	return u.profileRepo.GetByAddress(ctx, address)
}

func (u *RegistryUsecase) HasProfile(ctx context.Context, address string) (bool, error) {
	return u.profileRepo.Exists(ctx, address)
}

// RegisterCatalogueProduct adds a year-round offering for the farmer.
func (u *RegistryUsecase) RegisterCatalogueProduct(ctx context.Context, caller domain.Principal, name string, monthlyVolume int64, photoHash string) (*domain.CatalogueProduct, error) {
	if caller.Role != domain.RoleFarmer {
		return nil, domain.Authorizationf("only a farmer can register catalogue products")
	}
	if name == "" {
		return nil, domain.Validationf("product name must not be empty")
	}
	product := &domain.CatalogueProduct{
		FarmerAddress: caller.Address,
		Name:          name,
		MonthlyVolume: monthlyVolume,
		PhotoHash:     photoHash,
	}
	if err := u.inventoryRepo.CreateCatalogueProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (u *RegistryUsecase) ListCatalogue(ctx context.Context, farmerAddress string) ([]domain.CatalogueProduct, error) {
	return u.inventoryRepo.ListCatalogue(ctx, farmerAddress)
}

// HarvestInput is the farmer-supplied description of a new batch.
type HarvestInput struct {
	CatalogueProductID int64     `json:"catalogueProductId"`
	PhotoHash          string    `json:"photoHash"`
	CaptureDate        time.Time `json:"captureDate"`
	PHLevel            float64   `json:"phLevel"`
	ECLevel            float64   `json:"ecLevel"`
	WaterLevel         float64   `json:"waterLevel"`
	Quantity           int64     `json:"quantity"`
	MinOrderQuantity   int64     `json:"minOrderQuantity"`
	PricePerUnit       int64     `json:"pricePerUnit"`
	ExpiryDate         time.Time `json:"expiryDate"`
}

// RegisterHarvest publishes a batch to the marketplace.
func (u *RegistryUsecase) RegisterHarvest(ctx context.Context, caller domain.Principal, in HarvestInput) (*domain.HarvestBatch, error) {
	if caller.Role != domain.RoleFarmer {
		return nil, domain.Authorizationf("only a farmer can register harvests")
	}
	if in.Quantity <= 0 {
		return nil, domain.Validationf("quantity must be positive")
	}
	if in.MinOrderQuantity <= 0 || in.MinOrderQuantity > in.Quantity {
		return nil, domain.Validationf("minimum order quantity must be between 1 and the batch quantity")
	}
	if in.PricePerUnit <= 0 {
		return nil, domain.Validationf("price per unit must be positive")
	}
	if !in.ExpiryDate.IsZero() && !in.CaptureDate.IsZero() && in.ExpiryDate.Before(in.CaptureDate) {
		return nil, domain.Validationf("expiry date precedes the capture date")
	}

	batch := &domain.HarvestBatch{
		CatalogueProductID: in.CatalogueProductID,
		FarmerAddress:      caller.Address,
		PhotoHash:          in.PhotoHash,
		CaptureDate:        in.CaptureDate,
		PHLevel:            in.PHLevel,
		ECLevel:            in.ECLevel,
		WaterLevel:         in.WaterLevel,
		Quantity:           in.Quantity,
		MinOrderQuantity:   in.MinOrderQuantity,
		PricePerUnit:       in.PricePerUnit,
		ExpiryDate:         in.ExpiryDate,
	}
	if err := u.inventoryRepo.CreateHarvest(ctx, batch); err != nil {
		return nil, err
	}
	u.cache.Delete(harvestListKey)
	return batch, nil
}

const harvestListKey = "harvests:all"

// ListHarvests serves the browse view from cache when possible. Quantities
// may be slightly stale here; order placement re-reads under lock.
func (u *RegistryUsecase) ListHarvests(ctx context.Context) ([]domain.HarvestBatch, error) {
	if cached, ok := u.cache.Get(harvestListKey); ok {
		if batches, ok := cached.([]domain.HarvestBatch); ok {
			return batches, nil
		}
	}
	batches, err := u.inventoryRepo.ListHarvests(ctx)
	if err != nil {
		return nil, err
	}
	u.cache.Set(harvestListKey, batches, u.harvestTTL)
	return batches, nil
}

func (u *RegistryUsecase) GetHarvest(ctx context.Context, id int64) (*domain.HarvestBatch, error) {
	return u.inventoryRepo.GetHarvest(ctx, id)
}

func validRole(role string) bool {
	for _, r := range domain.Roles {
		if r == role {
			return true
		}
	}
	return false
}
