package usecase

import (
	"context"
	"sync"
	"time"

	"daliah-backend/internal/domain"
)

// memStore is an in-memory implementation of every repository interface,
// shared across the usecase tests. A single instance backs all repos so a
// test observes the same state the usecases mutate.
type memStore struct {
	mu sync.Mutex

	orders     map[int64]*domain.Order
	events     map[int64][]domain.OrderEvent
	escrows    map[int64]*domain.EscrowAccount
	reports    map[int64][]domain.DamageReport
	harvests   map[int64]*domain.HarvestBatch
	catalogue  map[int64]*domain.CatalogueProduct
	profiles   map[string]*domain.Profile
	balances   map[string]int64
	allowances map[string]int64

	nextOrderID   int64
	nextHarvestID int64
	nextProductID int64
	nextEventID   int64
}

func newMemStore() *memStore {
	return &memStore{
		orders:     make(map[int64]*domain.Order),
		events:     make(map[int64][]domain.OrderEvent),
		escrows:    make(map[int64]*domain.EscrowAccount),
		reports:    make(map[int64][]domain.DamageReport),
		harvests:   make(map[int64]*domain.HarvestBatch),
		catalogue:  make(map[int64]*domain.CatalogueProduct),
		profiles:   make(map[string]*domain.Profile),
		balances:   make(map[string]int64),
		allowances: make(map[string]int64),
	}
}

// passTx runs the function directly; the fakes mutate shared state in place
// so there is nothing to commit or roll back.
type passTx struct{}

func (passTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- OrderRepository ---

func (s *memStore) Create(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID++
	order.ID = s.nextOrderID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, domain.NotFound("order", id)
	}
	cp := *order
	return &cp, nil
}

func (s *memStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return s.GetByID(ctx, id)
}

func (s *memStore) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for _, o := range s.orders {
		if filter.FarmerAddress != "" && o.FarmerAddress != filter.FarmerAddress {
			continue
		}
		if filter.DistributorAddress != "" && o.DistributorAddress != filter.DistributorAddress {
			continue
		}
		if filter.CarrierAddress != "" && o.Carrier.CarrierAddress != filter.CarrierAddress {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (s *memStore) mutateOrder(id int64, fn func(o *domain.Order)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return domain.NotFound("order", id)
	}
	fn(order)
	order.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) UpdateAcceptance(ctx context.Context, id int64, status string, reason *string) error {
	return s.mutateOrder(id, func(o *domain.Order) {
		o.AcceptanceStatus = status
		o.AcceptanceReason = reason
	})
}

func (s *memStore) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	return s.mutateOrder(id, func(o *domain.Order) { o.PaymentStatus = status })
}

func (s *memStore) MarkCancelled(ctx context.Context, id int64) error {
	return s.mutateOrder(id, func(o *domain.Order) { o.IsCancelled = true })
}

func (s *memStore) MarkRefundRequested(ctx context.Context, id int64) error {
	return s.mutateOrder(id, func(o *domain.Order) { o.IsRefundRequested = true })
}

func (s *memStore) MarkRefundApproved(ctx context.Context, id int64) error {
	return s.mutateOrder(id, func(o *domain.Order) { o.IsRefundApproved = true })
}

func (s *memStore) SetCarrierInvite(ctx context.Context, id int64, carrierAddress string) error {
	return s.mutateOrder(id, func(o *domain.Order) { o.Carrier.CarrierAddress = carrierAddress })
}

func (s *memStore) SetCarrierAcceptance(ctx context.Context, id int64, name, plateNumber string) error {
	return s.mutateOrder(id, func(o *domain.Order) {
		o.Carrier.CarrierName = name
		o.Carrier.CarPlateNumber = plateNumber
	})
}

func (s *memStore) SetVehicleTemperature(ctx context.Context, id int64, temperature float64, proofHash string) error {
	return s.mutateOrder(id, func(o *domain.Order) {
		o.Carrier.VehicleTemperature = &temperature
		o.Carrier.VehicleTempProofHash = proofHash
	})
}

func (s *memStore) SetPickup(ctx context.Context, id int64, proofHash string, at time.Time) error {
	return s.mutateOrder(id, func(o *domain.Order) {
		o.Carrier.PickupTimestamp = &at
		o.Carrier.PickupProofHash = proofHash
	})
}

func (s *memStore) SetDelivery(ctx context.Context, id int64, proofHash string, at time.Time) error {
	return s.mutateOrder(id, func(o *domain.Order) {
		o.Carrier.DeliveredTimestamp = &at
		o.Carrier.DeliveredProofHash = proofHash
	})
}

func (s *memStore) AppendEvent(ctx context.Context, event *domain.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	event.ID = s.nextEventID
	event.CreatedAt = time.Now()
	s.events[event.OrderID] = append(s.events[event.OrderID], *event)
	return nil
}

func (s *memStore) GetEvents(ctx context.Context, orderID int64) ([]domain.OrderEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OrderEvent(nil), s.events[orderID]...), nil
}

// --- EscrowRepository ---

func (s *memStore) CreateEscrow(ctx context.Context, account *domain.EscrowAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *account
	s.escrows[account.OrderID] = &cp
	return nil
}

func (s *memStore) GetByOrderID(ctx context.Context, orderID int64) (*domain.EscrowAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.escrows[orderID]
	if !ok {
		return nil, domain.NotFound("escrow account", orderID)
	}
	cp := *account
	return &cp, nil
}

func (s *memStore) Release(ctx context.Context, orderID int64, destination string) (*domain.EscrowAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.escrows[orderID]
	if !ok || account.Released {
		return nil, domain.Statef("escrow for order %d already released or absent", orderID)
	}
	now := time.Now()
	account.Released = true
	account.ReleaseDestination = &destination
	account.ReleasedAt = &now
	cp := *account
	return &cp, nil
}

// --- DisputeRepository ---

func (s *memStore) Append(ctx context.Context, report *domain.DamageReport) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.CaseIndex = len(s.reports[report.OrderID])
	report.CreatedAt = time.Now()
	s.reports[report.OrderID] = append(s.reports[report.OrderID], *report)
	return report.CaseIndex, nil
}

func (s *memStore) ListByOrder(ctx context.Context, orderID int64) ([]domain.DamageReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.DamageReport(nil), s.reports[orderID]...), nil
}

// --- InventoryRepository ---

func (s *memStore) CreateCatalogueProduct(ctx context.Context, product *domain.CatalogueProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	product.ID = s.nextProductID
	product.CreatedAt = time.Now()
	cp := *product
	s.catalogue[product.ID] = &cp
	return nil
}

func (s *memStore) ListCatalogue(ctx context.Context, farmerAddress string) ([]domain.CatalogueProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CatalogueProduct
	for _, p := range s.catalogue {
		if farmerAddress != "" && p.FarmerAddress != farmerAddress {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) CreateHarvest(ctx context.Context, batch *domain.HarvestBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHarvestID++
	batch.ID = s.nextHarvestID
	batch.CreatedAt = time.Now()
	cp := *batch
	s.harvests[batch.ID] = &cp
	return nil
}

func (s *memStore) GetHarvest(ctx context.Context, id int64) (*domain.HarvestBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.harvests[id]
	if !ok {
		return nil, domain.NotFound("harvest batch", id)
	}
	cp := *batch
	return &cp, nil
}

func (s *memStore) GetHarvestForUpdate(ctx context.Context, id int64) (*domain.HarvestBatch, error) {
	return s.GetHarvest(ctx, id)
}

func (s *memStore) ListHarvests(ctx context.Context) ([]domain.HarvestBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HarvestBatch
	for _, b := range s.harvests {
		out = append(out, *b)
	}
	return out, nil
}

func (s *memStore) DecrementQuantity(ctx context.Context, id int64, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.harvests[id]
	if !ok {
		return domain.NotFound("harvest batch", id)
	}
	if batch.Quantity < qty {
		return domain.Statef("harvest batch %d has insufficient quantity", id)
	}
	batch.Quantity -= qty
	return nil
}

// --- LedgerRepository ---

func (s *memStore) BalanceOf(ctx context.Context, address string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[address], nil
}

func (s *memStore) AllowanceOf(ctx context.Context, owner string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowances[owner], nil
}

func (s *memStore) Approve(ctx context.Context, owner string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowances[owner] = amount
	return nil
}

func (s *memStore) DebitForEscrow(ctx context.Context, owner string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[owner] < amount || s.allowances[owner] < amount {
		return &domain.InsufficientFundsError{Address: owner, Required: amount}
	}
	s.balances[owner] -= amount
	s.allowances[owner] -= amount
	return nil
}

func (s *memStore) Credit(ctx context.Context, address string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[address] += amount
	return nil
}

// --- ProfileRepository ---

func (s *memStore) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.Address]; exists {
		return domain.Statef("address %s is already registered", profile.Address)
	}
	profile.CreatedAt = time.Now()
	cp := *profile
	s.profiles[profile.Address] = &cp
	return nil
}

func (s *memStore) GetByAddress(ctx context.Context, address string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[address]
	if !ok {
		return nil, domain.NotFound("profile", address)
	}
	cp := *profile
	return &cp, nil
}

func (s *memStore) Exists(ctx context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.profiles[address]
	return ok, nil
}

// Interface adapters: memStore has Create for orders and CreateProfile /
// CreateEscrow for the colliding method names, so the repos are exposed
// through thin views.

type escrowView struct{ *memStore }

func (v escrowView) Create(ctx context.Context, account *domain.EscrowAccount) error {
	return v.CreateEscrow(ctx, account)
}

type profileView struct{ *memStore }

func (v profileView) Create(ctx context.Context, profile *domain.Profile) error {
	return v.CreateProfile(ctx, profile)
}

func (s *memStore) orderRepo() domain.OrderRepository         { return s }
func (s *memStore) escrowRepo() domain.EscrowRepository       { return escrowView{s} }
func (s *memStore) disputeRepo() domain.DisputeRepository     { return s }
func (s *memStore) inventoryRepo() domain.InventoryRepository { return s }
func (s *memStore) ledgerRepo() domain.LedgerRepository       { return s }
func (s *memStore) profileRepo() domain.ProfileRepository     { return profileView{s} }

// fakeCache is a map-backed CacheService for the registry tests.
type fakeCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]interface{})}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *fakeCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
}
