package domain

import (
	"context"
	"time"
)

// --- Order Aggregate ---

// Order is the central aggregate: one distributor-farmer transaction for a
// quantity of a specific harvest batch. Identity fields, quantity and pricing
// are immutable after creation; statuses move only through the usecase layer.
type Order struct {
	ID                 int64       `json:"id"`
	ProductID          int64       `json:"productId"` // harvest batch
	FarmerAddress      string      `json:"farmerAddress"`
	DistributorAddress string      `json:"distributorAddress"`
	Quantity           int64       `json:"quantity"`
	PricePerUnit       int64       `json:"pricePerUnit"`
	TotalPrice         int64       `json:"totalPrice"`
	MarketplaceFee     int64       `json:"marketplaceFee"`
	AcceptanceStatus   string      `json:"acceptanceStatus"`
	AcceptanceReason   *string     `json:"acceptanceReason,omitempty"`
	PaymentStatus      string      `json:"paymentStatus"`
	IsCancelled        bool        `json:"isCancelled"`
	IsRefundRequested  bool        `json:"isRefundRequested"`
	IsRefundApproved   bool        `json:"isRefundApproved"`
	Carrier            CarrierInfo `json:"carrier"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// CarrierInfo is the logistics leg embedded in an order. Every field is
// write-once and only the assigned carrier may set the progress fields.
type CarrierInfo struct {
	CarrierAddress       string     `json:"carrierAddress,omitempty"`
	CarrierName          string     `json:"carrierName,omitempty"`
	CarPlateNumber       string     `json:"carPlateNumber,omitempty"`
	VehicleTemperature   *float64   `json:"vehicleTemperature,omitempty"`
	VehicleTempProofHash string     `json:"vehicleTempProofHash,omitempty"`
	PickupTimestamp      *time.Time `json:"pickupTimestamp,omitempty"`
	PickupProofHash      string     `json:"pickupProofHash,omitempty"`
	DeliveredTimestamp   *time.Time `json:"deliveredTimestamp,omitempty"`
	DeliveredProofHash   string     `json:"deliveredProofHash,omitempty"`
}

// Invited reports whether a carrier has been assigned to the order.
func (c CarrierInfo) Invited() bool { return c.CarrierAddress != "" }

// Accepted reports whether the invited carrier confirmed the invitation.
func (c CarrierInfo) Accepted() bool { return c.CarrierName != "" }

// DamageReport is one dispute case filed against an order. Reports are
// append-only; CaseIndex is the zero-based sequence number within the order.
type DamageReport struct {
	OrderID         int64     `json:"orderId"`
	CaseIndex       int       `json:"caseIndex"`
	Description     string    `json:"description"`
	ProofHash       string    `json:"proofHash"`
	ReporterAddress string    `json:"reporterAddress"`
	CreatedAt       time.Time `json:"createdAt"`
}

// EscrowAccount holds the exact custodial amount pulled from the currency
// ledger for one order. Released flips to true exactly once in the order's
// lifetime, on completion or refund.
type EscrowAccount struct {
	OrderID            int64      `json:"orderId"`
	CustodiedAmount    int64      `json:"custodiedAmount"`
	Released           bool       `json:"released"`
	ReleaseDestination *string    `json:"releaseDestination,omitempty"`
	ReleasedAt         *time.Time `json:"releasedAt,omitempty"`
}

// OrderEvent is one entry in the per-order audit log. Appended inside the
// same transaction as the mutation it records.
type OrderEvent struct {
	ID             int64     `json:"id"`
	OrderID        int64     `json:"orderId"`
	Actor          string    `json:"actor"`
	Action         string    `json:"action"`
	PreviousStatus *string   `json:"previousStatus,omitempty"`
	NewStatus      string    `json:"newStatus"`
	Reason         *string   `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type OrderFilter struct {
	FarmerAddress      string
	DistributorAddress string
	CarrierAddress     string
	PaymentStatus      string
	Page               int
	Limit              int
}

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	// GetByIDForUpdate locks the order row for the remainder of the enclosing
	// transaction, serializing state-changing operations per order.
	GetByIDForUpdate(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, error)

	UpdateAcceptance(ctx context.Context, id int64, status string, reason *string) error
	UpdatePaymentStatus(ctx context.Context, id int64, status string) error
	MarkCancelled(ctx context.Context, id int64) error
	MarkRefundRequested(ctx context.Context, id int64) error
	MarkRefundApproved(ctx context.Context, id int64) error

	// Carrier leg, each setter writes its fields once.
	SetCarrierInvite(ctx context.Context, id int64, carrierAddress string) error
	SetCarrierAcceptance(ctx context.Context, id int64, name, plateNumber string) error
	SetVehicleTemperature(ctx context.Context, id int64, temperature float64, proofHash string) error
	SetPickup(ctx context.Context, id int64, proofHash string, at time.Time) error
	SetDelivery(ctx context.Context, id int64, proofHash string, at time.Time) error

	AppendEvent(ctx context.Context, event *OrderEvent) error
	GetEvents(ctx context.Context, orderID int64) ([]OrderEvent, error)
}

type EscrowRepository interface {
	Create(ctx context.Context, account *EscrowAccount) error
	GetByOrderID(ctx context.Context, orderID int64) (*EscrowAccount, error)
	// Release flips the released flag exactly once. A second call for the
	// same order returns a StateError.
	Release(ctx context.Context, orderID int64, destination string) (*EscrowAccount, error)
}

type DisputeRepository interface {
	// Append stores the report with the next case index for its order and
	// returns that index.
	Append(ctx context.Context, report *DamageReport) (int, error)
	ListByOrder(ctx context.Context, orderID int64) ([]DamageReport, error)
}
