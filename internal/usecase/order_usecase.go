package usecase

import (
	"context"
	"time"

	"daliah-backend/internal/domain"
	"daliah-backend/pkg/logger"
)

// OrderUsecase owns the order state machine and the escrow custody rules.
// Every state-changing operation runs as one transaction that locks the
// order row first, so operations on a single order are strictly serialized
// while different orders proceed in parallel.
type OrderUsecase struct {
	orderRepo      domain.OrderRepository
	escrowRepo     domain.EscrowRepository
	inventoryRepo  domain.InventoryRepository
	ledgerRepo     domain.LedgerRepository
	txManager      domain.TransactionManager
	marketplaceFee int64
	treasury       string
	now            func() time.Time
}

func NewOrderUsecase(
	orderRepo domain.OrderRepository,
	escrowRepo domain.EscrowRepository,
	inventoryRepo domain.InventoryRepository,
	ledgerRepo domain.LedgerRepository,
	txManager domain.TransactionManager,
	marketplaceFee int64,
	treasuryAddress string,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:      orderRepo,
		escrowRepo:     escrowRepo,
		inventoryRepo:  inventoryRepo,
		ledgerRepo:     ledgerRepo,
		txManager:      txManager,
		marketplaceFee: marketplaceFee,
		treasury:       treasuryAddress,
		now:            time.Now,
	}
}

// Quote is the pre-flight price estimate for an order.
type Quote struct {
	ProductID      int64 `json:"productId"`
	Quantity       int64 `json:"quantity"`
	PricePerUnit   int64 `json:"pricePerUnit"`
	TotalPrice     int64 `json:"totalPrice"`
	MarketplaceFee int64 `json:"marketplaceFee"`
	EscrowTotal    int64 `json:"escrowTotal"`
}

// PaymentDetails is the read model for an order's financial state.
type PaymentDetails struct {
	OrderID        int64  `json:"orderId"`
	TotalPrice     int64  `json:"totalPrice"`
	MarketplaceFee int64  `json:"marketplaceFee"`
	PaymentStatus  string `json:"paymentStatus"`
	EscrowReleased bool   `json:"escrowReleased"`
}

// PlaceOrder validates the requested quantity against the harvest batch,
// pulls totalPrice+fee from the distributor's ledger balance into escrow,
// decrements inventory and creates the order, all in one transaction.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, caller domain.Principal, productID, quantity int64, farmerAddress string) (*domain.Order, error) {
	if caller.Role != domain.RoleDistributor {
		return nil, domain.Authorizationf("only a distributor can place orders")
	}
	if quantity <= 0 {
		return nil, domain.Validationf("quantity must be positive")
	}

	var order *domain.Order
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		batch, err := u.inventoryRepo.GetHarvestForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		if batch.FarmerAddress != farmerAddress {
			return domain.Validationf("harvest batch %d does not belong to farmer %s", productID, farmerAddress)
		}
		if batch.Expired(u.now()) {
			return domain.Validationf("harvest batch %d has expired", productID)
		}
		if quantity < batch.MinOrderQuantity {
			return domain.Validationf("quantity %d is below the minimum order quantity %d", quantity, batch.MinOrderQuantity)
		}
		if quantity > batch.Quantity {
			return domain.Validationf("quantity %d exceeds available quantity %d", quantity, batch.Quantity)
		}

		totalPrice := quantity * batch.PricePerUnit
		custody := totalPrice + u.marketplaceFee

		if err := u.ledgerRepo.DebitForEscrow(txCtx, caller.Address, custody); err != nil {
			return err
		}
		if err := u.inventoryRepo.DecrementQuantity(txCtx, productID, quantity); err != nil {
			return err
		}

		order = &domain.Order{
			ProductID:          productID,
			FarmerAddress:      farmerAddress,
			DistributorAddress: caller.Address,
			Quantity:           quantity,
			PricePerUnit:       batch.PricePerUnit,
			TotalPrice:         totalPrice,
			MarketplaceFee:     u.marketplaceFee,
			AcceptanceStatus:   domain.AcceptancePending,
			PaymentStatus:      domain.PaymentStatusPaid,
		}
		if err := u.orderRepo.Create(txCtx, order); err != nil {
			return err
		}
		if err := u.escrowRepo.Create(txCtx, &domain.EscrowAccount{
			OrderID:         order.ID,
			CustodiedAmount: custody,
		}); err != nil {
			return err
		}
		return u.appendEvent(txCtx, order.ID, caller.Address, domain.EventOrderPlaced, nil, domain.PaymentStatusPaid, nil)
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Int64("order_id", order.ID).
		Int64("product_id", productID).
		Int64("quantity", quantity).
		Int64("escrow", order.TotalPrice+order.MarketplaceFee).
		Msg("Order placed")
	return order, nil
}

// TotalPrice is a pure pre-flight computation; it never mutates state.
func (u *OrderUsecase) TotalPrice(ctx context.Context, productID, quantity int64) (*Quote, error) {
	if quantity <= 0 {
		return nil, domain.Validationf("quantity must be positive")
	}
	batch, err := u.inventoryRepo.GetHarvest(ctx, productID)
	if err != nil {
		return nil, err
	}
	total := quantity * batch.PricePerUnit
	return &Quote{
		ProductID:      productID,
		Quantity:       quantity,
		PricePerUnit:   batch.PricePerUnit,
		TotalPrice:     total,
		MarketplaceFee: u.marketplaceFee,
		EscrowTotal:    total + u.marketplaceFee,
	}, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

func (u *OrderUsecase) GetOrderEvents(ctx context.Context, id int64) ([]domain.OrderEvent, error) {
	if _, err := u.orderRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return u.orderRepo.GetEvents(ctx, id)
}

func (u *OrderUsecase) GetPaymentDetails(ctx context.Context, id int64) (*PaymentDetails, error) {
	order, err := u.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account, err := u.escrowRepo.GetByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PaymentDetails{
		OrderID:        order.ID,
		TotalPrice:     order.TotalPrice,
		MarketplaceFee: order.MarketplaceFee,
		PaymentStatus:  order.PaymentStatus,
		EscrowReleased: account.Released,
	}, nil
}

// ListOrders returns the orders visible to the caller: farmers see incoming
// orders, distributors their own, carriers their assigned legs.
func (u *OrderUsecase) ListOrders(ctx context.Context, caller domain.Principal, filter domain.OrderFilter) ([]domain.Order, error) {
	switch caller.Role {
	case domain.RoleFarmer:
		filter.FarmerAddress = caller.Address
	case domain.RoleDistributor:
		filter.DistributorAddress = caller.Address
	case domain.RoleCarrier:
		filter.CarrierAddress = caller.Address
	}
	return u.orderRepo.List(ctx, filter)
}

// ChangeAcceptance records the farmer's single accept/reject decision.
// Rejection does not move funds; it only unlocks the buyer's refund path.
func (u *OrderUsecase) ChangeAcceptance(ctx context.Context, caller domain.Principal, orderID int64, decision string, reason string) error {
	if decision != domain.DecisionAccept && decision != domain.DecisionReject {
		return domain.Validationf("unknown decision %q", decision)
	}
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if caller.Address != order.FarmerAddress {
			return domain.Authorizationf("caller is not the farmer of order %d", orderID)
		}
		if order.AcceptanceStatus != domain.AcceptancePending {
			return domain.Statef("order %d acceptance already decided: %s", orderID, order.AcceptanceStatus)
		}

		status := domain.AcceptanceAccepted
		if decision == domain.DecisionReject {
			status = domain.AcceptanceRejected
		}
		if err := u.orderRepo.UpdateAcceptance(txCtx, orderID, status, &reason); err != nil {
			return err
		}
		return u.appendEvent(txCtx, orderID, caller.Address, domain.EventAcceptanceChanged,
			&order.PaymentStatus, order.PaymentStatus, &reason)
	})
}

// MarkCompleted is the buyer's acknowledgement that goods arrived
// satisfactorily. Requires a recorded delivery and an untouched refund path.
func (u *OrderUsecase) MarkCompleted(ctx context.Context, caller domain.Principal, orderID int64) error {
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if caller.Address != order.DistributorAddress {
			return domain.Authorizationf("caller is not the distributor of order %d", orderID)
		}
		if order.PaymentStatus != domain.PaymentStatusPaid {
			return domain.Statef("order %d is %s, expected %s", orderID, order.PaymentStatus, domain.PaymentStatusPaid)
		}
		if order.Carrier.DeliveredTimestamp == nil {
			return domain.Statef("order %d has not been delivered", orderID)
		}
		if order.IsCancelled || order.IsRefundApproved {
			return domain.Statef("order %d is on the refund path", orderID)
		}

		if err := u.orderRepo.UpdatePaymentStatus(txCtx, orderID, domain.PaymentStatusApprovedByCustomer); err != nil {
			return err
		}
		return u.appendEvent(txCtx, orderID, caller.Address, domain.EventMarkedCompleted,
			&order.PaymentStatus, domain.PaymentStatusApprovedByCustomer, nil)
	})
}

// Withdraw releases the escrowed funds to the farmer. This is the only path
// by which the farmer is paid and it is irreversible: the escrow release is
// one-shot and any replay fails before funds move.
func (u *OrderUsecase) Withdraw(ctx context.Context, caller domain.Principal, orderID int64) error {
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if caller.Address != order.FarmerAddress {
			return domain.Authorizationf("caller is not the farmer of order %d", orderID)
		}
		if order.PaymentStatus != domain.PaymentStatusApprovedByCustomer {
			return domain.Statef("order %d is %s, expected %s", orderID, order.PaymentStatus, domain.PaymentStatusApprovedByCustomer)
		}

		account, err := u.escrowRepo.Release(txCtx, orderID, order.FarmerAddress)
		if err != nil {
			return err
		}
		if err := u.settle(txCtx, account, order, order.FarmerAddress); err != nil {
			return err
		}
		if err := u.orderRepo.UpdatePaymentStatus(txCtx, orderID, domain.PaymentStatusCompleted); err != nil {
			return err
		}
		return u.appendEvent(txCtx, orderID, caller.Address, domain.EventFundsWithdrawn,
			&order.PaymentStatus, domain.PaymentStatusCompleted, nil)
	})
	if err == nil {
		logger.WithContext(ctx).Info().Int64("order_id", orderID).Msg("Escrow released to farmer")
	}
	return err
}

// CancelOrder is the buyer's exit for orders the farmer has not decided on
// yet. Funds move only on the subsequent WithdrawRefund.
func (u *OrderUsecase) CancelOrder(ctx context.Context, caller domain.Principal, orderID int64) error {
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if caller.Address != order.DistributorAddress {
			return domain.Authorizationf("caller is not the distributor of order %d", orderID)
		}
		if order.AcceptanceStatus != domain.AcceptancePending {
			return domain.Statef("order %d has already been %s", orderID, order.AcceptanceStatus)
		}
		if order.IsCancelled {
			return domain.Statef("order %d is already cancelled", orderID)
		}

		if err := u.orderRepo.MarkCancelled(txCtx, orderID); err != nil {
			return err
		}
		if err := u.orderRepo.UpdatePaymentStatus(txCtx, orderID, domain.PaymentStatusCancelled); err != nil {
			return err
		}
		return u.appendEvent(txCtx, orderID, caller.Address, domain.EventOrderCancelled,
			&order.PaymentStatus, domain.PaymentStatusCancelled, nil)
	})
}

// RequestRefund opens a dispute after acknowledged delivery. Pre-acceptance
// exits go through CancelOrder instead.
func (u *OrderUsecase) RequestRefund(ctx context.Context, caller domain.Principal, orderID int64) error {
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if caller.Address != order.DistributorAddress {
			return domain.Authorizationf("caller is not the distributor of order %d", orderID)
		}
		if order.IsRefundRequested {
			return domain.Statef("refund already requested for order %d", orderID)
		}
		if order.AcceptanceStatus == domain.AcceptancePending {
			return domain.Statef("order %d is still pending acceptance, cancel it instead", orderID)
		}
		if order.PaymentStatus != domain.PaymentStatusApprovedByCustomer {
			return domain.Statef("order %d is %s, refunds can only be requested after delivery approval", orderID, order.PaymentStatus)
		}

		if err := u.orderRepo.MarkRefundRequested(txCtx, orderID); err != nil {
			return err
		}
		if err := u.orderRepo.UpdatePaymentStatus(txCtx, orderID, domain.PaymentStatusRefundRequested); err != nil {
			return err
		}
		return u.appendEvent(txCtx, orderID, caller.Address, domain.EventRefundRequested,
			&order.PaymentStatus, domain.PaymentStatusRefundRequested, nil)
	})
}

// ApproveRefund is the farmer's authorization of a requested refund.
func (u *OrderUsecase) ApproveRefund(ctx context.Context, caller domain.Principal, orderID int64) error {
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if caller.Address != order.FarmerAddress {
			return domain.Authorizationf("caller is not the farmer of order %d", orderID)
		}
		if !order.IsRefundRequested {
			return domain.Statef("no refund requested for order %d", orderID)
		}
		if order.IsRefundApproved {
			return domain.Statef("refund already approved for order %d", orderID)
		}

		if err := u.orderRepo.MarkRefundApproved(txCtx, orderID); err != nil {
			return err
		}
		if err := u.orderRepo.UpdatePaymentStatus(txCtx, orderID, domain.PaymentStatusRefundApproved); err != nil {
			return err
		}
		return u.appendEvent(txCtx, orderID, caller.Address, domain.EventRefundApproved,
			&order.PaymentStatus, domain.PaymentStatusRefundApproved, nil)
	})
}

// WithdrawRefund releases the escrowed funds back to the buyer, reachable
// after a cancellation or an approved refund. The marketplace fee is not
// refunded; it settles to the treasury on every terminal outcome.
func (u *OrderUsecase) WithdrawRefund(ctx context.Context, caller domain.Principal, orderID int64) error {
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if caller.Address != order.DistributorAddress {
			return domain.Authorizationf("caller is not the distributor of order %d", orderID)
		}
		if !order.IsCancelled && !order.IsRefundApproved {
			return domain.Statef("order %d has neither a cancellation nor an approved refund", orderID)
		}
		if order.PaymentStatus == domain.PaymentStatusRefunded {
			return domain.Statef("order %d is already refunded", orderID)
		}

		account, err := u.escrowRepo.Release(txCtx, orderID, order.DistributorAddress)
		if err != nil {
			return err
		}
		if err := u.settle(txCtx, account, order, order.DistributorAddress); err != nil {
			return err
		}
		if err := u.orderRepo.UpdatePaymentStatus(txCtx, orderID, domain.PaymentStatusRefunded); err != nil {
			return err
		}
		return u.appendEvent(txCtx, orderID, caller.Address, domain.EventRefundWithdrawn,
			&order.PaymentStatus, domain.PaymentStatusRefunded, nil)
	})
	if err == nil {
		logger.WithContext(ctx).Info().Int64("order_id", orderID).Msg("Escrow refunded to distributor")
	}
	return err
}

// settle credits the released custody: totalPrice to the destination, the
// fee to the marketplace treasury.
func (u *OrderUsecase) settle(ctx context.Context, account *domain.EscrowAccount, order *domain.Order, destination string) error {
	if err := u.ledgerRepo.Credit(ctx, destination, order.TotalPrice); err != nil {
		return err
	}
	fee := account.CustodiedAmount - order.TotalPrice
	if fee > 0 {
		if err := u.ledgerRepo.Credit(ctx, u.treasury, fee); err != nil {
			return err
		}
	}
	return nil
}

func (u *OrderUsecase) appendEvent(ctx context.Context, orderID int64, actor, action string, previous *string, status string, reason *string) error {
	return u.orderRepo.AppendEvent(ctx, &domain.OrderEvent{
		OrderID:        orderID,
		Actor:          actor,
		Action:         action,
		PreviousStatus: previous,
		NewStatus:      status,
		Reason:         reason,
	})
}
