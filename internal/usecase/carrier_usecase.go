package usecase

import (
	"context"
	"time"

	"daliah-backend/internal/domain"
)

// CarrierUsecase drives the logistics leg of an order: invitation,
// acceptance, cold-chain logging, pickup and delivery. Every step is
// write-once and requires the matching caller.
type CarrierUsecase struct {
	orderRepo   domain.OrderRepository
	profileRepo domain.ProfileRepository
	txManager   domain.TransactionManager
	now         func() time.Time
}

func NewCarrierUsecase(orderRepo domain.OrderRepository, profileRepo domain.ProfileRepository, txManager domain.TransactionManager) *CarrierUsecase {
	return &CarrierUsecase{
		orderRepo:   orderRepo,
		profileRepo: profileRepo,
		txManager:   txManager,
		now:         time.Now,
	}
}

// InviteCarrier assigns a carrier to the order's logistics leg. Only the
// order's distributor may invite, and only once.
func (u *CarrierUsecase) InviteCarrier(ctx context.Context, caller domain.Principal, orderID int64, carrierAddress string) error {
	if carrierAddress == "" {
		return domain.Validationf("carrier address must not be empty")
	}
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if caller.Address != order.DistributorAddress {
			return domain.Authorizationf("caller is not the distributor of order %d", orderID)
		}
		if order.Carrier.Invited() {
			return domain.Statef("order %d already has a carrier assigned", orderID)
		}

		profile, err := u.profileRepo.GetByAddress(txCtx, carrierAddress)
		if err != nil {
			return err
		}
		if profile.Role != domain.RoleCarrier {
			return domain.Validationf("%s is not registered as a carrier", carrierAddress)
		}

		if err := u.orderRepo.SetCarrierInvite(txCtx, orderID, carrierAddress); err != nil {
			return err
		}
		return u.logEvent(txCtx, order, caller.Address, domain.EventCarrierInvited, carrierAddress)
	})
}

// AcceptInvitation confirms the invited carrier with their name and plate.
func (u *CarrierUsecase) AcceptInvitation(ctx context.Context, caller domain.Principal, orderID int64, name, plateNumber string) error {
	if name == "" || plateNumber == "" {
		return domain.Validationf("carrier name and plate number must not be empty")
	}
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if !order.Carrier.Invited() {
			return domain.Statef("order %d has no carrier invitation", orderID)
		}
		if caller.Address != order.Carrier.CarrierAddress {
			return domain.Authorizationf("caller is not the invited carrier of order %d", orderID)
		}
		if order.Carrier.Accepted() {
			return domain.Statef("invitation for order %d already accepted", orderID)
		}

		if err := u.orderRepo.SetCarrierAcceptance(txCtx, orderID, name, plateNumber); err != nil {
			return err
		}
		return u.logEvent(txCtx, order, caller.Address, domain.EventCarrierAccepted, name)
	})
}

// LogVehicleTemperature records the cold-chain evidence for the leg.
func (u *CarrierUsecase) LogVehicleTemperature(ctx context.Context, caller domain.Principal, orderID int64, temperature float64, proofHash string) error {
	if proofHash == "" {
		return domain.Validationf("proof hash must not be empty")
	}
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.assignedCarrierOrder(txCtx, caller, orderID)
		if err != nil {
			return err
		}
		if order.Carrier.VehicleTemperature != nil {
			return domain.Statef("vehicle temperature for order %d already logged", orderID)
		}
		if err := u.orderRepo.SetVehicleTemperature(txCtx, orderID, temperature, proofHash); err != nil {
			return err
		}
		return u.logEvent(txCtx, order, caller.Address, domain.EventTemperatureLogged, proofHash)
	})
}

// RecordPickup stamps the pickup time with the engine clock.
func (u *CarrierUsecase) RecordPickup(ctx context.Context, caller domain.Principal, orderID int64, proofHash string) error {
	if proofHash == "" {
		return domain.Validationf("proof hash must not be empty")
	}
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.assignedCarrierOrder(txCtx, caller, orderID)
		if err != nil {
			return err
		}
		if order.Carrier.PickupTimestamp != nil {
			return domain.Statef("pickup for order %d already recorded", orderID)
		}
		if err := u.orderRepo.SetPickup(txCtx, orderID, proofHash, u.now()); err != nil {
			return err
		}
		return u.logEvent(txCtx, order, caller.Address, domain.EventPickupRecorded, proofHash)
	})
}

// RecordDelivery stamps the delivery time; requires a prior pickup.
func (u *CarrierUsecase) RecordDelivery(ctx context.Context, caller domain.Principal, orderID int64, proofHash string) error {
	if proofHash == "" {
		return domain.Validationf("proof hash must not be empty")
	}
	return u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.assignedCarrierOrder(txCtx, caller, orderID)
		if err != nil {
			return err
		}
		if order.Carrier.PickupTimestamp == nil {
			return domain.Statef("order %d has not been picked up", orderID)
		}
		if order.Carrier.DeliveredTimestamp != nil {
			return domain.Statef("delivery for order %d already recorded", orderID)
		}
		if err := u.orderRepo.SetDelivery(txCtx, orderID, proofHash, u.now()); err != nil {
			return err
		}
		return u.logEvent(txCtx, order, caller.Address, domain.EventDeliveryRecorded, proofHash)
	})
}

// assignedCarrierOrder locks the order and verifies the caller is the
// confirmed carrier of the leg.
func (u *CarrierUsecase) assignedCarrierOrder(ctx context.Context, caller domain.Principal, orderID int64) (*domain.Order, error) {
	order, err := u.orderRepo.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Carrier.Invited() || caller.Address != order.Carrier.CarrierAddress {
		return nil, domain.Authorizationf("caller is not the carrier of order %d", orderID)
	}
	if !order.Carrier.Accepted() {
		return nil, domain.Statef("carrier has not accepted the invitation for order %d", orderID)
	}
	return order, nil
}

func (u *CarrierUsecase) logEvent(ctx context.Context, order *domain.Order, actor, action, detail string) error {
	return u.orderRepo.AppendEvent(ctx, &domain.OrderEvent{
		OrderID:        order.ID,
		Actor:          actor,
		Action:         action,
		PreviousStatus: &order.PaymentStatus,
		NewStatus:      order.PaymentStatus,
		Reason:         &detail,
	})
}
