package usecase

import (
	"context"

	"daliah-backend/internal/domain"
)

// DisputeUsecase is the append-only damage log. Any authenticated party can
// file a case against an existing order; cases are never edited or deleted.
type DisputeUsecase struct {
	disputeRepo domain.DisputeRepository
	orderRepo   domain.OrderRepository
	txManager   domain.TransactionManager
}

func NewDisputeUsecase(disputeRepo domain.DisputeRepository, orderRepo domain.OrderRepository, txManager domain.TransactionManager) *DisputeUsecase {
	return &DisputeUsecase{
		disputeRepo: disputeRepo,
		orderRepo:   orderRepo,
		txManager:   txManager,
	}
}

// ReportDamage appends a damage report and returns its case index. The order
// row is locked so concurrent reports on the same order receive distinct,
// consecutive indices.
func (u *DisputeUsecase) ReportDamage(ctx context.Context, caller domain.Principal, orderID int64, description, proofHash string) (*domain.DamageReport, error) {
	if description == "" {
		return nil, domain.Validationf("description must not be empty")
	}
	if proofHash == "" {
		return nil, domain.Validationf("proof hash must not be empty")
	}

	report := &domain.DamageReport{
		OrderID:         orderID,
		Description:     description,
		ProofHash:       proofHash,
		ReporterAddress: caller.Address,
	}
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByIDForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if _, err := u.disputeRepo.Append(txCtx, report); err != nil {
			return err
		}
		return u.orderRepo.AppendEvent(txCtx, &domain.OrderEvent{
			OrderID:        orderID,
			Actor:          caller.Address,
			Action:         domain.EventDamageReported,
			PreviousStatus: &order.PaymentStatus,
			NewStatus:      order.PaymentStatus,
			Reason:         &description,
		})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// GetDamages is a pure read; reports come back in insertion order.
func (u *DisputeUsecase) GetDamages(ctx context.Context, orderID int64) ([]domain.DamageReport, error) {
	if _, err := u.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return u.disputeRepo.ListByOrder(ctx, orderID)
}
