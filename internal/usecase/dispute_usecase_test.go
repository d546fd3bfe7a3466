package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daliah-backend/internal/domain"
)

func newDisputeFixture(t *testing.T) (*orderFixture, *DisputeUsecase, int64) {
	t.Helper()
	fx := newOrderFixture(t)
	order := fx.place(t, 10)
	uc := NewDisputeUsecase(fx.store.disputeRepo(), fx.store.orderRepo(), passTx{})
	return fx, uc, order.ID
}

// Scenario: multiple parties file damage cases against the same order and
// the log stays append-only with consecutive case indices.
func TestReportDamage(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns consecutive case indices", func(t *testing.T) {
		fx, uc, orderID := newDisputeFixture(t)
		carrier := domain.Principal{Address: "carrier-1", Role: domain.RoleCarrier}

		first, err := uc.ReportDamage(ctx, fx.distributor, orderID, "three crates crushed", "hash-1")
		require.NoError(t, err)
		assert.Equal(t, 0, first.CaseIndex)

		second, err := uc.ReportDamage(ctx, carrier, orderID, "cold chain broken in transit", "hash-2")
		require.NoError(t, err)
		assert.Equal(t, 1, second.CaseIndex)

		reports, err := uc.GetDamages(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, fx.distributor.Address, reports[0].ReporterAddress)
		assert.Equal(t, carrier.Address, reports[1].ReporterAddress)
		assert.Equal(t, "three crates crushed", reports[0].Description)
	})

	t.Run("requires description and proof hash", func(t *testing.T) {
		fx, uc, orderID := newDisputeFixture(t)

		_, err := uc.ReportDamage(ctx, fx.distributor, orderID, "", "hash-1")
		assert.True(t, domain.IsValidation(err))

		_, err = uc.ReportDamage(ctx, fx.distributor, orderID, "crushed", "")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("requires an existing order", func(t *testing.T) {
		fx, uc, _ := newDisputeFixture(t)
		_, err := uc.ReportDamage(ctx, fx.distributor, 999, "crushed", "hash-1")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("reporting never changes the payment status", func(t *testing.T) {
		fx, uc, orderID := newDisputeFixture(t)

		before, _ := fx.store.GetByID(ctx, orderID)
		_, err := uc.ReportDamage(ctx, fx.distributor, orderID, "crushed", "hash-1")
		require.NoError(t, err)
		after, _ := fx.store.GetByID(ctx, orderID)

		assert.Equal(t, before.PaymentStatus, after.PaymentStatus)

		events, _ := fx.store.GetEvents(ctx, orderID)
		last := events[len(events)-1]
		assert.Equal(t, domain.EventDamageReported, last.Action)
		assert.Equal(t, before.PaymentStatus, last.NewStatus)
	})
}

func TestGetDamages(t *testing.T) {
	ctx := context.Background()
	_, uc, orderID := newDisputeFixture(t)

	reports, err := uc.GetDamages(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, reports)

	_, err = uc.GetDamages(ctx, 999)
	assert.True(t, domain.IsNotFound(err))
}
