package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daliah-backend/internal/domain"
)

type carrierFixture struct {
	*orderFixture
	carrierUC *CarrierUsecase
	carrier   domain.Principal
	orderID   int64
}

func newCarrierFixture(t *testing.T) *carrierFixture {
	t.Helper()
	base := newOrderFixture(t)

	carrier := domain.Principal{Address: "carrier-1", Role: domain.RoleCarrier}
	require.NoError(t, base.store.CreateProfile(context.Background(), &domain.Profile{
		Address: carrier.Address,
		Role:    domain.RoleCarrier,
		Name:    "Carrier One",
	}))

	order := base.place(t, 10)

	return &carrierFixture{
		orderFixture: base,
		carrierUC:    NewCarrierUsecase(base.store.orderRepo(), base.store.profileRepo(), passTx{}),
		carrier:      carrier,
		orderID:      order.ID,
	}
}

func TestInviteCarrier(t *testing.T) {
	ctx := context.Background()

	t.Run("distributor invites a registered carrier", func(t *testing.T) {
		fx := newCarrierFixture(t)

		err := fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, fx.carrier.Address)
		require.NoError(t, err)

		order, _ := fx.store.GetByID(ctx, fx.orderID)
		assert.Equal(t, fx.carrier.Address, order.Carrier.CarrierAddress)
		assert.False(t, order.Carrier.Accepted())
	})

	t.Run("only the order's distributor may invite", func(t *testing.T) {
		fx := newCarrierFixture(t)
		err := fx.carrierUC.InviteCarrier(ctx, fx.farmer, fx.orderID, fx.carrier.Address)
		assert.True(t, domain.IsAuthorization(err))
	})

	t.Run("invitation is write-once", func(t *testing.T) {
		fx := newCarrierFixture(t)
		require.NoError(t, fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, fx.carrier.Address))

		err := fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, fx.carrier.Address)
		assert.True(t, domain.IsState(err))
	})

	t.Run("invitee must be registered as a carrier", func(t *testing.T) {
		fx := newCarrierFixture(t)

		err := fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, "nobody")
		assert.True(t, domain.IsNotFound(err))

		require.NoError(t, fx.store.CreateProfile(ctx, &domain.Profile{
			Address: fx.farmer.Address, Role: domain.RoleFarmer, Name: "Farmer One",
		}))
		err = fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, fx.farmer.Address)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestAcceptInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("invited carrier accepts with name and plate", func(t *testing.T) {
		fx := newCarrierFixture(t)
		require.NoError(t, fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, fx.carrier.Address))

		err := fx.carrierUC.AcceptInvitation(ctx, fx.carrier, fx.orderID, "Carrier One", "DHK-1122")
		require.NoError(t, err)

		order, _ := fx.store.GetByID(ctx, fx.orderID)
		assert.True(t, order.Carrier.Accepted())
		assert.Equal(t, "DHK-1122", order.Carrier.CarPlateNumber)

		// Acceptance is write-once.
		err = fx.carrierUC.AcceptInvitation(ctx, fx.carrier, fx.orderID, "Other", "XYZ-1")
		assert.True(t, domain.IsState(err))
	})

	t.Run("requires an invitation", func(t *testing.T) {
		fx := newCarrierFixture(t)
		err := fx.carrierUC.AcceptInvitation(ctx, fx.carrier, fx.orderID, "Carrier One", "DHK-1122")
		assert.True(t, domain.IsState(err))
	})

	t.Run("only the invited carrier may accept", func(t *testing.T) {
		fx := newCarrierFixture(t)
		require.NoError(t, fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, fx.carrier.Address))

		other := domain.Principal{Address: "carrier-2", Role: domain.RoleCarrier}
		err := fx.carrierUC.AcceptInvitation(ctx, other, fx.orderID, "Carrier Two", "DHK-9")
		assert.True(t, domain.IsAuthorization(err))
	})

	t.Run("empty name or plate is rejected", func(t *testing.T) {
		fx := newCarrierFixture(t)
		err := fx.carrierUC.AcceptInvitation(ctx, fx.carrier, fx.orderID, "", "DHK-1122")
		assert.True(t, domain.IsValidation(err))
	})
}

func TestLogisticsLeg(t *testing.T) {
	ctx := context.Background()

	accepted := func(t *testing.T) *carrierFixture {
		fx := newCarrierFixture(t)
		require.NoError(t, fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, fx.carrier.Address))
		require.NoError(t, fx.carrierUC.AcceptInvitation(ctx, fx.carrier, fx.orderID, "Carrier One", "DHK-1122"))
		return fx
	}

	t.Run("temperature, pickup and delivery in order", func(t *testing.T) {
		fx := accepted(t)

		require.NoError(t, fx.carrierUC.LogVehicleTemperature(ctx, fx.carrier, fx.orderID, 4.5, "hash-temp"))
		require.NoError(t, fx.carrierUC.RecordPickup(ctx, fx.carrier, fx.orderID, "hash-pickup"))
		require.NoError(t, fx.carrierUC.RecordDelivery(ctx, fx.carrier, fx.orderID, "hash-delivery"))

		order, _ := fx.store.GetByID(ctx, fx.orderID)
		require.NotNil(t, order.Carrier.VehicleTemperature)
		assert.Equal(t, 4.5, *order.Carrier.VehicleTemperature)
		assert.NotNil(t, order.Carrier.PickupTimestamp)
		assert.NotNil(t, order.Carrier.DeliveredTimestamp)

		events, _ := fx.store.GetEvents(ctx, fx.orderID)
		var actions []string
		for _, e := range events {
			actions = append(actions, e.Action)
		}
		assert.Contains(t, actions, domain.EventTemperatureLogged)
		assert.Contains(t, actions, domain.EventPickupRecorded)
		assert.Contains(t, actions, domain.EventDeliveryRecorded)
	})

	t.Run("each step is write-once", func(t *testing.T) {
		fx := accepted(t)
		require.NoError(t, fx.carrierUC.LogVehicleTemperature(ctx, fx.carrier, fx.orderID, 4.5, "hash-temp"))
		require.NoError(t, fx.carrierUC.RecordPickup(ctx, fx.carrier, fx.orderID, "hash-pickup"))
		require.NoError(t, fx.carrierUC.RecordDelivery(ctx, fx.carrier, fx.orderID, "hash-delivery"))

		assert.True(t, domain.IsState(fx.carrierUC.LogVehicleTemperature(ctx, fx.carrier, fx.orderID, 3.0, "h")))
		assert.True(t, domain.IsState(fx.carrierUC.RecordPickup(ctx, fx.carrier, fx.orderID, "h")))
		assert.True(t, domain.IsState(fx.carrierUC.RecordDelivery(ctx, fx.carrier, fx.orderID, "h")))
	})

	t.Run("delivery requires a prior pickup", func(t *testing.T) {
		fx := accepted(t)
		err := fx.carrierUC.RecordDelivery(ctx, fx.carrier, fx.orderID, "hash-delivery")
		assert.True(t, domain.IsState(err))
	})

	t.Run("progress requires an accepted invitation", func(t *testing.T) {
		fx := newCarrierFixture(t)
		require.NoError(t, fx.carrierUC.InviteCarrier(ctx, fx.distributor, fx.orderID, fx.carrier.Address))

		err := fx.carrierUC.RecordPickup(ctx, fx.carrier, fx.orderID, "hash-pickup")
		assert.True(t, domain.IsState(err))
	})

	t.Run("only the assigned carrier may log progress", func(t *testing.T) {
		fx := accepted(t)
		other := domain.Principal{Address: "carrier-2", Role: domain.RoleCarrier}

		err := fx.carrierUC.RecordPickup(ctx, other, fx.orderID, "hash-pickup")
		assert.True(t, domain.IsAuthorization(err))
	})

	t.Run("an empty proof hash is rejected", func(t *testing.T) {
		fx := accepted(t)
		assert.True(t, domain.IsValidation(fx.carrierUC.RecordPickup(ctx, fx.carrier, fx.orderID, "")))
		assert.True(t, domain.IsValidation(fx.carrierUC.LogVehicleTemperature(ctx, fx.carrier, fx.orderID, 4.5, "")))
	})
}
