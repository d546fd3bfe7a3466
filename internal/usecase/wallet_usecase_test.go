package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daliah-backend/internal/domain"
)

func TestWallet(t *testing.T) {
	ctx := context.Background()
	caller := domain.Principal{Address: "dist-1", Role: domain.RoleDistributor}

	t.Run("unknown accounts read as zero", func(t *testing.T) {
		store := newMemStore()
		uc := NewWalletUsecase(store.ledgerRepo())

		view, err := uc.GetWallet(ctx, caller)
		require.NoError(t, err)
		assert.Equal(t, int64(0), view.Balance)
		assert.Equal(t, int64(0), view.EscrowAllowance)
	})

	t.Run("approve replaces the allowance", func(t *testing.T) {
		store := newMemStore()
		store.balances[caller.Address] = 500
		uc := NewWalletUsecase(store.ledgerRepo())

		view, err := uc.Approve(ctx, caller, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(300), view.EscrowAllowance)
		assert.Equal(t, int64(500), view.Balance)

		view, err = uc.Approve(ctx, caller, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(100), view.EscrowAllowance, "approve overwrites, it does not add")
	})

	t.Run("negative allowance is rejected", func(t *testing.T) {
		store := newMemStore()
		uc := NewWalletUsecase(store.ledgerRepo())

		_, err := uc.Approve(ctx, caller, -1)
		assert.True(t, domain.IsValidation(err))
	})
}
