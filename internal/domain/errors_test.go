package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", Validationf("quantity must be positive"), IsValidation},
		{"authorization", Authorizationf("caller is not the farmer"), IsAuthorization},
		{"state", Statef("escrow already released"), IsState},
		{"not found", NotFound("order", 42), IsNotFound},
		{"insufficient funds", &InsufficientFundsError{Address: "dist-1", Required: 125}, IsInsufficientFunds},
	}

	checks := []func(error) bool{IsValidation, IsAuthorization, IsState, IsNotFound, IsInsufficientFunds}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.check(tc.err))

			// Each error matches exactly one classifier.
			matches := 0
			for _, check := range checks {
				if check(tc.err) {
					matches++
				}
			}
			assert.Equal(t, 1, matches)
		})
	}
}

func TestErrorClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("place order: %w", Statef("order 7 acceptance already decided"))
	assert.True(t, IsState(err))
	assert.False(t, IsValidation(err))
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("harvest batch", 9)
	assert.Equal(t, "harvest batch not found: 9", err.Error())
}
