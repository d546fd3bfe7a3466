package domain

import (
	"context"
	"time"
)

type ContextKey string

const PrincipalContextKey ContextKey = "principal"

// Principal is the authenticated caller threaded through every operation.
// Authorization is address comparison against the stored role addresses; no
// further identity verification happens here.
type Principal struct {
	Address string `json:"address"`
	Role    string `json:"role"`
}

// Profile is a registered marketplace participant.
type Profile struct {
	Address         string    `json:"address"`
	Role            string    `json:"role"`
	Name            string    `json:"name"`
	PhysicalAddress string    `json:"physicalAddress"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByAddress(ctx context.Context, address string) (*Profile, error)
	Exists(ctx context.Context, address string) (bool, error)
}
