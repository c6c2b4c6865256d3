package payment

import (
	"context"
	"math"
)

// IntentStatus is the reduced payment-intent state the booking flow cares
// about. Gateway-specific intermediate states collapse into requires_action.
type IntentStatus string

const (
	IntentRequiresAction IntentStatus = "requires_action"
	IntentSucceeded      IntentStatus = "succeeded"
	IntentFailed         IntentStatus = "failed"
)

type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
}

type Refund struct {
	ID string
}

// Gateway is the narrow contract to the external card processor. All
// amounts are integer minor currency units.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	RefundIntent(ctx context.Context, intentID string, amountMinorUnits int64) (*Refund, error)
}

// MinorUnits converts a decimal amount to integer cents. Rounding here is
// the only place float money touches the gateway boundary.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
