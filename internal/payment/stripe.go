package payment

import (
	"context"
	"errors"
	"time"

	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

const callTimeout = 15 * time.Second

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err, "failed to create payment intent")
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapIntentStatus(pi.Status),
	}, nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, mapStripeError(err, "failed to retrieve payment intent")
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapIntentStatus(pi.Status),
	}, nil
}

func (g *StripeGateway) RefundIntent(ctx context.Context, intentID string, amountMinorUnits int64) (*Refund, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amountMinorUnits),
	}

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, mapStripeError(err, "failed to refund payment intent")
	}

	return &Refund{ID: refund.ID}, nil
}

func mapIntentStatus(status stripe.PaymentIntentStatus) IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return IntentSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return IntentFailed
	default:
		return IntentRequiresAction
	}
}

// mapStripeError folds Stripe's error types into the taxonomy. Invalid
// requests and declined cards are caller-fault and terminal; everything
// else (API outage, timeout, network) is retryable.
func mapStripeError(err error, message string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeInvalidRequest, stripe.ErrorTypeCard:
			return models.WrapAppError(models.KindGatewayRejected, message, err)
		}
	}
	return models.WrapAppError(models.KindGatewayUnavailable, message, err)
}
