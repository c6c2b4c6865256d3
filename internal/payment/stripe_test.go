package payment

import (
	"errors"
	"testing"

	"github.com/joshua-takyi/seabay/internal/models"
	"github.com/stripe/stripe-go/v79"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{10, 1000},
		{10.5, 1050},
		{0.1, 10},
		{19.99, 1999},
		{76.50, 7650},
	}
	for _, tc := range cases {
		if got := MinorUnits(tc.amount); got != tc.want {
			t.Errorf("MinorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestMapIntentStatus(t *testing.T) {
	cases := []struct {
		status stripe.PaymentIntentStatus
		want   IntentStatus
	}{
		{stripe.PaymentIntentStatusSucceeded, IntentSucceeded},
		{stripe.PaymentIntentStatusCanceled, IntentFailed},
		{stripe.PaymentIntentStatusRequiresPaymentMethod, IntentRequiresAction},
		{stripe.PaymentIntentStatusRequiresConfirmation, IntentRequiresAction},
		{stripe.PaymentIntentStatusProcessing, IntentRequiresAction},
	}
	for _, tc := range cases {
		if got := mapIntentStatus(tc.status); got != tc.want {
			t.Errorf("mapIntentStatus(%s) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestMapStripeError(t *testing.T) {
	cardErr := &stripe.Error{Type: stripe.ErrorTypeCard}
	if kind := models.KindOf(mapStripeError(cardErr, "declined")); kind != models.KindGatewayRejected {
		t.Errorf("card error mapped to %s, want %s", kind, models.KindGatewayRejected)
	}

	invalidErr := &stripe.Error{Type: stripe.ErrorTypeInvalidRequest}
	if kind := models.KindOf(mapStripeError(invalidErr, "bad request")); kind != models.KindGatewayRejected {
		t.Errorf("invalid request mapped to %s, want %s", kind, models.KindGatewayRejected)
	}

	apiErr := &stripe.Error{Type: stripe.ErrorTypeAPI}
	if kind := models.KindOf(mapStripeError(apiErr, "outage")); kind != models.KindGatewayUnavailable {
		t.Errorf("API error mapped to %s, want %s", kind, models.KindGatewayUnavailable)
	}

	if kind := models.KindOf(mapStripeError(errors.New("dial tcp: timeout"), "network")); kind != models.KindGatewayUnavailable {
		t.Errorf("plain error mapped to %s, want %s", kind, models.KindGatewayUnavailable)
	}
}
