package models

import (
	"errors"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(NewAppError(KindTooLate, "cutoff passed")); got != KindTooLate {
		t.Errorf("expected %s, got %s", KindTooLate, got)
	}
	if got := KindOf(WrapAppError(KindGatewayUnavailable, "outage", errors.New("dial tcp"))); got != KindGatewayUnavailable {
		t.Errorf("expected %s, got %s", KindGatewayUnavailable, got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("expected plain errors to default to %s, got %s", KindInternal, got)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	inner := errors.New("context deadline exceeded")
	wrapped := WrapAppError(KindGatewayUnavailable, "failed to create payment intent", inner)
	if !errors.Is(wrapped, inner) {
		t.Error("expected wrapped error to match the inner error")
	}
	if !wrapped.Retryable() {
		t.Error("expected gateway unavailability to be retryable")
	}
	if NewAppError(KindGatewayRejected, "card declined").Retryable() {
		t.Error("expected a rejected payment not to be retryable")
	}
}
