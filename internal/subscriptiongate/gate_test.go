package subscriptiongate

import (
	"errors"
	"testing"

	"github.com/salonkit/salonkit-server/internal/models"
)

func activeCompany() *models.Company {
	return &models.Company{
		ID:                 1,
		Active:             true,
		SubscriptionStatus: models.SubscriptionStatusActive,
	}
}

func TestEvaluate_ActiveAndTrialingAllowed(t *testing.T) {
	for _, status := range []string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing} {
		co := activeCompany()
		co.SubscriptionStatus = status
		if got := Evaluate(co); got.State != StateAllowed {
			t.Fatalf("status %s = %v, want allowed", status, got.State)
		}
	}
}

func TestEvaluate_AdminBlockBeatsBillingBlock(t *testing.T) {
	co := activeCompany()
	co.Blocked = true
	co.SubscriptionStatus = models.SubscriptionStatusPastDue

	got := Evaluate(co)
	if got.State != StateBlocked {
		t.Fatalf("state = %v, want blocked", got.State)
	}
	if got.Reason != ReasonAdminBlock {
		t.Fatalf("reason = %s, want admin_block", got.Reason)
	}
	if got.Retryable {
		t.Fatalf("admin block should not be retryable")
	}
}

func TestEvaluate_BillingStates(t *testing.T) {
	cases := []struct {
		status    string
		reason    Reason
		retryable bool
	}{
		{models.SubscriptionStatusPastDue, ReasonPastDue, true},
		{models.SubscriptionStatusPaymentFailed, ReasonPaymentFailed, true},
		{models.SubscriptionStatusCancelled, ReasonCancelled, false},
		{"", ReasonNoSubscription, true},
		{"garbage", ReasonNoSubscription, true},
	}
	for _, tc := range cases {
		co := activeCompany()
		co.SubscriptionStatus = tc.status
		got := Evaluate(co)
		if got.State != StateBlocked {
			t.Fatalf("status %q = %v, want blocked", tc.status, got.State)
		}
		if got.Reason != tc.reason {
			t.Fatalf("status %q reason = %s, want %s", tc.status, got.Reason, tc.reason)
		}
		if got.Retryable != tc.retryable {
			t.Fatalf("status %q retryable = %v, want %v", tc.status, got.Retryable, tc.retryable)
		}
	}
}

func TestEvaluate_InactiveCompanyBlocked(t *testing.T) {
	co := activeCompany()
	co.Active = false
	got := Evaluate(co)
	if got.State != StateBlocked || got.Reason != ReasonInactive {
		t.Fatalf("got %+v, want inactive block", got)
	}
}

func TestEvaluateSnapshot_FetchErrorNeverAllows(t *testing.T) {
	got := EvaluateSnapshot(activeCompany(), errors.New("connection refused"))
	if got.State != StateBlocked {
		t.Fatalf("fetch error = %v, want blocked", got.State)
	}
	if got.Reason != ReasonStatusUnavailable {
		t.Fatalf("reason = %s, want status_unavailable", got.Reason)
	}
	if !got.Retryable {
		t.Fatalf("fetch error block must be retryable")
	}
}

func TestEvaluate_NilCompanyBlocked(t *testing.T) {
	got := Evaluate(nil)
	if got.State != StateBlocked || got.Reason != ReasonStatusUnavailable {
		t.Fatalf("nil company = %+v, want status_unavailable block", got)
	}
}

func TestPending(t *testing.T) {
	if got := Pending(); got.State != StateLoading {
		t.Fatalf("pending = %v, want loading", got.State)
	}
}
