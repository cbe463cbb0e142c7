// Package subscriptiongate decides whether a tenant's application access is
// allowed, blocked, or still unresolved. Evaluation is a pure read over a
// company snapshot; each request re-evaluates from scratch.
package subscriptiongate

import (
	"github.com/salonkit/salonkit-server/internal/models"
)

// State is the gate outcome for one evaluation.
type State int

// Gate states.
const (
	// StateLoading means the subscription snapshot is not resolved yet.
	StateLoading State = iota
	// StateAllowed renders the application normally.
	StateAllowed
	// StateBlocked renders the full-screen blocked view.
	StateBlocked
)

// String returns the wire name of a state.
func (s State) String() string {
	switch s {
	case StateAllowed:
		return "allowed"
	case StateBlocked:
		return "blocked"
	default:
		return "loading"
	}
}

// Reason explains a blocked outcome.
type Reason string

// Block reasons, ordered by precedence: the administrative block always wins
// over billing-derived blocks.
const (
	// ReasonAdminBlock means a platform admin blocked the company.
	ReasonAdminBlock Reason = "admin_block"
	// ReasonInactive means the company account is deactivated.
	ReasonInactive Reason = "inactive"
	// ReasonPastDue means the subscription payment is overdue.
	ReasonPastDue Reason = "past_due"
	// ReasonPaymentFailed means the last charge attempt failed.
	ReasonPaymentFailed Reason = "payment_failed"
	// ReasonCancelled means the subscription was cancelled.
	ReasonCancelled Reason = "cancelled"
	// ReasonNoSubscription means no usable subscription state exists.
	ReasonNoSubscription Reason = "no_subscription"
	// ReasonStatusUnavailable means the status could not be loaded. The gate
	// never fails open, so this still blocks, but it is retryable.
	ReasonStatusUnavailable Reason = "status_unavailable"
)

// Result is a gate evaluation outcome.
type Result struct {
	State     State  // Gate state.
	Reason    Reason // Populated when blocked.
	Retryable bool   // True when a fresh fetch may clear the block.
}

// Pending returns the unresolved gate result.
func Pending() Result {
	return Result{State: StateLoading}
}

// Evaluate derives the gate state from a company row. The administrative
// block is checked before any billing-derived state.
func Evaluate(company *models.Company) Result {
	if company == nil {
		return Result{State: StateBlocked, Reason: ReasonStatusUnavailable, Retryable: true}
	}
	if company.Blocked {
		return Result{State: StateBlocked, Reason: ReasonAdminBlock}
	}
	if !company.Active {
		return Result{State: StateBlocked, Reason: ReasonInactive}
	}

	switch company.SubscriptionStatus {
	case models.SubscriptionStatusActive, models.SubscriptionStatusTrialing:
		return Result{State: StateAllowed}
	case models.SubscriptionStatusPastDue:
		return Result{State: StateBlocked, Reason: ReasonPastDue, Retryable: true}
	case models.SubscriptionStatusPaymentFailed:
		return Result{State: StateBlocked, Reason: ReasonPaymentFailed, Retryable: true}
	case models.SubscriptionStatusCancelled:
		return Result{State: StateBlocked, Reason: ReasonCancelled}
	default:
		return Result{State: StateBlocked, Reason: ReasonNoSubscription, Retryable: true}
	}
}

// EvaluateSnapshot folds a fetch error into the evaluation. A failed fetch
// never yields StateAllowed.
func EvaluateSnapshot(company *models.Company, fetchErr error) Result {
	if fetchErr != nil {
		return Result{State: StateBlocked, Reason: ReasonStatusUnavailable, Retryable: true}
	}
	return Evaluate(company)
}
