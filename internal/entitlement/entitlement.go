// Package entitlement resolves what a tenant company may do based on its
// assigned plan. The resolver is a pure read over an already-loaded snapshot;
// it never queries the database and never fails.
package entitlement

import (
	"fmt"

	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/permissions"
)

// Decision is the tri-state outcome of a permission check.
type Decision int

// Decision values. Loading is distinct from Denied so callers can render a
// neutral placeholder instead of flashing a false denial while data loads.
const (
	// DecisionLoading means the plan snapshot is not resolved yet.
	DecisionLoading Decision = iota
	// DecisionAllowed grants the feature.
	DecisionAllowed
	// DecisionDenied refuses the feature.
	DecisionDenied
)

// String returns the wire name of a decision.
func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "allowed"
	case DecisionDenied:
		return "denied"
	default:
		return "loading"
	}
}

// Resolver answers permission checks for one company snapshot.
type Resolver struct {
	plan              *models.Plan
	set               permissions.Set
	professionalCount int
}

// NewResolver builds a resolver from the company's assigned plan (nil when no
// plan is assigned) and its current active professional headcount.
func NewResolver(plan *models.Plan, professionalCount int) *Resolver {
	r := &Resolver{plan: plan, professionalCount: professionalCount}
	if plan != nil {
		r.set = permissions.ParseSet(plan.Permissions)
	}
	return r
}

// HasPermission reports whether the feature is granted. With no plan assigned
// everything except the always-visible set is denied; with a plan, missing
// keys are denied (fail-closed).
func (r *Resolver) HasPermission(f permissions.Feature) bool {
	if permissions.AlwaysVisible(f) {
		return true
	}
	if r == nil || r.plan == nil {
		return false
	}
	if !r.plan.IsEnabled {
		return false
	}
	return r.set.Has(f)
}

// PermissionMap returns the resolved grant per known feature key.
func (r *Resolver) PermissionMap() map[permissions.Feature]bool {
	out := make(map[permissions.Feature]bool, len(permissions.All()))
	for _, f := range permissions.All() {
		out[f] = r.HasPermission(f)
	}
	return out
}

// LimitInfo describes the professional headcount limit for a plan.
type LimitInfo struct {
	Limit   int `json:"limit"`   // Configured maximum.
	Current int `json:"current"` // Active professionals today.
}

// ProfessionalsLimitInfo returns the headcount limit, or nil when the company
// has no plan or the plan is unlimited.
func (r *Resolver) ProfessionalsLimitInfo() *LimitInfo {
	if r == nil || r.plan == nil || r.plan.MaxProfessionals <= 0 {
		return nil
	}
	return &LimitInfo{Limit: r.plan.MaxProfessionals, Current: r.professionalCount}
}

// CanAddProfessional reports whether one more professional fits the plan.
// Requires the professionals feature; unlimited plans always fit.
func (r *Resolver) CanAddProfessional() bool {
	if !r.HasPermission(permissions.FeatureProfessionals) {
		return false
	}
	info := r.ProfessionalsLimitInfo()
	if info == nil {
		return true
	}
	return info.Current < info.Limit
}

// LimitReachedError reports a refused professional creation, carrying the
// configured limit and current count for the user-facing message.
type LimitReachedError struct {
	Limit   int
	Current int
}

// Error formats the limit violation.
func (e *LimitReachedError) Error() string {
	return fmt.Sprintf("professional limit reached: %d of %d in use", e.Current, e.Limit)
}

// CheckAddProfessional returns a LimitReachedError when the plan headcount is
// exhausted, nil otherwise.
func (r *Resolver) CheckAddProfessional() error {
	if r.CanAddProfessional() {
		return nil
	}
	info := r.ProfessionalsLimitInfo()
	if info == nil {
		// Denied by the permission map rather than the headcount.
		return &LimitReachedError{Limit: 0, Current: r.professionalCount}
	}
	return &LimitReachedError{Limit: info.Limit, Current: info.Current}
}

// Snapshot carries plan data through its asynchronous load. Resolved is false
// while the fetch is in flight; Err records a failed fetch.
type Snapshot struct {
	Resolved          bool
	Err               error
	Plan              *models.Plan
	ProfessionalCount int
}

// Check evaluates a feature against a snapshot, preserving the loading state
// so callers never render a false denial mid-fetch.
func Check(snap Snapshot, f permissions.Feature) Decision {
	if !snap.Resolved {
		return DecisionLoading
	}
	if snap.Err != nil {
		// A failed load denies everything except always-visible features.
		if permissions.AlwaysVisible(f) {
			return DecisionAllowed
		}
		return DecisionDenied
	}
	if NewResolver(snap.Plan, snap.ProfessionalCount).HasPermission(f) {
		return DecisionAllowed
	}
	return DecisionDenied
}
