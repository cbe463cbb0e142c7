package entitlement

import (
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/salonkit/salonkit-server/internal/models"
	"github.com/salonkit/salonkit-server/internal/permissions"
)

func planWith(perms string, maxProfessionals int) *models.Plan {
	return &models.Plan{
		ID:               1,
		Name:             "Pro",
		MaxProfessionals: maxProfessionals,
		Permissions:      datatypes.JSON(perms),
		IsEnabled:        true,
	}
}

func TestHasPermission_NoPlanDeniesAllButSupport(t *testing.T) {
	r := NewResolver(nil, 0)
	for _, f := range permissions.All() {
		got := r.HasPermission(f)
		want := f == permissions.FeatureSupport
		if got != want {
			t.Fatalf("HasPermission(%s) = %v, want %v", f, got, want)
		}
	}
}

func TestHasPermission_DisabledPlanDenies(t *testing.T) {
	plan := planWith(`{"appointments":true}`, 0)
	plan.IsEnabled = false
	r := NewResolver(plan, 0)
	if r.HasPermission(permissions.FeatureAppointments) {
		t.Fatalf("disabled plan should deny")
	}
	if !r.HasPermission(permissions.FeatureSupport) {
		t.Fatalf("support stays visible on a disabled plan")
	}
}

func TestHasPermission_MissingKeyDenied(t *testing.T) {
	r := NewResolver(planWith(`{"appointments":true}`, 0), 0)
	if !r.HasPermission(permissions.FeatureAppointments) {
		t.Fatalf("granted key denied")
	}
	if r.HasPermission(permissions.FeatureFinancial) {
		t.Fatalf("missing key should be denied")
	}
}

func TestCanAddProfessional_AtLimit(t *testing.T) {
	plan := planWith(`{"professionals":true}`, 3)

	if r := NewResolver(plan, 2); !r.CanAddProfessional() {
		t.Fatalf("2 of 3 should allow adding")
	}
	if r := NewResolver(plan, 3); r.CanAddProfessional() {
		t.Fatalf("3 of 3 should refuse adding")
	}
}

func TestCanAddProfessional_UnlimitedPlan(t *testing.T) {
	r := NewResolver(planWith(`{"professionals":true}`, 0), 500)
	if !r.CanAddProfessional() {
		t.Fatalf("unlimited plan should always allow")
	}
	if info := r.ProfessionalsLimitInfo(); info != nil {
		t.Fatalf("unlimited plan should have no limit info, got %+v", info)
	}
}

func TestCheckAddProfessional_ReportsLimit(t *testing.T) {
	r := NewResolver(planWith(`{"professionals":true}`, 2), 2)
	err := r.CheckAddProfessional()
	if err == nil {
		t.Fatalf("expected limit error")
	}
	var limitErr *LimitReachedError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitReachedError, got %T", err)
	}
	if limitErr.Limit != 2 || limitErr.Current != 2 {
		t.Fatalf("limit error = %+v, want 2/2", limitErr)
	}
}

func TestCheck_LoadingIsPreserved(t *testing.T) {
	got := Check(Snapshot{Resolved: false}, permissions.FeatureDashboard)
	if got != DecisionLoading {
		t.Fatalf("unresolved snapshot = %v, want loading", got)
	}
}

func TestCheck_FetchErrorDenies(t *testing.T) {
	snap := Snapshot{Resolved: true, Err: errors.New("boom")}
	if got := Check(snap, permissions.FeatureDashboard); got != DecisionDenied {
		t.Fatalf("failed fetch = %v, want denied", got)
	}
	if got := Check(snap, permissions.FeatureSupport); got != DecisionAllowed {
		t.Fatalf("support on failed fetch = %v, want allowed", got)
	}
}

func TestCheck_ResolvedPlan(t *testing.T) {
	snap := Snapshot{Resolved: true, Plan: planWith(`{"clients":true}`, 0)}
	if got := Check(snap, permissions.FeatureClients); got != DecisionAllowed {
		t.Fatalf("granted feature = %v, want allowed", got)
	}
	if got := Check(snap, permissions.FeatureReports); got != DecisionDenied {
		t.Fatalf("missing feature = %v, want denied", got)
	}
}
