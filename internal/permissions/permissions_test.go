package permissions

import "testing"

func TestParseSet_DropsUnknownKeys(t *testing.T) {
	raw := []byte(`{"appointments":true,"teleportation":true,"clients":false}`)
	set := ParseSet(raw)

	if !set.Has(FeatureAppointments) {
		t.Fatalf("expected appointments granted")
	}
	if set.Has(FeatureClients) {
		t.Fatalf("expected clients denied")
	}
	if _, exists := set[Feature("teleportation")]; exists {
		t.Fatalf("unknown key should be dropped")
	}
}

func TestParseSet_MalformedDeniesEverything(t *testing.T) {
	set := ParseSet([]byte(`{"appointments": "yes"`))
	for _, f := range All() {
		if set.Has(f) {
			t.Fatalf("malformed input should deny %s", f)
		}
	}
}

func TestHas_MissingKeyDenied(t *testing.T) {
	set := ParseSet([]byte(`{"dashboard":true}`))
	if set.Has(FeatureFinancial) {
		t.Fatalf("missing key should be denied")
	}
	if !set.Has(FeatureDashboard) {
		t.Fatalf("present key should be granted")
	}
}

func TestNormalize_FillsAllKeys(t *testing.T) {
	set := Set{FeatureReports: true}.Normalize()
	if len(set) != len(All()) {
		t.Fatalf("normalized set has %d keys, want %d", len(set), len(All()))
	}
	if !set[FeatureReports] {
		t.Fatalf("expected reports granted")
	}
	if set[FeatureInventory] {
		t.Fatalf("expected inventory denied by default")
	}
}

func TestValidateKeys(t *testing.T) {
	if err := ValidateKeys(map[string]bool{"coupons": true, "tasks": false}); err != nil {
		t.Fatalf("valid keys rejected: %v", err)
	}
	if err := ValidateKeys(map[string]bool{"coupons": true, "warp": true}); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestAlwaysVisible(t *testing.T) {
	if !AlwaysVisible(FeatureSupport) {
		t.Fatalf("support must be always visible")
	}
	for _, f := range All() {
		if f != FeatureSupport && AlwaysVisible(f) {
			t.Fatalf("%s should not be always visible", f)
		}
	}
}
