package permissions

import (
	"encoding/json"
	"fmt"
)

// Feature identifies a gated feature area of the application.
type Feature string

// Feature constants define the closed set of permission keys. Adding a
// feature means adding a constant here and to the features slice.
const (
	FeatureDashboard     Feature = "dashboard"
	FeatureAppointments  Feature = "appointments"
	FeatureServices      Feature = "services"
	FeatureProfessionals Feature = "professionals"
	FeatureClients       Feature = "clients"
	FeatureReviews       Feature = "reviews"
	FeatureTasks         Feature = "tasks"
	FeaturePointsProgram Feature = "pointsProgram"
	FeatureLoyalty       Feature = "loyalty"
	FeatureInventory     Feature = "inventory"
	FeatureMessages      Feature = "messages"
	FeatureCoupons       Feature = "coupons"
	FeatureFinancial     Feature = "financial"
	FeatureReports       Feature = "reports"
	FeatureSettings      Feature = "settings"
	FeatureSupport       Feature = "support"
)

// features is the ordered list of all known feature keys.
var features = []Feature{
	FeatureDashboard,
	FeatureAppointments,
	FeatureServices,
	FeatureProfessionals,
	FeatureClients,
	FeatureReviews,
	FeatureTasks,
	FeaturePointsProgram,
	FeatureLoyalty,
	FeatureInventory,
	FeatureMessages,
	FeatureCoupons,
	FeatureFinancial,
	FeatureReports,
	FeatureSettings,
	FeatureSupport,
}

// featureSet provides fast membership checks.
var featureSet = func() map[Feature]struct{} {
	out := make(map[Feature]struct{}, len(features))
	for _, f := range features {
		out[f] = struct{}{}
	}
	return out
}()

// All returns a copy of the full feature key list.
func All() []Feature {
	out := make([]Feature, len(features))
	copy(out, features)
	return out
}

// Valid reports whether the key belongs to the known feature set.
func Valid(f Feature) bool {
	_, ok := featureSet[f]
	return ok
}

// AlwaysVisible reports whether the feature is shown regardless of plan.
// Support and subscription management must stay reachable even for companies
// with no plan, so tenants can resolve billing problems.
func AlwaysVisible(f Feature) bool {
	return f == FeatureSupport
}

// Set maps feature keys to granted flags. Missing keys are denied.
type Set map[Feature]bool

// ParseSet decodes a stored permission map. Unknown keys are dropped and
// malformed input yields an empty, fully-denied set.
func ParseSet(raw []byte) Set {
	out := make(Set, len(features))
	if len(raw) == 0 {
		return out
	}
	var decoded map[string]bool
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return out
	}
	for key, granted := range decoded {
		f := Feature(key)
		if !Valid(f) {
			continue
		}
		out[f] = granted
	}
	return out
}

// Has reports whether the feature is granted. Missing keys are denied.
func (s Set) Has(f Feature) bool {
	if s == nil {
		return false
	}
	return s[f]
}

// Normalize returns a set with every known key present, defaulting to denied.
func (s Set) Normalize() Set {
	out := make(Set, len(features))
	for _, f := range features {
		out[f] = s.Has(f)
	}
	return out
}

// Marshal serializes a normalized permission map to JSON.
func (s Set) Marshal() ([]byte, error) {
	normalized := s.Normalize()
	out := make(map[string]bool, len(normalized))
	for f, granted := range normalized {
		out[string(f)] = granted
	}
	return json.Marshal(out)
}

// ValidateKeys checks that every key in a request payload is a known feature.
func ValidateKeys(raw map[string]bool) error {
	for key := range raw {
		if !Valid(Feature(key)) {
			return fmt.Errorf("invalid permission key: %s", key)
		}
	}
	return nil
}

// FromRequest builds a Set from a request payload of string keys.
func FromRequest(raw map[string]bool) Set {
	out := make(Set, len(raw))
	for key, granted := range raw {
		f := Feature(key)
		if !Valid(f) {
			continue
		}
		out[f] = granted
	}
	return out
}
