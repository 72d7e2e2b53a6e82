package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags toggles optional behaviour. Every flag can be overridden with
// FEATURE_<NAME>=true|false, and per user at runtime.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	userOverrides map[int64]map[string]bool // staff user id -> feature -> enabled
}

// Feature is a single flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// Predefined feature flag names.
const (
	FeatureAlertsWellbeing  = "alerts.wellbeing"  // high-stress survey alerts
	FeatureAlertsAttendance = "alerts.attendance" // consecutive absence alerts
	FeatureAlertsAcademic   = "alerts.academic"   // failing or missing coursework alerts

	FeatureSummaryCache = "analytics.summary_cache" // cache summaries in Redis when available
)

// LoadFeatureFlags builds the flag set from defaults and the environment.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[int64]map[string]bool),
	}
	ff.initializeDefaults()
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	for _, f := range []Feature{
		{Name: FeatureAlertsWellbeing, Description: "Raise alerts for high-stress surveys", Enabled: true},
		{Name: FeatureAlertsAttendance, Description: "Raise alerts for consecutive absences", Enabled: true},
		{Name: FeatureAlertsAcademic, Description: "Raise alerts for failing or missing coursework", Enabled: true},
		{Name: FeatureSummaryCache, Description: "Cache performance summaries", Enabled: true},
	} {
		ff.features[f.Name] = &f
	}
}

// loadFromEnvironment applies FEATURE_<NAME> overrides. Unparsable values
// are ignored.
// Example: FEATURE_ALERTS_ACADEMIC=false
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}
		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
		}
	}
}

// featureNameToEnvKey converts a feature name to its environment key.
// "alerts.wellbeing" -> "FEATURE_ALERTS_WELLBEING"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled reports whether a feature is on. A non-zero userID consults that
// user's overrides first. Unknown features are off.
func (ff *FeatureFlags) IsEnabled(featureName string, userID int64) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if userID != 0 {
		if overrides, ok := ff.userOverrides[userID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	return ok && feature.Enabled
}

// SetEnabled switches a known feature for everyone.
func (ff *FeatureFlags) SetEnabled(featureName string, enabled bool) bool {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if ok {
		feature.Enabled = enabled
	}
	return ok
}

// SetUserOverride sets a feature override for a specific user.
func (ff *FeatureFlags) SetUserOverride(userID int64, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID int64) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// List returns every feature sorted by name.
func (ff *FeatureFlags) List() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
