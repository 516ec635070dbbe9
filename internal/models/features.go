package models

// Feature flag names. The set is fixed; unknown names always read as false.
const (
	FeatureLaborTracking = "labor_tracking"
	FeatureInventory     = "inventory"
	FeatureMessaging     = "messaging"
	FeatureInvoicing     = "invoicing"
	FeatureAIAssistant   = "ai_assistant"
)

// FlagState records where a flag set came from, so a missing backing column
// is observable instead of silently passing for intended defaults.
type FlagState string

const (
	FlagsMaterialized   FlagState = "materialized"
	FlagsDefaults       FlagState = "defaults"
	FlagsSchemaNotReady FlagState = "schema_not_ready"
)

type FeatureFlags struct {
	OrgID string          `json:"org_id"`
	State FlagState       `json:"state"`
	Flags map[string]bool `json:"flags"`
}

// DefaultFeatureFlags returns the hardcoded flag set used whenever the
// backing store has nothing materialized for an org.
func DefaultFeatureFlags(orgID string, state FlagState) FeatureFlags {
	return FeatureFlags{
		OrgID: orgID,
		State: state,
		Flags: map[string]bool{
			FeatureLaborTracking: true,
			FeatureMessaging:     true,
			FeatureInventory:     false,
			FeatureInvoicing:     false,
			FeatureAIAssistant:   false,
		},
	}
}

func (f FeatureFlags) HasFeature(name string) bool {
	return f.Flags[name]
}
