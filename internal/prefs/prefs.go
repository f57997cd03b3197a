// Package prefs enumerates the named application preferences shown in the
// General group of the settings modal.
package prefs

// Key identifies a named preference.
type Key string

const (
	// PrettyName shows formatted flag titles instead of raw keys.
	PrettyName Key = "pretty_name"
	// ShowFeatureHints shows the onboarding hints tour on the main screen.
	ShowFeatureHints Key = "show_feature_hints"
)

// Preference describes a named preference for display.
type Preference struct {
	Key         Key
	Name        string
	Description string
}

var all = []Preference{
	{
		Key:         PrettyName,
		Name:        "Pretty name",
		Description: "Display a formatted version of each flag's key",
	},
	{
		Key:         ShowFeatureHints,
		Name:        "Show feature hints",
		Description: "Show the onboarding hints tour on the main screen",
	},
}

// All returns every preference in display order.
func All() []Preference {
	out := make([]Preference, len(all))
	copy(out, all)
	return out
}

// Lookup returns the preference for key.
func Lookup(key Key) (Preference, bool) {
	for _, p := range all {
		if p.Key == key {
			return p, true
		}
	}
	return Preference{}, false
}

// IsKnown reports whether key is a named preference.
func IsKnown(key Key) bool {
	_, ok := Lookup(key)
	return ok
}
