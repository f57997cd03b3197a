// Package hints implements the onboarding tour shown on the main screen.
// Progress lives in the persisted preference store so it survives reloads.
package hints

import "fmt"

// Namespace and StepKey locate the tour progress in the preference store.
const (
	Namespace = "flagdeck"
	StepKey   = "featureHintsStep"
)

// Hint is one step of the tour.
type Hint struct {
	Title string
	Body  string
}

var tour = []Hint{
	{Title: "Settings", Body: "Press s to open settings and preview flag changes before applying them."},
	{Title: "Drafts", Body: "Toggles in the settings modal are drafts. Esc throws them away."},
	{Title: "Apply", Body: "Apply changes and close commits every draft at once and reloads."},
	{Title: "Catalog", Body: "Add your own experimental flags in flags.yaml next to config.json."},
}

// Store is the subset of the preference store the tour needs.
type Store interface {
	Int(namespace, key string, def int) (int, error)
	Write(namespace string, values map[string]any) error
}

// Tour tracks progress through the hints.
type Tour struct {
	store Store
	step  int
}

// Load reads tour progress from store.
func Load(store Store) (*Tour, error) {
	step, err := store.Int(Namespace, StepKey, 0)
	if err != nil {
		return &Tour{store: store}, fmt.Errorf("reading hint step: %w", err)
	}
	if step < 0 {
		step = 0
	}
	return &Tour{store: store, step: step}, nil
}

// Current returns the hint to show; false once the tour is finished.
func (t *Tour) Current() (Hint, bool) {
	if t.step >= len(tour) {
		return Hint{}, false
	}
	return tour[t.step], true
}

// Step returns the zero-based current step.
func (t *Tour) Step() int { return t.step }

// Total returns the number of hints.
func (t *Tour) Total() int { return len(tour) }

// Next advances the tour and persists the new step.
func (t *Tour) Next() error {
	if t.step >= len(tour) {
		return nil
	}
	t.step++
	return t.save()
}

// Dismiss skips the rest of the tour.
func (t *Tour) Dismiss() error {
	t.step = len(tour)
	return t.save()
}

func (t *Tour) save() error {
	return t.store.Write(Namespace, map[string]any{StepKey: t.step})
}

// Reset restarts the tour from the first hint.
func Reset(store Store) error {
	return store.Write(Namespace, map[string]any{StepKey: 0})
}
