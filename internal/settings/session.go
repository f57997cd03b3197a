// Package settings holds the draft state behind the settings modal. A Session
// keeps an uncommitted copy of every flag and preference, and on apply runs a
// delayed two-step sequence: hide the modal, then commit every draft to the
// config store and reload the application.
//
// A Session is not safe for concurrent use. Drive it, and the callbacks of
// its Scheduler, from one goroutine (the Bubble Tea update loop).
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wilbur182/flagdeck/internal/config"
	"github.com/wilbur182/flagdeck/internal/features"
	"github.com/wilbur182/flagdeck/internal/hints"
	"github.com/wilbur182/flagdeck/internal/prefs"
	"github.com/wilbur182/flagdeck/internal/schedule"
)

var (
	// ErrUnknownKey is returned when a toggle names a key that had no draft
	// when the session opened.
	ErrUnknownKey = errors.New("unknown settings key")
	// ErrBusy is returned for toggles while changes are being applied.
	ErrBusy = errors.New("settings are being applied")
	// ErrClosed is returned once the session was disposed or committed.
	ErrClosed = errors.New("settings session closed")
	// ErrDelayOrder is returned when the commit delay is shorter than the
	// confirmation delay.
	ErrDelayOrder = config.ErrDelayOrder
)

// Phase is the apply state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseApplying
	PhaseCommitted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseApplying:
		return "applying"
	case PhaseCommitted:
		return "committed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// FlagSource lists the experimental flags offered in a session.
type FlagSource interface {
	ListFlags() []features.Flag
}

// ConfigStore holds committed values. Writes are fire-and-forget; an error
// is reported but never retried.
type ConfigStore interface {
	Flag(name string) bool
	Preference(key prefs.Key) bool
	SetFlag(name string, value bool) error
	SetPreference(key prefs.Key, value bool) error
	SetVisible(visible bool) error
}

// PreferenceWriter persists auxiliary state that survives reloads.
type PreferenceWriter interface {
	Write(namespace string, values map[string]any) error
}

// Deps are the collaborators of a Session. Prefs and Logger are optional.
type Deps struct {
	Flags     FlagSource
	Store     ConfigStore
	Prefs     PreferenceWriter
	Scheduler schedule.Scheduler
	Reload    func()
	Logger    *slog.Logger
}

// Options tunes the apply sequence. Zero values use the config defaults.
type Options struct {
	ConfirmDelay time.Duration
	CommitDelay  time.Duration
}

// Session is one open-to-closed cycle of the settings modal.
type Session struct {
	id     string
	deps   Deps
	opts   Options
	logger *slog.Logger

	flags      []features.Flag
	flagDrafts map[string]bool
	prefDrafts map[prefs.Key]bool
	pristine   bool
	phase      Phase

	confirmTimer schedule.Timer
	commitTimer  schedule.Timer
	disposed     bool
	committed    bool
	err          error
}

// NewSession snapshots the committed values and opens a session at
// PhaseIdle.
func NewSession(d Deps, o Options) (*Session, error) {
	if d.Flags == nil || d.Store == nil || d.Scheduler == nil || d.Reload == nil {
		return nil, errors.New("settings: Flags, Store, Scheduler and Reload are required")
	}
	if o.ConfirmDelay <= 0 {
		o.ConfirmDelay = config.DefaultConfirmDelay
	}
	if o.CommitDelay <= 0 {
		o.CommitDelay = config.DefaultCommitDelay
	}
	if o.CommitDelay < o.ConfirmDelay {
		return nil, ErrDelayOrder
	}

	id := uuid.NewString()
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		id:     id,
		deps:   d,
		opts:   o,
		logger: logger.With("session", id[:8]),
		flags:  d.Flags.ListFlags(),
	}
	s.resetDrafts()
	return s, nil
}

// resetDrafts replaces every draft with the currently committed value.
func (s *Session) resetDrafts() {
	s.flagDrafts = make(map[string]bool, len(s.flags))
	for _, f := range s.flags {
		s.flagDrafts[f.Key] = s.deps.Store.Flag(f.Key)
	}
	all := prefs.All()
	s.prefDrafts = make(map[prefs.Key]bool, len(all))
	for _, p := range all {
		s.prefDrafts[p.Key] = s.deps.Store.Preference(p.Key)
	}
	s.pristine = true
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Phase returns the current apply phase.
func (s *Session) Phase() Phase { return s.phase }

// Pristine reports whether no toggle has been received since the session
// opened or was last reset.
func (s *Session) Pristine() bool { return s.pristine }

// CanApply reports whether Apply would start the apply sequence.
func (s *Session) CanApply() bool {
	return !s.disposed && !s.committed && !s.pristine && s.phase == PhaseIdle
}

// Applying reports whether the apply sequence is in flight.
func (s *Session) Applying() bool { return s.phase == PhaseApplying }

// Disposed reports whether Dispose was called.
func (s *Session) Disposed() bool { return s.disposed }

// Err returns the joined store write errors of the commit, if any.
func (s *Session) Err() error { return s.err }

// Flags returns the session's flags in catalog order with their draft values.
func (s *Session) Flags() []features.Flag {
	out := make([]features.Flag, len(s.flags))
	for i, f := range s.flags {
		f.Value = s.flagDrafts[f.Key]
		out[i] = f
	}
	return out
}

// FlagDraft returns the draft value of a flag.
func (s *Session) FlagDraft(key string) (bool, bool) {
	v, ok := s.flagDrafts[key]
	return v, ok
}

// PreferenceDraft returns the draft value of a preference.
func (s *Session) PreferenceDraft(key prefs.Key) (bool, bool) {
	v, ok := s.prefDrafts[key]
	return v, ok
}

// FlagDrafts returns a copy of the flag drafts.
func (s *Session) FlagDrafts() map[string]bool {
	out := make(map[string]bool, len(s.flagDrafts))
	for k, v := range s.flagDrafts {
		out[k] = v
	}
	return out
}

// PreferenceDrafts returns a copy of the preference drafts.
func (s *Session) PreferenceDrafts() map[prefs.Key]bool {
	out := make(map[prefs.Key]bool, len(s.prefDrafts))
	for k, v := range s.prefDrafts {
		out[k] = v
	}
	return out
}

func (s *Session) checkEditable() error {
	if s.disposed || s.committed {
		return ErrClosed
	}
	if s.phase != PhaseIdle {
		return ErrBusy
	}
	return nil
}

// ToggleFlag sets the draft value of one flag. Any toggle marks the session
// as interacted with, even when value equals the committed value.
func (s *Session) ToggleFlag(key string, value bool) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	if _, ok := s.flagDrafts[key]; !ok {
		s.logger.Warn("toggle for unknown flag ignored", "key", key)
		return fmt.Errorf("%w: flag %q", ErrUnknownKey, key)
	}
	s.flagDrafts[key] = value
	s.pristine = false
	return nil
}

// TogglePreference sets the draft value of one preference. Turning feature
// hints off also resets the hint tour right away, outside the commit.
func (s *Session) TogglePreference(key prefs.Key, value bool) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	prev, ok := s.prefDrafts[key]
	if !ok {
		s.logger.Warn("toggle for unknown preference ignored", "key", key)
		return fmt.Errorf("%w: preference %q", ErrUnknownKey, key)
	}
	s.prefDrafts[key] = value
	s.pristine = false

	if key == prefs.ShowFeatureHints && prev && !value {
		s.resetHintTour()
	}
	return nil
}

func (s *Session) resetHintTour() {
	if s.deps.Prefs == nil {
		return
	}
	if err := s.deps.Prefs.Write(hints.Namespace, map[string]any{hints.StepKey: 0}); err != nil {
		s.logger.Warn("reset hint tour", "err", err)
	}
}

// Apply starts the apply sequence: after ConfirmDelay the modal is hidden,
// after CommitDelay every draft is committed and the application reloads.
// It reports whether the sequence started; repeated calls are no-ops.
func (s *Session) Apply() bool {
	if !s.CanApply() {
		return false
	}
	s.phase = PhaseApplying
	s.confirmTimer = s.deps.Scheduler.AfterFunc(s.opts.ConfirmDelay, s.onConfirm)
	s.commitTimer = s.deps.Scheduler.AfterFunc(s.opts.CommitDelay, s.onCommit)
	s.logger.Info("applying settings",
		"flags", len(s.flagDrafts),
		"confirm_delay", s.opts.ConfirmDelay,
		"commit_delay", s.opts.CommitDelay,
	)
	return true
}

func (s *Session) onConfirm() {
	if s.disposed {
		return
	}
	s.confirmTimer = nil
	s.hide()
}

func (s *Session) onCommit() {
	if s.disposed {
		return
	}
	s.commitTimer = nil
	s.phase = PhaseCommitted

	var errs []error
	for _, f := range s.flags {
		if err := s.deps.Store.SetFlag(f.Key, s.flagDrafts[f.Key]); err != nil {
			errs = append(errs, fmt.Errorf("flag %s: %w", f.Key, err))
		}
	}
	for _, p := range prefs.All() {
		if err := s.deps.Store.SetPreference(p.Key, s.prefDrafts[p.Key]); err != nil {
			errs = append(errs, fmt.Errorf("preference %s: %w", p.Key, err))
		}
	}
	s.err = errors.Join(errs...)
	if s.err != nil {
		s.logger.Error("commit settings", "err", s.err)
	} else {
		s.logger.Info("settings committed")
	}

	s.resetDrafts()
	s.phase = PhaseIdle
	s.committed = true

	// Reload re-derives everything from the store, so it also recovers
	// from partial write failures.
	s.deps.Reload()
}

// Cancel throws away every draft, restores the committed values and hides
// the modal. It is ignored while changes are being applied.
func (s *Session) Cancel() bool {
	if err := s.checkEditable(); err != nil {
		s.logger.Debug("cancel ignored", "reason", err)
		return false
	}
	s.resetDrafts()
	s.hide()
	return true
}

func (s *Session) hide() {
	if err := s.deps.Store.SetVisible(false); err != nil {
		s.logger.Warn("hide settings modal", "err", err)
	}
}

// Dispose stops any pending apply step. A disposed session never touches the
// store again.
func (s *Session) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
		s.confirmTimer = nil
	}
	if s.commitTimer != nil {
		s.commitTimer.Stop()
		s.commitTimer = nil
	}
	if s.phase == PhaseApplying {
		s.logger.Info("settings session disposed while applying")
	}
}
