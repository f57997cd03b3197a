// Package watch reports changes to a fixed set of files, such as the config
// file being rewritten by another flagdeck process or an editor.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of events, such as write-then-rename.
const DefaultDebounce = 100 * time.Millisecond

// Watcher signals when any watched file is created, written, renamed or
// removed.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]bool
	events    chan struct{}
	stop      chan struct{}
	delay     time.Duration
	debounce  *time.Timer
	mu        sync.Mutex
	closed    bool
	stopOnce  sync.Once
}

// New watches paths. Their parent directories are created if missing and
// watched instead of the files, so atomic replace-by-rename is seen.
func New(paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		files:     make(map[string]bool, len(paths)),
		events:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
		delay:     DefaultDebounce,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		w.files[p] = true
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			_ = fsw.Close()
			return nil, err
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
		close(w.events)
	}()

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(event.Name)] || event.Op == fsnotify.Chmod {
				continue
			}
			w.schedule()
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		select {
		case w.events <- struct{}{}:
		default: // already signalled
		}
	})
}

// Events returns a channel that receives after a burst of changes settles.
// It is closed by Stop.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Stop shuts down the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		_ = w.fsWatcher.Close()
	})
}

// ChangedMsg is delivered by Listen when a watched file changed.
type ChangedMsg struct{}

// Listen returns a command that waits for the next change. It yields nil once
// the watcher is stopped.
func Listen(w *Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Events(); !ok {
			return nil
		}
		return ChangedMsg{}
	}
}
