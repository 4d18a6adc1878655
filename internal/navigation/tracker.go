// Package navigation tracks which page section is active as the visitor
// scrolls, for highlighting in the header navigation.
package navigation

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultThreshold is how far below the top of the viewport a section
	// anchor may sit and still count as reached.
	DefaultThreshold = 150.0

	// DefaultScrolledOffset is the scroll position past which the header
	// switches to its compact style.
	DefaultScrolledOffset = 20.0
)

// ErrUnknownSection is returned when jumping to an id the viewport does not
// know.
var ErrUnknownSection = errors.New("unknown section")

// Section is one navigable anchor and its vertical offset from the top of the
// document.
type Section struct {
	ID  string  `json:"id"`
	Top float64 `json:"top"`
}

// Viewport is the scrolling surface a Tracker observes. Sections must return
// the registry in document order and reflect the current layout.
type Viewport interface {
	ScrollY() float64
	Sections() []Section
	// Subscribe registers fn to be called on every scroll or resize and
	// returns the function that removes it.
	Subscribe(fn func()) (unsubscribe func())
	ScrollTo(id string) error
}

// ActiveSection picks the active section for the given scroll position. It
// scans from the last section to the first and returns the first one whose
// anchor is at or above scrollY+threshold. When no section qualifies the
// first section is returned. ok is false only for an empty registry.
//
// Sections sharing an offset resolve to the later one in document order.
func ActiveSection(sections []Section, scrollY, threshold float64) (id string, ok bool) {
	if len(sections) == 0 {
		return "", false
	}
	for i := len(sections) - 1; i >= 0; i-- {
		if sections[i].Top-scrollY <= threshold {
			return sections[i].ID, true
		}
	}
	return sections[0].ID, true
}

// State is what the navigation display renders.
type State struct {
	Active   string `json:"section"`
	Scrolled bool   `json:"scrolled"`
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(px float64) Option {
	return func(t *Tracker) { t.threshold = px }
}

// WithScrolledOffset overrides DefaultScrolledOffset.
func WithScrolledOffset(px float64) Option {
	return func(t *Tracker) { t.scrolledOffset = px }
}

// WithThrottle skips scroll events that arrive less than d after the last
// evaluation. A skipped event schedules one catch-up evaluation at the end
// of the window, so the final scroll position is always evaluated.
func WithThrottle(d time.Duration) Option {
	return func(t *Tracker) { t.throttle = d }
}

// WithScheduler replaces the runtime timer used for catch-up evaluations.
func WithScheduler(s Scheduler) Option {
	return func(t *Tracker) { t.scheduler = s }
}

// Timer is the handle of a scheduled task. Stop cancels the task and reports
// whether it was still pending.
type Timer interface {
	Stop() bool
}

// Scheduler runs a task once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, task func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, task func()) Timer {
	return time.AfterFunc(d, task)
}

// Tracker derives the active section id from a Viewport. It is owned by one
// page; the navigation display only reads it.
type Tracker struct {
	mu             sync.Mutex
	viewport       Viewport
	threshold      float64
	scrolledOffset float64
	throttle       time.Duration
	scheduler      Scheduler
	catchUp        Timer
	lastEval       time.Time
	now            func() time.Time
	state          State
	unsubscribe    func()
	listeners      []func(State)
}

// NewTracker creates a tracker for vp. Call Mount to start observing.
func NewTracker(vp Viewport, opts ...Option) *Tracker {
	t := &Tracker{
		viewport:       vp,
		threshold:      DefaultThreshold,
		scrolledOffset: DefaultScrolledOffset,
		scheduler:      systemScheduler{},
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnChange registers fn to be called whenever the state changes.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Mount subscribes to the viewport and computes the initial state without
// waiting for a scroll event. Mounting twice is a no-op.
func (t *Tracker) Mount() State {
	t.mu.Lock()
	if t.unsubscribe != nil {
		state := t.state
		t.mu.Unlock()
		return state
	}
	t.unsubscribe = t.viewport.Subscribe(t.handleScroll)
	t.mu.Unlock()

	return t.Recompute()
}

// Close unsubscribes from the viewport and cancels a pending catch-up.
func (t *Tracker) Close() {
	t.mu.Lock()
	unsubscribe := t.unsubscribe
	t.unsubscribe = nil
	t.listeners = nil
	t.stopCatchUpLocked()
	t.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (t *Tracker) handleScroll() {
	if t.throttle > 0 {
		t.mu.Lock()
		if t.unsubscribe == nil {
			t.mu.Unlock()
			return
		}
		if !t.lastEval.IsZero() {
			if wait := t.throttle - t.now().Sub(t.lastEval); wait > 0 {
				if t.catchUp == nil {
					t.catchUp = t.scheduler.AfterFunc(wait, t.runCatchUp)
				}
				t.mu.Unlock()
				return
			}
		}
		t.mu.Unlock()
	}
	t.Recompute()
}

func (t *Tracker) runCatchUp() {
	t.mu.Lock()
	t.catchUp = nil
	mounted := t.unsubscribe != nil
	t.mu.Unlock()
	if mounted {
		t.Recompute()
	}
}

func (t *Tracker) stopCatchUpLocked() {
	if t.catchUp != nil {
		t.catchUp.Stop()
		t.catchUp = nil
	}
}

// Recompute re-reads the registry and scroll position and updates the active
// section. An empty registry leaves the active id unchanged.
func (t *Tracker) Recompute() State {
	sections := t.viewport.Sections()
	scrollY := t.viewport.ScrollY()

	t.mu.Lock()
	next := t.state
	if id, ok := ActiveSection(sections, scrollY, t.threshold); ok {
		next.Active = id
	}
	next.Scrolled = scrollY > t.scrolledOffset
	t.lastEval = t.now()
	t.stopCatchUpLocked()
	return t.commitLocked(next)
}

// JumpTo scrolls the viewport to id and marks it active straight away; the
// next scroll evaluation confirms or corrects it.
func (t *Tracker) JumpTo(id string) error {
	if !containsSection(t.viewport.Sections(), id) {
		return fmt.Errorf("%w: %q", ErrUnknownSection, id)
	}
	if err := t.viewport.ScrollTo(id); err != nil {
		return fmt.Errorf("scroll to %q: %w", id, err)
	}

	t.mu.Lock()
	next := t.state
	next.Active = id
	t.commitLocked(next)
	return nil
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Active returns the active section id.
func (t *Tracker) Active() string {
	return t.State().Active
}

// commitLocked stores next, releases t.mu and notifies listeners if the
// state changed.
func (t *Tracker) commitLocked(next State) State {
	changed := next != t.state
	t.state = next
	listeners := append([]func(State){}, t.listeners...)
	t.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(next)
		}
	}
	return next
}

func containsSection(sections []Section, id string) bool {
	for _, s := range sections {
		if s.ID == id {
			return true
		}
	}
	return false
}
