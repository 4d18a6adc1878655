package navigation

import (
	"sync"
)

// RemoteViewport is a Viewport whose layout is reported from elsewhere, such
// as a browser sending scroll events over a live connection. Each Report
// replaces the layout and notifies subscribers.
type RemoteViewport struct {
	mu          sync.Mutex
	scrollY     float64
	sections    []Section
	subscribers map[int]func()
	nextID      int
	scrollTo    func(id string) error
}

// NewRemoteViewport creates a viewport with the given initial registry.
// scrollTo is asked to move the real viewport on JumpTo; nil accepts every
// request without side effects.
func NewRemoteViewport(sections []Section, scrollTo func(id string) error) *RemoteViewport {
	if scrollTo == nil {
		scrollTo = func(string) error { return nil }
	}
	return &RemoteViewport{
		sections:    append([]Section(nil), sections...),
		subscribers: make(map[int]func()),
		scrollTo:    scrollTo,
	}
}

// Report records a new scroll position and, when sections is non-nil, a new
// registry, then notifies subscribers.
func (v *RemoteViewport) Report(scrollY float64, sections []Section) {
	v.mu.Lock()
	v.scrollY = scrollY
	if sections != nil {
		v.sections = append([]Section(nil), sections...)
	}
	subscribers := make([]func(), 0, len(v.subscribers))
	for _, fn := range v.subscribers {
		subscribers = append(subscribers, fn)
	}
	v.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}

// ScrollY implements Viewport.
func (v *RemoteViewport) ScrollY() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollY
}

// Sections implements Viewport.
func (v *RemoteViewport) Sections() []Section {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Section(nil), v.sections...)
}

// Subscribe implements Viewport.
func (v *RemoteViewport) Subscribe(fn func()) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subscribers[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subscribers, id)
			v.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (v *RemoteViewport) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subscribers)
}

// ScrollTo implements Viewport.
func (v *RemoteViewport) ScrollTo(id string) error {
	return v.scrollTo(id)
}
