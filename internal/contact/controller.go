package contact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/conneroisu/folio/internal/logging"
)

// Status is the submission lifecycle state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Terminal reports whether s is an outcome that reverts to idle on a timer.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// DefaultRevertDelay is how long a terminal status is shown before the form
// returns to idle.
const DefaultRevertDelay = 5 * time.Second

// Sender delivers a validated message to the outbound endpoint. Any non-nil
// error is a failed submission.
type Sender interface {
	Send(ctx context.Context, values Values) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, values Values) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, values Values) error {
	return f(ctx, values)
}

// Snapshot is a read-only copy of the controller state for rendering.
// Errors only holds messages for touched fields.
type Snapshot struct {
	Values    Values            `json:"values"`
	Errors    map[string]string `json:"errors"`
	Touched   []Field           `json:"touched"`
	Status    Status            `json:"status"`
	CanSubmit bool              `json:"canSubmit"`
}

// Error returns the visible error message for field, if any.
func (s Snapshot) Error(field Field) string {
	return s.Errors[string(field)]
}

// Attempt tracks one submission that passed validation.
type Attempt struct {
	done   chan struct{}
	status Status
	err    error
}

// Done is closed once the outbound call has finished.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the outbound call has finished and returns the resulting
// status and, for failures, an error wrapping ErrSubmissionFailed.
func (a *Attempt) Wait() (Status, error) {
	<-a.done
	return a.status, a.err
}

func (a *Attempt) finish(status Status, err error) {
	a.status = status
	a.err = err
	close(a.done)
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the timer source used for the revert to idle.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithRevertDelay overrides DefaultRevertDelay.
func WithRevertDelay(d time.Duration) Option {
	return func(c *Controller) { c.revertDelay = d }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l.WithComponent("contact") }
}

// Controller owns the state of one rendered contact form: field values,
// validation errors, touched fields and the submission status.
//
// At most one submission is in flight at a time. Listeners registered with
// OnChange are called in state-change order and must not call back into the
// controller.
type Controller struct {
	mu          sync.Mutex
	notifyMu    sync.Mutex
	values      Values
	errors      FieldErrors
	touched     map[Field]bool
	status      Status
	revert      Timer
	generation  uint64
	listeners   []func(Snapshot)
	closed      bool
	sender      Sender
	scheduler   Scheduler
	revertDelay time.Duration
	logger      logging.Logger
}

// NewController creates an idle controller with empty fields.
func NewController(sender Sender, opts ...Option) *Controller {
	c := &Controller{
		errors:      make(FieldErrors),
		touched:     make(map[Field]bool),
		status:      StatusIdle,
		sender:      sender,
		scheduler:   SystemScheduler{},
		revertDelay: DefaultRevertDelay,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to receive a snapshot after every state change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// FieldChange stores a new value for field. A field that has been touched is
// re-validated immediately; an untouched one is not, so errors do not flash
// while the first value is still being typed.
func (c *Controller) FieldChange(field Field, value string) error {
	if _, err := ParseField(string(field)); err != nil {
		return err
	}

	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.values.Set(field, value)
	if c.touched[field] {
		c.setErrorLocked(field, Validate(field, value))
	}
	c.notifyLocked()
	return nil
}

// FieldBlur stores value, marks field as touched and validates it.
func (c *Controller) FieldBlur(field Field, value string) error {
	if _, err := ParseField(string(field)); err != nil {
		return err
	}

	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.values.Set(field, value)
	c.touched[field] = true
	c.setErrorLocked(field, Validate(field, value))
	c.notifyLocked()
	return nil
}

// Submit validates the whole form and, when it is valid, sends it.
//
// Every field becomes touched so all errors are visible. An invalid form
// returns ErrInvalidForm with no outbound call and no status change. A call
// while a submission is in flight returns ErrSubmissionInFlight and changes
// nothing. Otherwise the status becomes submitting, any pending revert is
// cancelled, and the message is sent in the background; the returned Attempt
// reports the outcome.
func (c *Controller) Submit(ctx context.Context) (*Attempt, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.status == StatusSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	errs, ok := ValidateAll(c.values)
	c.errors = errs
	for _, field := range Fields {
		c.touched[field] = true
	}
	if !ok {
		c.notifyLocked()
		return nil, ErrInvalidForm
	}

	c.cancelRevertLocked()
	c.status = StatusSubmitting
	values := c.values
	attempt := &Attempt{done: make(chan struct{})}
	c.notifyLocked()

	c.logger.Info(ctx, "Sending contact message", "email", logging.RedactEmail(values.Email))
	go c.send(ctx, values, attempt)

	return attempt, nil
}

func (c *Controller) send(ctx context.Context, values Values, attempt *Attempt) {
	sendErr := c.sender.Send(ctx, values)

	status := StatusSucceeded
	var err error
	if sendErr != nil {
		status = StatusFailed
		err = fmt.Errorf("%w: %w", ErrSubmissionFailed, sendErr)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		attempt.finish(status, err)
		return
	}

	c.status = status
	if status == StatusSucceeded {
		// Errors are already empty: the form validated before sending and
		// edits are refused while submitting.
		c.values = Values{}
		c.touched = make(map[Field]bool)
		c.logger.Info(ctx, "Contact message sent")
	} else {
		c.logger.Warn(ctx, sendErr, "Contact message failed")
	}
	c.scheduleRevertLocked()
	c.notifyLocked()

	attempt.finish(status, err)
}

// scheduleRevertLocked arms the timer that returns a terminal status to idle.
// The generation check drops a timer that fires after being superseded.
func (c *Controller) scheduleRevertLocked() {
	c.cancelRevertLocked()
	gen := c.generation
	c.revert = c.scheduler.AfterFunc(c.revertDelay, func() {
		c.revertToIdle(gen)
	})
}

func (c *Controller) cancelRevertLocked() {
	if c.revert != nil {
		c.revert.Stop()
		c.revert = nil
	}
	c.generation++
}

func (c *Controller) revertToIdle(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.generation || !c.status.Terminal() {
		c.mu.Unlock()
		return
	}
	c.status = StatusIdle
	c.revert = nil
	c.notifyLocked()
}

// Close cancels the pending revert and detaches listeners. An outbound call
// that is still running completes, but its outcome no longer changes state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancelRevertLocked()
	c.listeners = nil
}

// Status returns the current submission status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Values returns the current field values.
func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Errors returns every computed error, including those of untouched fields.
func (c *Controller) Errors() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(FieldErrors, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Touched reports whether the user has interacted with field.
func (c *Controller) Touched(field Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[field]
}

// IdleSnapshot is the state of a fresh controller, for rendering a form no
// controller owns yet.
func IdleSnapshot() Snapshot {
	return Snapshot{
		Errors:    map[string]string{},
		Touched:   []Field{},
		Status:    StatusIdle,
		CanSubmit: true,
	}
}

// Snapshot returns a copy of the state as the presentation layer sees it.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Values:    c.values,
		Errors:    make(map[string]string),
		Touched:   make([]Field, 0, len(c.touched)),
		Status:    c.status,
		CanSubmit: c.status != StatusSubmitting,
	}
	for _, field := range Fields {
		if !c.touched[field] {
			continue
		}
		snap.Touched = append(snap.Touched, field)
		if err := c.errors[field]; err != nil {
			snap.Errors[string(field)] = err.Message
		}
	}
	return snap
}

func (c *Controller) editableLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.status == StatusSubmitting {
		return ErrSubmissionInFlight
	}
	return nil
}

func (c *Controller) setErrorLocked(field Field, err *FieldError) {
	if err == nil {
		delete(c.errors, field)
		return
	}
	c.errors[field] = err
}

// notifyLocked releases c.mu and delivers a snapshot to listeners. notifyMu
// is taken before c.mu is released so deliveries keep state-change order.
func (c *Controller) notifyLocked() {
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	listeners := append([]func(Snapshot){}, c.listeners...)

	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
