package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/navigation"
	"github.com/conneroisu/folio/internal/websocket"
)

// Config is shared by every session a Factory creates.
type Config struct {
	Sender         contact.Sender
	RevertDelay    time.Duration
	Scheduler      contact.Scheduler
	Threshold      float64
	ScrolledOffset float64
	Throttle       time.Duration
	Logger         logging.Logger
}

// Session owns one page's Controller and Tracker for the lifetime of its
// connection.
type Session struct {
	ctx        context.Context
	cancel     context.CancelFunc
	push       func([]byte) bool
	logger     logging.Logger
	controller *contact.Controller
	viewport   *navigation.RemoteViewport
	tracker    *navigation.Tracker
}

// NewSession wires a controller and tracker whose state changes are pushed
// through push. The session's outbound submissions are cancelled by Close.
func NewSession(ctx context.Context, push func([]byte) bool, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ctx:    ctx,
		cancel: cancel,
		push:   push,
		logger: logger.WithComponent("live"),
	}

	copts := []contact.Option{contact.WithLogger(logger)}
	if cfg.RevertDelay > 0 {
		copts = append(copts, contact.WithRevertDelay(cfg.RevertDelay))
	}
	if cfg.Scheduler != nil {
		copts = append(copts, contact.WithScheduler(cfg.Scheduler))
	}
	s.controller = contact.NewController(cfg.Sender, copts...)
	s.controller.OnChange(func(snap contact.Snapshot) {
		s.send(ContactState{Type: TypeContactState, Contact: snap})
	})

	var topts []navigation.Option
	if cfg.Threshold > 0 {
		topts = append(topts, navigation.WithThreshold(cfg.Threshold))
	}
	if cfg.ScrolledOffset > 0 {
		topts = append(topts, navigation.WithScrolledOffset(cfg.ScrolledOffset))
	}
	if cfg.Throttle > 0 {
		topts = append(topts, navigation.WithThrottle(cfg.Throttle))
	}
	s.viewport = navigation.NewRemoteViewport(nil, func(id string) error {
		if !s.send(ScrollTo{Type: TypeScrollTo, Target: id}) {
			return errors.New("client is not receiving")
		}
		return nil
	})
	s.tracker = navigation.NewTracker(s.viewport, topts...)
	s.tracker.OnChange(func(state navigation.State) {
		s.send(ActiveSection{Type: TypeActiveSection, State: state})
	})
	s.tracker.Mount()

	return s
}

// Controller exposes the form controller, mainly for tests.
func (s *Session) Controller() *contact.Controller {
	return s.controller
}

// Tracker exposes the section tracker, mainly for tests.
func (s *Session) Tracker() *navigation.Tracker {
	return s.tracker
}

// HandleMessage applies one browser message. Malformed or rejected messages
// are answered with an error frame; only a closed session ends the
// connection.
func (s *Session) HandleMessage(ctx context.Context, data []byte) error {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError("malformed message")
		return nil
	}

	var err error
	switch msg.Type {
	case TypeFieldChange, TypeFieldBlur:
		err = s.handleField(msg)
	case TypeSubmit:
		_, err = s.controller.Submit(s.ctx)
		switch {
		case errors.Is(err, contact.ErrInvalidForm):
			// The errors are in the pushed state.
			err = nil
		case errors.Is(err, contact.ErrSubmissionInFlight):
			s.logger.Debug(ctx, "Submit ignored while a submission is in flight")
			err = nil
		}
	case TypeScroll:
		s.viewport.Report(msg.ScrollY, msg.Sections)
	case TypeNavigate:
		if jumpErr := s.tracker.JumpTo(msg.Target); jumpErr != nil {
			s.sendError(jumpErr.Error())
		}
	default:
		s.sendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}

	if errors.Is(err, contact.ErrClosed) {
		return err
	}
	if err != nil {
		s.sendError(err.Error())
	}
	return nil
}

func (s *Session) handleField(msg Inbound) error {
	field, err := contact.ParseField(msg.Field)
	if err != nil {
		return err
	}

	if msg.Type == TypeFieldBlur {
		err = s.controller.FieldBlur(field, msg.Value)
	} else {
		err = s.controller.FieldChange(field, msg.Value)
	}
	if errors.Is(err, contact.ErrSubmissionInFlight) {
		// Inputs are disabled while sending; late keystrokes are dropped.
		return nil
	}
	return err
}

// Close releases the controller, the tracker and any in-flight submission.
func (s *Session) Close() {
	s.tracker.Close()
	s.controller.Close()
	s.cancel()
}

func (s *Session) send(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error(s.ctx, err, "Failed to encode message")
		return false
	}
	return s.push(data)
}

func (s *Session) sendError(message string) {
	s.send(ErrorMessage{Type: TypeError, Message: message})
}

// Factory creates a Session per websocket client.
type Factory struct {
	cfg Config
}

// NewFactory returns a factory for cfg.
func NewFactory(cfg Config) *Factory {
	return &Factory{cfg: cfg}
}

// NewSession implements websocket.SessionFactory.
func (f *Factory) NewSession(ctx context.Context, client *websocket.Client) (websocket.Session, error) {
	if f.cfg.Sender == nil {
		return nil, errors.New("live: no contact sender configured")
	}
	return NewSession(ctx, client.Send, f.cfg), nil
}
