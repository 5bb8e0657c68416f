package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jask/catswitch/internal/index"
	"github.com/jask/catswitch/internal/selection"
)

// Event is an input from the hotkey layer.
type Event int

const (
	RequestShow Event = iota
	RequestHide
	NextApp
	PreviousApp
	NextCategory
	// IndexChanged tells an open session that the catalog published a new index.
	IndexChanged
)

func (e Event) String() string {
	switch e {
	case RequestShow:
		return "request_show"
	case RequestHide:
		return "request_hide"
	case NextApp:
		return "next_app"
	case PreviousApp:
		return "previous_app"
	case NextCategory:
		return "next_category"
	case IndexChanged:
		return "index_changed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

func (e Event) transition() (selection.Transition, bool) {
	switch e {
	case NextApp:
		return selection.TransitionNextApp, true
	case PreviousApp:
		return selection.TransitionPreviousApp, true
	case NextCategory:
		return selection.TransitionNextCategory, true
	default:
		return 0, false
	}
}

// IndexSource supplies the latest published index.
type IndexSource interface {
	Current() *index.Index
}

// Controller turns input events into session operations. Handle must be
// called from one goroutine at a time; Run does that for a channel.
type Controller struct {
	source    IndexSource
	overlay   Overlay
	renderer  Renderer
	activator Activator
	log       *zap.Logger

	session    *Session
	remembered *selection.Position
}

// NewController wires the collaborators. overlay, renderer and activator may
// be nil.
func NewController(source IndexSource, overlay Overlay, renderer Renderer, activator Activator, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		source:    source,
		overlay:   overlay,
		renderer:  renderer,
		activator: activator,
		log:       log.Named("controller"),
	}
}

// Active returns the open session, or nil.
func (c *Controller) Active() *Session {
	return c.session
}

// Remembered is the position the next session will start from.
func (c *Controller) Remembered() (selection.Position, bool) {
	if c.remembered == nil {
		return selection.Position{}, false
	}
	return *c.remembered, true
}

// Handle processes one event. Navigation while no session is open and
// RequestShow while one is open are ignored.
func (c *Controller) Handle(ctx context.Context, ev Event) error {
	switch ev {
	case RequestShow:
		if c.session != nil {
			return nil
		}
		c.session = Open(c.source.Current(), c.remembered, Hooks{
			Renderer:  c.renderer,
			Activator: c.activator,
			Logger:    c.log,
		})
		if c.overlay != nil {
			c.overlay.ShowOverlay()
		}
		return nil

	case RequestHide:
		if c.session == nil {
			return nil
		}
		s := c.session
		c.session = nil
		if c.overlay != nil {
			c.overlay.HideOverlay()
		}
		if pos, ok := s.Current(); ok {
			c.remembered = &pos
		}
		return s.Close(ctx)

	case IndexChanged:
		if c.session == nil {
			return nil
		}
		return c.session.Rebase(c.source.Current())
	}

	t, ok := ev.transition()
	if !ok {
		return fmt.Errorf("unknown event %s", ev)
	}
	if c.session == nil {
		c.log.Debug("ignoring navigation while hidden", zap.Stringer("event", ev))
		return nil
	}
	_, _, err := c.session.Advance(t)
	return err
}

// Run handles events until the channel closes or ctx is done. An open
// session is closed and committed when the channel closes.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return c.Handle(ctx, RequestHide)
			}
			if err := c.Handle(ctx, ev); err != nil {
				c.log.Warn("event failed", zap.Stringer("event", ev), zap.Error(err))
			}
		}
	}
}
