// Package session runs one overlay-visible switching interaction and commits
// at most one activation when it ends.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/catswitch/internal/index"
	"github.com/jask/catswitch/internal/selection"
)

// ErrClosed is returned when a closed session is advanced.
var ErrClosed = errors.New("session: closed")

// Overlay shows and hides the switcher.
type Overlay interface {
	ShowOverlay()
	HideOverlay()
}

// Renderer draws the current selection. ok is false when nothing is
// selected. It must not block.
type Renderer interface {
	RenderState(idx *index.Index, pos selection.Position, ok bool)
}

// Activator brings an application to the foreground.
type Activator interface {
	Activate(ctx context.Context, id string) error
}

// State is Open or Closed.
type State int

const (
	StateOpen State = iota
	StateClosed
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Hooks are the collaborators a session calls into. Nil hooks are skipped.
type Hooks struct {
	Renderer  Renderer
	Activator Activator
	Logger    *zap.Logger
}

// Session accumulates transitions while open. It is not safe for
// concurrent use; the Controller owns it.
type Session struct {
	id    string
	hooks Hooks
	log   *zap.Logger

	idx      *index.Index
	origin   selection.Position
	originOK bool
	current  selection.Position
	ok       bool
	dirty    bool
	state    State
}

// Open starts a session on idx. The remembered position is used when it
// still maps onto idx; otherwise the first application is selected.
func Open(idx *index.Index, remembered *selection.Position, hooks Hooks) *Session {
	if idx == nil {
		idx = index.Empty()
	}
	s := &Session{id: uuid.NewString(), hooks: hooks, idx: idx}
	log := hooks.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log.With(zap.String("session", s.id))

	if remembered != nil {
		s.current, s.ok = selection.Revalidate(idx, *remembered)
	} else {
		s.current, s.ok = selection.First(idx)
	}
	s.origin, s.originOK = s.current, s.ok
	s.log.Debug("session opened", zap.Int("apps", idx.Len()), zap.Bool("selected", s.ok))
	s.render()
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// State reports whether the session is open.
func (s *Session) State() State { return s.state }

// Dirty reports whether the selection ever moved.
func (s *Session) Dirty() bool { return s.dirty }

// Index is the index the session currently navigates.
func (s *Session) Index() *index.Index { return s.idx }

// Current returns the selected position.
func (s *Session) Current() (selection.Position, bool) { return s.current, s.ok }

// Origin returns the position the session opened with.
func (s *Session) Origin() (selection.Position, bool) { return s.origin, s.originOK }

// Advance applies t to the current position and renders the result.
func (s *Session) Advance(t selection.Transition) (selection.Position, bool, error) {
	if s.state != StateOpen {
		return selection.Position{}, false, ErrClosed
	}
	next, ok := selection.Apply(s.idx, s.current, t)
	if ok != s.ok || next != s.current {
		s.dirty = true
	}
	s.current, s.ok = next, ok
	s.render()
	return next, ok, nil
}

// Rebase moves the session onto a refreshed index. The selected
// application stays selected while it is still running; otherwise the old
// position is revalidated. Only Advance marks the session dirty.
func (s *Session) Rebase(idx *index.Index) error {
	if s.state != StateOpen {
		return ErrClosed
	}
	if idx == nil {
		idx = index.Empty()
	}
	if rec, ok := s.idx.At(s.current); ok && s.ok {
		if pos, found := idx.Locate(rec.ID); found {
			s.idx, s.current = idx, pos
			s.render()
			return nil
		}
	}
	s.idx = idx
	s.current, s.ok = selection.Revalidate(idx, s.current)
	s.render()
	return nil
}

// Close ends the session. If the selection moved, the selected application
// is activated exactly once. Closing again does nothing.
func (s *Session) Close(ctx context.Context) error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed

	if !s.dirty || !s.ok {
		s.log.Debug("session closed without activation", zap.Bool("dirty", s.dirty))
		return nil
	}
	rec, ok := s.idx.At(s.current)
	if !ok {
		return nil
	}
	s.log.Info("activating", zap.String("app_id", rec.ID), zap.String("category", rec.Category.String()))
	if s.hooks.Activator == nil {
		return nil
	}
	if err := s.hooks.Activator.Activate(ctx, rec.ID); err != nil {
		return fmt.Errorf("activate %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Session) render() {
	if s.hooks.Renderer != nil {
		s.hooks.Renderer.RenderState(s.idx, s.current, s.ok)
	}
}
