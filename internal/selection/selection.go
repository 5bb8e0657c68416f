// Package selection moves a cursor over an index.Index. Every function is
// pure: it performs no I/O and activates nothing.
//
// Categories without applications are never selected. When the index is
// empty every function reports no selection.
package selection

import (
	"fmt"

	"github.com/jask/catswitch/internal/category"
	"github.com/jask/catswitch/internal/index"
)

// Position is the selected category and the offset of the app inside it.
type Position = index.Position

// Transition is one cycling step.
type Transition int

const (
	TransitionNextApp Transition = iota
	TransitionPreviousApp
	TransitionNextCategory
)

func (t Transition) String() string {
	switch t {
	case TransitionNextApp:
		return "next_app"
	case TransitionPreviousApp:
		return "previous_app"
	case TransitionNextCategory:
		return "next_category"
	default:
		return fmt.Sprintf("transition(%d)", int(t))
	}
}

// First is the first application of the first non-empty category.
func First(idx *index.Index) (Position, bool) {
	cats := idx.Categories()
	if len(cats) == 0 {
		return Position{}, false
	}
	return Position{Category: cats[0]}, true
}

// Revalidate maps a possibly stale position onto idx. The index is clamped
// when the category still exists; otherwise the selection moves to the
// first application of the next non-empty category.
func Revalidate(idx *index.Index, pos Position) (Position, bool) {
	if idx.Len() == 0 {
		return Position{}, false
	}
	if n := idx.Count(pos.Category); n > 0 {
		pos.Index = max(0, min(pos.Index, n-1))
		return pos, true
	}
	if !pos.Category.Valid() {
		return First(idx)
	}
	return Position{Category: step(idx, pos.Category, 1)}, true
}

// NextApp selects the following application, continuing into the next
// non-empty category after the last one and wrapping around at the end.
func NextApp(idx *index.Index, pos Position) (Position, bool) {
	pos, ok := Revalidate(idx, pos)
	if !ok {
		return pos, false
	}
	if pos.Index+1 < idx.Count(pos.Category) {
		pos.Index++
		return pos, true
	}
	return Position{Category: step(idx, pos.Category, 1)}, true
}

// PreviousApp is the inverse of NextApp.
func PreviousApp(idx *index.Index, pos Position) (Position, bool) {
	pos, ok := Revalidate(idx, pos)
	if !ok {
		return pos, false
	}
	if pos.Index > 0 {
		pos.Index--
		return pos, true
	}
	prev := step(idx, pos.Category, -1)
	return Position{Category: prev, Index: idx.Count(prev) - 1}, true
}

// NextCategory jumps to the first application of the next non-empty
// category. With a single category it only resets the index.
func NextCategory(idx *index.Index, pos Position) (Position, bool) {
	pos, ok := Revalidate(idx, pos)
	if !ok {
		return pos, false
	}
	return Position{Category: step(idx, pos.Category, 1)}, true
}

// Apply performs t.
func Apply(idx *index.Index, pos Position, t Transition) (Position, bool) {
	switch t {
	case TransitionNextApp:
		return NextApp(idx, pos)
	case TransitionPreviousApp:
		return PreviousApp(idx, pos)
	case TransitionNextCategory:
		return NextCategory(idx, pos)
	default:
		return Revalidate(idx, pos)
	}
}

// step walks the enum order from c in direction dir, wrapping, and returns
// the first non-empty category. c itself is returned when no other
// category has applications; idx must not be empty.
func step(idx *index.Index, c category.Category, dir int) category.Category {
	for k := 1; k <= category.Count; k++ {
		next := category.Category(((int(c)+dir*k)%category.Count + category.Count) % category.Count)
		if idx.Contains(next) {
			return next
		}
	}
	return c
}
