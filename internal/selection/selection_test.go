package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/catswitch/internal/category"
	"github.com/jask/catswitch/internal/index"
	"github.com/jask/catswitch/internal/testdata"
)

func pos(c category.Category, i int) Position {
	return Position{Category: c, Index: i}
}

func terminalSlack() *index.Index {
	return index.Build([]index.Record{
		{ID: "com.apple.Terminal", Name: "Terminal", Category: category.Development},
		{ID: "com.tinyspeck.slack", Name: "Slack", Category: category.Communication},
	})
}

func TestNextAppWrapsAcrossCategories(t *testing.T) {
	idx := terminalSlack()

	p, ok := First(idx)
	require.True(t, ok)
	require.Equal(t, pos(category.Development, 0), p)

	p, ok = NextApp(idx, p)
	require.True(t, ok)
	require.Equal(t, pos(category.Communication, 0), p)

	p, _ = NextApp(idx, p)
	require.Equal(t, pos(category.Development, 0), p)
}

func TestTransitions(t *testing.T) {
	idx := index.Build([]index.Record{
		{ID: "a1", Category: category.Productivity},
		{ID: "a2", Category: category.Productivity},
		{ID: "m1", Category: category.Media},
		{ID: "o1", Category: category.Other},
		{ID: "o2", Category: category.Other},
		{ID: "o3", Category: category.Other},
	})

	tests := []struct {
		name string
		from Position
		t    Transition
		want Position
	}{
		{"next within category", pos(category.Productivity, 0), TransitionNextApp, pos(category.Productivity, 1)},
		{"next skips empty categories", pos(category.Productivity, 1), TransitionNextApp, pos(category.Media, 0)},
		{"next wraps past last", pos(category.Other, 2), TransitionNextApp, pos(category.Productivity, 0)},
		{"previous within category", pos(category.Other, 2), TransitionPreviousApp, pos(category.Other, 1)},
		{"previous to last of previous", pos(category.Media, 0), TransitionPreviousApp, pos(category.Productivity, 1)},
		{"previous wraps before first", pos(category.Productivity, 0), TransitionPreviousApp, pos(category.Other, 2)},
		{"next category resets index", pos(category.Productivity, 1), TransitionNextCategory, pos(category.Media, 0)},
		{"next category wraps", pos(category.Other, 1), TransitionNextCategory, pos(category.Productivity, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Apply(idx, tc.from, tc.t)
			require.True(t, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestSingleCategory(t *testing.T) {
	idx := index.Build([]index.Record{
		{ID: "a", Category: category.Utilities},
		{ID: "b", Category: category.Utilities},
	})

	p, _ := NextApp(idx, pos(category.Utilities, 1))
	require.Equal(t, pos(category.Utilities, 0), p)

	p, _ = PreviousApp(idx, pos(category.Utilities, 0))
	require.Equal(t, pos(category.Utilities, 1), p)

	p, _ = NextCategory(idx, pos(category.Utilities, 1))
	require.Equal(t, pos(category.Utilities, 0), p)
}

func TestEmptyIndexHasNoSelection(t *testing.T) {
	idx := index.Empty()
	_, ok := First(idx)
	require.False(t, ok)
	for _, tr := range []Transition{TransitionNextApp, TransitionPreviousApp, TransitionNextCategory} {
		_, ok := Apply(idx, pos(category.Media, 0), tr)
		require.False(t, ok, tr.String())
	}
	_, ok = Revalidate(idx, pos(category.Media, 0))
	require.False(t, ok)
}

func TestRevalidate(t *testing.T) {
	idx := index.Build([]index.Record{
		{ID: "d", Category: category.Development},
		{ID: "g", Category: category.Gaming},
		{ID: "g2", Category: category.Gaming},
	})

	tests := []struct {
		name string
		from Position
		want Position
	}{
		{"valid unchanged", pos(category.Gaming, 1), pos(category.Gaming, 1)},
		{"index clamped", pos(category.Gaming, 7), pos(category.Gaming, 1)},
		{"negative index clamped", pos(category.Development, -3), pos(category.Development, 0)},
		{"gone category moves forward", pos(category.Media, 4), pos(category.Gaming, 0)},
		{"gone category wraps", pos(category.Other, 0), pos(category.Development, 0)},
		{"invalid category goes first", pos(category.Category(50), 0), pos(category.Development, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Revalidate(idx, tc.from)
			require.True(t, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestStalePositionRevalidatesBeforeMoving(t *testing.T) {
	idx := index.Build([]index.Record{
		{ID: "d", Category: category.Development},
		{ID: "g", Category: category.Gaming},
		{ID: "g2", Category: category.Gaming},
	})
	// Media is gone: revalidate to (Gaming,0), then move.
	p, _ := NextApp(idx, pos(category.Media, 3))
	require.Equal(t, pos(category.Gaming, 1), p)
}

func allPositions(idx *index.Index) []Position {
	var out []Position
	for _, c := range idx.Categories() {
		for i := 0; i < idx.Count(c); i++ {
			out = append(out, pos(c, i))
		}
	}
	return out
}

func TestCycleClosureProperty(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		idx := testdata.RandomIndex(r, 1+r.Intn(20), 1+r.Intn(category.Count))
		for _, start := range allPositions(idx) {
			p := start
			for i := 0; i < idx.Len(); i++ {
				p, _ = NextApp(idx, p)
			}
			require.Equal(t, start, p)
		}
	}
}

func TestPreviousInvertsNextProperty(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for trial := 0; trial < 200; trial++ {
		idx := testdata.RandomIndex(r, 1+r.Intn(20), 1+r.Intn(category.Count))
		for _, start := range allPositions(idx) {
			next, ok := NextApp(idx, start)
			require.True(t, ok)
			require.True(t, idx.Valid(next))
			back, _ := PreviousApp(idx, next)
			require.Equal(t, start, back)

			prev, _ := PreviousApp(idx, start)
			forward, _ := NextApp(idx, prev)
			require.Equal(t, start, forward)
		}
	}
}

func TestNextCategoryClosureProperty(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for trial := 0; trial < 200; trial++ {
		idx := testdata.RandomIndex(r, 1+r.Intn(20), 1+r.Intn(category.Count))
		cats := idx.Categories()
		for _, start := range allPositions(idx) {
			p := start
			for i := 0; i < len(cats); i++ {
				p, _ = NextCategory(idx, p)
			}
			require.Equal(t, pos(start.Category, 0), p)
		}
	}
}
