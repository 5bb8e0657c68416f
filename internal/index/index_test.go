package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/catswitch/internal/category"
)

func TestBuildGroupsInEnumOrder(t *testing.T) {
	records := []Record{
		{ID: "com.tinyspeck.slackmacgap", Name: "Slack", Category: category.Communication},
		{ID: "com.apple.Terminal", Name: "Terminal", Category: category.Development},
		{ID: "us.zoom.xos", Name: "Zoom", Category: category.Communication},
		{ID: "com.spotify.client", Name: "Spotify", Category: category.Media},
		{ID: "com.apple.dt.Xcode", Name: "Xcode", Category: category.Development},
	}
	idx := Build(records)

	require.Equal(t, []category.Category{category.Development, category.Communication, category.Media}, idx.Categories())
	require.Equal(t, 5, idx.Len())

	var ids []string
	for _, r := range idx.Apps(category.Communication) {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"com.tinyspeck.slackmacgap", "us.zoom.xos"}, ids)
	require.Equal(t, "com.apple.Terminal", idx.Apps(category.Development)[0].ID)
	require.Equal(t, 2, idx.Count(category.Development))
}

func TestBuildOmitsEmptyCategories(t *testing.T) {
	idx := Build([]Record{{ID: "a", Category: category.Gaming}})
	for _, c := range category.All() {
		require.Equal(t, c == category.Gaming, idx.Contains(c), c.String())
	}
	require.Nil(t, idx.Apps(category.Finance))
}

func TestBuildEmpty(t *testing.T) {
	idx := Empty()
	require.Empty(t, idx.Categories())
	require.Equal(t, 0, idx.Len())
	_, ok := idx.At(Position{})
	require.False(t, ok)
}

func TestBuildIsDeterministic(t *testing.T) {
	records := []Record{
		{ID: "b", Category: category.Utilities},
		{ID: "a", Category: category.Utilities},
		{ID: "c", Category: category.Productivity},
	}
	require.Equal(t, Build(records), Build(records))
}

func TestBuildInvalidCategoryGoesToDefault(t *testing.T) {
	idx := Build([]Record{{ID: "x", Category: category.Category(42)}})
	require.Equal(t, []category.Category{category.Default}, idx.Categories())
}

func TestAt(t *testing.T) {
	idx := Build([]Record{
		{ID: "a", Category: category.Finance},
		{ID: "b", Category: category.Finance},
	})
	r, ok := idx.At(Position{Category: category.Finance, Index: 1})
	require.True(t, ok)
	require.Equal(t, "b", r.ID)

	require.False(t, idx.Valid(Position{Category: category.Finance, Index: 2}))
	require.False(t, idx.Valid(Position{Category: category.Finance, Index: -1}))
	require.False(t, idx.Valid(Position{Category: category.Media}))
}

func TestAccessorsReturnCopies(t *testing.T) {
	idx := Build([]Record{{ID: "a", Category: category.Lifestyle}})
	idx.Apps(category.Lifestyle)[0].ID = "mutated"
	idx.Categories()[0] = category.Other

	r, _ := idx.At(Position{Category: category.Lifestyle})
	require.Equal(t, "a", r.ID)
	require.Equal(t, []category.Category{category.Lifestyle}, idx.Categories())
}

func TestLocate(t *testing.T) {
	idx := Build([]Record{
		{ID: "com.tinyspeck.slackmacgap", Category: category.Communication},
		{ID: "com.apple.Terminal", Category: category.Development},
		{ID: "us.zoom.xos", Category: category.Communication},
	})
	pos, ok := idx.Locate("us.zoom.xos")
	require.True(t, ok)
	require.Equal(t, Position{Category: category.Communication, Index: 1}, pos)

	_, ok = idx.Locate("com.spotify.client")
	require.False(t, ok)
	_, ok = Empty().Locate("x")
	require.False(t, ok)
}
