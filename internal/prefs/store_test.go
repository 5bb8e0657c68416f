package prefs

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir, "appCategoryCache")
	require.NoError(t, err)

	data, err := s.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, data)

	require.NoError(t, s.Save(ctx, []byte(`{"x":"Gaming"}`)))
	data, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `{"x":"Gaming"}`, string(data))

	_, err = os.Stat(s.Path() + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestNewFileStoreRequiresKey(t *testing.T) {
	_, err := NewFileStore(t.TempDir(), "")
	require.Error(t, err)
}
