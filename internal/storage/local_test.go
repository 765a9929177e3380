package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("not really a jpeg")

	require.NoError(t, s.Store(ctx, "1207-transrights.jpg", data))
	require.NoError(t, s.Store(ctx, "thumbs/1207-transrights.jpg", data))

	got, err := s.Retrieve(ctx, "1207-transrights.jpg")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := s.List(ctx, "thumbs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"thumbs/1207-transrights.jpg"}, names)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Delete(ctx, "1207-transrights.jpg"))
	_, err = s.Retrieve(ctx, "1207-transrights.jpg")
	assert.Error(t, err)
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	assert.Error(t, s.Store(ctx, "../outside.jpg", []byte("x")))
	assert.Error(t, s.Store(ctx, "/etc/passwd", []byte("x")))

	_, err = s.Retrieve(ctx, "..")
	assert.Error(t, err)
}

func TestLocalStorageRequiresDirectory(t *testing.T) {
	_, err := NewLocalStorage("")
	assert.Error(t, err)
}
