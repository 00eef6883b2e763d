package asset_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vacation-catalog/backend/internal/asset"
	"github.com/pkordes/vacation-catalog/backend/internal/domain"
)

func newStore(t *testing.T) *asset.Local {
	t.Helper()
	s, err := asset.NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return s
}

func TestLocal_Store_WritesFile(t *testing.T) {
	s := newStore(t)
	data := []byte("\xff\xd8\xff fake jpeg")

	handle, err := s.Store(context.Background(), data, "image/jpeg")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(handle, ".jpg"), "handle %q should carry the jpeg extension", handle)
	got, err := os.ReadFile(filepath.Join(s.Dir(), handle))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocal_Store_UniqueHandles(t *testing.T) {
	s := newStore(t)

	h1, err := s.Store(context.Background(), []byte("a"), "image/png")
	require.NoError(t, err)
	h2, err := s.Store(context.Background(), []byte("a"), "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestLocal_Store_RejectsMediaType(t *testing.T) {
	s := newStore(t)

	_, err := s.Store(context.Background(), []byte("GIF89a"), "image/gif")

	assert.ErrorIs(t, err, domain.ErrAssetRejected)
}

func TestLocal_Store_RejectsOversized(t *testing.T) {
	s := newStore(t)
	data := bytes.Repeat([]byte{0}, asset.MaxImageBytes+1)

	_, err := s.Store(context.Background(), data, "image/webp")

	assert.ErrorIs(t, err, domain.ErrAssetRejected)
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not leave files behind")
}

func TestLocal_Delete_RemovesFile(t *testing.T) {
	s := newStore(t)
	handle, err := s.Store(context.Background(), []byte("x"), "image/png")
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), handle))

	_, err = os.Stat(filepath.Join(s.Dir(), handle))
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_Delete_MissingIsIgnored(t *testing.T) {
	s := newStore(t)

	err := s.Delete(context.Background(), "1700000000000-gone.jpg")

	assert.NoError(t, err)
}

func TestLocal_Delete_RejectsPathTraversal(t *testing.T) {
	s := newStore(t)

	for _, handle := range []string{"", "../secret.jpg", "a/b.jpg", ".hidden"} {
		assert.Error(t, s.Delete(context.Background(), handle), "handle %q", handle)
	}
}

func TestAccepted(t *testing.T) {
	assert.True(t, asset.Accepted("image/jpeg"))
	assert.True(t, asset.Accepted("IMAGE/PNG"))
	assert.True(t, asset.Accepted("image/webp"))
	assert.False(t, asset.Accepted("image/gif"))
	assert.False(t, asset.Accepted("application/pdf"))
}
