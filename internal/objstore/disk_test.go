package objstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisk(t *testing.T) *Disk {
	t.Helper()
	d, err := NewDisk(t.TempDir(), "https://cdn.example/chapter-cache")
	require.NoError(t, err)
	return d
}

func TestDiskPutAndURL(t *testing.T) {
	d := newTestDisk(t)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "ch-1/1.jpg", []byte("img"), "image/jpeg"))

	data, err := os.ReadFile(filepath.Join(d.root, "ch-1", "1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	url := d.PublicURL("ch-1/1.jpg")
	assert.Equal(t, "https://cdn.example/chapter-cache/ch-1/1.jpg", url)

	path, ok := d.ParsePath(url)
	require.True(t, ok)
	assert.Equal(t, "ch-1/1.jpg", path)
}

func TestDiskParsePathForeignURL(t *testing.T) {
	d := newTestDisk(t)
	_, ok := d.ParsePath("https://other.example/ch-1/1.jpg")
	assert.False(t, ok)
}

func TestDiskRemove(t *testing.T) {
	d := newTestDisk(t)
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "ch-1/1.jpg", []byte("a"), "image/jpeg"))
	require.NoError(t, d.Put(ctx, "ch-1/2.png", []byte("b"), "image/png"))

	require.NoError(t, d.Remove(ctx, []string{"ch-1/1.jpg", "ch-1/2.png", "ch-1/missing.jpg"}))

	_, err := os.Stat(filepath.Join(d.root, "ch-1"))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskRejectsEscapingPaths(t *testing.T) {
	d := newTestDisk(t)
	ctx := context.Background()

	assert.Error(t, d.Put(ctx, "../outside.jpg", []byte("x"), "image/jpeg"))
	assert.Error(t, d.Put(ctx, "/abs.jpg", []byte("x"), "image/jpeg"))
}
