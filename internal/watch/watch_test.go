package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotfolder/internal/filter"
)

func TestSubscribeDeliversCreatedFile(t *testing.T) {
	dir := t.TempDir()
	f, err := filter.New([]string{"*.png"})
	require.NoError(t, err)

	events := make(chan string, 4)
	h, err := NewNotifier(0).Subscribe(dir, f, false, func(p string) { events <- p })
	require.NoError(t, err)
	defer h.Close()

	path := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	select {
	case got := <-events:
		want, _ := filepath.Abs(path)
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("create event never delivered")
	}
}

func TestSubscribeAppliesFilter(t *testing.T) {
	dir := t.TempDir()
	f, err := filter.New([]string{"*.png"})
	require.NoError(t, err)

	events := make(chan string, 4)
	h, err := NewNotifier(0).Subscribe(dir, f, false, func(p string) { events <- p })
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("nope"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.png"), []byte("data"), 0644))

	select {
	case got := <-events:
		assert.Equal(t, "kept.png", filepath.Base(got))
	case <-time.After(5 * time.Second):
		t.Fatal("create event never delivered")
	}

	select {
	case got := <-events:
		t.Fatalf("filtered file delivered: %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSubscribeMissingDirectoryFails(t *testing.T) {
	f, err := filter.New(nil)
	require.NoError(t, err)

	_, err = NewNotifier(0).Subscribe(filepath.Join(t.TempDir(), "gone"), f, false, func(string) {})
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	f, err := filter.New(nil)
	require.NoError(t, err)

	h, err := NewNotifier(0).Subscribe(t.TempDir(), f, false, func(string) {})
	require.NoError(t, err)

	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
}
