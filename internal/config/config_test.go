package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsAssignsDistinctIdentity(t *testing.T) {
	a := NewSettings("/tmp/watch")
	b := NewSettings("/tmp/watch")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID, "equal folders must still be distinct identities")
}

func TestSnapshotIsDecoupledFromLiveEdits(t *testing.T) {
	assert := assert.New(t)

	s := NewSettings("/tmp/watch")
	s.Patterns = []string{"*.png"}
	task := &TaskConfig{
		Name:          "task",
		Enabled:       true,
		StagingFolder: "/tmp/staging",
		Collision:     CollisionRename,
		WatchFolders:  []*Settings{s},
	}

	snap := task.Snapshot()

	task.StagingFolder = "/tmp/elsewhere"
	task.Collision = CollisionOverwrite
	s.MoveToStaging = true
	s.Patterns[0] = "*.jpg"
	task.WatchFolders = append(task.WatchFolders, NewSettings("/tmp/more"))

	assert.Equal("/tmp/staging", snap.StagingFolder)
	assert.Equal(CollisionRename, snap.Collision)
	require.Len(t, snap.WatchFolders, 1)
	assert.False(snap.WatchFolders[0].MoveToStaging)
	assert.Equal([]string{"*.png"}, snap.WatchFolders[0].Patterns)
}

func TestTasksOrder(t *testing.T) {
	def := &TaskConfig{Name: "default"}
	h1 := &TaskConfig{Name: "h1"}
	h2 := &TaskConfig{Name: "h2"}
	cfg := &Config{Default: def, Hotkeys: []*TaskConfig{h1, h2}}

	tasks := cfg.Tasks()
	require.Len(t, tasks, 3)
	assert.Same(t, def, tasks[0])
	assert.Same(t, h1, tasks[1])
	assert.Same(t, h2, tasks[2])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	s := NewSettings("~/Downloads")
	s.MoveToStaging = true
	s.Patterns = []string{"*.png", "*.jpg"}
	cfg := &Config{
		LogLevel:    "debug",
		SettleDelay: Duration(3 * time.Second),
		Default: &TaskConfig{
			Name:          "default",
			Enabled:       true,
			StagingFolder: "~/Screenshots",
			Collision:     CollisionRename,
			UploadCommand: "upload.sh",
			WatchFolders:  []*Settings{s},
		},
	}

	path := filepath.Join(t.TempDir(), "hotfolder.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal("debug", loaded.LogLevel)
	assert.Equal(Duration(3*time.Second), loaded.SettleDelay)
	require.NotNil(t, loaded.Default)
	require.Len(t, loaded.Default.WatchFolders, 1)
	got := loaded.Default.WatchFolders[0]
	assert.Equal(s.ID, got.ID)
	assert.Equal("~/Downloads", got.Folder)
	assert.True(got.MoveToStaging)
	assert.Equal([]string{"*.png", "*.jpg"}, got.Patterns)
}

func TestLoadAssignsMissingIdentities(t *testing.T) {
	raw := `
default_task:
  name: default
  enabled: true
  watch_folders:
    - folder: /tmp/a
    - folder: /tmp/b
hotkey_tasks:
  - name: clip
    watch_folders:
      - folder: /tmp/c
`
	path := filepath.Join(t.TempDir(), "hotfolder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, task := range cfg.Tasks() {
		for _, s := range task.WatchFolders {
			assert.NotEmpty(t, s.ID, "folder %s missing identity", s.Folder)
			assert.False(t, seen[s.ID], "identity %s assigned twice", s.ID)
			seen[s.ID] = true
		}
	}
	assert.Len(t, seen, 3)
}
