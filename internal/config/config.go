package config

import (
	"time"

	"github.com/google/uuid"
)

// CollisionPolicy decides what happens when a staged file's name is already
// taken in the staging folder.
type CollisionPolicy string

const (
	CollisionRename    CollisionPolicy = "rename"    // append (1), (2), ... until free
	CollisionOverwrite CollisionPolicy = "overwrite" // replace the existing file
	CollisionSkip      CollisionPolicy = "skip"      // leave the origin file alone
)

// Settings describes one watch folder. Uniqueness is the generated ID, not
// the folder path: two Settings with the same folder are distinct entries.
type Settings struct {
	ID             string   `yaml:"id"`
	Folder         string   `yaml:"folder"`
	IncludeSubdirs bool     `yaml:"include_subdirs,omitempty"`
	MoveToStaging  bool     `yaml:"move_to_staging,omitempty"`
	Patterns       []string `yaml:"patterns,omitempty"` // glob filters on the base name; empty matches everything
}

// NewSettings creates watch-folder settings for dir with a fresh identity.
func NewSettings(dir string) *Settings {
	return &Settings{ID: uuid.NewString(), Folder: dir}
}

// TaskConfig bundles an upload task with its watch folders. The owner (config
// file, UI) may mutate it at any time; pipeline runs work on a Snapshot.
type TaskConfig struct {
	Name          string          `yaml:"name"`
	Enabled       bool            `yaml:"enabled"`
	StagingFolder string          `yaml:"staging_folder,omitempty"`
	Collision     CollisionPolicy `yaml:"collision,omitempty"`
	UploadCommand string          `yaml:"upload_command,omitempty"`
	WatchFolders  []*Settings     `yaml:"watch_folders,omitempty"`
}

// Snapshot returns a deep copy of the task config, decoupled from live edits.
// A pipeline run captures one at event time and never reads the live config
// again.
func (t *TaskConfig) Snapshot() *TaskConfig {
	if t == nil {
		return nil
	}
	c := *t
	c.WatchFolders = make([]*Settings, len(t.WatchFolders))
	for i, s := range t.WatchFolders {
		sc := *s
		sc.Patterns = append([]string(nil), s.Patterns...)
		c.WatchFolders[i] = &sc
	}
	return &c
}

// Config holds the YAML configuration for the daemon.
type Config struct {
	LogLevel      string        `yaml:"log_level,omitempty"`     // Logging level: debug, info, warn, error
	Daemonize     bool          `yaml:"daemonize,omitempty"`     // If true, run as daemon; if false, run in foreground
	SettleDelay   Duration      `yaml:"settle_delay,omitempty"`  // Time a new file must sit still before processing
	Notifications bool          `yaml:"notifications,omitempty"` // If true, send desktop notifications
	Default       *TaskConfig   `yaml:"default_task,omitempty"`  // Default upload task
	Hotkeys       []*TaskConfig `yaml:"hotkey_tasks,omitempty"`  // Hotkey-bound upload tasks, in binding order
}

// Tasks returns all configuration sources in registration order: the default
// task first, then hotkey tasks in list order.
func (c *Config) Tasks() []*TaskConfig {
	var tasks []*TaskConfig
	if c.Default != nil {
		tasks = append(tasks, c.Default)
	}
	tasks = append(tasks, c.Hotkeys...)
	return tasks
}

// Duration wraps time.Duration so YAML can carry values like "3s" or "500ms".
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
