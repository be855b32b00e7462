package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is looked up in the working directory when no
// --config flag is given.
const DefaultConfigFilename = ".hotfolder.yaml"

// Load reads the configuration file at path. Watch-folder entries persisted
// before an identity was assigned get one here, so the registry can always
// key on Settings.ID.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	for _, task := range cfg.Tasks() {
		for _, s := range task.WatchFolders {
			if s.ID == "" {
				s.ID = uuid.NewString()
			}
		}
	}
	return cfg, nil
}

// Save writes the configuration back to YAML. Called after registry
// operations that mutate task watch-folder lists, so persisted and runtime
// state stay consistent.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
