package terraform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when no config file exists for the given name.
var ErrNotFound = errors.New("vm config not found")

const configSuffix = ".tfvars.json"

// Store keeps generated VM configs as <name>.tfvars.json files in the
// directory Atlantis plans from.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a config store rooted at dir on the given filesystem.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Write serializes cfg into the store and returns the file path.
func (s *Store) Write(cfg *VMConfig) (string, error) {
	if cfg.Name == "" {
		return "", fmt.Errorf("config has no VM name")
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode config for %s: %w", cfg.Name, err)
	}

	path := s.path(cfg.Name)
	if err := afero.WriteFile(s.fs, path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config for %s: %w", cfg.Name, err)
	}
	return path, nil
}

// Read loads the config stored under name.
func (s *Store) Read(name string) (*VMConfig, error) {
	data, err := afero.ReadFile(s.fs, s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config for %s: %w", name, err)
	}

	var cfg VMConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config for %s: %w", name, err)
	}
	return &cfg, nil
}

// List returns the names of all stored configs, sorted.
func (s *Store) List() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list config directory: %w", err)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), configSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(info.Name(), configSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// Copy duplicates an existing VM config under a new name, so a known-good
// build can be cloned and tweaked instead of filled in from scratch.
func (s *Store) Copy(src, dst string) error {
	if dst == "" {
		return fmt.Errorf("destination name is empty")
	}
	cfg, err := s.Read(src)
	if err != nil {
		return err
	}
	cfg.Name = dst
	_, err = s.Write(cfg)
	return err
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+configSuffix)
}
