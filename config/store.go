package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store persists config values.
type Store interface {
	Load() (Values, error)
	Save(Values) error
}

// FileStore keeps values in a YAML file. A missing file is an empty store.
type FileStore struct {
	Path string
}

// Load reads the file.
func (s FileStore) Load() (Values, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Values{}, nil
		}

		return nil, errors.Wrap(err, "failed to read config")
	}

	vals := Values{}

	if len(bytes.TrimSpace(b)) == 0 {
		return vals, nil
	}

	if err := yaml.Unmarshal(b, &vals); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", s.Path)
	}

	return vals, nil
}

// Save replaces the file with vals.
func (s FileStore) Save(vals Values) error {
	b, err := yaml.Marshal(map[string]any(vals))
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create config dir")
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return errors.Wrap(err, "failed to create config")
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write config")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return errors.Wrap(os.Rename(tmp.Name(), s.Path), "failed to replace config")
}

// MemStore keeps values in memory.
type MemStore struct {
	Vals  Values
	Saves int
}

// Load returns a copy of the stored values.
func (s *MemStore) Load() (Values, error) {
	out := Values{}
	for k, v := range s.Vals {
		out[k] = v
	}
	return out, nil
}

// Save replaces the stored values.
func (s *MemStore) Save(vals Values) error {
	s.Vals = vals
	s.Saves++
	return nil
}

// Open loads a config from store.
func Open(store Store) (Config, error) {
	vals, err := store.Load()
	if err != nil {
		return NewZeroConfig(), err
	}

	return Load(vals), nil
}

// Flush saves cfg when it is dirty and clears the flag. It reports whether
// anything was written.
func Flush(store Store, cfg *Config) (bool, error) {
	if !cfg.Dirty {
		return false, nil
	}

	if err := store.Save(cfg.Values()); err != nil {
		return false, err
	}

	cfg.Dirty = false

	return true, nil
}
