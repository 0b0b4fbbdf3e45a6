package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is the session state persisted between runs.
type State struct {
	// EnabledCalendarIDs lists the calendars shown. Nil means the user
	// never chose, so every calendar is shown.
	EnabledCalendarIDs []string
	Use24HourTime      bool
}

type stateFile struct {
	EnabledCalendars *[]string `yaml:"enabled_calendars,omitempty"`
	Use24HourTime    bool      `yaml:"use_24_hour_time"`
}

// EnabledSet returns the enabled calendars as a set, or nil when all
// calendars are enabled.
func (s State) EnabledSet() map[string]bool {
	if s.EnabledCalendarIDs == nil {
		return nil
	}
	set := make(map[string]bool, len(s.EnabledCalendarIDs))
	for _, id := range s.EnabledCalendarIDs {
		set[id] = true
	}
	return set
}

// LoadState reads the state file. A missing file yields the defaults:
// every calendar enabled and 12-hour time.
func LoadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}

	var f stateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return State{}, fmt.Errorf("parse state %s: %w", path, err)
	}

	st := State{Use24HourTime: f.Use24HourTime}
	if f.EnabledCalendars != nil {
		st.EnabledCalendarIDs = append([]string{}, *f.EnabledCalendars...)
	}
	return st, nil
}

// SaveState writes the state file atomically.
func SaveState(path string, st State) error {
	f := stateFile{Use24HourTime: st.Use24HourTime}
	if st.EnabledCalendarIDs != nil {
		ids := append([]string{}, st.EnabledCalendarIDs...)
		f.EnabledCalendars = &ids
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	return writeFileAtomic(path, data, 0644)
}

// writeFileAtomic writes to a temp file in the same directory and renames
// it into place, so a crash never leaves a torn file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	_ = tmp.Chmod(perm)
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	committed = true
	return nil
}
