package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const stateVersion = 1

// persistedState is the content of the sidecar file.
type persistedState struct {
	Version int `json:"version"`
	LastID  int `json:"last_id"`
}

// stateFile keeps data that must not live in the notes file, whose
// layout is a bare array.
type stateFile struct {
	Path string // Path to .notes/state.json
}

func newStateFile(path string) *stateFile {
	return &stateFile{Path: path}
}

// Load returns the last issued ID. A missing sidecar yields 0.
func (s *stateFile) Load() (int, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read state: %w", err)
	}

	var st persistedState
	if err := json.Unmarshal(data, &st); err != nil {
		return 0, fmt.Errorf("invalid state: %w", err)
	}
	if st.Version != stateVersion {
		return 0, fmt.Errorf("unsupported state version %d", st.Version)
	}
	return st.LastID, nil
}

// Save persists lastID atomically.
func (s *stateFile) Save(lastID int) error {
	data, err := json.MarshalIndent(persistedState{Version: stateVersion, LastID: lastID}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	return writeFileAtomic(s.Path, data, 0644)
}
