// Package display implements the reference display client: a durable
// pairing binding and a runtime that keeps the playback engine fed from
// the server's per-screen event stream.
package display

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const bindingFile = "binding.json"

// Binding is the display-local association with a screen. It survives
// restarts and is cleared only by explicit unpairing or invalid data.
type Binding struct {
	ScreenID int    `json:"screen_id"`
	DeviceID string `json:"device_id"`
}

// BindingStore persists the binding as a small JSON file under the
// player's state directory.
type BindingStore struct {
	dir string
}

func NewBindingStore(dir string) *BindingStore {
	return &BindingStore{dir: dir}
}

// Load returns the persisted binding, or ok=false when unbound. A file
// that cannot be parsed counts as invalid data and is cleared on the spot.
func (s *BindingStore) Load() (Binding, bool) {
	path := filepath.Join(s.dir, bindingFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Binding{}, false
	}

	var b Binding
	if err := json.Unmarshal(data, &b); err != nil || b.ScreenID <= 0 {
		log.Warn().Err(err).Str("path", path).Msg("clearing unreadable binding file")
		s.Clear()
		return Binding{}, false
	}
	return b, true
}

func (s *BindingStore) Save(b Binding) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, bindingFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("persist binding: %w", err)
	}
	return nil
}

// Clear removes the binding; a missing file is not an error.
func (s *BindingStore) Clear() {
	path := filepath.Join(s.dir, bindingFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove binding file")
	}
}
