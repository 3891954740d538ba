package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// AddonState contains the runtime state for an add-on.
type AddonState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Devices contains the saved state per device ID.
	Devices map[string]DeviceState `json:"devices,omitempty"`
}

// DeviceState is the saved state of a single device.
type DeviceState struct {
	// Values holds the last known value per property name, so devices
	// come back up with the values they went down with.
	Values map[string]any `json:"values,omitempty"`

	// PendingActions contains actions that had not completed when the
	// state was saved, keyed by action ID.
	PendingActions map[string]ActionState `json:"pending_actions,omitempty"`
}

// ActionState is the saved record of an unfinished action.
type ActionState struct {
	// Name is the action name.
	Name string `json:"name"`

	// Input is the request payload, if any.
	Input any `json:"input,omitempty"`

	// Status is the lifecycle status at save time.
	Status string `json:"status"`

	// TimeRequested is the creation timestamp.
	TimeRequested string `json:"time_requested"`
}

// AddonStateStore manages persistence of add-on state to a JSON file.
type AddonStateStore struct {
	mu   sync.Mutex
	path string
}

// NewAddonStateStore creates a new add-on state store.
func NewAddonStateStore(path string) *AddonStateStore {
	return &AddonStateStore{path: path}
}

// Save persists the add-on state to disk.
func (s *AddonStateStore) Save(state *AddonState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the add-on state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *AddonStateStore) Load() (*AddonState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &AddonState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *AddonStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
