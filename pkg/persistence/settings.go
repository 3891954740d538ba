package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// ErrSettingNotFound indicates no row exists for the requested key.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsStore reads and writes add-on settings in the gateway's
// settings database: a single settings table keyed by string, with
// JSON-encoded values. Add-on configuration lives under the key
// "addons.config.<addon-id>".
type SettingsStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSettings opens (and if necessary initializes) the settings
// database at path.
func OpenSettings(path string) (*SettingsStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize settings database: %w", err)
	}

	return &SettingsStore{db: db}, nil
}

// Close releases the database handle.
func (s *SettingsStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get returns the raw JSON value stored under key.
func (s *SettingsStore) Get(key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

// Set stores a raw JSON value under key, replacing any previous value.
func (s *SettingsStore) Set(key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value))
	return err
}

// Delete removes the value stored under key. Deleting an absent key
// is not an error.
func (s *SettingsStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

func configKey(addonID string) string {
	return "addons.config." + addonID
}

// LoadConfig returns the stored configuration for an add-on.
// Returns nil, nil when no configuration has been saved yet.
func (s *SettingsStore) LoadConfig(addonID string) (json.RawMessage, error) {
	value, err := s.Get(configKey(addonID))
	if errors.Is(err, ErrSettingNotFound) {
		return nil, nil
	}
	return value, err
}

// SaveConfig stores the configuration for an add-on. The config must
// marshal to JSON.
func (s *SettingsStore) SaveConfig(addonID string, config any) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return s.Set(configKey(addonID), data)
}
