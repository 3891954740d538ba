package persistence

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func openTestSettings(t *testing.T) *SettingsStore {
	t.Helper()
	store, err := OpenSettings(filepath.Join(t.TempDir(), "db.sqlite3"))
	if err != nil {
		t.Fatalf("OpenSettings() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSettingsStore(t *testing.T) {
	t.Run("GetMissing", func(t *testing.T) {
		store := openTestSettings(t)
		_, err := store.Get("no-such-key")
		if !errors.Is(err, ErrSettingNotFound) {
			t.Errorf("Get() error = %v, want ErrSettingNotFound", err)
		}
	})

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		store := openTestSettings(t)

		if err := store.Set("k", json.RawMessage(`{"a":1}`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := store.Get("k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `{"a":1}` {
			t.Errorf("Get() = %s, want {\"a\":1}", got)
		}
	})

	t.Run("SetReplaces", func(t *testing.T) {
		store := openTestSettings(t)

		if err := store.Set("k", json.RawMessage(`1`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := store.Set("k", json.RawMessage(`2`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := store.Get("k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `2` {
			t.Errorf("Get() = %s, want 2", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := openTestSettings(t)

		if err := store.Set("k", json.RawMessage(`1`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := store.Delete("k"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := store.Get("k"); !errors.Is(err, ErrSettingNotFound) {
			t.Errorf("Get() after Delete() error = %v, want ErrSettingNotFound", err)
		}

		// Absent keys delete cleanly.
		if err := store.Delete("never-existed"); err != nil {
			t.Errorf("Delete() of absent key error = %v", err)
		}
	})

	t.Run("AddonConfig", func(t *testing.T) {
		store := openTestSettings(t)

		config, err := store.LoadConfig("virtual-things")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if config != nil {
			t.Errorf("LoadConfig() = %s, want nil before first save", config)
		}

		type addonConfig struct {
			PollInterval int  `json:"pollInterval"`
			Verbose      bool `json:"verbose"`
		}
		if err := store.SaveConfig("virtual-things", addonConfig{PollInterval: 30}); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		config, err = store.LoadConfig("virtual-things")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		var got addonConfig
		if err := json.Unmarshal(config, &got); err != nil {
			t.Fatalf("config decode error = %v", err)
		}
		if got.PollInterval != 30 {
			t.Errorf("PollInterval = %d, want 30", got.PollInterval)
		}
	})
}
