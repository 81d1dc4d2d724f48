package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	t.Run("missing key", func(t *testing.T) {
		if _, err := repo.Get("absent"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get = %v, want ErrNotFound", err)
		}
		v, err := repo.GetOr("absent", "fallback")
		if err != nil || v != "fallback" {
			t.Errorf("GetOr = %q, %v", v, err)
		}
	})

	t.Run("set and overwrite", func(t *testing.T) {
		if err := repo.Set(SettingMode, "screen"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := repo.Set(SettingMode, "table"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		v, err := repo.Get(SettingMode)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != "table" {
			t.Errorf("Get = %q, want table", v)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo.Set(SettingEnabled, "true")
		if err := repo.Delete(SettingEnabled); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := repo.Delete(SettingEnabled); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete = %v, want ErrNotFound", err)
		}
	})
}
