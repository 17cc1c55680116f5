package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository_SetGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Set("theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set("theme", "light"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := repo.Get("theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "light" {
		t.Errorf("Get() = %q, want light", got)
	}
}

func TestSettingsRepository_Ints(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	n, err := repo.GetInt(SettingBrushSize, 10)
	if err != nil || n != 10 {
		t.Fatalf("GetInt default = %d, %v", n, err)
	}

	if err := repo.SetInt(SettingBrushSize, 17); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	n, err = repo.GetInt(SettingBrushSize, 10)
	if err != nil || n != 17 {
		t.Errorf("GetInt = %d, %v; want 17", n, err)
	}

	if err := repo.Set(SettingEraserSize, "wide"); err != nil {
		t.Fatalf("set: %v", err)
	}
	n, err = repo.GetInt(SettingEraserSize, 100)
	if err == nil {
		t.Error("expected parse error for non-numeric value")
	}
	if n != 100 {
		t.Errorf("GetInt on bad value = %d, want the default", n)
	}
}
