package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if _, ok := s.Rate(true); ok {
		t.Fatalf("expected empty rate table")
	}
}

func TestLoadAndResolveRates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := []byte("delivery_charge:\n  inside_dhaka: 60\n  outside_dhaka: 130\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rate, ok := s.Rate(true); !ok || rate != 60 {
		t.Fatalf("Rate(inside) = %d, %v; want 60, true", rate, ok)
	}
	if rate, ok := s.Rate(false); !ok || rate != 130 {
		t.Fatalf("Rate(outside) = %d, %v; want 130, true", rate, ok)
	}
}

func TestLoadPartialTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := []byte("delivery_charge:\n  inside_dhaka: 50\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rate, ok := s.Rate(true); !ok || rate != 50 {
		t.Fatalf("Rate(inside) = %d, %v; want 50, true", rate, ok)
	}
	if _, ok := s.Rate(false); ok {
		t.Fatalf("expected no outside rate")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("delivery_charge: [not a map"), 0o600); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error, got nil")
	}
}
