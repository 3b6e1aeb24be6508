package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skillpath/interview-engine/internal/models"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "coding.yaml", `
type: coding
name: Coding Interview
default_duration_min: 45
dimensions:
  - technical_skills
  - problem_solving
`)
	writeProfile(t, dir, "behavioral.yml", `
type: behavioral
name: Behavioral Interview
default_duration_min: 30
`)

	l := NewLoader()
	if err := l.LoadFromDir(dir); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(l.List()) != 2 {
		t.Errorf("expected 2 profiles, got %d", len(l.List()))
	}

	p := l.Get(models.TypeCoding)
	if p == nil {
		t.Fatal("expected coding profile")
	}
	if p.DefaultDurationMin != 45 {
		t.Errorf("expected duration 45, got %d", p.DefaultDurationMin)
	}
	if len(p.Dimensions) != 2 {
		t.Errorf("expected 2 dimensions, got %d", len(p.Dimensions))
	}
}

func TestLoadFromFileInvalidType(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "bad.yaml", `
type: juggling
name: Juggling Interview
`)

	l := NewLoader()
	if err := l.LoadFromFile(filepath.Join(dir, "bad.yaml")); err == nil {
		t.Error("expected error for unknown interview type")
	}
}

func TestLoadFromFileDefaultsDuration(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "sd.yaml", `
type: system_design
name: System Design
`)

	l := NewLoader()
	if err := l.LoadFromFile(filepath.Join(dir, "sd.yaml")); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if d, ok := l.DefaultDuration(models.TypeSystemDesign); !ok || d != 60 {
		t.Errorf("expected default 60, got %d (ok=%v)", d, ok)
	}
}

func TestDefaultDurationUnknownType(t *testing.T) {
	l := NewLoader()
	if _, ok := l.DefaultDuration(models.TypeCoding); ok {
		t.Error("expected miss for empty catalog")
	}
}
