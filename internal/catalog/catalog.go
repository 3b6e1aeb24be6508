package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/skillpath/interview-engine/internal/models"
)

// Profile describes one interview type: its default session length and
// the feedback dimensions reviewers are asked to score.
type Profile struct {
	Type               models.InterviewType `json:"type" yaml:"type"`
	Name               string               `json:"name" yaml:"name"`
	Description        string               `json:"description,omitempty" yaml:"description"`
	DefaultDurationMin int                  `json:"default_duration_min" yaml:"default_duration_min"`
	Dimensions         []string             `json:"dimensions,omitempty" yaml:"dimensions"`
	Difficulties       []models.Difficulty  `json:"difficulties,omitempty" yaml:"difficulties"`
}

// Loader manages loading and caching of interview-type profiles
type Loader struct {
	mu       sync.RWMutex
	profiles map[models.InterviewType]*Profile
}

// NewLoader creates a new catalog loader
func NewLoader() *Loader {
	return &Loader{
		profiles: make(map[models.InterviewType]*Profile),
	}
}

// LoadFromDir loads all YAML profiles from a directory
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading interview catalog", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load catalog profile", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("interview catalog loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single profile from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if !p.Type.Valid() {
		return fmt.Errorf("invalid interview type: %q", p.Type)
	}
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.DefaultDurationMin <= 0 {
		p.DefaultDurationMin = 60
	}

	l.mu.Lock()
	l.profiles[p.Type] = &p
	l.mu.Unlock()

	slog.Info("catalog profile loaded", "type", p.Type, "duration_min", p.DefaultDurationMin)
	return nil
}

// Get retrieves a profile by interview type
func (l *Loader) Get(t models.InterviewType) *Profile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.profiles[t]
}

// List returns all loaded profiles
func (l *Loader) List() []*Profile {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Profile, 0, len(l.profiles))
	for _, p := range l.profiles {
		result = append(result, p)
	}
	return result
}

// Add programmatically adds a profile
func (l *Loader) Add(p *Profile) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profiles[p.Type] = p
}

// DefaultDuration returns the default session length for an interview
// type, if the catalog knows it
func (l *Loader) DefaultDuration(t models.InterviewType) (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.profiles[t]
	if !ok {
		return 0, false
	}
	return p.DefaultDurationMin, true
}
