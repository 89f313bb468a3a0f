package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest declares the configured capability set: which skills load,
// plus optional per-skill keyword and timeout overrides.
type Manifest struct {
	Skills []ManifestEntry `yaml:"skills"`
}

// ManifestEntry configures one skill in the manifest
type ManifestEntry struct {
	Name           string   `yaml:"name"`
	Enabled        *bool    `yaml:"enabled,omitempty"`
	Keywords       []string `yaml:"keywords,omitempty"`
	TimeoutSeconds int      `yaml:"timeout_seconds,omitempty"`
}

// LoadManifest reads the skills manifest. A missing path returns an
// empty manifest: every known skill loads with its own defaults.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return &Manifest{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("failed to read skills manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse skills manifest: %w", err)
	}

	return &m, nil
}

// Entry returns the manifest entry for a skill name, if present.
func (m *Manifest) Entry(name string) (ManifestEntry, bool) {
	for _, e := range m.Skills {
		if e.Name == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// SkillEnabled reports whether a skill should load. Skills absent from
// the manifest are enabled; an entry disables only with enabled: false.
func (m *Manifest) SkillEnabled(name string) bool {
	e, ok := m.Entry(name)
	if !ok || e.Enabled == nil {
		return true
	}
	return *e.Enabled
}
