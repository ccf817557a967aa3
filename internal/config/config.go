// Package config loads the optional YAML rule file that extends the
// built-in normalization and reconciliation tables.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"rostersync/internal/reconcile"
	"rostersync/internal/report"
)

// File mirrors the YAML rule file layout.
type File struct {
	// ExtraCities extends the city vocabulary.
	ExtraCities []string `yaml:"extra_cities"`
	// LocationOverrides maps problematic full-text locations to a city.
	LocationOverrides map[string]string `yaml:"location_overrides"`
	// TestPatterns are extra regexes marking deletable test members.
	TestPatterns []string `yaml:"test_patterns"`
	// ProtectedNames are never deleted.
	ProtectedNames []string `yaml:"protected_names"`
	// DefaultPassword for inserted members (bcrypt-hashed at run time).
	DefaultPassword string `yaml:"default_password"`
	// Report sampling bounds; zero values keep the defaults.
	OperationSample int `yaml:"operation_sample"`
	ExtraSample     int `yaml:"extra_sample"`
	MismatchSample  int `yaml:"mismatch_sample"`
	TopCities       int `yaml:"top_cities"`
}

// Load reads the rule file at path; an empty path returns zero-value rules.
func Load(path string) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return f, nil
}

// Rules materializes the reconciliation rule set, compiling the extra
// test-data patterns.
func (f File) Rules() (reconcile.Rules, error) {
	r := reconcile.DefaultRules()
	for _, p := range f.TestPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return r, fmt.Errorf("bad test pattern %q: %w", p, err)
		}
		r.ExtraTestPatterns = append(r.ExtraTestPatterns, re)
	}
	for _, n := range f.ProtectedNames {
		r.ProtectedNames[n] = true
	}
	if f.DefaultPassword != "" {
		r.DefaultPassword = f.DefaultPassword
	}
	return r, nil
}

// Bounds materializes report sampling bounds.
func (f File) Bounds() report.Bounds {
	b := report.DefaultBounds()
	if f.OperationSample > 0 {
		b.OperationSample = f.OperationSample
	}
	if f.ExtraSample > 0 {
		b.ExtraSample = f.ExtraSample
	}
	if f.MismatchSample > 0 {
		b.MismatchSample = f.MismatchSample
	}
	if f.TopCities > 0 {
		b.TopCities = f.TopCities
	}
	return b
}
