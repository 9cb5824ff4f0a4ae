package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the user-editable rule file: rewrite rules, curated order and labels.
//
// Example:
//
//	rules:
//	  - name: strip-tag
//	    match: ", #.*"
//	    replace: ""
//	order: ["Зарплата / Работа", "Продукты"]
//	labels:
//	  income: Income
type Profile struct {
	Rules  []Rule   `yaml:"rules"`
	Order  []string `yaml:"order"`
	Labels Labels   `yaml:"labels"`
}

// Labels overrides report captions. Empty fields keep the defaults.
type Labels struct {
	Income          string `yaml:"income"`
	Outcome         string `yaml:"outcome"`
	Total           string `yaml:"total"`
	SummarySheet    string `yaml:"summary_sheet"`
	CategoriesSheet string `yaml:"categories_sheet"`
}

// DefaultProfile returns the built-in rules and curated order.
func DefaultProfile() Profile {
	return Profile{Rules: Default(), Order: DefaultOrder()}
}

// LoadProfile reads a YAML profile. An empty path returns DefaultProfile.
// Sections omitted from the file fall back to the built-in values.
func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %q: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile document.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.Rules == nil {
		p.Rules = Default()
	}
	if p.Order == nil {
		p.Order = DefaultOrder()
	}
	if _, err := Compile(p.Rules); err != nil {
		return Profile{}, err
	}
	return p, nil
}
