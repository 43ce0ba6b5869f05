// Package seed holds the initial knowledge base: canned replies and
// education facts, loaded from YAML.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"edubot/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed education.yaml
var defaultData []byte

type Data struct {
	StaticResponses []models.StaticResponse `yaml:"static_responses"`
	EducationFacts  []models.EducationFact  `yaml:"education_facts"`
}

// Default returns the built-in knowledge base.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Load reads a knowledge base file. An empty path yields the defaults.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *Data) validate() error {
	seen := make(map[string]bool, len(d.StaticResponses))
	for i, s := range d.StaticResponses {
		key := strings.ToLower(strings.TrimSpace(s.Question))
		if key == "" || strings.TrimSpace(s.Answer) == "" {
			return fmt.Errorf("static response %d: question and answer are required", i)
		}
		if seen[key] {
			return fmt.Errorf("static response %d: duplicate question %q", i, key)
		}
		seen[key] = true
	}
	for i, f := range d.EducationFacts {
		if strings.TrimSpace(f.Topic) == "" || strings.TrimSpace(f.Information) == "" {
			return fmt.Errorf("education fact %d: topic and information are required", i)
		}
	}
	return nil
}
