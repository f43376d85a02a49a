package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/table"
	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

// Vocab is a YAML vocabulary file. Either section may be omitted, so one
// file can carry both or each can live in its own file.
type Vocab struct {
	Candidates []Candidate `yaml:"candidates"`
	Rulebook   []Rule      `yaml:"rulebook"`
}

// Candidate is one derisking name and its category.
type Candidate struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// Rule is one rulebook element under a data category.
type Rule struct {
	Category string `yaml:"category"`
	Element  string `yaml:"element"`
}

// LoadVocab loads a vocabulary from a YAML file
func LoadVocab(path string) (*Vocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v Vocab
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, internalerr.ErrInvalidInput, err)
	}

	return &v, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadCandidates reads derisking entries from a YAML vocabulary or from a
// table file with Name and Category columns.
func LoadCandidates(path string) ([]vocab.Entry, error) {
	if !isYAML(path) {
		t, err := table.Open(path)
		if err != nil {
			return nil, err
		}
		return table.Candidates(t)
	}

	v, err := LoadVocab(path)
	if err != nil {
		return nil, err
	}
	out := make([]vocab.Entry, len(v.Candidates))
	for i, c := range v.Candidates {
		out[i] = vocab.Entry{Name: c.Name, Category: c.Category}
	}
	return out, nil
}

// LoadRules reads rulebook rows from a YAML vocabulary or from a table file
// with Data Category and Rulebook Element columns.
func LoadRules(path string) ([]vocab.Rule, error) {
	if !isYAML(path) {
		t, err := table.Open(path)
		if err != nil {
			return nil, err
		}
		return table.Rules(t)
	}

	v, err := LoadVocab(path)
	if err != nil {
		return nil, err
	}
	out := make([]vocab.Rule, len(v.Rulebook))
	for i, r := range v.Rulebook {
		out[i] = vocab.Rule{Category: r.Category, Element: r.Element}
	}
	return out, nil
}
