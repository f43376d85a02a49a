package config

import (
	"fmt"

	"github.com/cognicore/derisk/internal/logging"
	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

// Loader loads the vocabulary files and builds the normalized lookups
type Loader struct {
	CandidatesPath string
	RulebookPath   string

	Logger logging.Logger
}

// Components holds the loaded vocabularies
type Components struct {
	Vocabulary *vocab.Vocabulary
	Rulebook   *vocab.Rulebook
}

// Load reads the configured files. An empty path yields an empty vocabulary.
func (l *Loader) Load() (*Components, error) {
	log := l.Logger
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("vocab")

	comp := &Components{}

	// Load candidates
	var entries []vocab.Entry
	if l.CandidatesPath != "" {
		var err error
		entries, err = LoadCandidates(l.CandidatesPath)
		if err != nil {
			return nil, fmt.Errorf("load candidates: %w", err)
		}
	}
	comp.Vocabulary = vocab.Build(entries)

	st := comp.Vocabulary.Stats()
	if st.Blank > 0 {
		log.Warn("skipped candidates without a name",
			logging.String("path", l.CandidatesPath), logging.Int("rows", st.Blank))
	}
	log.Info("candidates loaded",
		logging.String("path", l.CandidatesPath),
		logging.Int("rows", len(entries)),
		logging.Int("terms", st.Terms),
		logging.Int("short_terms", st.ShortTerms),
		logging.Int("reserved", st.Reserved),
	)

	// Load rulebook
	var rules []vocab.Rule
	if l.RulebookPath != "" {
		var err error
		rules, err = LoadRules(l.RulebookPath)
		if err != nil {
			return nil, fmt.Errorf("load rulebook: %w", err)
		}
	}
	comp.Rulebook = vocab.BuildRulebook(rules)

	if n := comp.Rulebook.Skipped(); n > 0 {
		log.Warn("skipped incomplete rulebook rows",
			logging.String("path", l.RulebookPath), logging.Int("rows", n))
	}
	log.Info("rulebook loaded",
		logging.String("path", l.RulebookPath),
		logging.Int("elements", comp.Rulebook.Len()),
		logging.Int("categories", len(comp.Rulebook.Categories())),
	)

	return comp, nil
}
