package vocab

import (
	"sort"
	"strings"
)

// Rule is one row of the rulebook table.
type Rule struct {
	Category string
	Element  string
}

// RuleElement is a normalized rulebook element.
type RuleElement struct {
	Element    string // as loaded
	Normalized string // lowercased Element
	Length     int    // characters in Element
	Category   string // lowercased data category
}

// Rulebook groups rule elements by normalized data category.
type Rulebook struct {
	byCategory map[string][]RuleElement
	skipped    int
}

// BuildRulebook groups rules by lowercased category, keeping load order
// within each category. Rows with a blank category or element are skipped.
func BuildRulebook(rules []Rule) *Rulebook {
	rb := &Rulebook{byCategory: make(map[string][]RuleElement)}
	for _, r := range rules {
		if strings.TrimSpace(r.Category) == "" || strings.TrimSpace(r.Element) == "" {
			rb.skipped++
			continue
		}
		cat := Fold(r.Category)
		rb.byCategory[cat] = append(rb.byCategory[cat], RuleElement{
			Element:    r.Element,
			Normalized: Fold(r.Element),
			Length:     Len(r.Element),
			Category:   cat,
		})
	}
	return rb
}

// Elements returns the elements of a normalized category, or nil if the
// category is unknown. The slice is shared and must not be modified.
func (rb *Rulebook) Elements(category string) []RuleElement {
	return rb.byCategory[category]
}

// HasCategory reports whether any element is filed under category.
func (rb *Rulebook) HasCategory(category string) bool {
	_, ok := rb.byCategory[category]
	return ok
}

// Categories returns the normalized categories in sorted order.
func (rb *Rulebook) Categories() []string {
	out := make([]string, 0, len(rb.byCategory))
	for cat := range rb.byCategory {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of elements.
func (rb *Rulebook) Len() int {
	n := 0
	for _, els := range rb.byCategory {
		n += len(els)
	}
	return n
}

// Skipped returns how many rows were dropped for a blank field.
func (rb *Rulebook) Skipped() int {
	return rb.skipped
}
