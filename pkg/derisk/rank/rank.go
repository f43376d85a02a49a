// Package rank picks the single best term among several that matched the
// same text.
//
// Order: longer first (more specific), then reverse byte-wise order of the
// original name. Byte order on UTF-8 equals code point order, so the
// tie-break is stable across platforms and runs.
package rank

// Candidate is a matched term.
type Candidate struct {
	Name   string
	Length int
}

// Before reports whether a ranks ahead of b.
func Before(a, b Candidate) bool {
	if a.Length != b.Length {
		return a.Length > b.Length
	}
	return a.Name > b.Name
}

// Best returns the index of the top-ranked candidate. Among candidates
// that rank equal the first one wins.
func Best(cands []Candidate) (int, bool) {
	if len(cands) == 0 {
		return -1, false
	}
	best := 0
	for i := 1; i < len(cands); i++ {
		if Before(cands[i], cands[best]) {
			best = i
		}
	}
	return best, true
}

// SelectBest returns the name of the top-ranked candidate.
func SelectBest(cands []Candidate) (string, bool) {
	i, ok := Best(cands)
	if !ok {
		return "", false
	}
	return cands[i].Name, true
}
