package tables

import (
	"fmt"
	"strings"
)

// Row kinds understood by table sources.
const (
	KindExact    = "exact"
	KindSuffix   = "suffix"
	KindFallback = "fallback"
)

// SuffixRule maps one domain suffix to a location.
// Rules are evaluated in declaration order: a broad suffix declared early
// shadows every narrower rule after it, so ".co.uk" must appear before ".uk"
// and the ".com" catch-all must stay last.
type SuffixRule struct {
	Suffix   string `json:"suffix"`
	Location string `json:"location"`
}

// Row is one table entry as delivered by a Source.
// Pattern holds the full domain for exact rows, the suffix for suffix rows,
// and is empty for fallback rows.
type Row struct {
	Kind     string
	Pattern  string
	Location string
}

// Tables holds the static resolution tables: exact domain matches, ordered
// suffix rules, and the fallback location pool.
// A Tables value is built once at startup and never modified afterwards,
// which makes lookups safe for concurrent use without locking.
type Tables struct {
	exact     map[string]string
	suffixes  []SuffixRule
	fallbacks []string
}

// New builds an immutable Tables value.
// Inputs are copied, so callers may reuse or modify their maps and slices
// afterwards without affecting the constructed tables.
// The fallback list must not be empty: it is the stage of last resort and
// always has to be able to answer.
func New(exact map[string]string, suffixes []SuffixRule, fallbacks []string) (*Tables, error) {
	if len(fallbacks) == 0 {
		return nil, fmt.Errorf("fallback list is empty")
	}

	t := &Tables{
		exact:     make(map[string]string, len(exact)),
		suffixes:  make([]SuffixRule, len(suffixes)),
		fallbacks: make([]string, len(fallbacks)),
	}
	for domain, location := range exact {
		t.exact[domain] = location
	}
	copy(t.suffixes, suffixes)
	copy(t.fallbacks, fallbacks)

	return t, nil
}

// FromRows assembles Tables from source rows.
// Suffix priority follows row order. Rows with an unknown kind are skipped
// instead of failing the whole load.
func FromRows(rows []Row) (*Tables, error) {
	exact := make(map[string]string)
	var suffixes []SuffixRule
	var fallbacks []string

	for _, row := range rows {
		switch row.Kind {
		case KindExact:
			exact[row.Pattern] = row.Location
		case KindSuffix:
			suffixes = append(suffixes, SuffixRule{Suffix: row.Pattern, Location: row.Location})
		case KindFallback:
			fallbacks = append(fallbacks, row.Location)
		}
	}

	return New(exact, suffixes, fallbacks)
}

// ExactLookup returns the location for a full domain.
// Keys are matched case-sensitively, exactly as declared.
func (t *Tables) ExactLookup(domain string) (string, bool) {
	location, ok := t.exact[domain]
	return location, ok
}

// SuffixLookup scans the suffix rules in declaration order and returns the
// location of the first rule whose suffix ends the domain.
func (t *Tables) SuffixLookup(domain string) (string, bool) {
	for _, rule := range t.suffixes {
		if strings.HasSuffix(domain, rule.Suffix) {
			return rule.Location, true
		}
	}
	return "", false
}

// Fallbacks returns a copy of the fallback location pool.
func (t *Tables) Fallbacks() []string {
	out := make([]string, len(t.fallbacks))
	copy(out, t.fallbacks)
	return out
}

// ExactCount reports the number of exact domain entries.
func (t *Tables) ExactCount() int {
	return len(t.exact)
}

// SuffixCount reports the number of suffix rules.
func (t *Tables) SuffixCount() int {
	return len(t.suffixes)
}

// FallbackCount reports the number of fallback locations.
func (t *Tables) FallbackCount() int {
	return len(t.fallbacks)
}
