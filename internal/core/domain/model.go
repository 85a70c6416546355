package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned when a policy name cannot be resolved.
var ErrUnknownPolicy = errors.New("unknown similarity policy")

// Policy selects how two texts are scored against each other.
type Policy uint8

const (
	// PolicyLevenshtein scores by normalized edit distance (order-sensitive).
	PolicyLevenshtein Policy = iota
	// PolicyJaccard scores by overlap of the unique character sets (order-insensitive).
	PolicyJaccard
)

// String returns the canonical name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyLevenshtein:
		return "levenshtein"
	case PolicyJaccard:
		return "jaccard"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the known policies.
func (p Policy) Valid() bool {
	return p == PolicyLevenshtein || p == PolicyJaccard
}

// ParsePolicy resolves a policy name. Matching is case-insensitive.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "levenshtein", "edit", "editdistance", "edit_distance":
		return PolicyLevenshtein, nil
	case "jaccard", "overlap":
		return PolicyJaccard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// Result holds the outcome of a scored comparison.
type Result struct {
	Name      string
	Policy    Policy
	Score     float64
	Passed    bool
	Threshold float64
	// Distance is the edit distance for PolicyLevenshtein and -1 otherwise.
	Distance     int
	FirstLength  int
	SecondLength int
	Details      map[string]interface{}
}

// Match holds the outcome of a best-match search.
type Match struct {
	Candidate string
	// Index is the position of Candidate in the searched list, -1 when nothing was searched.
	Index int
	Score float64
	Found bool
}

// NoMatch returns the sentinel result for an empty candidate list.
func NoMatch() Match {
	return Match{Index: -1}
}

// FloatArray holds the outcome of parsing a textual numeric list.
type FloatArray struct {
	Values []float64
	OK     bool
	// Fields is the number of comma separated fields that were converted.
	Fields int
}
