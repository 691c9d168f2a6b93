package signature

import (
	"fmt"
	"regexp"
	"strings"
)

// Predicate decides whether a literal marks a unit.
type Predicate func(text string) bool

// Contains matches literals containing substr.
func Contains(substr string) Predicate {
	return func(text string) bool { return strings.Contains(text, substr) }
}

// ContainsAny matches literals containing any of the substrings.
func ContainsAny(substrs ...string) Predicate {
	preds := make([]Predicate, len(substrs))
	for i, s := range substrs {
		preds[i] = Contains(s)
	}
	return AnyOf(preds...)
}

// Prefix matches literals starting with prefix.
func Prefix(prefix string) Predicate {
	return func(text string) bool { return strings.HasPrefix(text, prefix) }
}

// Equals matches literals equal to s.
func Equals(s string) Predicate {
	return func(text string) bool { return text == s }
}

// AnyOf matches when at least one predicate does, trying them in order.
func AnyOf(preds ...Predicate) Predicate {
	return func(text string) bool {
		for _, p := range preds {
			if p(text) {
				return true
			}
		}
		return false
	}
}

// AllOf matches when every predicate does.
func AllOf(preds ...Predicate) Predicate {
	return func(text string) bool {
		for _, p := range preds {
			if !p(text) {
				return false
			}
		}
		return len(preds) > 0
	}
}

// NewRegexp compiles expr into a predicate.
func NewRegexp(expr string) (Predicate, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid signature pattern %q: %w", expr, err)
	}
	return re.MatchString, nil
}

// MustRegexp is NewRegexp for patterns known at compile time.
func MustRegexp(expr string) Predicate {
	p, err := NewRegexp(expr)
	if err != nil {
		panic(err)
	}
	return p
}
