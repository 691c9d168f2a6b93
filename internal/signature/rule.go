package signature

import "burger/internal/classfile"

// Rule assigns Label to any unit holding a String constant accepted by
// Predicate.
type Rule struct {
	Label     string
	Predicate Predicate
}

// Rules is an ordered rule table. Earlier rules take priority.
type Rules []Rule

// First returns the label of the first rule satisfied by the view.
func (rs Rules) First(view classfile.View) (string, bool) {
	for _, r := range rs {
		if _, ok := MatchString(view, r.Predicate); ok {
			return r.Label, true
		}
	}
	return "", false
}

// Labels returns the distinct labels in rule order.
func (rs Rules) Labels() []string {
	seen := make(map[string]struct{}, len(rs))
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		if _, ok := seen[r.Label]; ok {
			continue
		}
		seen[r.Label] = struct{}{}
		out = append(out, r.Label)
	}
	return out
}
