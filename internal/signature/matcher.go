// Package signature finds compiled units by the literal text they embed.
//
// Obfuscation renames classes, fields and methods on every release, but
// user-facing strings such as log messages and format strings survive. A
// Rule pairs a label with a predicate over that text; an ordered list of
// rules assigns at most one label to a unit.
package signature

import "burger/internal/classfile"

// Match returns the first constant of type typ whose text satisfies pred,
// scanning in pool order and stopping at the first hit. Constants without
// text never match.
func Match(view classfile.View, typ classfile.ConstantType, pred Predicate) (classfile.Constant, bool) {
	if view == nil || pred == nil {
		return classfile.Constant{}, false
	}
	n := view.Len()
	for i := 0; i < n; i++ {
		c := view.At(i)
		if c.Type != typ {
			continue
		}
		text, ok := c.Text()
		if !ok {
			continue
		}
		if pred(text) {
			return c, true
		}
	}
	return classfile.Constant{}, false
}

// MatchString is Match restricted to String constants.
func MatchString(view classfile.View, pred Predicate) (classfile.Constant, bool) {
	return Match(view, classfile.ConstantString, pred)
}
