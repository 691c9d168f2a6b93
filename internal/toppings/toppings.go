// Package toppings lists the toppings a run can use.
package toppings

import (
	"fmt"

	"burger/internal/topping"
	"burger/internal/toppings/identify"
)

// All returns a fresh instance of every available topping in declaration
// order.
func All() []topping.Topping {
	return []topping.Topping{
		identify.New(),
	}
}

// Select returns the named toppings from All, in declaration order. An empty
// list selects everything.
func Select(names []string) ([]topping.Topping, error) {
	all := All()
	if len(names) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = false
	}
	var out []topping.Topping
	for _, t := range all {
		if _, ok := want[t.Name()]; ok {
			want[t.Name()] = true
			out = append(out, t)
		}
	}
	for _, n := range names {
		if !want[n] {
			return nil, fmt.Errorf("unknown topping: %s", n)
		}
	}
	return out, nil
}

// Expected returns the labels a full run of ts can find: the rule labels of
// identification toppings and the declared provides of the rest.
func Expected(ts []topping.Topping) []string {
	var out []string
	for _, t := range ts {
		if id, ok := t.(*identify.Topping); ok {
			out = append(out, id.Labels()...)
			continue
		}
		out = append(out, t.Provides()...)
	}
	return out
}
