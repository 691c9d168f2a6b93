// Package topping defines the contract every analysis stage implements.
//
// A topping declares the labels it provides and the labels or toppings it
// depends on. The pipeline uses those declarations to order execution; the
// topping itself only talks to other toppings through the shared result set.
package topping

import (
	"context"
	"io"
	"log/slog"

	"burger/internal/aggregate"
	"burger/internal/artifact"
)

// Topping is one stage of analysis over an artifact.
type Topping interface {
	// Name identifies the topping. It may appear in other toppings' Depends.
	Name() string
	// Provides lists every label the topping may write.
	Provides() []string
	// Depends lists labels or topping names that must be complete first.
	Depends() []string
	// Act runs the analysis. Writes go through out, which rejects labels
	// outside Provides.
	Act(ctx context.Context, out *aggregate.Scoped, jar artifact.Artifact, opts Options) error
}

// Options are passed unchanged to every topping in a run.
type Options struct {
	// Verbose raises diagnostic output. It never changes what is matched.
	Verbose bool
	Logger  *slog.Logger
}

// Log returns the configured logger or one that discards everything.
func (o Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Descriptor is the static metadata of a topping.
type Descriptor struct {
	Name     string   `json:"name"`
	Provides []string `json:"provides"`
	Depends  []string `json:"depends"`
}

// Describe copies the declarations of t.
func Describe(t Topping) Descriptor {
	return Descriptor{
		Name:     t.Name(),
		Provides: append([]string(nil), t.Provides()...),
		Depends:  append([]string(nil), t.Depends()...),
	}
}

// ActFunc is the signature of Topping.Act.
type ActFunc func(ctx context.Context, out *aggregate.Scoped, jar artifact.Artifact, opts Options) error

// Func builds a topping from a descriptor and a function.
type Func struct {
	Desc Descriptor
	Fn   ActFunc
}

func (f Func) Name() string       { return f.Desc.Name }
func (f Func) Provides() []string { return f.Desc.Provides }
func (f Func) Depends() []string  { return f.Desc.Depends }

func (f Func) Act(ctx context.Context, out *aggregate.Scoped, jar artifact.Artifact, opts Options) error {
	if f.Fn == nil {
		return nil
	}
	return f.Fn(ctx, out, jar, opts)
}
