package topping

import (
	"context"
	"testing"

	"burger/internal/aggregate"
	"burger/internal/artifact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc_Act(t *testing.T) {
	f := Func{
		Desc: Descriptor{Name: "stats", Provides: []string{"stats.units"}, Depends: []string{"identify"}},
		Fn: func(ctx context.Context, out *aggregate.Scoped, jar artifact.Artifact, opts Options) error {
			opts.Log().Info("counting")
			_, err := out.SetIfAbsent("stats.units", "2")
			return err
		},
	}

	set := aggregate.New()
	err := f.Act(context.Background(), set.Scope(f.Name(), f.Provides()), artifact.NewMemory(), Options{})
	require.NoError(t, err)

	v, ok := set.Get("stats.units")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestDescribe_Copies(t *testing.T) {
	f := Func{Desc: Descriptor{Name: "a", Provides: []string{"x"}, Depends: []string{"y"}}}
	d := Describe(f)
	d.Provides[0] = "changed"

	assert.Equal(t, "a", d.Name)
	assert.Equal(t, []string{"x"}, f.Provides())
	assert.Equal(t, []string{"y"}, d.Depends)
}

func TestFunc_NilFn(t *testing.T) {
	f := Func{Desc: Descriptor{Name: "noop"}}
	assert.NoError(t, f.Act(context.Background(), aggregate.New().Scope("noop", nil), artifact.NewMemory(), Options{}))
}
