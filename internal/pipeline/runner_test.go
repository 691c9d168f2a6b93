package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"burger/internal/aggregate"
	"burger/internal/artifact"
	"burger/internal/classfile/classfiletest"
	"burger/internal/topping"
	"burger/internal/toppings/identify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jarFixture() *artifact.Memory {
	return artifact.NewMemory(
		artifact.Entry{Name: "aa.class", Data: classfiletest.WithStrings("aa", "when adding")},
		artifact.Entry{Name: "ab.class", Data: classfiletest.WithStrings("ab", "Outdated client!")},
		artifact.Entry{Name: "ac.class", Data: classfiletest.WithStrings("ac", "Skipping Entity with id ")},
	)
}

// suffixTopping records "<dependency unit>+<suffix>" for a label it depends on.
func suffixTopping(name, dep, suffix string) topping.Func {
	label := name + ".result"
	return topping.Func{
		Desc: topping.Descriptor{Name: name, Provides: []string{label}, Depends: []string{dep}},
		Fn: func(ctx context.Context, out *aggregate.Scoped, jar artifact.Artifact, opts topping.Options) error {
			unit, ok := out.Get(dep)
			if !ok {
				// Missing anchors degrade the topping, never the run.
				return nil
			}
			_, err := out.SetIfAbsent(label, unit+suffix)
			return err
		},
	}
}

func TestRunner_Run(t *testing.T) {
	plan, err := NewPlan(
		suffixTopping("blocks", identify.BlockSuperclass, "+blocks"),
		identify.New(),
		suffixTopping("biomes", identify.BiomeSuperclass, "+biomes"),
	)
	require.NoError(t, err)

	set := aggregate.New()
	results, err := NewRunner(plan, topping.Options{}).Run(context.Background(), set, jarFixture())
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "identify", results[0].Topping)
	assert.ElementsMatch(t, []string{identify.BlockSuperclass, identify.NetHandlerServer, identify.EntityList}, results[0].Written)
	assert.Equal(t, []string{"blocks.result"}, results[1].Written)
	assert.Empty(t, results[2].Written, "missing biome anchor is a soft miss")

	assert.Equal(t, map[string]string{
		identify.BlockSuperclass:  "aa.class",
		identify.NetHandlerServer: "ab.class",
		identify.EntityList:       "ac.class",
		"blocks.result":           "aa.class+blocks",
	}, set.Snapshot())
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var laterRan atomic.Bool

	plan, err := NewPlan(
		identify.New(),
		topping.Func{
			Desc: topping.Descriptor{Name: "failing", Depends: []string{"identify"}},
			Fn: func(context.Context, *aggregate.Scoped, artifact.Artifact, topping.Options) error {
				return boom
			},
		},
		topping.Func{
			Desc: topping.Descriptor{Name: "later", Depends: []string{"failing"}},
			Fn: func(context.Context, *aggregate.Scoped, artifact.Artifact, topping.Options) error {
				laterRan.Store(true)
				return nil
			},
		},
	)
	require.NoError(t, err)

	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			laterRan.Store(false)
			r := NewRunner(plan, topping.Options{})
			run := r.Run
			if parallel {
				run = r.RunParallel
			}
			results, err := run(context.Background(), aggregate.New(), jarFixture())
			require.ErrorIs(t, err, boom)

			var se *StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "failing", se.Topping)

			require.Len(t, results, 2)
			assert.ErrorIs(t, results[1].Err, boom)
			assert.False(t, laterRan.Load(), "dependents of a failed topping never run")
		})
	}
}

func TestRunner_UndeclaredWriteFails(t *testing.T) {
	plan, err := NewPlan(topping.Func{
		Desc: topping.Descriptor{Name: "rogue", Provides: []string{"mine"}},
		Fn: func(ctx context.Context, out *aggregate.Scoped, jar artifact.Artifact, opts topping.Options) error {
			_, err := out.SetIfAbsent(identify.BlockSuperclass, "x.class")
			return err
		},
	})
	require.NoError(t, err)

	_, err = NewRunner(plan, topping.Options{}).Run(context.Background(), aggregate.New(), jarFixture())
	assert.ErrorIs(t, err, aggregate.ErrUndeclaredLabel)
}

func TestRunner_ParallelMatchesSequential(t *testing.T) {
	var toppings []topping.Topping
	toppings = append(toppings, identify.New())
	for i := 0; i < 8; i++ {
		toppings = append(toppings, suffixTopping(fmt.Sprintf("t%d", i), identify.EntityList, fmt.Sprintf("#%d", i)))
	}
	plan, err := NewPlan(toppings...)
	require.NoError(t, err)

	seq := aggregate.New()
	_, err = NewRunner(plan, topping.Options{}).Run(context.Background(), seq, jarFixture())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		par := aggregate.New()
		results, err := NewRunner(plan, topping.Options{Verbose: true}).RunParallel(context.Background(), par, jarFixture())
		require.NoError(t, err)
		require.Len(t, results, 9)
		assert.Equal(t, seq.Snapshot(), par.Snapshot())
	}
}

func TestRunner_Cancelled(t *testing.T) {
	plan, err := NewPlan(identify.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewRunner(plan, topping.Options{}).Run(ctx, aggregate.New(), jarFixture())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
