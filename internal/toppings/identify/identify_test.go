package identify

import (
	"context"
	"fmt"
	"testing"

	"burger/internal/aggregate"
	"burger/internal/artifact"
	"burger/internal/classfile"
	"burger/internal/classfile/classfiletest"
	"burger/internal/signature"
	"burger/internal/topping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingJar counts decode calls so tests can see how far a walk went.
type countingJar struct {
	*artifact.Memory
	opened []string
}

func (c *countingJar) Open(name string) (*classfile.ClassFile, error) {
	c.opened = append(c.opened, name)
	return c.Memory.Open(name)
}

func unit(name string, literals ...string) artifact.Entry {
	return artifact.Entry{Name: name + ".class", Data: classfiletest.WithStrings(name, literals...)}
}

func run(t *testing.T, jar artifact.Artifact) *aggregate.Set {
	t.Helper()
	top := New()
	set := aggregate.New()
	require.NoError(t, top.Act(context.Background(), set.Scope(top.Name(), top.Provides()), jar, topping.Options{}))
	return set
}

func view(t *testing.T, literals ...string) classfile.View {
	t.Helper()
	cf, err := classfile.Parse(classfiletest.WithStrings("x", literals...))
	require.NoError(t, err)
	return cf.Constants
}

func TestIdentify_EntityList(t *testing.T) {
	label, ok := New().Identify(view(t, "Skipping Entity with id foo"))
	require.True(t, ok)
	assert.Equal(t, EntityList, label)

	set := run(t, artifact.NewMemory(unit("aa", "Skipping Entity with id foo")))
	assert.Equal(t, map[string]string{EntityList: "aa.class"}, set.Snapshot())
}

func TestIdentify_EveryRule(t *testing.T) {
	tests := []struct {
		literal string
		want    string
	}{
		{"Wrong location! (9, 9, 9) should be (0, 0, 0), when adding", BlockSuperclass},
		{"Duplicate packet id:", PacketSuperclass},
		{"X#X", RecipeSuperclass},
		{"Invalid crafting results", ItemSuperclass},
		{"CONFLICT @ 4", ItemSuperclass},
		{"Skipping Entity with id ", EntityList},
		{"disconnect.loginFailedInfo", NetHandlerClient},
		{"Outdated client!", NetHandlerServer},
		{"Plains", BiomeSuperclass},
	}
	top := New()
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			label, ok := top.Identify(view(t, "noise", tt.literal))
			require.True(t, ok)
			assert.Equal(t, tt.want, label)
		})
	}

	_, ok := top.Identify(view(t, "nothing to see"))
	assert.False(t, ok)
}

func TestIdentify_RulePriority(t *testing.T) {
	// Plains comes first in the pool but the block rule ranks higher.
	label, ok := New().Identify(view(t, "Plains", "when adding"))
	require.True(t, ok)
	assert.Equal(t, BlockSuperclass, label)

	set := run(t, artifact.NewMemory(unit("both", "Plains", "when adding")))
	assert.Equal(t, map[string]string{BlockSuperclass: "both.class"}, set.Snapshot())
}

func TestAct_FirstWriterWins(t *testing.T) {
	set := run(t, artifact.NewMemory(
		unit("first", "Duplicate packet id"),
		unit("second", "Duplicate packet class"),
	))
	v, ok := set.Get(PacketSuperclass)
	require.True(t, ok)
	assert.Equal(t, "first.class", v)
}

func TestAct_LaterRuleOnLaterUnit(t *testing.T) {
	// The first unit satisfies only the block rule; the biome rule still
	// gets tried against the units that follow.
	set := run(t, artifact.NewMemory(
		unit("a", "when adding"),
		unit("b", "Plains"),
	))
	assert.Equal(t, map[string]string{BlockSuperclass: "a.class", BiomeSuperclass: "b.class"}, set.Snapshot())
}

func TestAct_StopsOnceAllLabelsFound(t *testing.T) {
	mem := artifact.NewMemory(
		unit("u1", "when adding"),
		unit("u2", "Duplicate packet"),
		unit("u3", "X#X"),
		unit("u4", "crafting results"),
		unit("u5", "Skipping Entity with id "),
		unit("u6", "disconnect.loginFailedInfo"),
		unit("u7", "Outdated client!"),
		unit("u8", "Plains"),
		unit("u9", "when adding"),
		unit("u10", "Plains"),
	)
	jar := &countingJar{Memory: mem}

	set := run(t, jar)
	assert.Equal(t, 8, set.Len())
	assert.Len(t, jar.opened, 8, "no unit after the eighth label may be inspected")
	assert.Equal(t, "u1.class", set.Snapshot()[BlockSuperclass])
}

func TestAct_AbsenceIsNotAnError(t *testing.T) {
	set := run(t, artifact.NewMemory(
		unit("a", "hello"),
		artifact.Entry{Name: "pack.mcmeta", Data: []byte("{}")},
	))
	assert.Equal(t, 0, set.Len())
}

func TestAct_SkipsUndecodableUnits(t *testing.T) {
	jar := &countingJar{Memory: artifact.NewMemory(
		artifact.Entry{Name: "broken.class", Data: []byte("junk")},
		artifact.Entry{Name: "title.png", Data: []byte{0x89, 'P', 'N', 'G'}},
		unit("ok", "Outdated client!"),
	)}
	set := run(t, jar)
	assert.Equal(t, map[string]string{NetHandlerServer: "ok.class"}, set.Snapshot())
	assert.Equal(t, []string{"broken.class", "ok.class"}, jar.opened, "resources are never decoded")
}

func TestAct_Idempotent(t *testing.T) {
	build := func() artifact.Artifact {
		var entries []artifact.Entry
		for i := 0; i < 20; i++ {
			literal := []string{"when adding", "Plains", "X#X", "noise"}[i%4]
			entries = append(entries, unit(fmt.Sprintf("c%02d", i), literal))
		}
		return artifact.NewMemory(entries...)
	}

	first := run(t, build())
	second := run(t, build())
	assert.Equal(t, first.Snapshot(), second.Snapshot())
	assert.Equal(t, first.WriteOrder(), second.WriteOrder())
}

func TestAct_AlreadyComplete(t *testing.T) {
	top := New()
	set := aggregate.New()
	for _, l := range DefaultRules.Labels() {
		set.SetIfAbsent(l, "pre.class")
	}
	jar := &countingJar{Memory: artifact.NewMemory(unit("a", "Plains"))}

	require.NoError(t, top.Act(context.Background(), set.Scope(top.Name(), top.Provides()), jar, topping.Options{}))
	assert.Empty(t, jar.opened)
}

func TestAct_UndeclaredWriteIsFatal(t *testing.T) {
	top := New()
	set := aggregate.New()
	scope := set.Scope(top.Name(), []string{BlockSuperclass}) // narrower than the rule table

	err := top.Act(context.Background(), scope, artifact.NewMemory(unit("p", "Plains")), topping.Options{})
	require.ErrorIs(t, err, aggregate.ErrUndeclaredLabel)
	assert.Equal(t, 0, set.Len())
}

func TestDescriptor(t *testing.T) {
	top := New()
	assert.Equal(t, "identify", top.Name())
	assert.Empty(t, top.Depends())
	assert.Equal(t, 8, top.Expected())
	assert.Equal(t, []string{
		BlockSuperclass, PacketSuperclass, RecipeSuperclass, ItemSuperclass,
		EntityList, NetHandlerClient, NetHandlerServer, BiomeSuperclass,
		RecipeInventory, RecipeCloth, NetHandler,
	}, top.Provides())
}

func TestNewWithRules_CustomTable(t *testing.T) {
	top := NewWithRules(signature.Rules{
		{Label: "main.class", Predicate: signature.MustRegexp(`^Minecraft \d+\.\d+`)},
	})
	assert.Equal(t, 1, top.Expected())

	set := aggregate.New()
	jar := &countingJar{Memory: artifact.NewMemory(
		unit("a", "Minecraft 1.2"),
		unit("b", "Minecraft 1.3"),
	)}
	require.NoError(t, top.Act(context.Background(), set.Scope(top.Name(), top.Provides()), jar, topping.Options{Verbose: true}))
	assert.Equal(t, map[string]string{"main.class": "a.class"}, set.Snapshot())
	assert.Len(t, jar.opened, 1)
}
