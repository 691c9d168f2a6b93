package aggregate

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_FirstWriterWins(t *testing.T) {
	s := New()

	assert.True(t, s.SetIfAbsent("entity.list", "abc.class"))
	assert.False(t, s.SetIfAbsent("entity.list", "xyz.class"))

	v, ok := s.Get("entity.list")
	require.True(t, ok)
	assert.Equal(t, "abc.class", v)
	assert.Equal(t, 1, s.Len())
}

func TestSet_Views(t *testing.T) {
	s := New()
	s.SetIfAbsent("b", "2")
	s.SetIfAbsent("a", "1")

	assert.Equal(t, []string{"a", "b"}, s.Labels())
	assert.Equal(t, []string{"b", "a"}, s.WriteOrder())

	snap := s.Snapshot()
	snap["c"] = "3"
	assert.False(t, s.Has("c"), "snapshot must be a copy")
}

func TestScoped_RejectsUndeclared(t *testing.T) {
	s := New()
	w := s.Scope("identify", []string{"block.superclass"})

	ok, err := w.SetIfAbsent("block.superclass", "a.class")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = w.SetIfAbsent("packet.superclass", "b.class")
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrUndeclaredLabel)

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "identify", we.Owner)
	assert.Equal(t, "packet.superclass", we.Label)
	assert.False(t, s.Has("packet.superclass"))

	assert.Equal(t, []string{"block.superclass"}, w.Written())
}

func TestScoped_ReadsEverything(t *testing.T) {
	s := New()
	s.SetIfAbsent("entity.list", "e.class")
	w := s.Scope("downstream", nil)

	v, ok := w.Get("entity.list")
	require.True(t, ok)
	assert.Equal(t, "e.class", v)
	assert.Equal(t, 1, w.Count([]string{"entity.list", "missing"}))
	assert.Equal(t, "downstream", w.Owner())
}

func TestScoped_DisjointConcurrentWriters(t *testing.T) {
	const perStage = 50

	labelsFor := func(stage string) []string {
		out := make([]string, perStage)
		for i := range out {
			out[i] = fmt.Sprintf("%s.%d", stage, i)
		}
		return out
	}

	sequential := New()
	for _, stage := range []string{"left", "right"} {
		w := sequential.Scope(stage, labelsFor(stage))
		for _, l := range labelsFor(stage) {
			_, err := w.SetIfAbsent(l, stage+".class")
			require.NoError(t, err)
		}
	}

	concurrent := New()
	var wg sync.WaitGroup
	for _, stage := range []string{"left", "right"} {
		wg.Add(1)
		go func(stage string) {
			defer wg.Done()
			w := concurrent.Scope(stage, labelsFor(stage))
			for _, l := range labelsFor(stage) {
				_, err := w.SetIfAbsent(l, stage+".class")
				assert.NoError(t, err)
			}
		}(stage)
	}
	wg.Wait()

	assert.Equal(t, sequential.Snapshot(), concurrent.Snapshot())
}
