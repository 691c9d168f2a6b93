package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"burger/internal/artifact"
	"burger/internal/classfile"
	"burger/internal/classfile/classfiletest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *artifact.Memory {
	return artifact.NewMemory(
		artifact.Entry{Name: "assets/lang/en_US.lang", Data: []byte("gui.done=Done")},
		artifact.Entry{Name: "a.class", Data: classfiletest.WithStrings("a", "one")},
		artifact.Entry{Name: "bad.class", Data: []byte{0xCA, 0xFE}},
		artifact.Entry{Name: "b.class", Data: classfiletest.WithStrings("b", "two")},
		artifact.Entry{Name: "c.class", Data: classfiletest.WithStrings("c", "three")},
	)
}

func TestCrawler_ScanArtifact(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := NewCrawler(logger, false)

	var seen []string
	st, err := c.ScanArtifact(context.Background(), fixture(), func(name string, cf *classfile.ClassFile) bool {
		seen = append(seen, name+"="+cf.ThisClass)
		return true
	})
	require.NoError(t, err)

	t.Run("Units visited in container order", func(t *testing.T) {
		assert.Equal(t, []string{"a.class=a", "b.class=b", "c.class=c"}, seen)
	})

	t.Run("Counts", func(t *testing.T) {
		assert.Equal(t, Stats{Entries: 5, Units: 4, Decoded: 3, Failed: 1}, st)
	})

	t.Run("Decode failure logged", func(t *testing.T) {
		assert.Contains(t, logs.String(), "bad.class")
		assert.Contains(t, logs.String(), "level=DEBUG")
	})
}

func TestCrawler_VerboseWarns(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	c := NewCrawler(logger, true)

	_, err := c.ScanArtifact(context.Background(), fixture(), func(string, *classfile.ClassFile) bool { return true })
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestCrawler_StopEarly(t *testing.T) {
	c := NewCrawler(nil, false)

	var seen []string
	st, err := c.ScanArtifact(context.Background(), fixture(), func(name string, _ *classfile.ClassFile) bool {
		seen = append(seen, name)
		return name != "b.class"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.class", "b.class"}, seen)
	assert.True(t, st.Stopped)
	assert.Equal(t, 4, st.Entries)
}

func TestCrawler_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCrawler(nil, false).ScanArtifact(ctx, fixture(), func(string, *classfile.ClassFile) bool {
		t.Fatal("visit must not run after cancellation")
		return false
	})
	assert.ErrorIs(t, err, context.Canceled)
}
