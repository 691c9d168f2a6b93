package crawler

import (
	"context"
	"io"
	"log/slog"

	"burger/internal/artifact"
	"burger/internal/classfile"
)

// Visit is called for every decoded unit. Returning false stops the walk.
type Visit func(name string, cf *classfile.ClassFile) bool

// Stats counts what a walk saw.
type Stats struct {
	Entries int // entries enumerated, units or not
	Units   int // entries recognized as compiled units
	Decoded int // units handed to the callback
	Failed  int // units that could not be decoded
	Stopped bool
}

// Crawler walks the compiled units of an artifact in container order.
type Crawler struct {
	logger  *slog.Logger
	verbose bool
}

// NewCrawler creates a crawler. A nil logger discards diagnostics.
func NewCrawler(logger *slog.Logger, verbose bool) *Crawler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Crawler{logger: logger, verbose: verbose}
}

// ScanArtifact decodes each unit and streams it to visit. Entries that are not
// compiled units are passed over; units that fail to decode are logged and
// skipped so one bad entry never fails the whole walk.
func (c *Crawler) ScanArtifact(ctx context.Context, a artifact.Artifact, visit Visit) (Stats, error) {
	var st Stats
	for _, name := range a.Names() {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.Entries++
		if !artifact.IsUnit(name) {
			continue
		}
		st.Units++

		cf, err := a.Open(name)
		if err != nil {
			st.Failed++
			level := slog.LevelDebug
			if c.verbose {
				level = slog.LevelWarn
			}
			c.logger.Log(ctx, level, "skipping undecodable unit", slog.String("entry", name), slog.Any("error", err))
			continue
		}
		st.Decoded++

		if !visit(name, cf) {
			st.Stopped = true
			break
		}
	}
	return st, nil
}
