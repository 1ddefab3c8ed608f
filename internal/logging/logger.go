// Package logging provides leveled logging and activity tracing for neurosim.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A TraceLogger for structured JSONL activity traces (activity.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/neurosim-go/neurosim/internal/models"
)

// LevelTrace is a custom slog level below Debug for full content logging.
// At this level, per-sample payloads (spike timestamps, EEG samples) are
// included in trace events; at debug only summary fields are written.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// TraceLogger writes structured activity events to a JSONL file. The level
// it was opened at controls payload depth: LogSample attaches the full
// sample payload only at trace level.
//
// It is safe for concurrent use. A nil TraceLogger is safe to use;
// all methods are no-ops on nil receiver.
type TraceLogger struct {
	mu    sync.Mutex
	file  *os.File
	enc   *json.Encoder
	level slog.Level
}

// NewTraceLogger creates a trace logger writing to dir/activity.jsonl.
// At "info" level (the default), returns nil — no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewTraceLogger(dir string, level string) *TraceLogger {
	lvl := ParseLevel(level)
	if lvl >= slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, "activity.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &TraceLogger{file: f, enc: json.NewEncoder(f), level: lvl}
}

// Log writes an activity event as a single JSONL line.
// A "time" field is added automatically. The caller's map is not mutated.
// Safe to call on nil receiver.
func (tl *TraceLogger) Log(event map[string]any) {
	if tl == nil || tl.file == nil {
		return
	}

	// Copy to avoid mutating caller's map
	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	tl.write(entry)
}

// LogSample writes one event line for a generated sample, merging any extra
// fields (roll outcome, tick label) into the entry. At debug level the line
// carries the sample's summary: id, state, duration, spike count, mean rate.
// At trace level the full sample payload — every spike timestamp and EEG
// sample — is attached under the "sample" key. Safe to call on nil receiver.
func (tl *TraceLogger) LogSample(event string, sample models.BrainActivitySample, extra map[string]any) {
	if tl == nil || tl.file == nil {
		return
	}

	entry := map[string]any{
		"event":            event,
		"sample_id":        sample.ID,
		"state":            sample.State.String(),
		"duration_s":       sample.DurationS,
		"total_spikes":     sample.TotalSpikes(),
		"mean_firing_rate": sample.Metrics.MeanFiringRate,
	}
	for k, v := range extra {
		entry[k] = v
	}
	if tl.level <= LevelTrace {
		entry["sample"] = sample.ToMap()
	}
	tl.write(entry)
}

func (tl *TraceLogger) write(entry map[string]any) {
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.enc == nil {
		return
	}
	_ = tl.enc.Encode(entry)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (tl *TraceLogger) Close() {
	if tl == nil || tl.file == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.file.Close()
	tl.file = nil
	tl.enc = nil
}
