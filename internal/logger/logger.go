// Package logger provides the lyricard slog handler: single-line records
// with custom TRACE and FAIL levels, written to a rotating log file and
// optionally echoed to the console.
//
// Record format:
//
//	2006-01-02T15:04:05.000Z [LEVEL] message | key=value, text="two words"
//
// String values containing spaces, quotes, separators or nothing at all are
// quoted so lyric text stays on one unambiguous line.
package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ///////////////////////////////////////////////
// Custom Levels
// ///////////////////////////////////////////////

const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
	LevelFail  slog.Level = 12
)

// levels orders level names by severity; a record takes the first entry
// whose level it does not exceed.
var levels = []struct {
	level slog.Level
	name  string
}{
	{LevelTrace, "TRACE"},
	{LevelDebug, "DEBUG"},
	{LevelInfo, "INFO"},
	{LevelWarn, "WARN"},
	{LevelError, "ERROR"},
}

// levelName returns the display name for a log level.
func levelName(l slog.Level) string {
	for _, e := range levels {
		if l <= e.level {
			return e.name
		}
	}
	return "FAIL"
}

// ParseLevel converts a level name to slog.Level, case-insensitively.
// Unrecognized names map to LevelInfo.
func ParseLevel(s string) slog.Level {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "FAIL" {
		return LevelFail
	}
	for _, e := range levels {
		if e.name == name {
			return e.level
		}
	}
	return LevelInfo
}

// ///////////////////////////////////////////////
// Handler
// ///////////////////////////////////////////////

// lineEnding is CRLF on Windows, LF elsewhere.
var lineEnding = "\n"

func init() {
	if runtime.GOOS == "windows" {
		lineEnding = "\r\n"
	}
}

// Handler is a slog.Handler producing the single-line format above.
type Handler struct {
	// w receives formatted records.
	w io.Writer
	// mu serializes writes to w; shared by derived handlers.
	mu *sync.Mutex
	// level is the minimum severity emitted.
	level slog.Level
	// prefix holds attributes pre-rendered by [Handler.WithAttrs].
	prefix []string
	// group is the dot-separated key prefix set by [Handler.WithGroup].
	group string
}

// NewHandler creates a Handler that writes to w, dropping records below level.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, level: level, mu: &sync.Mutex{}}
}

// Enabled reports whether records at level are emitted.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes one record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder
	buf.WriteString(r.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	buf.WriteString(" [")
	buf.WriteString(levelName(r.Level))
	buf.WriteString("] ")
	buf.WriteString(r.Message)

	fields := append([]string(nil), h.prefix...)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.group, a)
		return true
	})
	if len(fields) > 0 {
		buf.WriteString(" | ")
		buf.WriteString(strings.Join(fields, ", "))
	}
	buf.WriteString(lineEnding)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

// WithAttrs returns a Handler that prepends attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := append([]string(nil), h.prefix...)
	for _, a := range attrs {
		prefix = appendAttr(prefix, h.group, a)
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, prefix: prefix, group: h.group}
}

// WithGroup returns a Handler whose later attribute keys are prefixed
// with name, e.g. "group.key".
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{w: h.w, mu: h.mu, level: h.level, prefix: h.prefix, group: joinKey(h.group, name)}
}

// appendAttr renders a as key=value fields, flattening groups.
func appendAttr(fields []string, group string, a slog.Attr) []string {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}
	if v.Kind() == slog.KindGroup {
		sub := joinKey(group, a.Key)
		for _, ga := range v.Group() {
			fields = appendAttr(fields, sub, ga)
		}
		return fields
	}
	return append(fields, joinKey(group, a.Key)+"="+formatValue(v))
}

// formatValue quotes strings that would otherwise be ambiguous.
func formatValue(v slog.Value) string {
	s := v.String()
	if v.Kind() != slog.KindString {
		return s
	}
	if s == "" || strings.ContainsAny(s, " \t\r\n\",=|") {
		return strconv.Quote(s)
	}
	return s
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

// ///////////////////////////////////////////////
// Logger Constructor
// ///////////////////////////////////////////////

// Options configures [NewLogger].
type Options struct {
	// Path is the log file. Empty disables the file sink.
	Path string
	// Level is the minimum level written.
	Level slog.Level
	// MaxSizeMB is the file size that triggers rotation.
	MaxSizeMB int
	// Console, when set, also receives every record.
	Console io.Writer
}

// NewLogger creates a logger writing to a rotating file and, optionally,
// the console. The returned io.Closer closes the file sink.
func NewLogger(opts Options) (*slog.Logger, io.Closer) {
	var sinks []io.Writer
	var closer io.Closer = nopCloser{}
	if opts.Path != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: 3,
			MaxAge:     28,
		}
		sinks = append(sinks, lj)
		closer = lj
	}
	if opts.Console != nil {
		sinks = append(sinks, opts.Console)
	}
	return slog.New(NewHandler(io.MultiWriter(sinks...), opts.Level)), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ///////////////////////////////////////////////
// Helper Functions
// ///////////////////////////////////////////////

// Trace logs a message at LevelTrace.
func Trace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Fail logs a message at LevelFail.
func Fail(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelFail, msg, args...)
}
