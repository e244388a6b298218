// Package logging builds the charm logger shared by the sitetack binaries.
package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// File, when set, receives a copy of every line.
	File string
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// Verbose forces debug regardless of Level.
	Verbose bool
	// Out defaults to os.Stderr.
	Out *os.File
}

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
	now func() time.Time
}

// Write buffers bytes until a newline is found; for each full line, write a
// timestamped line to the underlying writer. Partial lines stay buffered.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			// put the partial line back
			t.buf.Reset()
			t.buf.WriteString(line)
			break
		}
		ts := t.now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return n, err
		}
	}
	return n, nil
}

// terminalWriter exposes an Fd so charm log can detect a TTY through the
// wrapping writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// ParseLevel maps a config level name to a charm log level. ok is false for
// unknown names, which map to info.
func ParseLevel(s string) (level log.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, true
	case "info", "":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error":
		return log.ErrorLevel, true
	default:
		return log.InfoLevel, false
	}
}

// New returns a logger writing timestamped lines to Out and, if configured,
// appending to File. The returned close func releases the file.
func New(opts Options) (*log.Logger, func() error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	var w io.Writer = out
	closer := func() error { return nil }

	var fileErr error
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			w = io.MultiWriter(out, f)
			closer = f.Close
		} else {
			fileErr = err
		}
	}

	tw := &timestampWriter{w: w, now: time.Now}
	logger := log.New(&terminalWriter{w: tw, fd: out.Fd()})

	level, ok := ParseLevel(opts.Level)
	if opts.Verbose {
		level, ok = log.DebugLevel, true
	}
	logger.SetLevel(level)
	if !ok {
		logger.Warn("unknown log_level, defaulting to info", "provided", opts.Level)
	}
	if fileErr != nil {
		logger.Warn("log_file could not be opened; logging to stderr only", "path", opts.File, "err", fileErr)
	} else if opts.File != "" {
		logger.Debug("log file open for append", "path", opts.File)
	}
	return logger, closer
}

// Discard returns a logger that drops everything, for tests and library
// callers that pass no logger.
func Discard() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}
