// Package logging provides the per-run log for the governance node.
// Every line goes to the console and to an append-only file named after the
// run's start time. The file is opened once per run and never read back.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryNode     Category = "node"     // Run lifecycle
	CategoryValues   Category = "values"   // Value-file loading and reconciliation
	CategoryOracle   Category = "oracle"   // LLM provider calls
	CategoryStore    Category = "store"    // Discussion store calls
	CategoryDispatch Category = "dispatch" // Action execution
)

// FileLayout names the run log file; it is formatted with the run start time.
const FileLayout = "node_20060102_150405.log"

// Options configures a run log.
type Options struct {
	// Dir holds the log file. Created if missing.
	Dir string
	// Verbose enables debug level.
	Verbose bool
	// Console receives the human-readable stream. Defaults to stderr.
	Console io.Writer
	// RunID is attached to every line when set.
	RunID string
	// Now overrides the clock used for the file name.
	Now func() time.Time
}

// RunLog is the process-wide log of one node run.
type RunLog struct {
	logger *zap.Logger
	file   *os.File
	path   string

	closeOnce sync.Once
	closeErr  error
}

// Open creates the log file and builds a logger teeing console and file output.
func Open(opts Options) (*RunLog, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}

	path := filepath.Join(dir, now().Format(FileLayout))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Verbose {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(console), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(file), level),
	)

	logger := zap.New(core)
	if opts.RunID != "" {
		logger = logger.With(zap.String("run_id", opts.RunID))
	}

	return &RunLog{logger: logger, file: file, path: path}, nil
}

// Nop returns a run log that discards everything and owns no file.
func Nop() *RunLog {
	return &RunLog{logger: zap.NewNop()}
}

// Wrap adopts an existing logger, typically an observer in tests.
func Wrap(logger *zap.Logger) *RunLog {
	return &RunLog{logger: logger}
}

// Logger returns the root logger.
func (l *RunLog) Logger() *zap.Logger {
	return l.logger
}

// Get returns the logger for a category.
func (l *RunLog) Get(category Category) *zap.Logger {
	return l.logger.Named(string(category))
}

// Path returns the log file path, or "" for loggers without a file.
func (l *RunLog) Path() string {
	return l.path
}

// Close flushes and releases the log file. Safe to call more than once.
func (l *RunLog) Close() error {
	l.closeOnce.Do(func() {
		// Syncing a terminal returns EINVAL on some platforms; only the file matters.
		_ = l.logger.Sync()
		if l.file != nil {
			l.closeErr = l.file.Close()
		}
	})
	return l.closeErr
}
