// Package logging provides the application log for SkyCrypt+.
// Logs are appended to skycrypt_plus.log in the per-user SkyCrypt+ directory.
// The file is rotated to skycrypt_plus.log.old at startup once it grows past
// the configured size. Until Init is called every log call is a no-op.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// LogFileName is the name of the log file.
	LogFileName = "skycrypt_plus.log"
	// AppDirName is the per-user directory shared with the preference file.
	AppDirName = "SkyCrypt+"
	// DefaultMaxSize is the size in bytes after which the log is rotated at startup.
	DefaultMaxSize int64 = 10 * 1024 * 1024

	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Level is the severity of a log line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

// String returns the upper-case label written to the log file.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the subset of the log API that packages accept for injection.
type Logger interface {
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// Options configures Init.
type Options struct {
	// Path overrides the log file location.
	Path string
	// MaxSize is the rotation threshold in bytes. Zero uses DefaultMaxSize.
	MaxSize int64
	// Debug enables Debugf output.
	Debug bool
	// Echo receives a copy of every line, e.g. os.Stderr. Nil disables echoing.
	Echo io.Writer
}

var (
	mu       sync.RWMutex
	debugOn  bool
	logger   *log.Logger
	logFile  *os.File
	filePath string

	// getLogPath is a function variable to allow overriding in tests.
	getLogPath = defaultGetLogPath
	// now is overridden in tests for stable timestamps.
	now = time.Now
)

// Init opens the log file, rotating it first if it is too large.
// When the primary location cannot be used, Init falls back to a file in the
// temp directory (and finally stderr) and returns the original error so the
// caller can report it; logging keeps working either way.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	debugOn = opts.Debug

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		p, err := getLogPath()
		if err != nil {
			useFallbackLocked(opts.Echo)
			return fmt.Errorf("determine log path: %w", err)
		}
		path = p
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	f, err := openLogFile(path, maxSize)
	if err != nil {
		useFallbackLocked(opts.Echo)
		logger.Printf("%s - %s - open log file %s: %v", now().Format(timeLayout), LevelError, path, err)
		return fmt.Errorf("open log file: %w", err)
	}

	logFile = f
	filePath = path
	logger = log.New(withEcho(f, opts.Echo), "", 0)
	logger.Printf("%s - %s - ===== SkyCrypt+ Started =====", now().Format(timeLayout), LevelInfo)
	return nil
}

func openLogFile(path string, maxSize int64) (*os.File, error) {
	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := rotate(path, maxSize); err != nil {
		return nil, err
	}
	//nolint:gosec // G304: Log path is computed from the user config dir, not user input
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

// rotate moves an oversized log to <path>.old, replacing any previous backup.
func rotate(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxSize {
		return nil
	}
	backup := path + ".old"
	_ = os.Remove(backup)
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return nil
}

func useFallbackLocked(echo io.Writer) {
	tmp := filepath.Join(os.TempDir(), LogFileName)
	//nolint:gosec // G304: Fixed file name in the temp directory
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logger = log.New(os.Stderr, "", 0)
		return
	}
	logFile = f
	filePath = tmp
	logger = log.New(withEcho(f, echo), "", 0)
}

func withEcho(w io.Writer, echo io.Writer) io.Writer {
	if echo == nil {
		return w
	}
	return io.MultiWriter(w, echo)
}

// Close closes the log file if open.
// Safe to call even if Init was never called.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logger = nil
	filePath = ""
}

// Path returns the file currently being written, or "" before Init.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return filePath
}

// DebugEnabled reports whether Debugf output is written.
func DebugEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugOn
}

func write(level Level, format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if logger == nil {
		return
	}
	if level == LevelDebug && !debugOn {
		return
	}
	logger.Printf("%s - %s - %s", now().Format(timeLayout), level, fmt.Sprintf(format, v...))
}

// Debugf writes a message only when debug logging is enabled.
func Debugf(format string, v ...any) { write(LevelDebug, format, v...) }

// Infof writes an informational message.
func Infof(format string, v ...any) { write(LevelInfo, format, v...) }

// Warnf writes a warning.
func Warnf(format string, v ...any) { write(LevelWarn, format, v...) }

// Errorf writes a recovered error.
func Errorf(format string, v ...any) { write(LevelError, format, v...) }

// Criticalf writes an error that is about to reach the user.
func Criticalf(format string, v ...any) { write(LevelCritical, format, v...) }

type packageLogger struct{}

func (packageLogger) Infof(format string, v ...any)  { Infof(format, v...) }
func (packageLogger) Warnf(format string, v ...any)  { Warnf(format, v...) }
func (packageLogger) Errorf(format string, v ...any) { Errorf(format, v...) }

// Default returns a Logger backed by the package-level log.
func Default() Logger { return packageLogger{} }

type discard struct{}

func (discard) Infof(string, ...any)  {}
func (discard) Warnf(string, ...any)  {}
func (discard) Errorf(string, ...any) {}

// Discard returns a Logger that drops everything.
func Discard() Logger { return discard{} }

// defaultGetLogPath returns the path to the log file.
func defaultGetLogPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config dir: %w", err)
	}
	return filepath.Join(dir, AppDirName, LogFileName), nil
}

// GetLogPath returns the default path to the log file.
func GetLogPath() (string, error) {
	return getLogPath()
}
