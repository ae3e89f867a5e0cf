package logger

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

// Level is the logging level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = map[Level]string{
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
}

// Options configures the process logger.
type Options struct {
	Enabled bool
	Level   string
	File    string
	Console bool
}

type sink struct {
	level   Level
	out     *log.Logger
	closer  io.Closer
	enabled bool
}

var (
	mu      sync.RWMutex
	current = &sink{level: Info, out: log.New(os.Stdout, "", 0), enabled: true}
)

// Init installs the process logger. It replaces any previous one.
func Init(opts Options) error {
	if !opts.Enabled {
		swap(&sink{enabled: false})
		return nil
	}

	var writers []io.Writer
	var closer io.Closer
	if opts.File != "" {
		dir := filepath.Dir(opts.File)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}
	if opts.Console || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	swap(&sink{
		level:   ParseLevel(opts.Level),
		out:     log.New(io.MultiWriter(writers...), "", 0),
		closer:  closer,
		enabled: true,
	})
	return nil
}

// SetOutput sends log lines at level and above to w. Tests use it to capture output.
func SetOutput(w io.Writer, level Level) {
	swap(&sink{level: level, out: log.New(w, "", 0), enabled: true})
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if current.closer != nil {
		err := current.closer.Close()
		current.closer = nil
		return err
	}
	return nil
}

func swap(next *sink) {
	mu.Lock()
	prev := current
	current = next
	mu.Unlock()
	if prev.closer != nil {
		prev.closer.Close()
	}
}

// ParseLevel maps a config string to a Level, defaulting to Info.
func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func write(level Level, component, format string, args ...interface{}) {
	mu.RLock()
	s := current
	mu.RUnlock()
	if !s.enabled || s.level > level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	if component != "" {
		s.out.Printf("[%s] [%s] [%s] %s", ts, levelNames[level], component, msg)
		return
	}
	s.out.Printf("[%s] [%s] %s", ts, levelNames[level], msg)
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) { write(Debug, "", format, args...) }

// Infof logs an info message.
func Infof(format string, args ...interface{}) { write(Info, "", format, args...) }

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) { write(Warn, "", format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) { write(Error, "", format, args...) }

// Component tags every line with a subsystem name.
type Component struct {
	name string
}

// For returns a logger that prefixes lines with name.
func For(name string) Component {
	return Component{name: name}
}

func (c Component) Debugf(format string, args ...interface{}) { write(Debug, c.name, format, args...) }
func (c Component) Infof(format string, args ...interface{})  { write(Info, c.name, format, args...) }
func (c Component) Warnf(format string, args ...interface{})  { write(Warn, c.name, format, args...) }
func (c Component) Errorf(format string, args ...interface{}) { write(Error, c.name, format, args...) }
