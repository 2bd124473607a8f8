package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// Environment variables to configure the log file path and level.
const (
	envLogPath  = "HI_LOG"
	envLogLevel = "HI_LOG_LEVEL"
)

var (
	mu            sync.Mutex
	logFile       *os.File
	isInitialized bool
)

// InitFromEnv initializes the logger using HI_LOG or a default path, and
// HI_LOG_LEVEL (default "info").
func InitFromEnv() error {
	path := os.Getenv(envLogPath)
	if path == "" {
		// Default to the directory where the executable is located
		if exePath, err := os.Executable(); err == nil {
			path = filepath.Join(filepath.Dir(exePath), "hi.log")
		} else {
			path = "./hi.log"
		}
	}
	if err := Init(path); err != nil {
		return err
	}
	return SetLevel(os.Getenv(envLogLevel))
}

// Init routes apex/log output to the provided file path.
// It creates parent directories if needed and opens the file in append mode.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if isInitialized {
		return nil
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	log.SetHandler(NewHandler(f))
	isInitialized = true
	return nil
}

// SetLevel sets the apex/log level from a string; empty means info.
func SetLevel(level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return nil
}

// Close closes the underlying log file, if open, and stops routing to it.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetHandler(NewHandler(io.Discard))
	err := logFile.Close()
	logFile = nil
	isInitialized = false
	return err
}

// Handler writes one line per entry: timestamp, level, message, sorted fields.
type Handler struct {
	mu sync.Mutex
	w  io.Writer
}

// NewHandler returns a Handler writing to w.
func NewHandler(w io.Writer) *Handler {
	return &Handler{w: w}
}

// HandleLog implements the log.Handler interface.
func (h *Handler) HandleLog(e *log.Entry) error {
	var sb strings.Builder
	sb.WriteString(e.Timestamp.Format(time.RFC3339Nano))
	sb.WriteString(" [")
	sb.WriteString(strings.ToUpper(e.Level.String()))
	sb.WriteString("] ")
	sb.WriteString(e.Message)

	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, " %s=%v", name, e.Fields.Get(name))
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
