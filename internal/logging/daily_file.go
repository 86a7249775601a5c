// Package logging sets up slog over a log file that rotates daily.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DailyFile is an io.Writer that appends to pdfchat-YYYY-MM-DD.log in dir,
// switching files when the date changes.
type DailyFile struct {
	mu              sync.Mutex
	dir             string
	now             func() time.Time
	currentFile     *os.File
	currentFileName string
}

// NewDailyFile creates dir if needed and opens today's file.
func NewDailyFile(dir string) (*DailyFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	d := &DailyFile{dir: dir, now: time.Now}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return d, nil
}

// caller holds mu
func (d *DailyFile) rotateIfNeeded() error {
	fileName := fmt.Sprintf("pdfchat-%s.log", d.now().Format("2006-01-02"))
	if fileName == d.currentFileName {
		return nil
	}
	if d.currentFile != nil {
		d.currentFile.Close()
	}
	f, err := os.OpenFile(filepath.Join(d.dir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	d.currentFile = f
	d.currentFileName = fileName
	return nil
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rotateIfNeeded(); err != nil {
		return 0, err
	}
	return d.currentFile.Write(p)
}

// Path returns the file currently written to.
func (d *DailyFile) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return filepath.Join(d.dir, d.currentFileName)
}

func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.currentFile == nil {
		return nil
	}
	err := d.currentFile.Close()
	d.currentFile = nil
	d.currentFileName = ""
	return err
}

// ParseLevel maps debug, info, warn and error onto slog levels. Anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to a DailyFile in dir and, if tee is
// non-nil, to tee as well. The returned closer closes the file.
func New(dir, level string, tee io.Writer) (*slog.Logger, io.Closer, error) {
	file, err := NewDailyFile(dir)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = file
	if tee != nil {
		w = io.MultiWriter(file, tee)
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler), file, nil
}
