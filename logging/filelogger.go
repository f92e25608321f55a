// Package logging persists the raw output captured from runner processes so
// it can be inspected after the run.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileLogger writes each (target, runner) pair's captured output to
// <baseDir>/<runID>/<target>-<runner>.log.
type FileLogger struct {
	baseDir string
	runID   string
}

// NewFileLogger creates the run's log directory.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("log directory is required")
	}
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return &FileLogger{baseDir: baseDir, runID: runID}, nil
}

// Dir returns the directory output files are written to.
func (l *FileLogger) Dir() string {
	return filepath.Join(l.baseDir, l.runID)
}

// SaveRunnerOutput writes one pair's combined output and returns the file
// path.
func (l *FileLogger) SaveRunnerOutput(targetID, runnerID, output string) (string, error) {
	name := sanitize(targetID) + "-" + sanitize(runnerID) + ".log"
	path := filepath.Join(l.Dir(), name)
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		return "", fmt.Errorf("failed to write runner output to %s: %w", path, err)
	}
	return path, nil
}

// sanitize makes an id safe for use as a file name component.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, id)
}
