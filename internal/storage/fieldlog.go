package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FieldLog is a headerless append-only file of comma-joined fields, used for
// the farm task, environment and journal logs.
type FieldLog struct {
	path string
	mu   sync.Mutex
}

func NewFieldLog(path string) *FieldLog {
	return &FieldLog{path: path}
}

func (l *FieldLog) Path() string { return l.path }

// Append writes fields as one line. Fields are sanitized the same way as chat
// records so a stray comma cannot shift columns.
func (l *FieldLog) Append(fields ...string) error {
	clean := make([]string, len(fields))
	for i, f := range fields {
		clean[i] = Sanitize(f)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure dir: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	if _, err := f.WriteString(strings.Join(clean, ",") + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write append: %w", err)
	}
	return f.Close()
}

// Exists reports whether anything has been logged yet.
func (l *FieldLog) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Rows returns every non-empty line split into at most n fields. A missing
// file yields fs.ErrNotExist.
func (l *FieldLog) Rows(n int) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer f.Close()

	var rows [][]string
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if line == "" {
			continue
		}
		rows = append(rows, strings.SplitN(line, ",", n))
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return rows, nil
}
