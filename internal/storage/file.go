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
	"time"
)

// ChatLog is an append-only delimited file of chat records. It never quotes
// or escapes: commas inside fields become semicolons instead. A single
// writing process is assumed.
type ChatLog struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewChatLog(path string) *ChatLog {
	return &ChatLog{path: path, now: time.Now}
}

func (l *ChatLog) Path() string { return l.path }

// EnsureInitialized creates the log with its header when it does not exist.
// Calling it on an existing log changes nothing.
func (l *ChatLog) EnsureInitialized() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat chat log: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to ensure log dir: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("failed to init chat log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(chatLogHeader + "\n"); err != nil {
		return fmt.Errorf("write chat log header: %w", err)
	}
	return nil
}

// Append writes one record stamped with the current local time.
func (l *ChatLog) Append(question, answer string) error {
	line := strings.Join([]string{
		l.now().Format(TimestampLayout),
		Sanitize(question),
		Sanitize(answer),
	}, ",") + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write append: %w", err)
	}
	return f.Close()
}

// Records reads every record back, skipping the header and any line that
// does not carry three fields.
func (l *ChatLog) Records() ([]ChatRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 10*1024*1024)
	var records []ChatRecord
	first := true
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if first {
			first = false
			if line == chatLogHeader {
				continue
			}
		}
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			continue
		}
		records = append(records, ChatRecord{Timestamp: parts[0], Question: parts[1], Answer: parts[2]})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return records, nil
}

var sanitizer = strings.NewReplacer(",", ";", "\r\n", " ", "\n", " ", "\r", " ")

// Sanitize makes s safe for a single delimited field.
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}
