package interview

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ConversationLogEvent is one line of a per-session NDJSON conversation log.
type ConversationLogEvent struct {
	Timestamp  string         `json:"ts"`
	SessionID  string         `json:"session_id"`
	Channel    string         `json:"channel"`
	Direction  string         `json:"direction"`
	EventType  string         `json:"event_type"`
	ContentRaw string         `json:"content_raw,omitempty"`
	Content    string         `json:"content,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// ConversationLogger records conversation events.
type ConversationLogger interface {
	Log(event ConversationLogEvent)
	Close() error
}

// ConversationLogConfig controls NDJSON conversation logging.
type ConversationLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

type noopConversationLogger struct{}

func (noopConversationLogger) Log(ConversationLogEvent) {}
func (noopConversationLogger) Close() error             { return nil }

// NoopConversationLogger returns a logger that discards every event.
func NoopConversationLogger() ConversationLogger {
	return noopConversationLogger{}
}

var errLoggerClosed = errors.New("conversation logger closed")

// fileConversationLogger appends events to <dir>/<session>.ndjson from a
// single background goroutine. Events are dropped when the queue is full.
type fileConversationLogger struct {
	dir    string
	queue  chan ConversationLogEvent
	done   chan struct{}
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewConversationLogger creates the configured logger. A disabled config
// yields a no-op logger.
func NewConversationLogger(cfg ConversationLogConfig, logger *slog.Logger) (ConversationLogger, error) {
	if !cfg.Enabled {
		return noopConversationLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("conversation log directory is required")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create conversation log directory: %w", err)
	}

	l := &fileConversationLogger{
		dir:    cfg.Dir,
		queue:  make(chan ConversationLogEvent, cfg.QueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l, nil
}

func (l *fileConversationLogger) Log(event ConversationLogEvent) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if event.Content == "" && event.ContentRaw != "" {
		event.Content = cleanForReadability(event.ContentRaw)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- event:
	default:
		l.logger.Warn("conversation log queue full, dropping event",
			"session_id", event.SessionID,
			"event_type", event.EventType)
	}
}

func (l *fileConversationLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return errLoggerClosed
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *fileConversationLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		if err := l.write(event); err != nil {
			l.logger.Warn("failed to write conversation log event",
				"error", err,
				"session_id", event.SessionID)
		}
	}
}

func (l *fileConversationLogger) write(event ConversationLogEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	path := filepath.Join(l.dir, sessionFileName(event.SessionID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Debug("failed to close conversation log file", "error", closeErr)
		}
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func sessionFileName(sessionID string) string {
	name := unsafeFileChars.ReplaceAllString(sessionID, "_")
	if name == "" {
		name = "unknown"
	}
	return name + ".ndjson"
}

var (
	ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// cleanForReadability strips terminal escapes and control characters and
// collapses whitespace.
func cleanForReadability(raw string) string {
	s := ansiEscape.ReplaceAllString(raw, "")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
