package interview

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationLoggerWritesPerSessionNDJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewConversationLogger(ConversationLogConfig{
		Enabled:   true,
		Dir:       dir,
		QueueSize: 16,
	}, slog.Default())
	require.NoError(t, err)
	defer func() { _ = logger.Close() }()

	logger.Log(ConversationLogEvent{
		SessionID:  "sess-1",
		Channel:    ChannelHTTP,
		Direction:  DirectionInbound,
		EventType:  EventCandidateTurn,
		ContentRaw: "Jane\tDoe\x1b[0m",
	})

	path := filepath.Join(dir, "sess-1.ndjson")
	line := waitForLogLine(t, path)
	var got ConversationLogEvent
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "Jane\tDoe\x1b[0m", got.ContentRaw)
	assert.Equal(t, "Jane Doe", got.Content)
	assert.NotEmpty(t, got.Timestamp)
}

func TestConversationLoggerFlushesOnClose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewConversationLogger(ConversationLogConfig{Enabled: true, Dir: dir, QueueSize: 64}, nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		logger.Log(ConversationLogEvent{SessionID: "sess-2", EventType: EventAssistantTurn, ContentRaw: "hi"})
	}
	require.NoError(t, logger.Close())
	assert.Error(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "sess-2.ndjson"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 10)

	// Logging after close is ignored.
	logger.Log(ConversationLogEvent{SessionID: "sess-2"})
}

func TestConversationLoggerDisabledIsNoop(t *testing.T) {
	t.Parallel()

	logger, err := NewConversationLogger(ConversationLogConfig{Enabled: false}, nil)
	require.NoError(t, err)
	logger.Log(ConversationLogEvent{SessionID: "x"})
	assert.NoError(t, logger.Close())
}

func TestSessionFileNameSanitizesPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "___etc_passwd.ndjson", sessionFileName("../etc/passwd"))
	assert.Equal(t, "unknown.ndjson", sessionFileName(""))
}

func TestCleanForReadabilityStripsANSI(t *testing.T) {
	t.Parallel()

	clean := cleanForReadability("\x1b[31merror\x1b[0m   plain")
	assert.NotContains(t, clean, "\x1b[31m")
	assert.Equal(t, "error plain", clean)
}

func waitForLogLine(t *testing.T, path string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) > 0 {
				return lines[len(lines)-1]
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for log file %s", path)
	return ""
}
