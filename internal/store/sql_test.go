package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/talentscout/internal/domain"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSession(id string) *domain.Session {
	s := domain.NewSession(id)
	s.Append(domain.SpeakerAssistant, "Hello! What is your name?")
	s.Append(domain.SpeakerUser, "Jane Doe")
	s.Collected["name"] = "Jane Doe"
	s.IntakeIndex = 1
	s.TechQuestions = []string{"What is a goroutine?"}
	s.TechAnswers = []string{"A lightweight thread managed by the runtime"}
	s.Sentiment = "Positive"
	s.SentimentNote = "Great to see your enthusiasm!"
	s.CreatedAt = time.Now().Add(-time.Minute)
	s.UpdatedAt = time.Now()
	return &s
}

func TestSQLStoreSaveAndGet(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleSession("sess-1")
	require.NoError(t, s.SaveSession(ctx, want))

	got, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Turns, got.Turns)
	assert.Equal(t, want.Collected, got.Collected)
	assert.Equal(t, want.TechQuestions, got.TechQuestions)
	assert.Equal(t, want.TechAnswers, got.TechAnswers)
	assert.Equal(t, 1, got.IntakeIndex)
	assert.Equal(t, "Positive", got.Sentiment)
	assert.Equal(t, want.Language, got.Language)
	assert.False(t, got.Finished)
	assert.Equal(t, want.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestSQLStoreUpsertReplaces(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	sess := sampleSession("sess-1")
	require.NoError(t, s.SaveSession(ctx, sess))

	sess.Finished = true
	sess.TechIndex = 1
	sess.Append(domain.SpeakerAssistant, "Thank you!")
	require.NoError(t, s.SaveSession(ctx, sess))

	got, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, got.Finished)
	assert.Equal(t, 1, got.TechIndex)
	assert.Len(t, got.Turns, 3)
}

func TestSQLStoreGetMissingReturnsNil(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	got, err := s.GetSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLStoreGetRestoresEmptyCollected(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewSession("sess-empty")
	sess.Collected = nil
	require.NoError(t, s.SaveSession(ctx, &sess))

	got, err := s.GetSession(ctx, "sess-empty")
	require.NoError(t, err)
	assert.NotNil(t, got.Collected)
}

func TestSQLStoreDelete(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, sampleSession("sess-1")))
	require.NoError(t, s.DeleteSession(ctx, "sess-1"))
	require.NoError(t, s.DeleteSession(ctx, "sess-1"))

	got, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLStoreListExpiredSessions(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	stale := sampleSession("stale")
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	fresh := sampleSession("fresh")
	fresh.UpdatedAt = time.Now()

	require.NoError(t, s.SaveSession(ctx, stale))
	require.NoError(t, s.SaveSession(ctx, fresh))

	ids, err := s.ListExpiredSessions(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, ids)
}

func TestSQLStorePing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestRebindNumbersPlaceholders(t *testing.T) {
	t.Parallel()

	pg := &SQLStore{dialect: dialect{name: "postgres", numbered: true}}
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c < $2", pg.rebind("SELECT a FROM t WHERE b = ? AND c < ?"))

	lite := &SQLStore{dialect: dialect{name: "sqlite"}}
	assert.Equal(t, "DELETE FROM t WHERE id = ?", lite.rebind("DELETE FROM t WHERE id = ?"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestIsConflictError(t *testing.T) {
	t.Parallel()
	assert.False(t, IsConflictError(nil))
	assert.True(t, IsConflictError(errString("SQLITE_BUSY: database busy")))
	assert.True(t, IsConflictError(errString("database is locked")))
	assert.False(t, IsConflictError(errString("no such table")))
}

type errString string

func (e errString) Error() string { return string(e) }
