package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/talentscout/internal/domain"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS interview_sessions (
		session_id TEXT PRIMARY KEY,
		intake_index INTEGER NOT NULL,
		tech_index INTEGER NOT NULL,
		finished INTEGER NOT NULL DEFAULT 0,
		validation_notice TEXT NOT NULL DEFAULT '',
		sentiment TEXT NOT NULL DEFAULT '',
		sentiment_note TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL,
		turns_json TEXT NOT NULL,
		collected_json TEXT NOT NULL,
		questions_json TEXT NOT NULL,
		answers_json TEXT NOT NULL DEFAULT '[]',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interview_sessions_updated ON interview_sessions(updated_at);
	`

// dialect captures the differences between the supported SQL backends.
type dialect struct {
	name string
	// numbered selects $1, $2... placeholders instead of ?.
	numbered bool
	// serializeWrites guards writes with a mutex to avoid SQLITE_BUSY.
	serializeWrites bool
}

// SQLStore implements Repository on top of database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	writeMu sync.Mutex
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) initSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders for dialects with numbered parameters.
func (s *SQLStore) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) lockWrites() func() {
	if !s.dialect.serializeWrites {
		return func() {}
	}
	s.writeMu.Lock()
	return s.writeMu.Unlock
}

// Ping verifies database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := s.rebind(`
		SELECT session_id, intake_index, tech_index, finished,
		       validation_notice, sentiment, sentiment_note, language,
		       turns_json, collected_json, questions_json, answers_json, created_at, updated_at
		FROM interview_sessions WHERE session_id = ?`)

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var session domain.Session
	var finished int64
	var turnsJSON, collectedJSON, questionsJSON, answersJSON string
	var createdAt, updatedAt int64

	err := row.Scan(
		&session.ID, &session.IntakeIndex, &session.TechIndex, &finished,
		&session.ValidationNotice, &session.Sentiment, &session.SentimentNote, &session.Language,
		&turnsJSON, &collectedJSON, &questionsJSON, &answersJSON, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(turnsJSON), &session.Turns); err != nil {
		return nil, fmt.Errorf("decode turns: %w", err)
	}
	if err := json.Unmarshal([]byte(collectedJSON), &session.Collected); err != nil {
		return nil, fmt.Errorf("decode collected fields: %w", err)
	}
	if err := json.Unmarshal([]byte(questionsJSON), &session.TechQuestions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal([]byte(answersJSON), &session.TechAnswers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if session.Collected == nil {
		session.Collected = make(map[string]string)
	}

	session.Finished = finished != 0
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	return &session, nil
}

// SaveSession creates or replaces a session.
func (s *SQLStore) SaveSession(ctx context.Context, session *domain.Session) error {
	turnsJSON, err := json.Marshal(session.Turns)
	if err != nil {
		return fmt.Errorf("encode turns: %w", err)
	}
	collectedJSON, err := json.Marshal(session.Collected)
	if err != nil {
		return fmt.Errorf("encode collected fields: %w", err)
	}
	questionsJSON, err := json.Marshal(session.TechQuestions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	answersJSON, err := json.Marshal(session.TechAnswers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	now := time.Now()
	createdAt, updatedAt := session.CreatedAt, session.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}

	query := s.rebind(`
		INSERT INTO interview_sessions (
			session_id, intake_index, tech_index, finished,
			validation_notice, sentiment, sentiment_note, language,
			turns_json, collected_json, questions_json, answers_json, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			intake_index = excluded.intake_index,
			tech_index = excluded.tech_index,
			finished = excluded.finished,
			validation_notice = excluded.validation_notice,
			sentiment = excluded.sentiment,
			sentiment_note = excluded.sentiment_note,
			language = excluded.language,
			turns_json = excluded.turns_json,
			collected_json = excluded.collected_json,
			questions_json = excluded.questions_json,
			answers_json = excluded.answers_json,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`)

	finished := 0
	if session.Finished {
		finished = 1
	}

	unlock := s.lockWrites()
	defer unlock()

	_, err = s.db.ExecContext(ctx, query,
		session.ID, session.IntakeIndex, session.TechIndex, finished,
		session.ValidationNotice, session.Sentiment, session.SentimentNote, session.Language,
		string(turnsJSON), string(collectedJSON), string(questionsJSON), string(answersJSON),
		createdAt.Unix(), updatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession removes a session.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLStore) DeleteSession(ctx context.Context, sessionID string) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.deleteSessionOnce(ctx, sessionID)
		if err == nil {
			return nil
		}

		if IsConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // exponential backoff: 100ms, 200ms, 400ms
			slog.Debug("DeleteSession failed with SQLITE_BUSY, retrying",
				"session_id", sessionID,
				"attempt", i+1,
				"delay", delay)
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return fmt.Errorf("failed to delete session %s after %d attempts: %w", sessionID, i+1, err)
	}

	return nil
}

func (s *SQLStore) deleteSessionOnce(ctx context.Context, sessionID string) error {
	unlock := s.lockWrites()
	defer unlock()

	query := s.rebind(`DELETE FROM interview_sessions WHERE session_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListExpiredSessions returns the IDs of sessions idle for longer than ttl.
func (s *SQLStore) ListExpiredSessions(ctx context.Context, ttl time.Duration) ([]string, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := s.rebind(`SELECT session_id FROM interview_sessions WHERE updated_at < ? ORDER BY updated_at`)

	rows, err := s.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("query expired sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close expired sessions rows", "error", closeErr)
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired session row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired sessions: %w", err)
	}
	return ids, nil
}

// Ensure SQLStore implements Repository.
var _ Repository = (*SQLStore)(nil)
