// Package interview hosts intake conversations: it loads sessions, advances
// them through the engine, persists the result and hands finished
// interviews off to downstream publishers.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/engine"
	"github.com/ashureev/talentscout/internal/notify"
	"github.com/ashureev/talentscout/internal/store"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Conversation log vocabulary.
const (
	ChannelHTTP      = "http"
	ChannelWebSocket = "websocket"
	ChannelTerminal  = "terminal"

	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"

	EventSessionStarted   = "session_started"
	EventCandidateTurn    = "candidate_turn"
	EventAssistantTurn    = "assistant_turn"
	EventSessionFinished  = "session_finished"
	EventSessionRestarted = "session_restarted"
	EventSessionDeleted   = "session_deleted"
)

const publishTimeout = 15 * time.Second

type channelKey struct{}

// WithChannel tags ctx with the transport a request arrived on.
func WithChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, channelKey{}, channel)
}

func channelFromContext(ctx context.Context) string {
	if ch, ok := ctx.Value(channelKey{}).(string); ok && ch != "" {
		return ch
	}
	return ChannelHTTP
}

// Service serializes turns per session and persists every transition.
type Service struct {
	engine    *engine.Engine
	repo      store.Repository
	publisher notify.Publisher
	convLog   ConversationLogger
	logger    *slog.Logger
	now       func() time.Time

	// locks holds one *sync.Mutex per session ID.
	locks sync.Map
}

// NewService wires the engine to storage. Nil publisher and logger
// arguments fall back to no-op implementations.
func NewService(eng *engine.Engine, repo store.Repository, publisher notify.Publisher, convLog ConversationLogger, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = notify.Noop{}
	}
	if convLog == nil {
		convLog = noopConversationLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:    eng,
		repo:      repo,
		publisher: publisher,
		convLog:   convLog,
		logger:    logger,
		now:       time.Now,
	}
}

// Engine returns the underlying conversation engine.
func (s *Service) Engine() *engine.Engine {
	return s.engine
}

func (s *Service) lock(sessionID string) func() {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Start creates and stores a new session seeded with the greeting.
func (s *Service) Start(ctx context.Context) (*domain.Session, error) {
	sess := s.engine.NewSession(uuid.NewString())
	now := s.now()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	if err := s.repo.SaveSession(ctx, &sess); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}

	s.logger.Info("Interview session started", "session_id", sess.ID)
	s.logEvent(ctx, sess.ID, DirectionOutbound, EventSessionStarted, "", nil)
	s.logAssistantTurns(ctx, sess.ID, sess.Turns)
	return &sess, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Submit applies one candidate turn. When the engine refuses the turn
// (empty input, finished session) the stored session is returned together
// with the engine's result and error.
func (s *Service) Submit(ctx context.Context, sessionID, text string) (*domain.Session, engine.Result, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, engine.Result{}, err
	}

	next, res, err := s.engine.Advance(ctx, *sess, text)
	if err != nil {
		if !errors.Is(err, engine.ErrEmptyInput) && !errors.Is(err, engine.ErrSessionFinished) {
			s.logger.Error("Failed to advance session", "session_id", sessionID, "error", err)
		}
		return sess, res, err
	}

	next.UpdatedAt = s.now()
	if err := s.repo.SaveSession(ctx, &next); err != nil {
		return nil, engine.Result{}, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	s.logResult(ctx, sessionID, res)

	if res.Finished && res.Reason != "" {
		s.logger.Info("Interview session finished",
			"session_id", sessionID,
			"reason", res.Reason,
			"turns", len(next.Turns))
		s.handOff(ctx, next, res.Reason)
	}

	return &next, res, nil
}

// Restart resets a finished session.
func (s *Service) Restart(ctx context.Context, sessionID string) (*domain.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fresh, err := s.engine.Restart(*sess)
	if err != nil {
		return sess, err
	}
	fresh.UpdatedAt = s.now()
	if err := s.repo.SaveSession(ctx, &fresh); err != nil {
		return nil, fmt.Errorf("save restarted session %s: %w", sessionID, err)
	}

	s.logger.Info("Interview session restarted", "session_id", sessionID)
	s.logEvent(ctx, sessionID, DirectionOutbound, EventSessionRestarted, "", nil)
	s.logAssistantTurns(ctx, sessionID, fresh.Turns)
	return &fresh, nil
}

// Delete removes a session. Unknown sessions are not an error.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer func() {
		unlock()
		s.locks.Delete(sessionID)
	}()

	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	s.logEvent(ctx, sessionID, DirectionOutbound, EventSessionDeleted, "", nil)
	return nil
}

// ExpiredSessions lists sessions idle for longer than ttl.
func (s *Service) ExpiredSessions(ctx context.Context, ttl time.Duration) ([]string, error) {
	ids, err := s.repo.ListExpiredSessions(ctx, ttl)
	if err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}
	return ids, nil
}

// Ping checks the session store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// handOff publishes the finished interview. Failures are logged only; the
// turn itself has already been committed.
func (s *Service) handOff(ctx context.Context, sess domain.Session, reason domain.FinishReason) {
	sub := domain.NewSubmission(sess, reason, s.now().UTC())

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, sub); err != nil {
		s.logger.Error("Failed to hand off finished interview",
			"session_id", sess.ID,
			"reason", reason,
			"error", err)
		return
	}
	s.logEvent(ctx, sess.ID, DirectionOutbound, EventSessionFinished, "", map[string]any{
		"reason":  string(reason),
		"answers": len(sub.Answers),
	})
}

func (s *Service) logResult(ctx context.Context, sessionID string, res engine.Result) {
	for _, t := range res.Appended {
		if t.Speaker == domain.SpeakerUser {
			meta := map[string]any{
				"phase":     string(res.Phase),
				"sentiment": string(res.Sentiment),
			}
			if res.Directive != "" {
				meta["directive"] = res.Directive
			}
			if res.ValidationNotice != "" {
				meta["validation_notice"] = res.ValidationNotice
			}
			s.logEvent(ctx, sessionID, DirectionInbound, EventCandidateTurn, t.Text, meta)
			continue
		}
		s.logEvent(ctx, sessionID, DirectionOutbound, EventAssistantTurn, t.Text, nil)
	}
}

func (s *Service) logAssistantTurns(ctx context.Context, sessionID string, turns []domain.Turn) {
	for _, t := range turns {
		if t.Speaker == domain.SpeakerAssistant {
			s.logEvent(ctx, sessionID, DirectionOutbound, EventAssistantTurn, t.Text, nil)
		}
	}
}

func (s *Service) logEvent(ctx context.Context, sessionID, direction, eventType, content string, meta map[string]any) {
	if reqID := chiMiddleware.GetReqID(ctx); reqID != "" {
		if meta == nil {
			meta = make(map[string]any, 1)
		}
		meta["request_id"] = reqID
	}
	s.convLog.Log(ConversationLogEvent{
		Timestamp:  s.now().UTC().Format(time.RFC3339Nano),
		SessionID:  sessionID,
		Channel:    channelFromContext(ctx),
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
		Content:    cleanForReadability(content),
		Meta:       meta,
	})
}
