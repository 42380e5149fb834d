package interview

import (
	"time"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/engine"
)

// SessionView is the client representation of a session.
type SessionView struct {
	ID               string            `json:"id"`
	Phase            domain.Phase      `json:"phase"`
	Turns            []domain.Turn     `json:"turns"`
	Prompt           string            `json:"prompt,omitempty"`
	Collected        map[string]string `json:"collected"`
	QuestionIndex    int               `json:"question_index"`
	QuestionCount    int               `json:"question_count"`
	ValidationNotice string            `json:"validation_notice,omitempty"`
	Sentiment        string            `json:"sentiment,omitempty"`
	SentimentNote    string            `json:"sentiment_note,omitempty"`
	Language         string            `json:"language"`
	Finished         bool              `json:"finished"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// TurnView is the client representation of one processed turn.
type TurnView struct {
	SessionID        string              `json:"session_id"`
	Appended         []domain.Turn       `json:"appended"`
	Phase            domain.Phase        `json:"phase"`
	ValidationNotice string              `json:"validation_notice,omitempty"`
	Sentiment        string              `json:"sentiment,omitempty"`
	SentimentNote    string              `json:"sentiment_note,omitempty"`
	Directive        string              `json:"directive,omitempty"`
	Finished         bool                `json:"finished"`
	Reason           domain.FinishReason `json:"reason,omitempty"`
	Reply            string              `json:"reply,omitempty"`
}

// NewSessionView renders sess for clients.
func (s *Service) NewSessionView(sess *domain.Session) SessionView {
	prompt, err := s.engine.Prompt(*sess)
	if err != nil {
		s.logger.Warn("failed to render current prompt", "session_id", sess.ID, "error", err)
	}
	turns := sess.Turns
	if turns == nil {
		turns = []domain.Turn{}
	}
	return SessionView{
		ID:               sess.ID,
		Phase:            s.engine.Phase(*sess),
		Turns:            turns,
		Prompt:           prompt,
		Collected:        sess.Collected,
		QuestionIndex:    sess.TechIndex,
		QuestionCount:    len(sess.TechQuestions),
		ValidationNotice: sess.ValidationNotice,
		Sentiment:        sess.Sentiment,
		SentimentNote:    sess.SentimentNote,
		Language:         sess.Language,
		Finished:         sess.Finished,
		CreatedAt:        sess.CreatedAt,
		UpdatedAt:        sess.UpdatedAt,
	}
}

// NewTurnView renders an engine result for clients.
func NewTurnView(sessionID string, res engine.Result) TurnView {
	appended := res.Appended
	if appended == nil {
		appended = []domain.Turn{}
	}
	return TurnView{
		SessionID:        sessionID,
		Appended:         appended,
		Phase:            res.Phase,
		ValidationNotice: res.ValidationNotice,
		Sentiment:        string(res.Sentiment),
		SentimentNote:    res.SentimentNote,
		Directive:        res.Directive,
		Finished:         res.Finished,
		Reason:           res.Reason,
		Reply:            res.Reply,
	}
}
