// Package engine implements the intake conversation state machine.
//
// An Engine is stateless: Advance takes a session value and returns the
// next one, so the caller owns persistence and identity of sessions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/questions"
	"github.com/ashureev/talentscout/internal/sentiment"
)

var (
	// ErrEmptyInput is returned for blank submissions.
	ErrEmptyInput = errors.New("input is empty")
	// ErrSessionFinished is returned for turns submitted after the session ended.
	ErrSessionFinished = errors.New("session is finished")
	// ErrNotFinished is returned when restarting a session that is still running.
	ErrNotFinished = errors.New("session is not finished")
)

// DefaultExitKeyword ends the conversation from any phase.
const DefaultExitKeyword = "exit"

// languageDirective is the substring that marks a language-switch request.
const languageDirective = "language"

// Annotator scores the sentiment of a turn.
type Annotator interface {
	Annotate(ctx context.Context, text string) sentiment.Annotation
}

// Result describes what a single turn did.
type Result struct {
	// Appended holds the turns added to the log by this call, user turn first.
	Appended         []domain.Turn
	Phase            domain.Phase
	ValidationNotice string
	Sentiment        sentiment.Label
	SentimentNote    string
	// Directive is "exit" or "language" when the turn was consumed by one.
	Directive string
	Finished  bool
	// Reason is set on the turn that finished the session.
	Reason domain.FinishReason
	// Reply is a message for the caller to show when the turn was refused.
	Reply string
}

// Engine advances sessions one user turn at a time.
type Engine struct {
	schema    *intake.Schema
	provider  questions.Provider
	annotator Annotator
	messages  Messages
	exit      string
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExitKeyword overrides the exit keyword.
func WithExitKeyword(keyword string) Option {
	return func(e *Engine) {
		if k := strings.TrimSpace(keyword); k != "" {
			e.exit = strings.ToLower(k)
		}
	}
}

// WithMessages overrides the message catalog.
func WithMessages(m Messages) Option {
	return func(e *Engine) { e.messages = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine. A nil annotator uses the built-in lexicon scorer.
func New(schema *intake.Schema, provider questions.Provider, annotator Annotator, opts ...Option) *Engine {
	e := &Engine{
		schema:    schema,
		provider:  provider,
		annotator: annotator,
		messages:  DefaultMessages(),
		exit:      DefaultExitKeyword,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.annotator == nil {
		e.annotator = sentiment.NewAnnotator(nil, e.logger)
	}
	return e
}

// Schema returns the intake schema the engine walks.
func (e *Engine) Schema() *intake.Schema {
	return e.schema
}

// NewSession returns a fresh session seeded with the greeting.
func (e *Engine) NewSession(id string) domain.Session {
	s := domain.NewSession(id)
	s.Append(domain.SpeakerAssistant, e.messages.Greeting)
	return s
}

// Restart wipes a finished session back to its initial state.
func (e *Engine) Restart(s domain.Session) (domain.Session, error) {
	if !s.Finished {
		return s, ErrNotFinished
	}
	fresh := e.NewSession(s.ID)
	fresh.CreatedAt = s.CreatedAt
	return fresh, nil
}

// Phase derives the phase of s. A completed intake with no questions left
// but no closing message yet still counts as technical: the next turn closes.
func (e *Engine) Phase(s domain.Session) domain.Phase {
	switch {
	case s.Finished:
		return domain.PhaseDone
	case s.IntakeIndex < e.schema.Len():
		return domain.PhaseIntake
	default:
		return domain.PhaseTechnical
	}
}

// Prompt renders the question currently awaiting an answer, or "" when the
// intake is complete.
func (e *Engine) Prompt(s domain.Session) (string, error) {
	if s.IntakeIndex >= e.schema.Len() {
		return s.CurrentQuestion(), nil
	}
	return e.schema.Render(s.IntakeIndex, s.Collected)
}

// Advance applies one user turn to s and returns the resulting session.
// s itself is never modified.
func (e *Engine) Advance(ctx context.Context, s domain.Session, input string) (domain.Session, Result, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return s, Result{Phase: e.Phase(s)}, ErrEmptyInput
	}
	if s.Finished {
		return s, Result{Phase: domain.PhaseDone, Finished: true, Reply: e.messages.Fallback}, ErrSessionFinished
	}

	t := &turn{e: e, s: s.Clone()}
	t.say(domain.SpeakerUser, text)

	lower := strings.ToLower(text)
	if lower == e.exit {
		t.finish(domain.FinishExited, e.messages.Farewell)
		t.res.Directive = "exit"
		return t.done()
	}

	note := e.annotator.Annotate(ctx, text)
	t.s.Sentiment = string(note.Label)
	t.s.SentimentNote = note.Advisory

	if strings.Contains(lower, languageDirective) {
		t.switchLanguage(lower)
		return t.done()
	}

	var err error
	switch {
	case t.s.IntakeIndex < e.schema.Len():
		err = t.answerField(text)
	case t.s.HasQuestionsRemaining():
		t.answerQuestion(text)
	case len(t.s.TechQuestions) == 0:
		t.s.ValidationNotice = ""
		t.finish(domain.FinishCompleted, e.messages.ThankYou)
	default:
		t.say(domain.SpeakerAssistant, e.messages.Fallback)
	}
	if err != nil {
		return s, Result{Phase: e.Phase(s)}, err
	}
	return t.done()
}

// turn accumulates the changes of a single Advance call.
type turn struct {
	e   *Engine
	s   domain.Session
	res Result
}

func (t *turn) say(speaker domain.Speaker, text string) {
	t.res.Appended = append(t.res.Appended, t.s.Append(speaker, text))
}

func (t *turn) finish(reason domain.FinishReason, tmpl string) {
	t.say(domain.SpeakerAssistant, personalize(tmpl, t.s.Collected[intake.KeyName]))
	t.s.Finished = true
	t.res.Reason = reason
}

func (t *turn) switchLanguage(lower string) {
	t.res.Directive = "language"
	for _, l := range languages {
		if strings.Contains(lower, l.keyword) {
			t.s.Language = l.name
			t.say(domain.SpeakerAssistant, t.e.messages.LanguageAccepted[l.name])
			return
		}
	}
	t.say(domain.SpeakerAssistant, t.e.messages.LanguagePrompt)
}

func (t *turn) answerField(text string) error {
	schema := t.e.schema
	idx := t.s.IntakeIndex

	if !schema.Validate(idx, text) {
		prompt, err := schema.Render(idx, t.s.Collected)
		if err != nil {
			return fmt.Errorf("re-prompt field %d: %w", idx, err)
		}
		t.s.ValidationNotice = t.e.messages.InvalidInput
		t.say(domain.SpeakerAssistant, prompt)
		return nil
	}

	t.s.ValidationNotice = ""
	t.s.Collected[schema.Field(idx).Key] = text
	t.s.IntakeIndex++

	if t.s.IntakeIndex < schema.Len() {
		prompt, err := schema.Render(t.s.IntakeIndex, t.s.Collected)
		if err != nil {
			return fmt.Errorf("prompt field %d: %w", t.s.IntakeIndex, err)
		}
		t.say(domain.SpeakerAssistant, prompt)
		return nil
	}

	t.s.TechQuestions = t.e.provider.Questions(t.s.Collected[intake.KeyTechStack])
	t.e.logger.Debug("intake complete", "session_id", t.s.ID, "questions", len(t.s.TechQuestions))
	if len(t.s.TechQuestions) > 0 {
		t.say(domain.SpeakerAssistant, t.e.messages.Announcement)
		t.say(domain.SpeakerAssistant, t.s.TechQuestions[0])
	}
	return nil
}

func (t *turn) answerQuestion(text string) {
	t.s.ValidationNotice = ""
	t.s.RecordAnswer(text)
	if t.s.HasQuestionsRemaining() {
		t.say(domain.SpeakerAssistant, t.s.CurrentQuestion())
		return
	}
	t.finish(domain.FinishCompleted, t.e.messages.ThankYou)
}

func (t *turn) done() (domain.Session, Result, error) {
	t.res.Phase = t.e.Phase(t.s)
	t.res.Finished = t.s.Finished
	t.res.ValidationNotice = t.s.ValidationNotice
	t.res.Sentiment = sentiment.Label(t.s.Sentiment)
	t.res.SentimentNote = t.s.SentimentNote
	return t.s, t.res, nil
}
