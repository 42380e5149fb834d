package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/intake"
	"github.com/ashureev/talentscout/internal/questions"
	"github.com/ashureev/talentscout/internal/sentiment"
)

type stubAnnotator struct {
	note  sentiment.Annotation
	calls int
}

func (s *stubAnnotator) Annotate(context.Context, string) sentiment.Annotation {
	s.calls++
	return s.note
}

type staticProvider []string

func (p staticProvider) Questions(string) []string { return p }

var validAnswers = []string{
	"John Smith",
	"john@example.com",
	"+1 234-567-8901",
	"5",
	"Backend Engineer",
	"New York",
	"Python, Django",
}

func newTestEngine(provider questions.Provider, opts ...Option) (*Engine, *stubAnnotator) {
	ann := &stubAnnotator{note: sentiment.Annotation{Label: sentiment.Neutral}}
	return New(intake.DefaultSchema(), provider, ann, opts...), ann
}

func advance(t *testing.T, e *Engine, s domain.Session, input string) (domain.Session, Result) {
	t.Helper()
	next, res, err := e.Advance(context.Background(), s, input)
	require.NoError(t, err)
	return next, res
}

func completeIntake(t *testing.T, e *Engine, s domain.Session, techstack string) domain.Session {
	t.Helper()
	answers := append(append([]string(nil), validAnswers[:6]...), techstack)
	for _, a := range answers {
		s, _ = advance(t, e, s, a)
	}
	return s
}

func lastTurn(s domain.Session) domain.Turn {
	return s.Turns[len(s.Turns)-1]
}

func TestNewSession_SeedsGreeting(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s := e.NewSession("s1")
	require.Len(t, s.Turns, 1)
	assert.Equal(t, domain.SpeakerAssistant, s.Turns[0].Speaker)
	assert.Equal(t, DefaultMessages().Greeting, s.Turns[0].Text)
	assert.Equal(t, domain.DefaultLanguage, s.Language)
	assert.Equal(t, domain.PhaseIntake, e.Phase(s))
}

func TestAdvance_NameAccepted(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s, res := advance(t, e, e.NewSession("s1"), "  John Smith ")

	assert.Equal(t, "John Smith", s.Collected[intake.KeyName])
	assert.Equal(t, 1, s.IntakeIndex)
	assert.Empty(t, s.ValidationNotice)
	require.Len(t, res.Appended, 2)
	assert.Equal(t, domain.Turn{Speaker: domain.SpeakerUser, Text: "John Smith"}, res.Appended[0])
	assert.Contains(t, res.Appended[1].Text, "John Smith")
	assert.Equal(t, domain.PhaseIntake, res.Phase)
}

func TestAdvance_InvalidEmailRepromptsSameQuestion(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s, _ := advance(t, e, e.NewSession("s1"), "John Smith")
	before := lastTurn(s).Text

	s, res := advance(t, e, s, "not-an-email")

	assert.Equal(t, 1, s.IntakeIndex)
	assert.Equal(t, DefaultMessages().InvalidInput, s.ValidationNotice)
	assert.Equal(t, DefaultMessages().InvalidInput, res.ValidationNotice)
	assert.Equal(t, before, lastTurn(s).Text)
	assert.NotContains(t, s.Collected, intake.KeyEmail)

	s, res = advance(t, e, s, "john@example.com")
	assert.Equal(t, 2, s.IntakeIndex)
	assert.Empty(t, res.ValidationNotice)
}

func TestAdvance_InvalidInputNeverAdvances(t *testing.T) {
	invalid := []string{"J0hn", "nope", "12", "three", "AI", "NY", "Go"}
	e, _ := newTestEngine(questions.Default())
	s := e.NewSession("s1")

	for i := range validAnswers {
		want, err := e.schema.Render(i, s.Collected)
		require.NoError(t, err)

		rejected, res := advance(t, e, s, invalid[i])
		assert.Equal(t, i, rejected.IntakeIndex, "field %d", i)
		assert.Equal(t, want, lastTurn(rejected).Text, "field %d", i)
		assert.NotEmpty(t, res.ValidationNotice)

		s, _ = advance(t, e, rejected, validAnswers[i])
		assert.Equal(t, i+1, s.IntakeIndex)
	}
}

func TestAdvance_IntakeToTechnical(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s := e.NewSession("s1")
	for _, a := range validAnswers[:6] {
		s, _ = advance(t, e, s, a)
	}

	s, res := advance(t, e, s, "Python, Django")

	assert.Equal(t, 7, s.IntakeIndex)
	assert.Equal(t, domain.PhaseTechnical, res.Phase)
	require.Len(t, s.TechQuestions, 5)
	require.Len(t, res.Appended, 3)
	assert.Equal(t, DefaultMessages().Announcement, res.Appended[1].Text)
	assert.Equal(t, s.TechQuestions[0], res.Appended[2].Text)
	assert.Equal(t, 0, s.TechIndex)
}

func TestAdvance_TechnicalToDone(t *testing.T) {
	e, _ := newTestEngine(staticProvider{"Q1", "Q2"})
	s := completeIntake(t, e, e.NewSession("s1"), "Golang")
	assert.Equal(t, "Q1", lastTurn(s).Text)

	s, res := advance(t, e, s, "anything at all")
	assert.Equal(t, 1, s.TechIndex)
	assert.Equal(t, "Q2", lastTurn(s).Text)
	assert.False(t, res.Finished)

	s, res = advance(t, e, s, "x")
	assert.Equal(t, 2, s.TechIndex)
	assert.True(t, s.Finished)
	assert.True(t, res.Finished)
	assert.Equal(t, domain.FinishCompleted, res.Reason)
	assert.Equal(t, domain.PhaseDone, res.Phase)
	assert.Contains(t, lastTurn(s).Text, "Thank you, John Smith!")
}

func TestAdvance_TechnicalAnswersNotStoredAsFields(t *testing.T) {
	e, _ := newTestEngine(staticProvider{"Q1", "Q2"})
	s := completeIntake(t, e, e.NewSession("s1"), "Golang")
	fields := len(s.Collected)

	s, _ = advance(t, e, s, "a")
	assert.Len(t, s.Collected, fields)
}

func TestAdvance_ExitDuringTechnical(t *testing.T) {
	e, ann := newTestEngine(questions.Default())
	s := completeIntake(t, e, e.NewSession("s1"), "COBOL")
	require.Len(t, s.TechQuestions, 3)
	s, _ = advance(t, e, s, "I would use a profiler")
	require.Equal(t, 1, s.TechIndex)
	calls := ann.calls
	turns := len(s.Turns)

	s, res := advance(t, e, s, "  EXIT ")

	assert.True(t, s.Finished)
	assert.Equal(t, 1, s.TechIndex)
	assert.Equal(t, "exit", res.Directive)
	assert.Equal(t, domain.FinishExited, res.Reason)
	require.Len(t, res.Appended, 2)
	assert.Len(t, s.Turns, turns+2)
	assert.Equal(t, "Thank you, John Smith, for your time! Best of luck! 😊", lastTurn(s).Text)
	assert.Equal(t, calls, ann.calls, "exit must not be scored")
}

func TestAdvance_ExitBeforeName(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s, res := advance(t, e, e.NewSession("s1"), "exit")
	assert.True(t, res.Finished)
	assert.Equal(t, "Thank you, Candidate, for your time! Best of luck! 😊", lastTurn(s).Text)
}

func TestAdvance_CustomExitKeyword(t *testing.T) {
	e, _ := newTestEngine(questions.Default(), WithExitKeyword("Quit"))
	s, _ := advance(t, e, e.NewSession("s1"), "exit")
	assert.False(t, s.Finished)

	s, _ = advance(t, e, s, "QUIT")
	assert.True(t, s.Finished)
}

func TestAdvance_FinishedIsTerminal(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s, _ := advance(t, e, e.NewSession("s1"), "exit")

	for _, in := range []string{"hello", "exit", "Spanish language please"} {
		next, res, err := e.Advance(context.Background(), s, in)
		require.ErrorIs(t, err, ErrSessionFinished)
		assert.Equal(t, s, next)
		assert.True(t, next.Finished)
		assert.Equal(t, DefaultMessages().Fallback, res.Reply)
	}
}

func TestAdvance_EmptyInput(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s := e.NewSession("s1")
	next, _, err := e.Advance(context.Background(), s, "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, s, next)
}

func TestAdvance_DoesNotMutateInput(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s := e.NewSession("s1")
	snapshot := s.Clone()

	_, _, err := e.Advance(context.Background(), s, "John Smith")
	require.NoError(t, err)
	assert.Equal(t, snapshot, s)
}

func TestAdvance_ZeroQuestionsCompletesOnNextTurn(t *testing.T) {
	e, _ := newTestEngine(staticProvider(nil))
	s := e.NewSession("s1")
	for _, a := range validAnswers[:6] {
		s, _ = advance(t, e, s, a)
	}

	s, res := advance(t, e, s, "Fortran")
	assert.Len(t, res.Appended, 1)
	assert.False(t, s.Finished)
	assert.Empty(t, s.TechQuestions)

	s, res = advance(t, e, s, "hello?")
	assert.True(t, s.Finished)
	assert.Equal(t, domain.FinishCompleted, res.Reason)
	assert.Contains(t, lastTurn(s).Text, "Thank you, John Smith!")
}

func TestAdvance_LanguageDirective(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s, _ := advance(t, e, e.NewSession("s1"), "John Smith")

	s, res := advance(t, e, s, "Can we switch LANGUAGE to Spanish?")
	assert.Equal(t, "Spanish", s.Language)
	assert.Equal(t, "language", res.Directive)
	assert.Equal(t, 1, s.IntakeIndex)
	assert.Empty(t, s.ValidationNotice)
	require.Len(t, res.Appended, 2)
	assert.True(t, strings.HasPrefix(res.Appended[1].Text, "¡Entendido!"))

	s, res = advance(t, e, s, "language: french")
	assert.Equal(t, "French", s.Language)
	assert.True(t, strings.HasPrefix(res.Appended[1].Text, "Compris"))

	s, res = advance(t, e, s, "another language please")
	assert.Equal(t, "French", s.Language)
	assert.Equal(t, DefaultMessages().LanguagePrompt, res.Appended[1].Text)

	s, _ = advance(t, e, s, "john@example.com")
	assert.Equal(t, 2, s.IntakeIndex)
}

func TestAdvance_LanguageDirectiveDuringTechnicalIsNotAnAnswer(t *testing.T) {
	e, _ := newTestEngine(staticProvider{"Q1", "Q2"})
	s := completeIntake(t, e, e.NewSession("s1"), "COBOL")

	s, res := advance(t, e, s, "switch language to spanish")
	assert.Equal(t, "language", res.Directive)
	assert.Equal(t, 0, s.TechIndex)
	assert.Empty(t, s.TechAnswers)

	s, _ = advance(t, e, s, "I built a payroll system")
	s, res = advance(t, e, s, "answer two")
	require.True(t, res.Finished)

	sub := domain.NewSubmission(s, res.Reason, time.Now())
	assert.Equal(t, []domain.Answer{
		{Question: "Q1", Answer: "I built a payroll system"},
		{Question: "Q2", Answer: "answer two"},
	}, sub.Answers)
}

// Answers mentioning "language" are taken as directives in every phase.
func TestAdvance_TechnicalAnswerMentioningLanguageIsDirective(t *testing.T) {
	e, _ := newTestEngine(staticProvider{"Q1", "Q2"})
	s := completeIntake(t, e, e.NewSession("s1"), "Golang")
	turns := len(s.Turns)

	s, res := advance(t, e, s, "Go is a compiled language")

	assert.Equal(t, domain.PhaseTechnical, res.Phase)
	assert.Equal(t, "language", res.Directive)
	assert.Equal(t, domain.DefaultLanguage, s.Language)
	assert.Equal(t, 0, s.TechIndex)
	assert.Empty(t, s.TechAnswers)
	require.Len(t, res.Appended, 2)
	assert.Equal(t, DefaultMessages().LanguagePrompt, res.Appended[1].Text)
	assert.Len(t, s.Turns, turns+2)
	assert.Equal(t, "Q1", s.CurrentQuestion())
}

func TestAdvance_SentimentIsSideChannel(t *testing.T) {
	e, ann := newTestEngine(questions.Default())
	ann.note = sentiment.Annotation{Label: sentiment.Positive, Advisory: sentiment.PositiveAdvisory}

	s, res := advance(t, e, e.NewSession("s1"), "I am really great 123")
	assert.Equal(t, sentiment.Positive, res.Sentiment)
	assert.Equal(t, sentiment.PositiveAdvisory, res.SentimentNote)
	assert.Equal(t, 0, s.IntakeIndex)
	assert.NotEmpty(t, res.ValidationNotice)

	ann.note = sentiment.Annotation{Label: sentiment.Neutral}
	s, res = advance(t, e, s, "John Smith")
	assert.Empty(t, s.SentimentNote)
	assert.Equal(t, sentiment.Neutral, res.Sentiment)
	assert.Equal(t, 1, s.IntakeIndex)
}

func TestAdvance_CorruptSessionFailsLoudly(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s := e.NewSession("s1")
	s.IntakeIndex = 1

	next, _, err := e.Advance(context.Background(), s, "not-an-email")
	require.ErrorIs(t, err, intake.ErrTemplateReference)
	assert.Equal(t, s, next)
}

func TestRestart(t *testing.T) {
	e, _ := newTestEngine(questions.Default())
	s, _ := advance(t, e, e.NewSession("s1"), "John Smith")

	_, err := e.Restart(s)
	require.ErrorIs(t, err, ErrNotFinished)

	s, _ = advance(t, e, s, "exit")
	fresh, err := e.Restart(s)
	require.NoError(t, err)
	assert.Len(t, fresh.Turns, 1)
	assert.Equal(t, "s1", fresh.ID)
	assert.False(t, fresh.Finished)
	assert.Empty(t, fresh.Collected)
	assert.Zero(t, fresh.IntakeIndex)
	assert.Equal(t, domain.PhaseIntake, e.Phase(fresh))
}

func TestPrompt(t *testing.T) {
	e, _ := newTestEngine(staticProvider{"Q1"})
	s := e.NewSession("s1")
	p, err := e.Prompt(s)
	require.NoError(t, err)
	assert.Contains(t, p, "full name")

	s = completeIntake(t, e, s, "Golang")
	p, err = e.Prompt(s)
	require.NoError(t, err)
	assert.Equal(t, "Q1", p)
}
