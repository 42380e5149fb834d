// Package domain contains core domain types for the TalentScout intake service.
package domain

import (
	"maps"
	"slices"
	"time"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	// SpeakerAssistant marks turns produced by the intake assistant.
	SpeakerAssistant Speaker = "assistant"
	// SpeakerUser marks turns typed by the candidate.
	SpeakerUser Speaker = "user"
)

// Turn is a single entry in the conversation log.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Phase is the derived position of a session in the interview.
type Phase string

const (
	PhaseIntake    Phase = "intake"
	PhaseTechnical Phase = "technical"
	PhaseDone      Phase = "done"
)

// DefaultLanguage is the language every session starts in.
const DefaultLanguage = "English"

// Session holds the full state of one candidate conversation.
//
// The engine treats a Session as a value: transitions clone it and return
// the new state. ID, CreatedAt and UpdatedAt belong to the hosting service.
type Session struct {
	ID               string            `json:"id"`
	Turns            []Turn            `json:"turns"`
	IntakeIndex      int               `json:"intake_index"`
	Collected        map[string]string `json:"collected"`
	TechQuestions    []string          `json:"tech_questions"`
	TechIndex        int               `json:"tech_index"`
	TechAnswers      []string          `json:"tech_answers"`
	Finished         bool              `json:"finished"`
	ValidationNotice string            `json:"validation_notice,omitempty"`
	Sentiment        string            `json:"sentiment,omitempty"`
	SentimentNote    string            `json:"sentiment_note,omitempty"`
	Language         string            `json:"language"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewSession returns an empty session in the default language.
func NewSession(id string) Session {
	return Session{
		ID:        id,
		Collected: make(map[string]string),
		Language:  DefaultLanguage,
	}
}

// Clone returns a deep copy so callers can mutate the result freely.
func (s Session) Clone() Session {
	out := s
	out.Turns = slices.Clone(s.Turns)
	out.TechQuestions = slices.Clone(s.TechQuestions)
	out.TechAnswers = slices.Clone(s.TechAnswers)
	out.Collected = maps.Clone(s.Collected)
	if out.Collected == nil {
		out.Collected = make(map[string]string)
	}
	return out
}

// Append adds a turn to the log.
func (s *Session) Append(speaker Speaker, text string) Turn {
	t := Turn{Speaker: speaker, Text: text}
	s.Turns = append(s.Turns, t)
	return t
}

// HasQuestionsRemaining reports whether technical questions are still pending.
func (s *Session) HasQuestionsRemaining() bool {
	return s.TechIndex < len(s.TechQuestions)
}

// RecordAnswer stores the reply to the pending question and moves to the next one.
func (s *Session) RecordAnswer(text string) {
	if !s.HasQuestionsRemaining() {
		return
	}
	s.TechAnswers = append(s.TechAnswers, text)
	s.TechIndex++
}

// CurrentQuestion returns the pending technical question, or "" if none remain.
func (s *Session) CurrentQuestion() string {
	if !s.HasQuestionsRemaining() {
		return ""
	}
	return s.TechQuestions[s.TechIndex]
}
