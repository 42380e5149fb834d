package domain

import (
	"time"
)

// FinishReason records how a session reached its terminal state.
type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishExited    FinishReason = "exited"
)

// Answer pairs a technical question with the candidate's reply.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Submission is the hand-off record for a finished interview.
type Submission struct {
	SessionID  string            `json:"session_id"`
	Reason     FinishReason      `json:"reason"`
	Candidate  map[string]string `json:"candidate"`
	Answers    []Answer          `json:"answers"`
	Transcript []Turn            `json:"transcript"`
	Language   string            `json:"language"`
	FinishedAt time.Time         `json:"finished_at"`
}

// NewSubmission builds the hand-off record from a finished session. Each
// accepted technical answer is paired with the question it was given for.
func NewSubmission(s Session, reason FinishReason, at time.Time) Submission {
	n := min(len(s.TechAnswers), len(s.TechQuestions))
	answers := make([]Answer, 0, n)
	for i := range n {
		answers = append(answers, Answer{Question: s.TechQuestions[i], Answer: s.TechAnswers[i]})
	}

	return Submission{
		SessionID:  s.ID,
		Reason:     reason,
		Candidate:  s.Clone().Collected,
		Answers:    answers,
		Transcript: s.Clone().Turns,
		Language:   s.Language,
		FinishedAt: at,
	}
}
