package model

import (
	"fmt"
	"time"
)

type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateCompleted  SessionState = "completed"
)

type QuestionKind string

const (
	KindCustom   QuestionKind = "custom"
	KindFocus    QuestionKind = "focus"
	KindProbe    QuestionKind = "probe"
	KindFollowUp QuestionKind = "follow_up"
)

type Turn struct {
	Index    int          `json:"index"`
	Kind     QuestionKind `json:"kind"`
	Target   string       `json:"target,omitempty"`
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Answered bool         `json:"answered"`
	// FollowUpOf points at the turn whose claim this question drills into.
	FollowUpOf *int      `json:"follow_up_of,omitempty"`
	AskedAt    time.Time `json:"asked_at"`
	AnsweredAt time.Time `json:"answered_at,omitempty"`
}

type InterviewSession struct {
	ID                      SessionID    `json:"id"`
	CandidateID             CandidateID  `json:"candidate_id"`
	JobID                   JobID        `json:"job_id,omitempty"`
	Role                    string       `json:"role,omitempty"`
	State                   SessionState `json:"state"`
	Turns                   []Turn       `json:"turns"`
	FocusAreas              []string     `json:"focus_areas"`
	CustomQuestions         []string     `json:"custom_questions,omitempty"`
	RemainingQuestionBudget int          `json:"remaining_question_budget"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
	EndedAt                 time.Time    `json:"ended_at,omitempty"`
	EndReason               string       `json:"end_reason,omitempty"`
}

var transitions = map[SessionState][]SessionState{
	StateNotStarted: {StateInProgress, StateCompleted},
	StateInProgress: {StateCompleted},
}

// Transition moves the session to the next lifecycle state.
func (s *InterviewSession) Transition(to SessionState) error {
	for _, allowed := range transitions[s.State] {
		if allowed == to {
			s.State = to
			return nil
		}
	}
	return fmt.Errorf("invalid session transition %s -> %s", s.State, to)
}

// OpenTurn returns the trailing turn awaiting an answer, if any.
func (s *InterviewSession) OpenTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	last := &s.Turns[len(s.Turns)-1]
	if last.Answered {
		return nil
	}
	return last
}

// Closed reports whether the session accepts no further turns.
func (s *InterviewSession) Closed() bool {
	return s.State == StateCompleted
}

// Generic reports whether the session is a practice run without a job.
func (s *InterviewSession) Generic() bool {
	return s.JobID.IsEmpty()
}
