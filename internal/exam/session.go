// Package exam manages the examination lifecycle: generating a question
// draft for a topic, collecting answers, and submitting them for grading.
package exam

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/skillforge-app/skillforge/internal/events"
	"github.com/skillforge-app/skillforge/internal/gateway"
)

// ErrNoDraft is returned when an operation requires a live examination
// draft and none is present. The attempt is over; the caller must re-fetch.
var ErrNoDraft = errors.New("no draft available")

// State is the phase of the current examination attempt.
type State int

const (
	StateIdle State = iota
	StateAnswering
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnswering:
		return "answering"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Gateway is the slice of the backend API the examination session needs.
type Gateway interface {
	GenerateExaminationDraft(ctx context.Context, topicID int) (gateway.ExaminationDraft, error)
	SubmitExaminationAnswers(ctx context.Context, answers gateway.ExaminationAnswers) (gateway.ExaminationAnswers, error)
}

// SessionConfig holds dependencies for an examination session.
type SessionConfig struct {
	Gateway Gateway
	Events  events.Logger
}

// Session holds at most one live examination draft. Fetched questions are
// stamped with session-local integer ids from a monotonic counter; these
// are list keys, never persistence keys. Concurrent fetches are not
// coalesced: whichever resolves last wins.
type Session struct {
	mu     sync.Mutex
	gw     Gateway
	events events.Logger

	state   State
	topicID int
	draft   *gateway.ExaminationDraft
	answers map[int]string // stamped question id -> answer text
	graded  []gateway.QuestionAnswer
	busy    bool
	lastErr string
	nextID  int
}

// NewSession creates an examination session.
func NewSession(cfg SessionConfig) *Session {
	ev := cfg.Events
	if ev == nil {
		ev = events.NopLogger{}
	}
	return &Session{
		gw:     cfg.Gateway,
		events: ev,
	}
}

// FetchQuestions requests a generated question draft for the topic. Every
// question in the stored draft carries a fresh session-local id. A prior
// unanswered draft is discarded; on failure the session keeps whatever
// state it had before the call.
func (s *Session) FetchQuestions(ctx context.Context, topicID int) ([]gateway.Question, error) {
	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	generated, err := s.gw.GenerateExaminationDraft(ctx, topicID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.lastErr = "Failed to fetch questions"
		slog.Error("examination draft fetch failed", "topic_id", topicID, "error", err)
		return nil, err
	}
	s.lastErr = ""

	for i := range generated.Questions {
		s.nextID++
		generated.Questions[i].ID = s.nextID
	}

	s.draft = &generated
	s.topicID = topicID
	s.answers = make(map[int]string, len(generated.Questions))
	s.state = StateAnswering

	slog.Info("examination draft fetched", "topic_id", topicID, "questions", len(generated.Questions))
	events.Emit(s.events, "exam_draft_fetched", map[string]any{
		"topic_id":  topicID,
		"questions": len(generated.Questions),
	})

	return append([]gateway.Question(nil), generated.Questions...), nil
}

// SetAnswer records the user's answer for a stamped question id. Answer
// text is NFC-normalized so backend equality comparison is not tripped by
// composed/decomposed input.
func (s *Session) SetAnswer(questionID int, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoDraft
	}
	for _, q := range s.draft.Questions {
		if q.ID == questionID {
			s.answers[questionID] = norm.NFC.String(answer)
			return nil
		}
	}
	return errors.New("unknown question id")
}

// SubmitAnswers sends the full answer set for grading. It requires a live
// draft; calling with none fails immediately with ErrNoDraft and no
// network call. On success the graded result replaces the in-memory
// questions and the draft is cleared; on failure the draft and answers are
// retained so nothing is lost.
func (s *Session) SubmitAnswers(ctx context.Context) (gateway.ExaminationAnswers, error) {
	s.mu.Lock()
	if s.draft == nil {
		s.lastErr = "No draft available"
		s.mu.Unlock()
		return gateway.ExaminationAnswers{}, ErrNoDraft
	}

	payload := gateway.ExaminationAnswers{
		TopicID: s.topicID,
		Answers: make([]gateway.QuestionAnswer, 0, len(s.draft.Questions)),
	}
	for _, q := range s.draft.Questions {
		payload.Answers = append(payload.Answers, gateway.QuestionAnswer{
			SubSkillID:    q.SubSkillID,
			SFIALevel:     q.SFIALevel,
			QuestionType:  q.QuestionType,
			Question:      q.QuestionText,
			Answer:        s.answers[q.ID],
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	topicID := s.topicID
	s.state = StateSubmitting
	s.busy = true
	s.mu.Unlock()

	graded, err := s.gw.SubmitExaminationAnswers(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		// Back to answering; the draft and answers survive the failure.
		s.state = StateAnswering
		s.lastErr = "Failed to submit examination"
		slog.Error("examination submission failed", "topic_id", topicID, "error", err)
		return gateway.ExaminationAnswers{}, err
	}
	s.lastErr = ""
	s.graded = graded.Answers
	s.draft = nil
	s.answers = nil
	s.state = StateIdle

	correct := 0
	for _, a := range graded.Answers {
		if a.Correct {
			correct++
		}
	}
	slog.Info("examination submitted", "topic_id", topicID, "answers", len(graded.Answers), "correct", correct)
	events.Emit(s.events, "exam_submitted", map[string]any{
		"topic_id": topicID,
		"answers":  len(graded.Answers),
		"correct":  correct,
	})

	return graded, nil
}

// Discard drops the current draft without submitting it.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
	s.answers = nil
	s.state = StateIdle
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Questions returns the stamped questions of the live draft, or nil when
// there is none.
func (s *Session) Questions() []gateway.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	return append([]gateway.Question(nil), s.draft.Questions...)
}

// Graded returns the graded answers from the last successful submission.
func (s *Session) Graded() []gateway.QuestionAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.QuestionAnswer(nil), s.graded...)
}

// Busy reports whether a gateway call is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Err returns the last recorded error message, if any.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError resets the recorded error message.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}
