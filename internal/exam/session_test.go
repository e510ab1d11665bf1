package exam_test

import (
	"context"
	"errors"
	"testing"

	"github.com/skillforge-app/skillforge/internal/events"
	"github.com/skillforge-app/skillforge/internal/exam"
	"github.com/skillforge-app/skillforge/internal/gateway"
)

// fakeGateway is a test double for the examination session's gateway slice.
type fakeGateway struct {
	draft       gateway.ExaminationDraft
	draftErr    error
	fetchCalls  int
	submitCalls int
	submitErr   error
	submitted   *gateway.ExaminationAnswers
	grade       func(gateway.ExaminationAnswers) gateway.ExaminationAnswers
}

func (f *fakeGateway) GenerateExaminationDraft(_ context.Context, topicID int) (gateway.ExaminationDraft, error) {
	f.fetchCalls++
	if f.draftErr != nil {
		return gateway.ExaminationDraft{}, f.draftErr
	}
	return f.draft, nil
}

func (f *fakeGateway) SubmitExaminationAnswers(_ context.Context, answers gateway.ExaminationAnswers) (gateway.ExaminationAnswers, error) {
	f.submitCalls++
	f.submitted = &answers
	if f.submitErr != nil {
		return gateway.ExaminationAnswers{}, f.submitErr
	}
	if f.grade != nil {
		return f.grade(answers), nil
	}
	return answers, nil
}

func twoQuestionDraft() gateway.ExaminationDraft {
	return gateway.ExaminationDraft{
		Questions: []gateway.Question{
			{SubSkillID: 11, QuestionText: "What is a goroutine?", CorrectAnswer: "A lightweight thread", SFIALevel: 2},
			{SubSkillID: 12, QuestionText: "What is a channel?", CorrectAnswer: "A typed conduit", SFIALevel: 3},
		},
	}
}

func TestSession_FetchQuestions_StampsIdentifiers(t *testing.T) {
	gw := &fakeGateway{draft: twoQuestionDraft()}
	s := exam.NewSession(exam.SessionConfig{Gateway: gw})

	questions, err := s.FetchQuestions(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchQuestions() error = %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}

	seen := make(map[int]bool)
	for i, q := range questions {
		if q.ID == 0 {
			t.Errorf("question[%d] has no stamped id", i)
		}
		if seen[q.ID] {
			t.Errorf("duplicate stamped id %d", q.ID)
		}
		seen[q.ID] = true
	}

	if s.State() != exam.StateAnswering {
		t.Errorf("State() = %v, want answering", s.State())
	}
}

func TestSession_FetchQuestions_SecondFetchWins(t *testing.T) {
	gw := &fakeGateway{draft: twoQuestionDraft()}
	s := exam.NewSession(exam.SessionConfig{Gateway: gw})

	first, _ := s.FetchQuestions(context.Background(), 42)

	gw.draft = gateway.ExaminationDraft{
		Questions: []gateway.Question{{QuestionText: "Replacement", CorrectAnswer: "x"}},
	}
	second, err := s.FetchQuestions(context.Background(), 43)
	if err != nil {
		t.Fatalf("FetchQuestions() error = %v", err)
	}

	stored := s.Questions()
	if len(stored) != 1 || stored[0].QuestionText != "Replacement" {
		t.Errorf("stored draft = %+v, want the later fetch", stored)
	}
	// Ids keep counting up across fetches; no reuse.
	if second[0].ID <= first[len(first)-1].ID {
		t.Errorf("stamped id %d not greater than previous %d", second[0].ID, first[len(first)-1].ID)
	}
}

func TestSession_SubmitAnswers_NoDraft(t *testing.T) {
	gw := &fakeGateway{}
	s := exam.NewSession(exam.SessionConfig{Gateway: gw})

	_, err := s.SubmitAnswers(context.Background())
	if !errors.Is(err, exam.ErrNoDraft) {
		t.Fatalf("SubmitAnswers() error = %v, want ErrNoDraft", err)
	}
	if gw.submitCalls != 0 {
		t.Error("no network call may be made without a draft")
	}
	if s.Err() == "" {
		t.Error("Err() should record the precondition failure")
	}
}

func TestSession_SubmitAnswers_Success(t *testing.T) {
	gw := &fakeGateway{
		draft: twoQuestionDraft(),
		grade: func(in gateway.ExaminationAnswers) gateway.ExaminationAnswers {
			for i := range in.Answers {
				in.Answers[i].Correct = in.Answers[i].Answer == in.Answers[i].CorrectAnswer
			}
			return in
		},
	}
	ev := events.NewMemoryLogger()
	s := exam.NewSession(exam.SessionConfig{Gateway: gw, Events: ev})

	questions, _ := s.FetchQuestions(context.Background(), 42)
	if err := s.SetAnswer(questions[0].ID, "A lightweight thread"); err != nil {
		t.Fatalf("SetAnswer() error = %v", err)
	}
	if err := s.SetAnswer(questions[1].ID, "wrong"); err != nil {
		t.Fatalf("SetAnswer() error = %v", err)
	}

	graded, err := s.SubmitAnswers(context.Background())
	if err != nil {
		t.Fatalf("SubmitAnswers() error = %v", err)
	}

	if gw.submitted.TopicID != 42 {
		t.Errorf("submitted topic_id = %d, want 42", gw.submitted.TopicID)
	}
	if len(graded.Answers) != 2 {
		t.Fatalf("graded answers = %d, want 2", len(graded.Answers))
	}
	if !graded.Answers[0].Correct || graded.Answers[1].Correct {
		t.Errorf("grading = %v/%v, want true/false", graded.Answers[0].Correct, graded.Answers[1].Correct)
	}

	if s.State() != exam.StateIdle {
		t.Errorf("State() = %v, want idle after success", s.State())
	}
	if s.Questions() != nil {
		t.Error("draft should be cleared after a successful submission")
	}
	if len(s.Graded()) != 2 {
		t.Errorf("Graded() = %d, want 2", len(s.Graded()))
	}

	evs := ev.Events()
	found := false
	for _, e := range evs {
		if e.Type == "exam_submitted" {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %+v, want exam_submitted", evs)
	}
}

func TestSession_SubmitAnswers_FailureRetainsDraft(t *testing.T) {
	boom := errors.New("backend unavailable")
	gw := &fakeGateway{draft: twoQuestionDraft(), submitErr: boom}
	s := exam.NewSession(exam.SessionConfig{Gateway: gw})

	questions, _ := s.FetchQuestions(context.Background(), 42)
	s.SetAnswer(questions[0].ID, "half done")

	_, err := s.SubmitAnswers(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("SubmitAnswers() error = %v, want the gateway error unchanged", err)
	}

	if s.State() != exam.StateAnswering {
		t.Errorf("State() = %v, want answering after failure", s.State())
	}
	if len(s.Questions()) != 2 {
		t.Error("draft must be retained after a failed submission")
	}
	if s.Err() == "" {
		t.Error("Err() should record the failure")
	}

	// Retry succeeds once the backend recovers.
	gw.submitErr = nil
	if _, err := s.SubmitAnswers(context.Background()); err != nil {
		t.Fatalf("retry SubmitAnswers() error = %v", err)
	}
	if s.Err() != "" {
		t.Errorf("Err() = %q, want cleared by the successful retry", s.Err())
	}
}

func TestSession_FetchQuestions_FailureKeepsPriorDraft(t *testing.T) {
	gw := &fakeGateway{draft: twoQuestionDraft()}
	s := exam.NewSession(exam.SessionConfig{Gateway: gw})

	s.FetchQuestions(context.Background(), 42)

	gw.draftErr = errors.New("generation timed out")
	if _, err := s.FetchQuestions(context.Background(), 43); err == nil {
		t.Fatal("FetchQuestions() should propagate the gateway error")
	}

	if len(s.Questions()) != 2 {
		t.Error("prior draft must survive a failed fetch")
	}
	if s.State() != exam.StateAnswering {
		t.Errorf("State() = %v, want answering", s.State())
	}
}

func TestSession_SetAnswer_NormalizesText(t *testing.T) {
	gw := &fakeGateway{draft: gateway.ExaminationDraft{
		Questions: []gateway.Question{{QuestionText: "Spell it", CorrectAnswer: "café"}},
	}}
	s := exam.NewSession(exam.SessionConfig{Gateway: gw})

	questions, _ := s.FetchQuestions(context.Background(), 1)

	// "café" with a decomposed e + combining acute accent.
	if err := s.SetAnswer(questions[0].ID, "café"); err != nil {
		t.Fatalf("SetAnswer() error = %v", err)
	}

	s.SubmitAnswers(context.Background())
	if got := gw.submitted.Answers[0].Answer; got != "café" {
		t.Errorf("submitted answer = %q, want NFC-composed café", got)
	}
}

func TestSession_SetAnswer_Preconditions(t *testing.T) {
	gw := &fakeGateway{draft: twoQuestionDraft()}
	s := exam.NewSession(exam.SessionConfig{Gateway: gw})

	if err := s.SetAnswer(1, "x"); !errors.Is(err, exam.ErrNoDraft) {
		t.Errorf("SetAnswer() with no draft error = %v, want ErrNoDraft", err)
	}

	s.FetchQuestions(context.Background(), 42)
	if err := s.SetAnswer(99999, "x"); err == nil {
		t.Error("SetAnswer() with unknown id should fail")
	}
}

func TestSession_Discard(t *testing.T) {
	gw := &fakeGateway{draft: twoQuestionDraft()}
	s := exam.NewSession(exam.SessionConfig{Gateway: gw})

	s.FetchQuestions(context.Background(), 42)
	s.Discard()

	if s.State() != exam.StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
	if s.Questions() != nil {
		t.Error("draft should be gone after Discard()")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state exam.State
		want  string
	}{
		{exam.StateIdle, "idle"},
		{exam.StateAnswering, "answering"},
		{exam.StateSubmitting, "submitting"},
		{exam.State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
