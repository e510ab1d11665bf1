package draft_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/skillforge-app/skillforge/internal/draft"
	"github.com/skillforge-app/skillforge/internal/events"
	"github.com/skillforge-app/skillforge/internal/gateway"
)

// fakeGateway is a test double for the draft session's gateway slice.
type fakeGateway struct {
	createErr   error
	created     *gateway.TopicDraft // captures the last submitted batch
	createCalls int

	generated   gateway.TopicDraft
	generateErr error

	topics []gateway.TopicSummary
	skills []gateway.SkillSummary
}

func (f *fakeGateway) CreateTopicFromDraft(_ context.Context, d gateway.TopicDraft) (gateway.TopicWithSkills, error) {
	f.createCalls++
	f.created = &d
	if f.createErr != nil {
		return gateway.TopicWithSkills{}, f.createErr
	}
	return gateway.TopicWithSkills{Topic: gateway.Topic{ID: 101, Name: d.Topic.Name, CourseID: d.Topic.CourseID}}, nil
}

func (f *fakeGateway) GenerateTopicDraft(_ context.Context, courseID int, topicName string) (gateway.TopicDraft, error) {
	if f.generateErr != nil {
		return gateway.TopicDraft{}, f.generateErr
	}
	return f.generated, nil
}

func (f *fakeGateway) ListTopics(_ context.Context, courseID int) ([]gateway.TopicSummary, error) {
	return f.topics, nil
}

func (f *fakeGateway) DeleteTopic(_ context.Context, topicID int) error {
	return nil
}

func (f *fakeGateway) ListSkills(_ context.Context, topicID int) ([]gateway.SkillSummary, error) {
	return f.skills, nil
}

func TestSession_InitializeNewTopic(t *testing.T) {
	s := draft.NewSession(draft.SessionConfig{Gateway: &fakeGateway{}})

	s.InitializeNewTopic(3)
	s.AddSkill()

	// Re-initializing replaces any prior tree unconditionally.
	s.InitializeNewTopic(5)

	if !s.IsEditing() {
		t.Error("IsEditing() = false, want true")
	}
	if s.CourseID() != 5 {
		t.Errorf("CourseID() = %d, want 5", s.CourseID())
	}
	if len(s.Tree().Skills) != 0 {
		t.Error("re-initialized tree should be empty")
	}
}

func TestSession_EditOperations(t *testing.T) {
	s := draft.NewSession(draft.SessionConfig{Gateway: &fakeGateway{}})
	s.InitializeNewTopic(1)

	s.AddSkill()
	if err := s.AddSubSkill(0); err != nil {
		t.Fatalf("AddSubSkill(0) error = %v", err)
	}
	if err := s.AddQuestion(0, 0); err != nil {
		t.Fatalf("AddQuestion(0,0) error = %v", err)
	}
	if err := s.UpdateQuestion(0, 0, 0, func(q *draft.QuestionNode) {
		q.QuestionText = "What is a mutex?"
		q.CorrectAnswer = "A mutual exclusion lock"
	}); err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}

	tree := s.Tree()
	if got := tree.Skills[0].SubSkills[0].Questions[0].QuestionText; got != "What is a mutex?" {
		t.Errorf("question text = %q", got)
	}

	if err := s.RemoveSkill(4); !errors.Is(err, draft.ErrIndexOutOfRange) {
		t.Errorf("RemoveSkill(4) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSession_SaveDraft(t *testing.T) {
	gw := &fakeGateway{}
	ev := events.NewMemoryLogger()
	s := draft.NewSession(draft.SessionConfig{Gateway: gw, Events: ev})

	s.InitializeNewTopic(3)
	s.SetTopicInfo("Concurrency", "")
	s.AddSkill()
	s.AddSubSkill(0)
	s.AddQuestion(0, 0)

	persisted, err := s.SaveDraft(context.Background())
	if err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}
	if persisted.ID != 101 {
		t.Errorf("persisted topic id = %d, want 101", persisted.ID)
	}

	if gw.created == nil {
		t.Fatal("gateway did not receive a batch")
	}
	if gw.created.Topic.CourseID != 3 {
		t.Errorf("batch course_id = %d, want 3", gw.created.Topic.CourseID)
	}
	if gw.created.SubSkills[0].TempID != "subskill-0-0" {
		t.Errorf("batch temp id = %q", gw.created.SubSkills[0].TempID)
	}

	got := ev.Events()
	if len(got) != 1 || got[0].Type != "draft_saved" {
		t.Errorf("events = %+v, want one draft_saved", got)
	}
	if s.Busy() {
		t.Error("Busy() should be false after save")
	}
	if s.Err() != "" {
		t.Errorf("Err() = %q, want empty after success", s.Err())
	}
}

func TestSession_SaveDraft_FailureLeavesTreeIntact(t *testing.T) {
	boom := errors.New("backend rejected the batch")
	gw := &fakeGateway{createErr: boom}
	s := draft.NewSession(draft.SessionConfig{Gateway: gw})

	s.InitializeNewTopic(3)
	s.AddSkill()
	s.UpdateSkill(0, func(sk *draft.SkillNode) { sk.Name = "Goroutines" })
	before := s.Tree()

	_, err := s.SaveDraft(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("SaveDraft() error = %v, want the gateway error unchanged", err)
	}

	if !reflect.DeepEqual(s.Tree(), before) {
		t.Error("a failed save must not mutate the tree")
	}
	if s.Err() == "" {
		t.Error("Err() should record the failure")
	}
	if s.Busy() {
		t.Error("Busy() should be cleared even on failure")
	}
}

func TestSession_GenerateDraft_SeedsTree(t *testing.T) {
	gw := &fakeGateway{
		generated: gateway.TopicDraft{
			Topic: gateway.TopicCreate{Name: "Generics", CourseID: 3},
			Skills: []gateway.SkillCreate{
				{Name: "Type parameters"},
			},
			SubSkills: []gateway.SubSkillCreate{
				{TempID: "subskill-0-0", Name: "Constraints"},
			},
			Questions: []gateway.QuestionCreate{
				{TempID: "question-0-0-0", SubSkillTempID: "subskill-0-0", QuestionText: "What is comparable?"},
			},
		},
	}
	s := draft.NewSession(draft.SessionConfig{Gateway: gw})

	if err := s.GenerateDraft(context.Background(), 3, "Generics"); err != nil {
		t.Fatalf("GenerateDraft() error = %v", err)
	}

	tree := s.Tree()
	if tree.Name != "Generics" {
		t.Errorf("tree name = %q", tree.Name)
	}
	if len(tree.Skills) != 1 || len(tree.Skills[0].SubSkills) != 1 {
		t.Fatalf("tree shape = %d skills, want 1 with 1 sub-skill", len(tree.Skills))
	}
	if !s.IsEditing() {
		t.Error("IsEditing() should be true after seeding")
	}
}

func TestSession_FetchTopics_And_DeleteTopic(t *testing.T) {
	gw := &fakeGateway{topics: []gateway.TopicSummary{
		{ID: 1, Name: "A", CourseID: 3},
		{ID: 2, Name: "B", CourseID: 3},
	}}
	s := draft.NewSession(draft.SessionConfig{Gateway: gw})

	topics, err := s.FetchTopics(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchTopics() error = %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("topics = %d, want 2", len(topics))
	}

	if err := s.DeleteTopic(context.Background(), 1); err != nil {
		t.Fatalf("DeleteTopic() error = %v", err)
	}
	remaining := s.Topics()
	if len(remaining) != 1 || remaining[0].ID != 2 {
		t.Errorf("Topics() = %+v, want only topic 2", remaining)
	}
}
