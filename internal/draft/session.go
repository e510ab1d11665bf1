package draft

import (
	"context"
	"log/slog"
	"sync"

	"github.com/skillforge-app/skillforge/internal/events"
	"github.com/skillforge-app/skillforge/internal/gateway"
)

// Gateway is the slice of the backend API the draft session needs.
type Gateway interface {
	CreateTopicFromDraft(ctx context.Context, draft gateway.TopicDraft) (gateway.TopicWithSkills, error)
	GenerateTopicDraft(ctx context.Context, courseID int, topicName string) (gateway.TopicDraft, error)
	ListTopics(ctx context.Context, courseID int) ([]gateway.TopicSummary, error)
	DeleteTopic(ctx context.Context, topicID int) error
	ListSkills(ctx context.Context, topicID int) ([]gateway.SkillSummary, error)
}

// SessionConfig holds dependencies for a draft session.
type SessionConfig struct {
	Gateway Gateway
	Events  events.Logger
}

// Session owns the single in-progress topic draft. Mutation happens only
// through its methods; a save never mutates the tree, so a failed save
// loses nothing.
type Session struct {
	mu     sync.Mutex
	gw     Gateway
	events events.Logger

	tree     TopicTree
	courseID int
	editing  bool
	busy     bool
	lastErr  string

	topicList    []gateway.TopicSummary
	skillList    []gateway.SkillSummary
	currentSkill int
}

// NewSession creates a draft session.
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

// InitializeNewTopic resets the session to an empty topic owned by the given
// course. Any prior unsaved tree is replaced unconditionally; the course id
// is fixed for the lifetime of the draft.
func (s *Session) InitializeNewTopic(courseID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = TopicTree{Skills: []SkillNode{}}
	s.courseID = courseID
	s.editing = true
}

// IsEditing reports whether a draft is currently being edited.
func (s *Session) IsEditing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// CourseID returns the owning course of the current draft.
func (s *Session) CourseID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.courseID
}

// Tree returns a deep copy of the current tree for rendering.
func (s *Session) Tree() TopicTree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

// SetTopicInfo updates the topic's own fields.
func (s *Session) SetTopicInfo(name, masteryDefinition string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Name = name
	s.tree.MasteryDefinition = masteryDefinition
}

// ReplaceTree swaps in an externally built tree (file import, generated
// seed) and marks the session as editing.
func (s *Session) ReplaceTree(tree TopicTree, courseID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = tree
	s.courseID = courseID
	s.editing = true
}

// AddSkill appends an empty skill to the draft.
func (s *Session) AddSkill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.AddSkill()
}

// RemoveSkill removes the skill at the given position.
func (s *Session) RemoveSkill(skillIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.RemoveSkill(skillIndex)
}

// AddSubSkill appends an empty sub-skill to an existing skill.
func (s *Session) AddSubSkill(skillIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.AddSubSkill(skillIndex)
}

// RemoveSubSkill removes a sub-skill from an existing skill.
func (s *Session) RemoveSubSkill(skillIndex, subSkillIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.RemoveSubSkill(skillIndex, subSkillIndex)
}

// AddQuestion appends an empty question to an existing sub-skill.
func (s *Session) AddQuestion(skillIndex, subSkillIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.AddQuestion(skillIndex, subSkillIndex)
}

// RemoveQuestion removes a question from an existing sub-skill.
func (s *Session) RemoveQuestion(skillIndex, subSkillIndex, questionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.RemoveQuestion(skillIndex, subSkillIndex, questionIndex)
}

// UpdateSkill applies fn to the skill at skillIndex.
func (s *Session) UpdateSkill(skillIndex int, fn func(*SkillNode)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if skillIndex < 0 || skillIndex >= len(s.tree.Skills) {
		return ErrIndexOutOfRange
	}
	fn(&s.tree.Skills[skillIndex])
	return nil
}

// UpdateSubSkill applies fn to the addressed sub-skill.
func (s *Session) UpdateSubSkill(skillIndex, subSkillIndex int, fn func(*SubSkillNode)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, err := s.tree.subSkill(skillIndex, subSkillIndex)
	if err != nil {
		return err
	}
	fn(ss)
	return nil
}

// UpdateQuestion applies fn to the addressed question.
func (s *Session) UpdateQuestion(skillIndex, subSkillIndex, questionIndex int, fn func(*QuestionNode)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, err := s.tree.subSkill(skillIndex, subSkillIndex)
	if err != nil {
		return err
	}
	if questionIndex < 0 || questionIndex >= len(ss.Questions) {
		return ErrIndexOutOfRange
	}
	fn(&ss.Questions[questionIndex])
	return nil
}

// SaveDraft normalizes the current tree and submits it for atomic creation.
// The local tree is left untouched in all cases; on success the caller
// decides whether to discard it or replace it with the persisted view.
// Gateway failures propagate unchanged.
func (s *Session) SaveDraft(ctx context.Context) (gateway.TopicWithSkills, error) {
	s.mu.Lock()
	snapshot := s.tree.Clone()
	courseID := s.courseID
	s.busy = true
	s.mu.Unlock()

	batch := Normalize(snapshot, courseID)

	slog.Info("saving topic draft",
		"course_id", courseID,
		"skills", len(batch.Skills),
		"sub_skills", len(batch.SubSkills),
		"questions", len(batch.Questions),
	)

	persisted, err := s.gw.CreateTopicFromDraft(ctx, batch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.lastErr = "Failed to save topic draft"
		slog.Error("topic draft save failed", "course_id", courseID, "error", err)
		return gateway.TopicWithSkills{}, err
	}
	s.lastErr = ""

	events.Emit(s.events, "draft_saved", map[string]any{
		"course_id": courseID,
		"topic_id":  persisted.ID,
		"skills":    len(batch.Skills),
		"questions": len(batch.Questions),
	})
	return persisted, nil
}

// GenerateDraft asks the backend for an AI-generated starting point and
// replaces the local tree with it.
func (s *Session) GenerateDraft(ctx context.Context, courseID int, topicName string) error {
	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	generated, err := s.gw.GenerateTopicDraft(ctx, courseID, topicName)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.lastErr = "Failed to generate topic draft"
		slog.Error("topic draft generation failed", "course_id", courseID, "error", err)
		return err
	}
	s.lastErr = ""
	s.tree = TreeFromDraft(generated)
	s.courseID = courseID
	s.editing = true

	events.Emit(s.events, "draft_generated", map[string]any{
		"course_id":  courseID,
		"topic_name": topicName,
	})
	return nil
}

// FetchTopics loads the topic summaries for a course into the session.
func (s *Session) FetchTopics(ctx context.Context, courseID int) ([]gateway.TopicSummary, error) {
	s.mu.Lock()
	s.busy = true
	s.mu.Unlock()

	topics, err := s.gw.ListTopics(ctx, courseID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		s.lastErr = "Failed to fetch topics"
		return nil, err
	}
	s.lastErr = ""
	s.topicList = topics
	return topics, nil
}

// DeleteTopic removes a topic on the backend and drops it from the cached
// list.
func (s *Session) DeleteTopic(ctx context.Context, topicID int) error {
	if err := s.gw.DeleteTopic(ctx, topicID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.topicList[:0]
	for _, t := range s.topicList {
		if t.ID != topicID {
			kept = append(kept, t)
		}
	}
	s.topicList = kept

	events.Emit(s.events, "topic_deleted", map[string]any{"topic_id": topicID})
	return nil
}

// FetchSkills loads the skill summaries for a topic into the session.
func (s *Session) FetchSkills(ctx context.Context, topicID int) ([]gateway.SkillSummary, error) {
	skills, err := s.gw.ListSkills(ctx, topicID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.skillList = skills
	s.mu.Unlock()
	return skills, nil
}

// SetCurrentSkill records which skill the user is working with.
func (s *Session) SetCurrentSkill(skillID int) {
	s.mu.Lock()
	s.currentSkill = skillID
	s.mu.Unlock()
}

// CurrentSkill returns the selected skill id.
func (s *Session) CurrentSkill() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSkill
}

// Topics returns the last fetched topic list.
func (s *Session) Topics() []gateway.TopicSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.TopicSummary(nil), s.topicList...)
}

// Skills returns the last fetched skill list.
func (s *Session) Skills() []gateway.SkillSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.SkillSummary(nil), s.skillList...)
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
