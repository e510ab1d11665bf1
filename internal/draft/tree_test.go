package draft_test

import (
	"errors"
	"testing"

	"github.com/skillforge-app/skillforge/internal/draft"
)

func TestTopicTree_AddRemoveSkill(t *testing.T) {
	var tree draft.TopicTree

	tree.AddSkill()
	if len(tree.Skills) != 1 {
		t.Fatalf("skills = %d, want 1", len(tree.Skills))
	}

	if err := tree.RemoveSkill(0); err != nil {
		t.Fatalf("RemoveSkill(0) error = %v", err)
	}
	if len(tree.Skills) != 0 {
		t.Errorf("skills = %d, want 0 after removal", len(tree.Skills))
	}
}

func TestTopicTree_RemoveSkill_OutOfRange(t *testing.T) {
	var tree draft.TopicTree
	tree.AddSkill()

	tests := []int{-1, 1, 5}
	for _, idx := range tests {
		if err := tree.RemoveSkill(idx); !errors.Is(err, draft.ErrIndexOutOfRange) {
			t.Errorf("RemoveSkill(%d) error = %v, want ErrIndexOutOfRange", idx, err)
		}
	}
	if len(tree.Skills) != 1 {
		t.Errorf("failed removals must not mutate the tree")
	}
}

func TestTopicTree_NestedMutations(t *testing.T) {
	var tree draft.TopicTree
	tree.AddSkill()

	if err := tree.AddSubSkill(0); err != nil {
		t.Fatalf("AddSubSkill(0) error = %v", err)
	}
	if err := tree.AddQuestion(0, 0); err != nil {
		t.Fatalf("AddQuestion(0,0) error = %v", err)
	}
	if err := tree.AddQuestion(0, 0); err != nil {
		t.Fatalf("AddQuestion(0,0) error = %v", err)
	}

	qs := tree.Skills[0].SubSkills[0].Questions
	if len(qs) != 2 {
		t.Fatalf("questions = %d, want 2", len(qs))
	}
	if qs[0].SFIALevel != 1 {
		t.Errorf("new question SFIALevel = %d, want 1", qs[0].SFIALevel)
	}

	if err := tree.RemoveQuestion(0, 0, 0); err != nil {
		t.Fatalf("RemoveQuestion(0,0,0) error = %v", err)
	}
	if len(tree.Skills[0].SubSkills[0].Questions) != 1 {
		t.Error("question not removed")
	}

	if err := tree.RemoveSubSkill(0, 0); err != nil {
		t.Fatalf("RemoveSubSkill(0,0) error = %v", err)
	}
	if len(tree.Skills[0].SubSkills) != 0 {
		t.Error("sub-skill not removed")
	}
}

func TestTopicTree_NestedMutations_InvalidEnclosingIndex(t *testing.T) {
	var tree draft.TopicTree
	tree.AddSkill()
	tree.AddSubSkill(0)

	if err := tree.AddSubSkill(3); !errors.Is(err, draft.ErrIndexOutOfRange) {
		t.Errorf("AddSubSkill(3) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := tree.AddQuestion(0, 7); !errors.Is(err, draft.ErrIndexOutOfRange) {
		t.Errorf("AddQuestion(0,7) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := tree.RemoveQuestion(0, 0, 0); !errors.Is(err, draft.ErrIndexOutOfRange) {
		t.Errorf("RemoveQuestion on empty sub-skill error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestTopicTree_Clone_Isolated(t *testing.T) {
	var tree draft.TopicTree
	tree.AddSkill()
	tree.AddSubSkill(0)
	tree.AddQuestion(0, 0)

	clone := tree.Clone()
	clone.Skills[0].Name = "mutated"
	clone.Skills[0].SubSkills[0].Questions[0].QuestionText = "mutated"

	if tree.Skills[0].Name == "mutated" {
		t.Error("clone shares skill storage with the original")
	}
	if tree.Skills[0].SubSkills[0].Questions[0].QuestionText == "mutated" {
		t.Error("clone shares question storage with the original")
	}
}
