// Package draft holds the editable topic tree, the normalizer that flattens
// it into a creation batch, and the session that manages one in-progress
// draft.
package draft

import (
	"errors"

	"github.com/skillforge-app/skillforge/internal/gateway"
)

// ErrIndexOutOfRange is returned by tree mutations whose indices do not
// reference an existing element.
var ErrIndexOutOfRange = errors.New("index out of range")

// TopicTree is a topic under construction. It is the single source of truth
// for unsaved edits; nothing in it is persisted until the normalized batch
// comes back from the backend with real identifiers.
type TopicTree struct {
	Name              string
	MasteryDefinition string
	Skills            []SkillNode
}

// SkillNode is an editable skill. Ownership by a topic is established only
// at submission time.
type SkillNode struct {
	Name              string
	MasteryDefinition string
	// MasteryDefinitionOfSkill overrides MasteryDefinition in the
	// normalized batch when set.
	MasteryDefinitionOfSkill string
	ContentToMaster          string
	SubSkills                []SubSkillNode
}

// SubSkillNode is an editable sub-skill. Temp ids are assigned at
// normalization time, never stored here.
type SubSkillNode struct {
	Name                       string
	ContentToMaster            string
	CondensedLearningMaterials string
	SFIA                       gateway.SFIADefinitions
	Questions                  []QuestionNode
}

// QuestionNode is an editable question.
type QuestionNode struct {
	Type          string
	QuestionText  string
	CorrectAnswer string
	Explanation   string
	SFIALevel     int
}

// Clone returns a deep copy of the tree.
func (t TopicTree) Clone() TopicTree {
	out := t
	out.Skills = make([]SkillNode, len(t.Skills))
	for i, s := range t.Skills {
		cs := s
		cs.SubSkills = make([]SubSkillNode, len(s.SubSkills))
		for j, ss := range s.SubSkills {
			css := ss
			css.Questions = append([]QuestionNode(nil), ss.Questions...)
			cs.SubSkills[j] = css
		}
		out.Skills[i] = cs
	}
	return out
}

// AddSkill appends an empty skill.
func (t *TopicTree) AddSkill() {
	t.Skills = append(t.Skills, SkillNode{})
}

// RemoveSkill removes the skill at the given position.
func (t *TopicTree) RemoveSkill(skillIndex int) error {
	if skillIndex < 0 || skillIndex >= len(t.Skills) {
		return ErrIndexOutOfRange
	}
	t.Skills = append(t.Skills[:skillIndex], t.Skills[skillIndex+1:]...)
	return nil
}

// AddSubSkill appends an empty sub-skill to the skill at skillIndex.
func (t *TopicTree) AddSubSkill(skillIndex int) error {
	if skillIndex < 0 || skillIndex >= len(t.Skills) {
		return ErrIndexOutOfRange
	}
	s := &t.Skills[skillIndex]
	s.SubSkills = append(s.SubSkills, SubSkillNode{})
	return nil
}

// RemoveSubSkill removes a sub-skill from the skill at skillIndex.
func (t *TopicTree) RemoveSubSkill(skillIndex, subSkillIndex int) error {
	if skillIndex < 0 || skillIndex >= len(t.Skills) {
		return ErrIndexOutOfRange
	}
	s := &t.Skills[skillIndex]
	if subSkillIndex < 0 || subSkillIndex >= len(s.SubSkills) {
		return ErrIndexOutOfRange
	}
	s.SubSkills = append(s.SubSkills[:subSkillIndex], s.SubSkills[subSkillIndex+1:]...)
	return nil
}

// AddQuestion appends an empty question to the addressed sub-skill. New
// questions start at SFIA level 1.
func (t *TopicTree) AddQuestion(skillIndex, subSkillIndex int) error {
	ss, err := t.subSkill(skillIndex, subSkillIndex)
	if err != nil {
		return err
	}
	ss.Questions = append(ss.Questions, QuestionNode{SFIALevel: 1})
	return nil
}

// RemoveQuestion removes a question from the addressed sub-skill.
func (t *TopicTree) RemoveQuestion(skillIndex, subSkillIndex, questionIndex int) error {
	ss, err := t.subSkill(skillIndex, subSkillIndex)
	if err != nil {
		return err
	}
	if questionIndex < 0 || questionIndex >= len(ss.Questions) {
		return ErrIndexOutOfRange
	}
	ss.Questions = append(ss.Questions[:questionIndex], ss.Questions[questionIndex+1:]...)
	return nil
}

func (t *TopicTree) subSkill(skillIndex, subSkillIndex int) (*SubSkillNode, error) {
	if skillIndex < 0 || skillIndex >= len(t.Skills) {
		return nil, ErrIndexOutOfRange
	}
	s := &t.Skills[skillIndex]
	if subSkillIndex < 0 || subSkillIndex >= len(s.SubSkills) {
		return nil, ErrIndexOutOfRange
	}
	return &s.SubSkills[subSkillIndex], nil
}
