package draft

import (
	"fmt"
	"strings"

	"github.com/skillforge-app/skillforge/internal/gateway"
)

// Normalize flattens a topic tree into parallel entity lists linked by temp
// ids. Temp ids are positional ("subskill-{i}-{j}", "question-{i}-{j}-{k}")
// so repeated calls on the same tree produce identical output. List order
// follows the depth-first walk; linkage is by temp id, not position.
//
// Normalize never fails and performs no content validation; malformed
// drafts are the backend's to reject.
func Normalize(tree TopicTree, courseID int) gateway.TopicDraft {
	out := gateway.TopicDraft{
		Topic: gateway.TopicCreate{
			Name:              tree.Name,
			CourseID:          courseID,
			MasteryDefinition: tree.MasteryDefinition,
		},
		Skills:    []gateway.SkillCreate{},
		SubSkills: []gateway.SubSkillCreate{},
		Questions: []gateway.QuestionCreate{},
	}

	for i, skill := range tree.Skills {
		mastery := skill.MasteryDefinitionOfSkill
		if mastery == "" {
			mastery = skill.MasteryDefinition
		}
		out.Skills = append(out.Skills, gateway.SkillCreate{
			Name:                     skill.Name,
			MasteryDefinitionOfSkill: mastery,
			ContentToMaster:          skill.ContentToMaster,
		})

		for j, sub := range skill.SubSkills {
			tempID := subSkillTempID(i, j)
			out.SubSkills = append(out.SubSkills, gateway.SubSkillCreate{
				TempID:                     tempID,
				Name:                       sub.Name,
				ContentToMaster:            sub.ContentToMaster,
				CondensedLearningMaterials: sub.CondensedLearningMaterials,
				SFIADefinitions:            sub.SFIA,
			})

			for k, q := range sub.Questions {
				out.Questions = append(out.Questions, gateway.QuestionCreate{
					TempID:         fmt.Sprintf("question-%d-%d-%d", i, j, k),
					SubSkillTempID: tempID,
					SFIALevel:      q.SFIALevel,
					QuestionType:   q.Type,
					QuestionText:   q.QuestionText,
					CorrectAnswer:  q.CorrectAnswer,
					Explanation:    q.Explanation,
				})
			}
		}
	}

	return out
}

// TreeFromDraft rebuilds an editable tree from a flat draft batch, such as
// the AI-generated starting point returned by the backend. Sub-skills are
// re-attached to their skill by the index encoded in their temp id, and
// questions by sub_skill_temp_id; entries whose references cannot be
// resolved are dropped.
func TreeFromDraft(d gateway.TopicDraft) TopicTree {
	tree := TopicTree{
		Name:              d.Topic.Name,
		MasteryDefinition: d.Topic.MasteryDefinition,
		Skills:            make([]SkillNode, len(d.Skills)),
	}
	for i, s := range d.Skills {
		tree.Skills[i] = SkillNode{
			Name:                     s.Name,
			MasteryDefinitionOfSkill: s.MasteryDefinitionOfSkill,
			ContentToMaster:          s.ContentToMaster,
		}
	}

	// temp id -> position of the rebuilt sub-skill
	type slot struct{ skill, sub int }
	bySubTempID := make(map[string]slot, len(d.SubSkills))

	for _, ss := range d.SubSkills {
		i, ok := skillIndexFromTempID(ss.TempID)
		if !ok || i >= len(tree.Skills) {
			continue
		}
		skill := &tree.Skills[i]
		skill.SubSkills = append(skill.SubSkills, SubSkillNode{
			Name:                       ss.Name,
			ContentToMaster:            ss.ContentToMaster,
			CondensedLearningMaterials: ss.CondensedLearningMaterials,
			SFIA:                       ss.SFIADefinitions,
		})
		bySubTempID[ss.TempID] = slot{skill: i, sub: len(skill.SubSkills) - 1}
	}

	for _, q := range d.Questions {
		pos, ok := bySubTempID[q.SubSkillTempID]
		if !ok {
			continue
		}
		sub := &tree.Skills[pos.skill].SubSkills[pos.sub]
		sub.Questions = append(sub.Questions, QuestionNode{
			Type:          q.QuestionType,
			QuestionText:  q.QuestionText,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			SFIALevel:     q.SFIALevel,
		})
	}

	return tree
}

func subSkillTempID(skillIndex, subSkillIndex int) string {
	return fmt.Sprintf("subskill-%d-%d", skillIndex, subSkillIndex)
}

// skillIndexFromTempID recovers the skill index from a "subskill-{i}-{j}"
// temp id.
func skillIndexFromTempID(tempID string) (int, bool) {
	rest, found := strings.CutPrefix(tempID, "subskill-")
	if !found {
		return 0, false
	}
	var i, j int
	if _, err := fmt.Sscanf(rest, "%d-%d", &i, &j); err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
