package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/skillforge-app/skillforge/internal/draft"
)

// Sheet names expected in an authored workbook. Skills is mandatory, the
// other two optional.
const (
	sheetSkills    = "Skills"
	sheetSubSkills = "SubSkills"
	sheetQuestions = "Questions"
)

// TreeFromXLSX flattens an authored workbook into a topic tree. Rows are
// matched to their parents by name; the first row of each sheet is a header.
//
// Skills: name, mastery definition, content to master.
// SubSkills: skill name, sub-skill name, content to master, materials.
// Questions: skill name, sub-skill name, type, question, answer, explanation, level.
func TreeFromXLSX(path, topicName string) (draft.TopicTree, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return draft.TopicTree{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	tree := draft.TopicTree{Name: topicName}
	skillIndex := make(map[string]int)

	rows, err := f.GetRows(sheetSkills)
	if err != nil {
		return draft.TopicTree{}, fmt.Errorf("read %s sheet: %w", sheetSkills, err)
	}
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		name := strings.TrimSpace(row[0])
		if _, ok := skillIndex[name]; ok {
			return draft.TopicTree{}, fmt.Errorf("duplicate skill %q on row %d", name, i+1)
		}
		skillIndex[name] = len(tree.Skills)
		tree.Skills = append(tree.Skills, draft.SkillNode{
			Name:              name,
			MasteryDefinition: cell(row, 1),
			ContentToMaster:   cell(row, 2),
		})
	}

	subIndex := make(map[[2]string][2]int)
	if rows, err := f.GetRows(sheetSubSkills); err == nil {
		for i, row := range rows {
			if i == 0 || len(row) < 2 || strings.TrimSpace(row[1]) == "" {
				continue
			}
			skillName := strings.TrimSpace(row[0])
			si, ok := skillIndex[skillName]
			if !ok {
				return draft.TopicTree{}, fmt.Errorf("sub-skill row %d references unknown skill %q", i+1, skillName)
			}
			subName := strings.TrimSpace(row[1])
			skill := &tree.Skills[si]
			subIndex[[2]string{skillName, subName}] = [2]int{si, len(skill.SubSkills)}
			skill.SubSkills = append(skill.SubSkills, draft.SubSkillNode{
				Name:                       subName,
				ContentToMaster:            cell(row, 2),
				CondensedLearningMaterials: cell(row, 3),
			})
		}
	}

	if rows, err := f.GetRows(sheetQuestions); err == nil {
		for i, row := range rows {
			if i == 0 || len(row) < 4 || strings.TrimSpace(row[3]) == "" {
				continue
			}
			key := [2]string{strings.TrimSpace(row[0]), strings.TrimSpace(row[1])}
			loc, ok := subIndex[key]
			if !ok {
				return draft.TopicTree{}, fmt.Errorf("question row %d references unknown sub-skill %q/%q", i+1, key[0], key[1])
			}
			level := 1
			if raw := cell(row, 6); raw != "" {
				level, err = strconv.Atoi(raw)
				if err != nil || level < 1 || level > 7 {
					return draft.TopicTree{}, fmt.Errorf("question row %d has invalid level %q", i+1, raw)
				}
			}
			sub := &tree.Skills[loc[0]].SubSkills[loc[1]]
			sub.Questions = append(sub.Questions, draft.QuestionNode{
				Type:          cell(row, 2),
				QuestionText:  strings.TrimSpace(row[3]),
				CorrectAnswer: cell(row, 4),
				Explanation:   cell(row, 5),
				SFIALevel:     level,
			})
		}
	}

	return tree, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
