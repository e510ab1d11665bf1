package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/skillforge-app/skillforge/internal/draft"
	"github.com/skillforge-app/skillforge/internal/gateway"
)

// treeSchema constrains authored topic files. It is intentionally strict
// about shape and loose about content; empty strings are legal everywhere.
const treeSchema = `{
  "type": "object",
  "required": ["name"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string"},
    "mastery_definition": {"type": "string"},
    "skills": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string"},
          "mastery_definition": {"type": "string"},
          "content_to_master": {"type": "string"},
          "sub_skills": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name"],
              "additionalProperties": false,
              "properties": {
                "name": {"type": "string"},
                "content_to_master": {"type": "string"},
                "condensed_learning_materials": {"type": "string"},
                "questions": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["question"],
                    "additionalProperties": false,
                    "properties": {
                      "type": {"type": "string"},
                      "question": {"type": "string"},
                      "correct_answer": {"type": "string"},
                      "explanation": {"type": "string"},
                      "sfia_level": {"type": "integer", "minimum": 1, "maximum": 7}
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

type yamlTopic struct {
	Name              string      `yaml:"name"`
	MasteryDefinition string      `yaml:"mastery_definition"`
	Skills            []yamlSkill `yaml:"skills"`
}

type yamlSkill struct {
	Name              string         `yaml:"name"`
	MasteryDefinition string         `yaml:"mastery_definition"`
	ContentToMaster   string         `yaml:"content_to_master"`
	SubSkills         []yamlSubSkill `yaml:"sub_skills"`
}

type yamlSubSkill struct {
	Name                       string         `yaml:"name"`
	ContentToMaster            string         `yaml:"content_to_master"`
	CondensedLearningMaterials string         `yaml:"condensed_learning_materials"`
	Questions                  []yamlQuestion `yaml:"questions"`
}

type yamlQuestion struct {
	Type          string `yaml:"type"`
	Question      string `yaml:"question"`
	CorrectAnswer string `yaml:"correct_answer"`
	Explanation   string `yaml:"explanation"`
	SFIALevel     int    `yaml:"sfia_level"`
}

// TreeFromYAML decodes an authored topic file into a tree, validating its
// shape against the schema first.
func TreeFromYAML(data []byte) (draft.TopicTree, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return draft.TopicTree{}, fmt.Errorf("parse yaml: %w", err)
	}

	// gojsonschema speaks JSON, so the yaml document round-trips through it.
	jsonDoc, err := json.Marshal(raw)
	if err != nil {
		return draft.TopicTree{}, fmt.Errorf("encode document: %w", err)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(treeSchema),
		gojsonschema.NewBytesLoader(jsonDoc),
	)
	if err != nil {
		return draft.TopicTree{}, fmt.Errorf("validate document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return draft.TopicTree{}, fmt.Errorf("invalid topic file: %s", strings.Join(msgs, "; "))
	}

	var doc yamlTopic
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return draft.TopicTree{}, fmt.Errorf("decode topic: %w", err)
	}

	tree := draft.TopicTree{
		Name:              doc.Name,
		MasteryDefinition: doc.MasteryDefinition,
	}
	for _, sk := range doc.Skills {
		skill := draft.SkillNode{
			Name:              sk.Name,
			MasteryDefinition: sk.MasteryDefinition,
			ContentToMaster:   sk.ContentToMaster,
		}
		for _, ss := range sk.SubSkills {
			sub := draft.SubSkillNode{
				Name:                       ss.Name,
				ContentToMaster:            ss.ContentToMaster,
				CondensedLearningMaterials: ss.CondensedLearningMaterials,
				SFIA:                       gateway.SFIADefinitions{},
			}
			for _, q := range ss.Questions {
				level := q.SFIALevel
				if level == 0 {
					level = 1
				}
				sub.Questions = append(sub.Questions, draft.QuestionNode{
					Type:          q.Type,
					QuestionText:  q.Question,
					CorrectAnswer: q.CorrectAnswer,
					Explanation:   q.Explanation,
					SFIALevel:     level,
				})
			}
			skill.SubSkills = append(skill.SubSkills, sub)
		}
		tree.Skills = append(tree.Skills, skill)
	}
	return tree, nil
}
