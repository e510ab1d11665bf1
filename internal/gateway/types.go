package gateway

// Course is a persisted course as returned by the backend.
type Course struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     int    `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
}

// CourseCreate is the request body for creating a course.
type CourseCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CourseUpdate is the request body for updating a course. Nil fields are
// omitted and left unchanged by the backend.
type CourseUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CourseWithTopics is a course with its nested topic summaries.
type CourseWithTopics struct {
	Course
	Topics []TopicSummary `json:"topics"`
}

// TopicSummary is the list-view shape of a topic.
type TopicSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	CourseID int    `json:"course_id"`
}

// Topic is a persisted topic.
type Topic struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	CourseID          int    `json:"course_id"`
	MasteryDefinition string `json:"mastery_definition,omitempty"`
}

// Skill is a persisted skill owned by a topic.
type Skill struct {
	ID                       int    `json:"id"`
	TopicID                  int    `json:"topic_id"`
	Name                     string `json:"name"`
	MasteryDefinitionOfSkill string `json:"mastery_definition_of_skill,omitempty"`
	ContentToMaster          string `json:"content_to_master,omitempty"`
}

// SkillSummary is the list-view shape of a skill.
type SkillSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SubSkill is a persisted sub-skill owned by a skill.
type SubSkill struct {
	ID                         int    `json:"id"`
	SkillID                    int    `json:"skill_id"`
	Name                       string `json:"name"`
	ContentToMaster            string `json:"content_to_master,omitempty"`
	CondensedLearningMaterials string `json:"condensed_learning_materials,omitempty"`
	SFIALevel                  int    `json:"sfia_level,omitempty"`
	SFIADefinitions
}

// SFIADefinitions holds the per-level proficiency descriptions. The content
// is opaque to the client; it is carried through drafting untouched.
type SFIADefinitions struct {
	Level1 string `json:"sfia_1_definition,omitempty"`
	Level2 string `json:"sfia_2_definition,omitempty"`
	Level3 string `json:"sfia_3_definition,omitempty"`
	Level4 string `json:"sfia_4_definition,omitempty"`
	Level5 string `json:"sfia_5_definition,omitempty"`
	Level6 string `json:"sfia_6_definition,omitempty"`
	Level7 string `json:"sfia_7_definition,omitempty"`
}

// Question is a question as it appears in generated drafts and persisted
// topics. Draft questions carry temp ids; persisted ones carry real ids.
type Question struct {
	ID             int    `json:"id,omitempty"`
	TempID         string `json:"temp_id,omitempty"`
	SubSkillID     int    `json:"sub_skill_id,omitempty"`
	SubSkillTempID string `json:"sub_skill_temp_id,omitempty"`
	SFIALevel      int    `json:"sfia_level,omitempty"`
	QuestionType   string `json:"question_type,omitempty"`
	QuestionText   string `json:"question_text"`
	CorrectAnswer  string `json:"correct_answer"`
	Explanation    string `json:"explanation,omitempty"`
}

// TopicCreate is the topic portion of a normalized draft batch.
type TopicCreate struct {
	Name              string `json:"name"`
	CourseID          int    `json:"course_id"`
	MasteryDefinition string `json:"mastery_definition,omitempty"`
}

// SkillCreate is the skill portion of a normalized draft batch.
type SkillCreate struct {
	Name                     string `json:"name"`
	MasteryDefinitionOfSkill string `json:"mastery_definition_of_skill,omitempty"`
	ContentToMaster          string `json:"content_to_master,omitempty"`
}

// SubSkillCreate is the sub-skill portion of a normalized draft batch.
// TempID links questions to this sub-skill until the backend assigns real ids.
type SubSkillCreate struct {
	TempID                     string `json:"temp_id"`
	Name                       string `json:"name"`
	SkillID                    int    `json:"skill_id"`
	ContentToMaster            string `json:"content_to_master,omitempty"`
	CondensedLearningMaterials string `json:"condensed_learning_materials,omitempty"`
	SFIADefinitions
}

// QuestionCreate is the question portion of a normalized draft batch.
type QuestionCreate struct {
	TempID         string `json:"temp_id"`
	SubSkillTempID string `json:"sub_skill_temp_id"`
	SubSkillID     int    `json:"sub_skill_id,omitempty"`
	SFIALevel      int    `json:"sfia_level,omitempty"`
	QuestionType   string `json:"question_type,omitempty"`
	QuestionText   string `json:"question_text"`
	CorrectAnswer  string `json:"correct_answer"`
	Explanation    string `json:"explanation,omitempty"`
}

// TopicDraft is the flat, temp-id-linked batch sent to (and returned by)
// the topic generation endpoints. The backend applies all four entity lists
// atomically or not at all.
type TopicDraft struct {
	Topic     TopicCreate      `json:"topic"`
	Skills    []SkillCreate    `json:"skills"`
	SubSkills []SubSkillCreate `json:"sub_skills"`
	Questions []QuestionCreate `json:"questions"`
}

// TopicWithSkills is the fully linked persisted view returned after a draft
// is created.
type TopicWithSkills struct {
	Topic
	Skills []SkillWithSubSkills `json:"skills"`
}

// SkillWithSubSkills nests persisted sub-skills under their skill.
type SkillWithSubSkills struct {
	Skill
	SubSkills []SubSkillWithQuestions `json:"sub_skills"`
}

// SubSkillWithQuestions nests persisted questions under their sub-skill.
type SubSkillWithQuestions struct {
	SubSkill
	Questions []Question `json:"questions"`
}

// ExaminationDraft is the volatile question set returned by examination
// generation. It is consumed exactly once or discarded.
type ExaminationDraft struct {
	Questions []Question `json:"questions"`
}

// QuestionAnswer is a single graded answer. It only ever exists after a
// submission round trip.
type QuestionAnswer struct {
	ID            int    `json:"id,omitempty"`
	SubSkillID    int    `json:"sub_skill_id"`
	SFIALevel     int    `json:"sfia_level"`
	QuestionType  string `json:"question_type"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Correct       bool   `json:"correct"`
}

// ExaminationAnswers is a full answer set for one topic, sent for grading
// and returned graded.
type ExaminationAnswers struct {
	TopicID int              `json:"topic_id"`
	Answers []QuestionAnswer `json:"answers"`
}

// Credentials is the request body for register and login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the backend's answer to a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
