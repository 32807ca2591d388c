package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Response payload shapes per stage. The pipeline decodes validated
// gateway output into these.

// ParseSkillsResponse is the parse_skills stage payload.
type ParseSkillsResponse struct {
	ResumeSkills    []string `json:"resumeSkills"`
	JobSkills       []string `json:"jobSkills"`
	JobKeywords     []string `json:"jobKeywords"`
	ExperienceLevel string   `json:"experienceLevel"`
}

// RoadmapPhaseResponse is one phase in the build_roadmap stage payload.
type RoadmapPhaseResponse struct {
	Skill         string   `json:"skill"`
	Order         int      `json:"order"`
	Duration      string   `json:"duration"`
	Topics        []string `json:"topics"`
	Prerequisites []string `json:"prerequisites"`
}

// RoadmapResponse is the build_roadmap stage payload.
type RoadmapResponse struct {
	Phases []RoadmapPhaseResponse `json:"phases"`
}

// ProjectResponse is one project in the suggest_projects stage payload.
type ProjectResponse struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Difficulty          string   `json:"difficulty"`
	EstimatedTime       string   `json:"estimatedTime"`
	SkillsCovered       []string `json:"skillsCovered"`
	ImplementationSteps []string `json:"implementationSteps"`
	PortfolioValue      string   `json:"portfolioValue"`
}

// ProjectsResponse is the suggest_projects stage payload.
type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

// QuestionResponse is one question in the generate_questions payload.
type QuestionResponse struct {
	Question    string   `json:"question"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	SkillTested string   `json:"skillTested"`
	TimeLimit   string   `json:"timeLimit"`
	Hints       []string `json:"hints"`
}

// QuestionsResponse is the generate_questions stage payload.
type QuestionsResponse struct {
	Questions []QuestionResponse `json:"questions"`
}

// RankCandidateResponse is the rank_candidate stage payload.
type RankCandidateResponse struct {
	FitScore float64 `json:"fitScore"`
	Summary  string  `json:"summary"`
}

// RewriteSummaryResponse is the rewrite_summary stage payload.
type RewriteSummaryResponse struct {
	Summary string `json:"summary"`
}

// stageSchemaSources holds the JSON Schema documents the gateway
// validates responses against before handing them to the pipeline.
var stageSchemaSources = map[Stage]string{
	StageParseSkills: `{
		"type": "object",
		"required": ["resumeSkills", "jobSkills", "experienceLevel"],
		"properties": {
			"resumeSkills": {"type": "array", "items": {"type": "string"}},
			"jobSkills": {"type": "array", "items": {"type": "string"}},
			"jobKeywords": {"type": "array", "items": {"type": "string"}},
			"experienceLevel": {"type": "string", "enum": ["junior", "mid-level", "senior"]}
		}
	}`,
	StageBuildRoadmap: `{
		"type": "object",
		"required": ["phases"],
		"properties": {
			"phases": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["skill", "order", "duration"],
					"properties": {
						"skill": {"type": "string", "minLength": 1},
						"order": {"type": "integer", "minimum": 1},
						"duration": {"type": "string"},
						"topics": {"type": "array", "items": {"type": "string"}},
						"prerequisites": {"type": "array", "items": {"type": "string"}}
					}
				}
			}
		}
	}`,
	StageSuggestProjects: `{
		"type": "object",
		"required": ["projects"],
		"properties": {
			"projects": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["title", "description", "difficulty"],
					"properties": {
						"title": {"type": "string", "minLength": 1},
						"description": {"type": "string"},
						"difficulty": {"type": "string"},
						"estimatedTime": {"type": "string"},
						"skillsCovered": {"type": "array", "items": {"type": "string"}},
						"implementationSteps": {"type": "array", "items": {"type": "string"}},
						"portfolioValue": {"type": "string"}
					}
				}
			}
		}
	}`,
	StageGenerateQuestions: `{
		"type": "object",
		"required": ["questions"],
		"properties": {
			"questions": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["question", "category", "difficulty"],
					"properties": {
						"question": {"type": "string", "minLength": 1},
						"category": {"type": "string"},
						"difficulty": {"type": "string"},
						"skillTested": {"type": "string"},
						"timeLimit": {"type": "string"},
						"hints": {"type": "array", "items": {"type": "string"}}
					}
				}
			}
		}
	}`,
	StageRankCandidate: `{
		"type": "object",
		"required": ["fitScore", "summary"],
		"properties": {
			"fitScore": {"type": "number", "minimum": 0, "maximum": 100},
			"summary": {"type": "string"}
		}
	}`,
	StageRewriteSummary: `{
		"type": "object",
		"required": ["summary"],
		"properties": {
			"summary": {"type": "string", "minLength": 1}
		}
	}`,
}

var stageSchemas = mustCompileSchemas()

func mustCompileSchemas() map[Stage]*gojsonschema.Schema {
	compiled := make(map[Stage]*gojsonschema.Schema, len(stageSchemaSources))
	for stage, source := range stageSchemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			panic(fmt.Sprintf("invalid response schema for stage %s: %v", stage, err))
		}
		compiled[stage] = schema
	}
	return compiled
}

// ValidateResponse checks a raw gateway response against the stage's
// response schema. Returns a typed Error of kind KindInvalidSchema on
// mismatch.
func ValidateResponse(stage Stage, raw json.RawMessage) error {
	schema, ok := stageSchemas[stage]
	if !ok {
		return &Error{Kind: KindInvalidRequest, Stage: stage, Message: "no response schema defined for stage"}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &Error{Kind: KindInvalidSchema, Stage: stage, Message: "response is not valid JSON", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, fieldErr := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", fieldErr.Field(), fieldErr.Description()))
	}
	return &Error{
		Kind:    KindInvalidSchema,
		Stage:   stage,
		Message: "response does not match schema: " + strings.Join(issues, "; "),
	}
}
