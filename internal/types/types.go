package types

// AnalyzeInput represents the input for a full resume analysis
type AnalyzeInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// ATSScore represents the applicant-tracking-system compatibility score
type ATSScore struct {
	Score           int                `json:"score"` // 0-100
	Breakdown       map[string]float64 `json:"breakdown"`
	Feedback        string             `json:"feedback"`
	Recommendations []string           `json:"recommendations"`
}

// Repetition represents a single overused word and its replacement options
type Repetition struct {
	Word     string   `json:"word"`
	Count    int      `json:"count"`
	Synonyms []string `json:"synonyms"`
}

// RepetitionReport represents the outcome of word-repetition analysis
type RepetitionReport struct {
	Status         string       `json:"status"` // "repetitions_found" or "varied"
	Repetitions    []Repetition `json:"repetitions"`
	TotalIssues    int          `json:"totalIssues"`
	Recommendation string       `json:"recommendation,omitempty"`
}

// LearningResource represents a study resource attached to a roadmap phase
type LearningResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"` // "course", "docs", "video", "book"
	Free  bool   `json:"free"`
}

// RoadmapPhase represents one skill-focused phase of a learning roadmap
type RoadmapPhase struct {
	Skill         string             `json:"skill"`
	Order         int                `json:"order"` // 1-based priority
	Duration      string             `json:"duration"`
	Topics        []string           `json:"topics"`
	Prerequisites []string           `json:"prerequisites"`
	Resources     []LearningResource `json:"resources"`
}

// Roadmap represents an ordered learning plan for missing skills
type Roadmap struct {
	Phases        []RoadmapPhase `json:"phases"`
	TotalDuration string         `json:"totalDuration,omitempty"`
}

// Project represents a suggested portfolio project
type Project struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Difficulty          string   `json:"difficulty"` // "Beginner", "Intermediate", "Advanced", "Expert"
	EstimatedTime       string   `json:"estimatedTime"`
	SkillsCovered       []string `json:"skillsCovered"`
	ImplementationSteps []string `json:"implementationSteps,omitempty"`
	PortfolioValue      string   `json:"portfolioValue,omitempty"`
}

// InterviewQuestion represents a generated practice question
type InterviewQuestion struct {
	Question    string   `json:"question"`
	Category    string   `json:"category"` // "technical", "coding", "behavioral", "system_design"
	Difficulty  string   `json:"difficulty"`
	SkillTested string   `json:"skillTested,omitempty"`
	TimeLimit   string   `json:"timeLimit,omitempty"`
	Hints       []string `json:"hints,omitempty"`
}

// StageStatus describes how a pipeline stage concluded
type StageStatus string

const (
	StageOK       StageStatus = "ok"
	StageFallback StageStatus = "fallback"
	StageDegraded StageStatus = "degraded"
	StageSkipped  StageStatus = "skipped"
)

// StageSource identifies which path produced a stage's output
type StageSource string

const (
	SourceAI    StageSource = "ai"
	SourceLocal StageSource = "local"
	SourceNone  StageSource = "none"
)

// StageOutcome records the status and provenance of one pipeline stage
type StageOutcome struct {
	Status StageStatus `json:"status"`
	Source StageSource `json:"source"`
	Error  string      `json:"error,omitempty"`
}

// AnalysisState is the terminal state of an analysis run
type AnalysisState string

const (
	AnalysisComplete          AnalysisState = "complete"
	AnalysisPartiallyComplete AnalysisState = "partially_complete"
)

// AnalysisResult is the aggregate output of the full analysis pipeline
type AnalysisResult struct {
	ID              string                  `json:"id"`
	State           AnalysisState           `json:"state"`
	ResumeText      string                  `json:"resumeText,omitempty"`
	ResumeSkills    []string                `json:"resumeSkills"`
	JobSkills       []string                `json:"jobSkills"`
	JobKeywords     []string                `json:"jobKeywords,omitempty"`
	MatchedSkills   []string                `json:"matchedSkills"`
	MissingSkills   []string                `json:"missingSkills"`
	ExperienceLevel string                  `json:"experienceLevel"`
	ATS             ATSScore                `json:"ats"`
	Repetition      RepetitionReport        `json:"repetition"`
	Roadmap         Roadmap                 `json:"roadmap"`
	Projects        []Project               `json:"projects"`
	Questions       []InterviewQuestion     `json:"questions"`
	Stages          map[string]StageOutcome `json:"stages"`
}

// Candidate represents one applicant submitted for ranking
type Candidate struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	ResumeText string   `json:"resumeText,omitempty"`
}

// RankedCandidate represents a candidate with its composite ranking result
type RankedCandidate struct {
	Candidate         Candidate          `json:"candidate"`
	Rank              int                `json:"rank"` // 1-based, contiguous
	CompositeScore    float64            `json:"compositeScore"`
	ATSScore          int                `json:"atsScore"`
	MatchedSkills     []string           `json:"matchedSkills"`
	ExperienceSummary string             `json:"experienceSummary,omitempty"`
	Breakdown         map[string]float64 `json:"breakdown,omitempty"`
}

// RankInput represents the input for multi-candidate ranking
type RankInput struct {
	JobDescription string      `json:"jobDescription"`
	Candidates     []Candidate `json:"candidates"`
	TopK           int         `json:"topK,omitempty"`
}

// ResumeSection represents one titled block of a regenerated resume
type ResumeSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ResumeDocument represents a regenerated, reordered resume
type ResumeDocument struct {
	Summary       string          `json:"summary"`
	SummarySource StageSource     `json:"summarySource"` // "ai" when rewritten, "local" otherwise
	Sections      []ResumeSection `json:"sections"`
}

// TokenUsage represents token consumption from a generation call
type TokenUsage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}
