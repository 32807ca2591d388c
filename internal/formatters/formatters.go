package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"careerpilot/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "RankedCandidates", &RankingTextFormatter{})
	registry.RegisterFormatter("markdown", "RankedCandidates", &RankingMarkdownFormatter{})
	registry.RegisterFormatter("text", "ResumeDocument", &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeDocument", &ResumeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *types.AnalysisResult, types.AnalysisResult:
		return "AnalysisResult"
	case []types.RankedCandidate:
		return "RankedCandidates"
	case *types.ResumeDocument, types.ResumeDocument:
		return "ResumeDocument"
	default:
		return "any"
	}
}

func asAnalysisResult(data any) (*types.AnalysisResult, error) {
	switch v := data.(type) {
	case *types.AnalysisResult:
		return v, nil
	case types.AnalysisResult:
		return &v, nil
	default:
		return nil, fmt.Errorf("expected AnalysisResult, got %T", data)
	}
}

func asResumeDocument(data any) (*types.ResumeDocument, error) {
	switch v := data.(type) {
	case *types.ResumeDocument:
		return v, nil
	case types.ResumeDocument:
		return &v, nil
	default:
		return nil, fmt.Errorf("expected ResumeDocument, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter handles text formatting for analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("State: %s\n", result.State))
	output.WriteString(fmt.Sprintf("Experience level: %s\n\n", result.ExperienceLevel))

	output.WriteString("=== ATS SCORE ===\n")
	output.WriteString(fmt.Sprintf("Score: %d/100\n", result.ATS.Score))
	output.WriteString(result.ATS.Feedback)
	output.WriteString("\n")
	if len(result.ATS.Recommendations) > 0 {
		output.WriteString("\nRecommendations:\n")
		for _, rec := range result.ATS.Recommendations {
			output.WriteString(fmt.Sprintf("- %s\n", rec))
		}
	}
	output.WriteString("\n")

	output.WriteString("=== SKILLS ===\n")
	output.WriteString(fmt.Sprintf("Matched: %s\n", joinOrNone(result.MatchedSkills)))
	output.WriteString(fmt.Sprintf("Missing: %s\n\n", joinOrNone(result.MissingSkills)))

	output.WriteString("=== WORD REPETITION ===\n")
	if len(result.Repetition.Repetitions) > 0 {
		for _, rep := range result.Repetition.Repetitions {
			output.WriteString(fmt.Sprintf("- %q used %d times", rep.Word, rep.Count))
			if len(rep.Synonyms) > 0 {
				output.WriteString(fmt.Sprintf(" (try: %s)", strings.Join(rep.Synonyms, ", ")))
			}
			output.WriteString("\n")
		}
		if result.Repetition.Recommendation != "" {
			output.WriteString(result.Repetition.Recommendation)
			output.WriteString("\n")
		}
	} else {
		output.WriteString("No overused words found.\n")
	}
	output.WriteString("\n")

	if len(result.Roadmap.Phases) > 0 {
		output.WriteString("=== LEARNING ROADMAP ===\n")
		if result.Roadmap.TotalDuration != "" {
			output.WriteString(fmt.Sprintf("Estimated duration: %s\n\n", result.Roadmap.TotalDuration))
		}
		for _, phase := range result.Roadmap.Phases {
			output.WriteString(fmt.Sprintf("%d. %s (%s)\n", phase.Order, phase.Skill, phase.Duration))
			for _, topic := range phase.Topics {
				output.WriteString(fmt.Sprintf("   - %s\n", topic))
			}
			for _, res := range phase.Resources {
				output.WriteString(fmt.Sprintf("   > %s: %s\n", res.Title, res.URL))
			}
		}
		output.WriteString("\n")
	}

	if len(result.Projects) > 0 {
		output.WriteString("=== SUGGESTED PROJECTS ===\n")
		for i, project := range result.Projects {
			output.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, project.Title, project.Difficulty))
			output.WriteString(fmt.Sprintf("   %s\n", project.Description))
		}
		output.WriteString("\n")
	}

	if len(result.Questions) > 0 {
		output.WriteString("=== INTERVIEW QUESTIONS ===\n")
		for i, question := range result.Questions {
			output.WriteString(fmt.Sprintf("%d. [%s/%s] %s\n", i+1, question.Category, question.Difficulty, question.Question))
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := asAnalysisResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	output.WriteString(fmt.Sprintf("**State:** %s  \n", result.State))
	output.WriteString(fmt.Sprintf("**Experience level:** %s\n\n", result.ExperienceLevel))

	output.WriteString("## ATS Score\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", result.ATS.Score))
	output.WriteString(result.ATS.Feedback)
	output.WriteString("\n\n")
	if len(result.ATS.Recommendations) > 0 {
		output.WriteString("### Recommendations\n")
		for _, rec := range result.ATS.Recommendations {
			output.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Skills\n\n")
	output.WriteString(fmt.Sprintf("**Matched:** %s  \n", joinOrNone(result.MatchedSkills)))
	output.WriteString(fmt.Sprintf("**Missing:** %s\n\n", joinOrNone(result.MissingSkills)))

	output.WriteString("## Word Repetition\n\n")
	if len(result.Repetition.Repetitions) > 0 {
		for _, rep := range result.Repetition.Repetitions {
			output.WriteString(fmt.Sprintf("- **%s** used %d times", rep.Word, rep.Count))
			if len(rep.Synonyms) > 0 {
				output.WriteString(fmt.Sprintf(" (try: %s)", strings.Join(rep.Synonyms, ", ")))
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	} else {
		output.WriteString("No overused words found.\n\n")
	}

	if len(result.Roadmap.Phases) > 0 {
		output.WriteString("## Learning Roadmap\n\n")
		if result.Roadmap.TotalDuration != "" {
			output.WriteString(fmt.Sprintf("**Estimated duration:** %s\n\n", result.Roadmap.TotalDuration))
		}
		for _, phase := range result.Roadmap.Phases {
			output.WriteString(fmt.Sprintf("### %d. %s (%s)\n\n", phase.Order, phase.Skill, phase.Duration))
			for _, topic := range phase.Topics {
				output.WriteString(fmt.Sprintf("- %s\n", topic))
			}
			for _, res := range phase.Resources {
				output.WriteString(fmt.Sprintf("- [%s](%s)\n", res.Title, res.URL))
			}
			output.WriteString("\n")
		}
	}

	if len(result.Projects) > 0 {
		output.WriteString("## Suggested Projects\n\n")
		for i, project := range result.Projects {
			output.WriteString(fmt.Sprintf("### %d. %s (%s)\n\n", i+1, project.Title, project.Difficulty))
			output.WriteString(project.Description)
			output.WriteString("\n\n")
		}
	}

	if len(result.Questions) > 0 {
		output.WriteString("## Interview Questions\n\n")
		for i, question := range result.Questions {
			output.WriteString(fmt.Sprintf("%d. **[%s/%s]** %s\n", i+1, question.Category, question.Difficulty, question.Question))
		}
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// RankingTextFormatter handles text formatting for candidate rankings
type RankingTextFormatter struct{}

func (rtf *RankingTextFormatter) Format(data any) (string, error) {
	ranked, ok := data.([]types.RankedCandidate)
	if !ok {
		return "", fmt.Errorf("expected []RankedCandidate, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CANDIDATE RANKING ===\n\n")
	if len(ranked) == 0 {
		output.WriteString("No candidates to rank.\n")
		return output.String(), nil
	}

	for _, rc := range ranked {
		name := rc.Candidate.Name
		if name == "" {
			name = rc.Candidate.ID
		}
		output.WriteString(fmt.Sprintf("%d. %s (score: %.4f, ATS: %d)\n", rc.Rank, name, rc.CompositeScore, rc.ATSScore))
		output.WriteString(fmt.Sprintf("   Matched skills: %s\n", joinOrNone(rc.MatchedSkills)))
		if rc.ExperienceSummary != "" {
			output.WriteString(fmt.Sprintf("   %s\n", rc.ExperienceSummary))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rtf *RankingTextFormatter) SupportedType() string {
	return "RankedCandidates"
}

// RankingMarkdownFormatter handles markdown formatting for candidate rankings
type RankingMarkdownFormatter struct{}

func (rmf *RankingMarkdownFormatter) Format(data any) (string, error) {
	ranked, ok := data.([]types.RankedCandidate)
	if !ok {
		return "", fmt.Errorf("expected []RankedCandidate, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Candidate Ranking\n\n")
	if len(ranked) == 0 {
		output.WriteString("No candidates to rank.\n")
		return output.String(), nil
	}

	output.WriteString("| Rank | Candidate | Score | ATS | Matched Skills |\n")
	output.WriteString("|------|-----------|-------|-----|----------------|\n")
	for _, rc := range ranked {
		name := rc.Candidate.Name
		if name == "" {
			name = rc.Candidate.ID
		}
		output.WriteString(fmt.Sprintf("| %d | %s | %.4f | %d | %s |\n",
			rc.Rank, name, rc.CompositeScore, rc.ATSScore, joinOrNone(rc.MatchedSkills)))
	}
	output.WriteString("\n")

	for _, rc := range ranked {
		if rc.ExperienceSummary == "" {
			continue
		}
		name := rc.Candidate.Name
		if name == "" {
			name = rc.Candidate.ID
		}
		output.WriteString(fmt.Sprintf("**%s:** %s\n\n", name, rc.ExperienceSummary))
	}

	return output.String(), nil
}

func (rmf *RankingMarkdownFormatter) SupportedType() string {
	return "RankedCandidates"
}

// ResumeTextFormatter handles text formatting for regenerated resumes
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	doc, err := asResumeDocument(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	for i, section := range doc.Sections {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(strings.ToUpper(section.Title))
		output.WriteString("\n")
		output.WriteString(section.Content)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "ResumeDocument"
}

// ResumeMarkdownFormatter handles markdown formatting for regenerated resumes
type ResumeMarkdownFormatter struct{}

func (rmf *ResumeMarkdownFormatter) Format(data any) (string, error) {
	doc, err := asResumeDocument(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	for _, section := range doc.Sections {
		output.WriteString(fmt.Sprintf("## %s\n\n", section.Title))
		output.WriteString(section.Content)
		output.WriteString("\n\n")
	}

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (rmf *ResumeMarkdownFormatter) SupportedType() string {
	return "ResumeDocument"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
