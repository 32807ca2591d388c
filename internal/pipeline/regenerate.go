package pipeline

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"careerpilot/internal/analysis"
	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/types"
)

// Canonical section order for regenerated resumes. Sections found in
// the source but not listed here sort after these, keeping their
// relative order.
var sectionOrder = []string{
	"Summary",
	"Skills",
	"Experience",
	"Projects",
	"Education",
	"Certifications",
	"Languages",
}

// sectionAliases maps lowercased source headings to canonical section
// titles.
var sectionAliases = map[string]string{
	"summary":                 "Summary",
	"professional summary":    "Summary",
	"profile":                 "Summary",
	"objective":               "Summary",
	"about":                   "Summary",
	"about me":                "Summary",
	"skills":                  "Skills",
	"technical skills":        "Skills",
	"core competencies":       "Skills",
	"technologies":            "Skills",
	"experience":              "Experience",
	"work experience":         "Experience",
	"professional experience": "Experience",
	"employment":              "Experience",
	"employment history":      "Experience",
	"work history":            "Experience",
	"projects":                "Projects",
	"personal projects":       "Projects",
	"portfolio":               "Projects",
	"education":               "Education",
	"academic background":     "Education",
	"certifications":          "Certifications",
	"certificates":            "Certifications",
	"licenses":                "Certifications",
	"languages":               "Languages",
}

// headingPattern matches a line that is a standalone section heading:
// short, letters only, optionally ending in a colon.
var headingPattern = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z ]{1,40})\s*:?\s*$`)

// Regenerate rebuilds a resume from a completed analysis: sections are
// reordered into the canonical layout, the skills section leads with
// the job's matched skills, and the summary is rewritten through the
// gateway with the original text passed through untouched on failure.
// It never fails because of gateway trouble.
func (o *Orchestrator) Regenerate(ctx context.Context, result *types.AnalysisResult) (*types.ResumeDocument, error) {
	if result == nil || strings.TrimSpace(result.ResumeText) == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeNoResumeContent,
			"analysis has no resume text to regenerate", nil)
	}

	sections := parseSections(result.ResumeText)
	orderSections(sections)

	doc := &types.ResumeDocument{
		Sections:      sections,
		SummarySource: types.SourceLocal,
	}

	for i := range sections {
		if sections[i].Title == "Skills" {
			sections[i].Content = rebuildSkillsSection(sections[i].Content, result.MatchedSkills)
		}
		if sections[i].Title == "Summary" {
			doc.Summary = sections[i].Content
		}
	}
	if doc.Summary == "" {
		// No summary section in the source: synthesize nothing, leave
		// the document exactly as structured.
		return doc, nil
	}

	o.rewriteSummary(ctx, doc, result)
	for i := range doc.Sections {
		if doc.Sections[i].Title == "Summary" {
			doc.Sections[i].Content = doc.Summary
		}
	}
	return doc, nil
}

// rewriteSummary runs the rewrite_summary stage per its policy. The
// local path is a pass-through of the original summary.
func (o *Orchestrator) rewriteSummary(ctx context.Context, doc *types.ResumeDocument, result *types.AnalysisResult) {
	if o.cfg.GetStagePolicy(config.StageRewriteSummary) == config.PolicyLocalOnly {
		return
	}

	raw, err := o.invoke(ctx, gateway.StageRewriteSummary, gateway.PromptContext{
		OriginalSummary: doc.Summary,
		MatchedSkills:   result.MatchedSkills,
		JobDescription:  jobFocus(result),
	})
	if err != nil {
		o.logger.Warn("summary rewrite failed, keeping original text", "error", err.Error())
		return
	}

	var resp gateway.RewriteSummaryResponse
	if err := json.Unmarshal(raw, &resp); err != nil || strings.TrimSpace(resp.Summary) == "" {
		return
	}
	doc.Summary = strings.TrimSpace(resp.Summary)
	doc.SummarySource = types.SourceAI
}

// jobFocus condenses the analyzed job into the terms the rewrite
// prompt should emphasize.
func jobFocus(result *types.AnalysisResult) string {
	if len(result.JobKeywords) > 0 {
		return strings.Join(result.JobKeywords, ", ")
	}
	return strings.Join(result.JobSkills, ", ")
}

// parseSections splits cleaned resume text on recognized headings.
// Text before the first heading becomes the Summary section. Only
// sections present in the source are emitted.
func parseSections(text string) []types.ResumeSection {
	lines := strings.Split(text, "\n")

	var sections []types.ResumeSection
	current := ""
	var buf []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		if content == "" {
			return
		}
		title := current
		if title == "" {
			title = "Summary"
		}
		sections = append(sections, types.ResumeSection{Title: title, Content: content})
	}

	for _, line := range lines {
		if title, ok := matchHeading(line); ok {
			flush()
			current = title
			continue
		}
		buf = append(buf, line)
	}
	flush()

	// Merge duplicate headings so each canonical section appears once.
	merged := make([]types.ResumeSection, 0, len(sections))
	index := make(map[string]int)
	for _, s := range sections {
		if i, ok := index[s.Title]; ok {
			merged[i].Content += "\n\n" + s.Content
			continue
		}
		index[s.Title] = len(merged)
		merged = append(merged, s)
	}
	return merged
}

func matchHeading(line string) (string, bool) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	title, ok := sectionAliases[strings.ToLower(strings.TrimSpace(m[1]))]
	return title, ok
}

// orderSections sorts sections into the canonical layout; unknown
// titles keep their source order after the known ones.
func orderSections(sections []types.ResumeSection) {
	rank := make(map[string]int, len(sectionOrder))
	for i, title := range sectionOrder {
		rank[title] = i
	}
	position := make(map[string]int, len(sections))
	for i, s := range sections {
		position[s.Title] = i
	}
	sort.SliceStable(sections, func(i, j int) bool {
		ri, iKnown := rank[sections[i].Title]
		rj, jKnown := rank[sections[j].Title]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return position[sections[i].Title] < position[sections[j].Title]
		}
	})
}

// rebuildSkillsSection lists the job's matched skills first, then the
// remaining skills from the source section, comma separated.
func rebuildSkillsSection(content string, matchedSkills []string) string {
	original := splitSkillList(content)

	seen := make(map[string]bool, len(matchedSkills))
	ordered := make([]string, 0, len(original)+len(matchedSkills))
	for _, skill := range matchedSkills {
		seen[strings.ToLower(skill)] = true
		ordered = append(ordered, skill)
	}
	for _, skill := range original {
		canon := analysis.CanonicalizeSkills([]string{skill})
		if len(canon) == 1 && seen[strings.ToLower(canon[0])] {
			continue
		}
		if seen[strings.ToLower(skill)] {
			continue
		}
		seen[strings.ToLower(skill)] = true
		ordered = append(ordered, skill)
	}
	if len(ordered) == 0 {
		return content
	}
	return strings.Join(ordered, ", ")
}

func splitSkillList(content string) []string {
	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '|'
	})
	skills := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
