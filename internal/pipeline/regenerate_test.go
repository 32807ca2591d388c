package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/types"
)

const regenSource = `Jane Doe, jane@example.com

Education
BSc Computer Science, 2017

Experience
Senior Engineer at Acme since 2019.

Skills
Python, React, JavaScript, Perl

Summary
Engineer who ships web products.`

func regenAnalysis() *types.AnalysisResult {
	return &types.AnalysisResult{
		ID:            "test",
		ResumeText:    regenSource,
		MatchedSkills: []string{"JavaScript", "React"},
		JobSkills:     []string{"JavaScript", "React", "Node.js"},
	}
}

func TestRegenerateSectionOrder(t *testing.T) {
	o := testOrchestrator(t, nil, nil)

	doc, err := o.Regenerate(context.Background(), regenAnalysis())
	if err != nil {
		t.Fatalf("Regenerate() error: %v", err)
	}

	var titles []string
	for _, s := range doc.Sections {
		titles = append(titles, s.Title)
	}
	// The contact preamble folds into Summary; the explicit Summary
	// heading merges with it. Canonical order regardless of source order.
	want := []string{"Summary", "Skills", "Experience", "Education"}
	if len(titles) != len(want) {
		t.Fatalf("sections = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("section %d = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestRegenerateOmitsAbsentSections(t *testing.T) {
	o := testOrchestrator(t, nil, nil)

	doc, err := o.Regenerate(context.Background(), regenAnalysis())
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range doc.Sections {
		if s.Title == "Certifications" || s.Title == "Languages" {
			t.Errorf("section %q invented; source resume has none", s.Title)
		}
	}
}

func TestRegenerateSkillsOrdering(t *testing.T) {
	o := testOrchestrator(t, nil, nil)

	doc, err := o.Regenerate(context.Background(), regenAnalysis())
	if err != nil {
		t.Fatal(err)
	}

	var skills string
	for _, s := range doc.Sections {
		if s.Title == "Skills" {
			skills = s.Content
		}
	}
	if !strings.HasPrefix(skills, "JavaScript, React") {
		t.Errorf("skills section %q does not lead with matched skills", skills)
	}
	if !strings.Contains(skills, "Perl") {
		t.Errorf("skills section %q dropped an original skill", skills)
	}
}

func TestRegenerateSummaryPassthrough(t *testing.T) {
	// Gateway unreachable: the original summary text survives untouched.
	gw := stubGateway(t, map[gateway.Stage]gateway.Provider{
		gateway.StageRewriteSummary: &stubProvider{err: errors.New("backend down")},
	})
	o := testOrchestrator(t, gw, nil)

	doc, err := o.Regenerate(context.Background(), regenAnalysis())
	if err != nil {
		t.Fatal(err)
	}
	if doc.SummarySource != types.SourceLocal {
		t.Errorf("summary source = %q, want local", doc.SummarySource)
	}
	if !strings.Contains(doc.Summary, "Engineer who ships web products.") {
		t.Errorf("summary %q lost the original text", doc.Summary)
	}
}

func TestRegenerateSummaryRewrite(t *testing.T) {
	rewritten := "Product-focused engineer with strong JavaScript and React delivery."
	payload, _ := json.Marshal(gateway.RewriteSummaryResponse{Summary: rewritten})
	gw := stubGateway(t, map[gateway.Stage]gateway.Provider{
		gateway.StageRewriteSummary: &stubProvider{raw: payload},
	})
	o := testOrchestrator(t, gw, nil)

	doc, err := o.Regenerate(context.Background(), regenAnalysis())
	if err != nil {
		t.Fatal(err)
	}
	if doc.SummarySource != types.SourceAI {
		t.Errorf("summary source = %q, want ai", doc.SummarySource)
	}
	if doc.Summary != rewritten {
		t.Errorf("summary = %q, want rewritten text", doc.Summary)
	}
	for _, s := range doc.Sections {
		if s.Title == "Summary" && s.Content != rewritten {
			t.Error("summary section content not updated with the rewrite")
		}
	}
}

func TestRegenerateRejectsEmptyAnalysis(t *testing.T) {
	o := testOrchestrator(t, nil, nil)

	for _, result := range []*types.AnalysisResult{nil, {ResumeText: "  "}} {
		_, err := o.Regenerate(context.Background(), result)
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeNoResumeContent {
			t.Errorf("expected NO_RESUME_CONTENT, got %v", err)
		}
	}
}

func TestParseSectionsHeadings(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{"plain", "Experience", "Experience", true},
		{"with colon", "Work Experience:", "Experience", true},
		{"aliased", "Core Competencies", "Skills", true},
		{"uppercase", "EDUCATION", "Education", true},
		{"prose is not a heading", "Experience taught me a lot about teams and shipping software on deadlines", "", false},
		{"unknown heading", "Hobbies", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := matchHeading(tt.line)
			if ok != tt.ok || got != tt.want {
				t.Errorf("matchHeading(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.ok)
			}
		})
	}
}
