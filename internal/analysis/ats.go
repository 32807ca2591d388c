package analysis

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"careerpilot/internal/types"
)

// ScoreWeights controls how ATS breakdown components combine into the
// final score. Weights must sum to 1.0.
type ScoreWeights struct {
	SkillOverlap float64
	Completeness float64
}

// DefaultScoreWeights weights keyword alignment above profile
// completeness, which matches how most tracking systems filter.
var DefaultScoreWeights = ScoreWeights{
	SkillOverlap: 0.6,
	Completeness: 0.4,
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d[\d\s\-().]{7,}\d)`)
)

// resumeSections are the headings a complete resume is expected to
// carry. Each contributes equally to the completeness component.
var resumeSections = []struct {
	name     string
	keywords []string
}{
	{"summary", []string{"summary", "objective", "profile", "about"}},
	{"experience", []string{"experience", "employment", "work history"}},
	{"education", []string{"education", "degree", "university", "bachelor", "master"}},
	{"skills", []string{"skills", "technologies", "technical"}},
	{"projects", []string{"projects", "portfolio"}},
}

// ScoreATS computes an applicant-tracking compatibility score from the
// resume text and the extracted skill sets. The returned score always
// equals the weighted sum of the breakdown components, rounded to the
// nearest integer.
func ScoreATS(resumeText string, resumeSkills, jobSkills []string, weights ScoreWeights) types.ATSScore {
	overlap := SkillOverlap(resumeSkills, jobSkills) * 100
	completeness := scoreCompleteness(resumeText) * 100

	breakdown := map[string]float64{
		"skill_overlap": round1(overlap),
		"completeness":  round1(completeness),
	}
	score := int(math.Round(weights.SkillOverlap*breakdown["skill_overlap"] + weights.Completeness*breakdown["completeness"]))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return types.ATSScore{
		Score:           score,
		Breakdown:       breakdown,
		Feedback:        scoreFeedback(score),
		Recommendations: scoreRecommendations(resumeText, resumeSkills, jobSkills, overlap),
	}
}

// scoreCompleteness returns the fraction of expected resume structure
// present in the text: the standard sections plus contact details.
func scoreCompleteness(resumeText string) float64 {
	if strings.TrimSpace(resumeText) == "" {
		return 0
	}
	lower := strings.ToLower(resumeText)

	checks := len(resumeSections) + 2 // sections + email + phone
	hits := 0
	for _, section := range resumeSections {
		for _, kw := range section.keywords {
			if strings.Contains(lower, kw) {
				hits++
				break
			}
		}
	}
	if emailPattern.MatchString(resumeText) {
		hits++
	}
	if phonePattern.MatchString(resumeText) {
		hits++
	}
	return float64(hits) / float64(checks)
}

func scoreFeedback(score int) string {
	switch {
	case score >= 85:
		return "Excellent ATS compatibility. This resume should pass automated screening for this role."
	case score >= 70:
		return "Good ATS compatibility with room for improvement in keyword alignment."
	case score >= 50:
		return "Moderate ATS compatibility. Several required keywords are missing from the resume."
	default:
		return "Low ATS compatibility. The resume is unlikely to pass automated screening for this role."
	}
}

func scoreRecommendations(resumeText string, resumeSkills, jobSkills []string, overlap float64) []string {
	recs := []string{}
	_, missing := MatchSkills(resumeSkills, jobSkills, 3)
	if len(missing) > 0 {
		recs = append(recs, fmt.Sprintf("Add experience with %s where you have it", strings.Join(missing, ", ")))
	}
	if overlap < 50 {
		recs = append(recs, "Mirror the job description's terminology in your skills and experience sections")
	}

	lower := strings.ToLower(resumeText)
	for _, section := range resumeSections {
		found := false
		for _, kw := range section.keywords {
			if strings.Contains(lower, kw) {
				found = true
				break
			}
		}
		if !found {
			recs = append(recs, fmt.Sprintf("Add a %s section", section.name))
		}
	}
	if !emailPattern.MatchString(resumeText) {
		recs = append(recs, "Include a contact email address")
	}
	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
