package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	seniorTitles = []string{
		"senior", "sr.", "lead", "principal", "staff", "architect",
		"head of", "director", "vp ", "vice president",
	}
	midTitles = []string{"mid-level", "mid level", "intermediate"}

	yearsPattern = regexp.MustCompile(`(\d{1,2})\+?\s*(?:years?|yrs?)`)
)

// ExperienceLevel infers a seniority bucket from resume text using
// title keywords first, then stated years of experience. Returns one of
// "senior", "mid-level", or "junior".
func ExperienceLevel(resumeText string) string {
	lower := strings.ToLower(resumeText)

	for _, kw := range seniorTitles {
		if strings.Contains(lower, kw) {
			return "senior"
		}
	}
	for _, kw := range midTitles {
		if strings.Contains(lower, kw) {
			return "mid-level"
		}
	}

	years := maxStatedYears(lower)
	switch {
	case years >= 5:
		return "senior"
	case years >= 2:
		return "mid-level"
	default:
		return "junior"
	}
}

// maxStatedYears returns the largest "N years" figure in the text, 0 if
// none is stated.
func maxStatedYears(lowerText string) int {
	max := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(lowerText, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > max && n < 60 {
			max = n
		}
	}
	return max
}

// ExperienceSummary produces a one-line profile description for ranking
// output.
func ExperienceSummary(resumeText string, skills []string) string {
	level := ExperienceLevel(resumeText)
	if len(skills) == 0 {
		return fmt.Sprintf("%s profile, no recognized technical skills listed", level)
	}
	highlight := skills
	if len(highlight) > 3 {
		highlight = highlight[:3]
	}
	return fmt.Sprintf("%s profile with %d recognized skills, strongest alignment on %s",
		level, len(skills), strings.Join(highlight, ", "))
}
