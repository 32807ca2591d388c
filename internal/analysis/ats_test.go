package analysis

import (
	"math"
	"strings"
	"testing"
)

const sampleResume = `John Doe
john.doe@example.com | (555) 123-4567

Summary
Software engineer with 6 years of experience building web applications.

Experience
Senior Engineer at Acme. Built React frontends and Node.js services on AWS.

Education
BS in Computer Science, State University

Skills
JavaScript, React, Node.js, AWS, Docker

Projects
Open source contributor to several JavaScript tools.`

func TestScoreATSBounds(t *testing.T) {
	tests := []struct {
		name   string
		resume string
		job    string
	}{
		{"full match", sampleResume, "Looking for React and Node.js engineer with AWS"},
		{"no match", sampleResume, "Rust and Kafka and Elasticsearch expert needed"},
		{"empty resume", "", "React developer"},
		{"empty job", sampleResume, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resumeSkills := ExtractSkills(tt.resume)
			jobSkills := ExtractSkills(tt.job)
			got := ScoreATS(tt.resume, resumeSkills, jobSkills, DefaultScoreWeights)

			if got.Score < 0 || got.Score > 100 {
				t.Errorf("score %d out of [0,100]", got.Score)
			}
			for component, value := range got.Breakdown {
				if value < 0 || value > 100 {
					t.Errorf("breakdown[%s] = %v out of [0,100]", component, value)
				}
			}
		})
	}
}

func TestScoreATSEqualsWeightedBreakdown(t *testing.T) {
	resumeSkills := ExtractSkills(sampleResume)
	jobSkills := ExtractSkills("Need React, Node.js, AWS, Kubernetes and Terraform experience")
	got := ScoreATS(sampleResume, resumeSkills, jobSkills, DefaultScoreWeights)

	want := int(math.Round(
		DefaultScoreWeights.SkillOverlap*got.Breakdown["skill_overlap"] +
			DefaultScoreWeights.Completeness*got.Breakdown["completeness"]))
	if got.Score != want {
		t.Errorf("score %d does not equal weighted breakdown sum %d", got.Score, want)
	}
}

func TestScoreATSOrdering(t *testing.T) {
	job := "React, Node.js and AWS engineer"
	jobSkills := ExtractSkills(job)

	strong := ScoreATS(sampleResume, ExtractSkills(sampleResume), jobSkills, DefaultScoreWeights)
	weakResume := "I am a baker with great bread skills."
	weak := ScoreATS(weakResume, ExtractSkills(weakResume), jobSkills, DefaultScoreWeights)

	if strong.Score <= weak.Score {
		t.Errorf("aligned resume scored %d, unaligned scored %d", strong.Score, weak.Score)
	}
}

func TestScoreATSRecommendations(t *testing.T) {
	resume := "I know Python."
	jobSkills := ExtractSkills("Python, Go and Kafka role")
	got := ScoreATS(resume, ExtractSkills(resume), jobSkills, DefaultScoreWeights)

	if len(got.Recommendations) == 0 {
		t.Fatal("expected recommendations for an incomplete resume")
	}
	foundMissing := false
	for _, rec := range got.Recommendations {
		if strings.Contains(rec, "Go") && strings.Contains(rec, "Kafka") {
			foundMissing = true
		}
	}
	if !foundMissing {
		t.Errorf("recommendations %v do not mention missing skills", got.Recommendations)
	}
}

func TestScoreATSDeterministic(t *testing.T) {
	resumeSkills := ExtractSkills(sampleResume)
	jobSkills := ExtractSkills("React and AWS")
	first := ScoreATS(sampleResume, resumeSkills, jobSkills, DefaultScoreWeights)
	for range 5 {
		got := ScoreATS(sampleResume, resumeSkills, jobSkills, DefaultScoreWeights)
		if got.Score != first.Score {
			t.Fatalf("ScoreATS() not deterministic: %d vs %d", got.Score, first.Score)
		}
	}
}
