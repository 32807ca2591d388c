package analysis

import (
	"strings"
	"testing"
)

func TestAnalyzeRepetitionsThreshold(t *testing.T) {
	thesaurus := NewThesaurus()

	tests := []struct {
		name        string
		text        string
		wantFlagged int
		wantStatus  string
	}{
		{
			name:        "below threshold not reported",
			text:        strings.Repeat("managed the team. ", 3),
			wantFlagged: 0,
			wantStatus:  "varied",
		},
		{
			name:        "at threshold not reported",
			text:        strings.Repeat("managed the team. ", 3) + "also did other things",
			wantFlagged: 0,
			wantStatus:  "varied",
		},
		{
			name:        "above threshold reported",
			text:        strings.Repeat("managed the team. ", 4),
			wantFlagged: 1,
			wantStatus:  "repetitions_found",
		},
		{
			name:        "untracked words never reported",
			text:        strings.Repeat("kubernetes kubernetes kubernetes kubernetes. ", 3),
			wantFlagged: 0,
			wantStatus:  "varied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeRepetitions(tt.text, thesaurus, DefaultRepetitionOptions)
			if len(got.Repetitions) != tt.wantFlagged {
				t.Errorf("flagged %d words, want %d", len(got.Repetitions), tt.wantFlagged)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.TotalIssues != len(got.Repetitions) {
				t.Errorf("totalIssues %d != reported repetitions %d", got.TotalIssues, len(got.Repetitions))
			}
		})
	}
}

func TestAnalyzeRepetitionsExactCount(t *testing.T) {
	text := "developed one thing. developed two things. developed more. developed again. developed finally."
	got := AnalyzeRepetitions(text, NewThesaurus(), DefaultRepetitionOptions)

	if len(got.Repetitions) != 1 {
		t.Fatalf("flagged %d words, want 1", len(got.Repetitions))
	}
	rep := got.Repetitions[0]
	if rep.Word != "developed" {
		t.Errorf("word = %q, want %q", rep.Word, "developed")
	}
	if rep.Count != 5 {
		t.Errorf("count = %d, want 5", rep.Count)
	}
	if len(rep.Synonyms) == 0 {
		t.Error("expected synonyms for a thesaurus word")
	}
}

func TestAnalyzeRepetitionsOrdering(t *testing.T) {
	// "led" appears 6 times, "managed" 4 times but earlier in the text
	text := strings.Repeat("managed projects. ", 4) + strings.Repeat("led teams. ", 6) +
		strings.Repeat("built systems. ", 4)
	got := AnalyzeRepetitions(text, NewThesaurus(), DefaultRepetitionOptions)

	if len(got.Repetitions) != 3 {
		t.Fatalf("flagged %d words, want 3", len(got.Repetitions))
	}
	wantOrder := []string{"led", "managed", "built"}
	for i, want := range wantOrder {
		if got.Repetitions[i].Word != want {
			t.Errorf("position %d = %q, want %q", i, got.Repetitions[i].Word, want)
		}
	}
}

func TestAnalyzeRepetitionsEmptySynonymsReported(t *testing.T) {
	// "motivated" is tracked but has no thesaurus entry
	text := strings.Repeat("motivated and ready. ", 5)
	got := AnalyzeRepetitions(text, NewThesaurus(), DefaultRepetitionOptions)

	if len(got.Repetitions) != 1 {
		t.Fatalf("flagged %d words, want 1", len(got.Repetitions))
	}
	if got.Repetitions[0].Synonyms == nil || len(got.Repetitions[0].Synonyms) != 0 {
		t.Errorf("synonyms = %v, want empty non-nil slice", got.Repetitions[0].Synonyms)
	}
}

func TestAnalyzeRepetitionsSynonymCap(t *testing.T) {
	text := strings.Repeat("used tools. ", 10)
	opts := RepetitionOptions{Threshold: 3, MaxSynonyms: 2}
	got := AnalyzeRepetitions(text, NewThesaurus(), opts)

	if len(got.Repetitions) != 1 {
		t.Fatalf("flagged %d words, want 1", len(got.Repetitions))
	}
	if len(got.Repetitions[0].Synonyms) > 2 {
		t.Errorf("synonyms %v exceed cap of 2", got.Repetitions[0].Synonyms)
	}
}
