package analysis

import (
	"sort"

	"careerpilot/internal/types"
)

// trackedWords are the action verbs and filler phrases that weaken a
// resume when overused. Only these are counted; ordinary vocabulary is
// expected to repeat.
var trackedWords = []string{
	"managed", "led", "developed", "created", "implemented", "designed",
	"built", "improved", "increased", "worked", "helped", "used", "made",
	"handled", "performed", "conducted", "coordinated", "delivered",
	"responsible", "achieved", "supported", "maintained", "collaborated",
	"passionate", "motivated", "dynamic", "proactive", "leveraged",
}

// RepetitionOptions tunes repetition detection.
type RepetitionOptions struct {
	// Threshold is the occurrence count a word must exceed to be
	// flagged. A word appearing exactly Threshold times is not
	// reported.
	Threshold int
	// MaxSynonyms caps the number of suggestions per flagged word.
	MaxSynonyms int
}

// DefaultRepetitionOptions flags a word on its fourth occurrence.
var DefaultRepetitionOptions = RepetitionOptions{
	Threshold:   3,
	MaxSynonyms: 6,
}

// AnalyzeRepetitions counts tracked-word usage in the resume and
// reports every word exceeding the threshold, ordered by count
// descending with earlier first occurrence breaking ties. Words with no
// known synonyms are still reported, with an empty suggestion list.
func AnalyzeRepetitions(resumeText string, thesaurus *Thesaurus, opts RepetitionOptions) types.RepetitionReport {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultRepetitionOptions.Threshold
	}
	if opts.MaxSynonyms <= 0 {
		opts.MaxSynonyms = DefaultRepetitionOptions.MaxSynonyms
	}

	tracked := make(map[string]bool, len(trackedWords))
	for _, w := range trackedWords {
		tracked[w] = true
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, tok := range Tokenize(resumeText) {
		if !tracked[tok] {
			continue
		}
		if counts[tok] == 0 {
			firstSeen[tok] = i
		}
		counts[tok]++
	}

	flagged := make([]types.Repetition, 0)
	for word, count := range counts {
		if count <= opts.Threshold {
			continue
		}
		synonyms := []string{}
		if thesaurus != nil {
			synonyms = thesaurus.Lookup(word, opts.MaxSynonyms)
		}
		flagged = append(flagged, types.Repetition{
			Word:     word,
			Count:    count,
			Synonyms: synonyms,
		})
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].Count != flagged[j].Count {
			return flagged[i].Count > flagged[j].Count
		}
		return firstSeen[flagged[i].Word] < firstSeen[flagged[j].Word]
	})

	report := types.RepetitionReport{
		Status:      "varied",
		Repetitions: flagged,
		TotalIssues: len(flagged),
	}
	if len(flagged) > 0 {
		report.Status = "repetitions_found"
		report.Recommendation = "Vary your action verbs; repeated wording reads as template filler to reviewers."
	}
	return report
}
