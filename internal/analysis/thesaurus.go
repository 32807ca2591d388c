package analysis

import (
	"encoding/json"
	"os"
	"sync"

	"careerpilot/internal/errors"
)

// builtinSynonyms is the curated replacement thesaurus for tracked
// resume vocabulary. A file-based thesaurus can extend or override it
// at runtime.
var builtinSynonyms = map[string][]string{
	"managed":      {"directed", "supervised", "orchestrated", "oversaw", "administered"},
	"led":          {"spearheaded", "directed", "guided", "championed", "drove"},
	"developed":    {"engineered", "architected", "crafted", "produced", "devised"},
	"created":      {"designed", "established", "launched", "authored", "founded"},
	"implemented":  {"deployed", "executed", "integrated", "instituted", "operationalized"},
	"designed":     {"architected", "devised", "formulated", "drafted", "modeled"},
	"built":        {"constructed", "assembled", "engineered", "established"},
	"improved":     {"enhanced", "optimized", "refined", "strengthened", "elevated"},
	"increased":    {"boosted", "expanded", "accelerated", "amplified", "grew"},
	"worked":       {"collaborated", "partnered", "contributed", "operated"},
	"helped":       {"assisted", "facilitated", "enabled", "supported"},
	"used":         {"utilized", "employed", "applied", "leveraged", "adopted"},
	"made":         {"produced", "generated", "constructed", "formed"},
	"handled":      {"processed", "administered", "resolved", "oversaw"},
	"performed":    {"executed", "conducted", "carried out", "completed"},
	"conducted":    {"performed", "administered", "ran", "orchestrated"},
	"coordinated":  {"organized", "synchronized", "arranged", "aligned"},
	"delivered":    {"shipped", "launched", "completed", "produced"},
	"responsible":  {"accountable", "owned", "charged with"},
	"achieved":     {"attained", "accomplished", "realized", "secured"},
	"supported":    {"maintained", "sustained", "assisted", "reinforced"},
	"maintained":   {"sustained", "preserved", "upheld", "serviced"},
	"collaborated": {"partnered", "cooperated", "teamed", "coauthored"},
	"leveraged":    {"applied", "utilized", "exploited", "harnessed"},
}

// Thesaurus provides synonym lookups for repetition suggestions. It is
// safe for concurrent use and supports hot reloading from a JSON file.
type Thesaurus struct {
	mu       sync.RWMutex
	synonyms map[string][]string
}

// NewThesaurus returns a thesaurus seeded with the builtin vocabulary.
func NewThesaurus() *Thesaurus {
	synonyms := make(map[string][]string, len(builtinSynonyms))
	for word, syns := range builtinSynonyms {
		synonyms[word] = append([]string(nil), syns...)
	}
	return &Thesaurus{synonyms: synonyms}
}

// Lookup returns up to max synonyms for a word, or an empty slice when
// none are known. The returned slice is a copy.
func (t *Thesaurus) Lookup(word string, max int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	syns, ok := t.synonyms[word]
	if !ok {
		return []string{}
	}
	if max > 0 && len(syns) > max {
		syns = syns[:max]
	}
	return append([]string(nil), syns...)
}

// LoadFile merges a JSON thesaurus file (word to synonym-list mapping)
// over the current vocabulary. File entries replace builtin entries for
// the same word.
func (t *Thesaurus) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read thesaurus file", err).
			WithContext("path", path)
	}

	var overrides map[string][]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return errors.NewIOError(errors.ErrCodeInvalidFormat, "Thesaurus file is not a valid JSON word map", err).
			WithContext("path", path)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for word, syns := range overrides {
		t.synonyms[word] = append([]string(nil), syns...)
	}
	return nil
}

// Size returns the number of words with at least one synonym.
func (t *Thesaurus) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.synonyms)
}
