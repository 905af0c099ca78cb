package ai

import (
	"strings"
)

// journalMarkers, letterMarkers and vocabMarkers are the flat per-task marker
// namespaces. Each task's markers are disjoint, and extraction for one marker
// stops at whichever other marker of the same set appears next.
var (
	journalMarkers = []string{markerSummary, markerReflection, markerSuggestion, markerSentiment, markerThemes}
	letterMarkers  = []string{markerAnalysis, markerEncouragement}
	vocabMarkers   = []string{markerMnemonic, markerUsage}
)

// extractSection returns the trimmed text between marker and the next known
// marker after it, or to the end of text when no marker follows. Matching is
// case-insensitive and literal. ok is false when marker does not occur.
func extractSection(text, marker string, allMarkers []string) (value string, ok bool) {
	start := foldIndex(text, marker, 0)
	if start < 0 {
		return "", false
	}
	start += len(marker)

	end := len(text)
	for _, other := range allMarkers {
		if strings.EqualFold(other, marker) {
			continue
		}
		idx := foldIndex(text, other, start)
		if idx >= 0 && idx < end {
			end = idx
		}
	}

	return strings.TrimSpace(text[start:end]), true
}

// foldIndex returns the byte offset of the first case-insensitive occurrence
// of marker in text at or after from, or -1. The markers are plain ASCII and
// candidate slices are compared in place, so every offset indexes text itself.
// Searching a ToLower copy would not: lowercasing changes the byte length of
// some runes and shifts every offset after them.
func foldIndex(text, marker string, from int) int {
	for i := from; i+len(marker) <= len(text); i++ {
		if strings.EqualFold(text[i:i+len(marker)], marker) {
			return i
		}
	}
	return -1
}

// parseJournalAnalysis extracts the five journal sections. Missing markers
// yield empty fields, except sentiment which defaults to "neutral". Text with
// no recognized markers at all degrades to a payload carrying the raw text in
// Reflection, so the user still sees the model's words on format drift.
func parseJournalAnalysis(text string) *JournalAnalysis {
	result := &JournalAnalysis{Sentiment: "neutral"}

	found := false
	if v, ok := extractSection(text, markerSummary, journalMarkers); ok {
		result.Summary = v
		found = true
	}
	if v, ok := extractSection(text, markerReflection, journalMarkers); ok {
		result.Reflection = v
		found = true
	}
	if v, ok := extractSection(text, markerSuggestion, journalMarkers); ok {
		result.Suggestion = v
		found = true
	}
	if v, ok := extractSection(text, markerSentiment, journalMarkers); ok {
		if s := normalizeSentiment(v); s != "" {
			result.Sentiment = s
		}
		found = true
	}
	if v, ok := extractSection(text, markerThemes, journalMarkers); ok {
		result.Themes = splitThemes(v)
		found = true
	}

	if !found {
		result.Reflection = text
	}

	return result
}

// parseLetterReflection extracts the two letter sections, falling back to the
// raw text in Analysis when no marker matches.
func parseLetterReflection(text string) *LetterReflection {
	result := &LetterReflection{}

	found := false
	if v, ok := extractSection(text, markerAnalysis, letterMarkers); ok {
		result.Analysis = v
		found = true
	}
	if v, ok := extractSection(text, markerEncouragement, letterMarkers); ok {
		result.Encouragement = v
		found = true
	}

	if !found {
		result.Analysis = text
	}

	return result
}

// parseVocabInsight extracts the two vocabulary sections, falling back to the
// raw text in Mnemonic when no marker matches.
func parseVocabInsight(text string) *VocabInsight {
	result := &VocabInsight{}

	found := false
	if v, ok := extractSection(text, markerMnemonic, vocabMarkers); ok {
		result.Mnemonic = v
		found = true
	}
	if v, ok := extractSection(text, markerUsage, vocabMarkers); ok {
		result.UsageNotes = v
		found = true
	}

	if !found {
		result.Mnemonic = text
	}

	return result
}

// normalizeSentiment maps free-form sentiment text onto the closed set
// {positive, negative, neutral}, returning "" when it matches none.
func normalizeSentiment(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	switch {
	case strings.HasPrefix(s, "positive"):
		return "positive"
	case strings.HasPrefix(s, "negative"):
		return "negative"
	case strings.HasPrefix(s, "neutral"):
		return "neutral"
	default:
		return ""
	}
}

// splitThemes splits a comma-separated theme list, dropping empties.
func splitThemes(v string) []string {
	var themes []string
	for _, t := range strings.Split(v, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			themes = append(themes, t)
		}
	}
	return themes
}
