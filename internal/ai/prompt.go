// Package ai implements Prody's AI orchestration: prompt construction,
// response parsing, and the typed operations the rest of the app calls.
package ai

import (
	"fmt"
	"strings"

	"github.com/prody/prody/internal/core"
)

// Section markers the model is asked to emit. The parser scans for these
// literally and case-insensitively.
const (
	markerSummary       = "SUMMARY:"
	markerReflection    = "REFLECTION:"
	markerSuggestion    = "SUGGESTION:"
	markerSentiment     = "SENTIMENT:"
	markerThemes        = "THEMES:"
	markerAnalysis      = "ANALYSIS:"
	markerEncouragement = "ENCOURAGEMENT:"
	markerMnemonic      = "MNEMONIC:"
	markerUsage         = "USAGE:"
)

// replyCue closes every chat prompt so the model knows where its reply begins.
const replyCue = "Your response:"

// chatGuidelines is the fixed behavioral block appended to every chat prompt.
const chatGuidelines = `Guidelines:
- Keep responses warm, concise and conversational (2-4 short paragraphs at most)
- Ask at most one gentle question back
- Never give medical, legal or financial advice
- Stay in character`

// BuildChatPrompt assembles the full chat prompt for the given persona.
// Context fields render in a fixed order and absent fields are omitted
// entirely. The function is total and does not mutate its arguments.
func BuildChatPrompt(persona core.PersonaMode, userCtx *core.UserContext, history []core.ChatMessage, message string) string {
	var sb strings.Builder

	sb.WriteString(persona.Info().Instruction)
	sb.WriteString("\n")

	if !userCtx.Empty() {
		sb.WriteString("\nWhat you know about this person:\n")
		if userCtx.Streak != nil {
			fmt.Fprintf(&sb, "- Current streak: %d days\n", *userCtx.Streak)
		}
		if userCtx.WordsLearned != nil {
			fmt.Fprintf(&sb, "- Words learned: %d\n", *userCtx.WordsLearned)
		}
		if userCtx.RecentMood != nil {
			fmt.Fprintf(&sb, "- Recent mood: %s\n", *userCtx.RecentMood)
		}
		if userCtx.Challenge != nil {
			fmt.Fprintf(&sb, "- Current challenge: %s\n", *userCtx.Challenge)
		}
		if userCtx.JournalSummary != nil {
			fmt.Fprintf(&sb, "- Recent journaling: %s\n", *userCtx.JournalSummary)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(chatGuidelines)
	sb.WriteString("\n")

	if len(history) > 0 {
		sb.WriteString("\nPrevious conversation:\n")
		for _, msg := range history {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
		}
	}

	fmt.Fprintf(&sb, "\nuser: %s\n\n%s", message, replyCue)

	return sb.String()
}

// BuildJournalAnalysisPrompt asks for a five-section analysis of a journal
// entry. The mood line is omitted when mood is empty.
func BuildJournalAnalysisPrompt(content string, mood core.Mood, persona core.PersonaMode) string {
	var sb strings.Builder

	label := strings.ToLower(persona.Info().Label)
	fmt.Fprintf(&sb, "As a %s guide, analyze this journal entry:\n\n", label)
	fmt.Fprintf(&sb, "\"%s\"\n", content)

	if mood != "" {
		fmt.Fprintf(&sb, "\nThe writer says they are feeling: %s\n", mood)
	}

	sb.WriteString(`
Respond using exactly this format:

SUMMARY: [one-sentence summary of the entry]
REFLECTION: [a thoughtful reflection on what the writer is experiencing]
SUGGESTION: [one concrete, gentle suggestion]
SENTIMENT: [positive, negative or neutral]
THEMES: [comma-separated list of up to three themes]

Keep the tone kind and non-clinical.`)

	return sb.String()
}

// BuildLetterReflectionPrompt asks for a two-section reflection on a letter
// the user wrote to their future self daysAgo days in the past.
func BuildLetterReflectionPrompt(content string, daysAgo int, goals string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "This person wrote a letter to their future self %d days ago. They are reading it now for the first time.\n\n", daysAgo)
	fmt.Fprintf(&sb, "The letter:\n\"%s\"\n", content)

	if goals != "" {
		fmt.Fprintf(&sb, "\nTheir stated goals at the time: %s\n", goals)
	}

	sb.WriteString(`
Respond using exactly this format:

ANALYSIS: [what this letter reveals about who they were and how they may have grown]
ENCOURAGEMENT: [a short, warm message encouraging them on their journey]`)

	return sb.String()
}

// BuildVocabularyPrompt asks for a mnemonic and usage notes for a word.
func BuildVocabularyPrompt(word, meaning, wordType string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Help someone remember the word %q (%s), which means: %s\n", word, wordType, meaning)
	sb.WriteString(`
Respond using exactly this format:

MNEMONIC: [a short, vivid memory aid for this word]
USAGE: [two example sentences and a note on when the word fits]`)

	return sb.String()
}

// BuildDailyWisdomPrompt asks for a short unstructured daily message.
// The response is consumed as one literal string, so no section markers.
func BuildDailyWisdomPrompt(userCtx *core.UserContext, persona core.PersonaMode) string {
	var sb strings.Builder

	sb.WriteString(persona.Info().Instruction)
	sb.WriteString("\n\nWrite a short daily message for this person.")

	var parts []string
	if userCtx != nil {
		if userCtx.Streak != nil {
			parts = append(parts, fmt.Sprintf("streak %d days", *userCtx.Streak))
		}
		if userCtx.RecentMood != nil {
			parts = append(parts, fmt.Sprintf("feeling %s", *userCtx.RecentMood))
		}
		if userCtx.Challenge != nil {
			parts = append(parts, fmt.Sprintf("working on %s", *userCtx.Challenge))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&sb, " Context: %s.", strings.Join(parts, " "))
	}

	sb.WriteString("\n\nThe message should contain one brief insight for today and end with a single reflection prompt. Two short paragraphs, no headings, no labels.")

	return sb.String()
}
