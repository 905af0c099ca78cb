// Package core defines the fundamental types for Prody.
// These types are shared by every other package in the system.
package core

import (
	"time"
)

// -----------------------------------------------------------------------------
// PERSONA - The philosophical voice the AI adopts
// -----------------------------------------------------------------------------

// PersonaMode is a type-safe identifier for AI personas
type PersonaMode string

const (
	PersonaBuddha      PersonaMode = "buddha"
	PersonaStoic       PersonaMode = "stoic"
	PersonaTaoist      PersonaMode = "taoist"
	PersonaExistential PersonaMode = "existential"
	PersonaZen         PersonaMode = "zen"
)

// PersonaInfo carries the fixed metadata for a persona mode.
// Defined at process start, never mutated.
type PersonaInfo struct {
	Label       string // Display label
	Emoji       string // Icon shown next to the persona name
	Instruction string // Base system instruction the prompt builder embeds
}

// Personas is the fixed metadata table for all persona modes.
var Personas = map[PersonaMode]PersonaInfo{
	PersonaBuddha: {
		Label: "Buddha",
		Emoji: "🪷",
		Instruction: "You are Buddha, a wise and compassionate guide. Speak with gentle clarity, " +
			"draw on mindfulness and the impermanence of all things, and meet the person " +
			"where they are without judgment.",
	},
	PersonaStoic: {
		Label: "Stoic",
		Emoji: "🏛️",
		Instruction: "You are a Stoic philosopher in the tradition of Marcus Aurelius and Epictetus. " +
			"Focus on what is within one's control, speak plainly, and favor practical " +
			"exercises over abstract comfort.",
	},
	PersonaTaoist: {
		Label: "Taoist",
		Emoji: "☯️",
		Instruction: "You are a Taoist sage. Speak in simple, flowing language, favor effortless " +
			"action and balance, and use imagery from nature where it helps.",
	},
	PersonaExistential: {
		Label: "Existentialist",
		Emoji: "🌌",
		Instruction: "You are an existentialist thinker. Treat the person as the author of their own " +
			"meaning, be honest about uncertainty, and encourage deliberate choice.",
	},
	PersonaZen: {
		Label: "Zen Master",
		Emoji: "🎋",
		Instruction: "You are a Zen master. Be brief. Point at the moon rather than describing it. " +
			"Prefer a question or an image to a lecture.",
	},
}

// DefaultPersona is used when a caller does not specify one.
const DefaultPersona = PersonaBuddha

// Info returns the metadata for the persona, falling back to the default
// persona for unknown values so prompt building stays total.
func (p PersonaMode) Info() PersonaInfo {
	if info, ok := Personas[p]; ok {
		return info
	}
	return Personas[DefaultPersona]
}

// -----------------------------------------------------------------------------
// MOOD - How the user felt at a moment in time
// -----------------------------------------------------------------------------

// Mood is a closed enumeration of user moods
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodCalm     Mood = "calm"
	MoodNeutral  Mood = "neutral"
	MoodAnxious  Mood = "anxious"
	MoodSad      Mood = "sad"
	MoodGrateful Mood = "grateful"
	MoodStressed Mood = "stressed"
)

// MoodInfo carries display metadata for a mood.
type MoodInfo struct {
	Label string
	Emoji string
}

// Moods is the fixed metadata table for all moods.
var Moods = map[Mood]MoodInfo{
	MoodHappy:    {Label: "Happy", Emoji: "😊"},
	MoodCalm:     {Label: "Calm", Emoji: "😌"},
	MoodNeutral:  {Label: "Neutral", Emoji: "😐"},
	MoodAnxious:  {Label: "Anxious", Emoji: "😟"},
	MoodSad:      {Label: "Sad", Emoji: "😢"},
	MoodGrateful: {Label: "Grateful", Emoji: "🙏"},
	MoodStressed: {Label: "Stressed", Emoji: "😣"},
}

// Valid reports whether m is a known mood.
func (m Mood) Valid() bool {
	_, ok := Moods[m]
	return ok
}

// -----------------------------------------------------------------------------
// USER CONTEXT - Optional snapshot fed into prompts
// -----------------------------------------------------------------------------

// UserContext is an optional bag of signals about the user at call time.
// Constructed fresh per call and never persisted. Nil pointer fields mean
// "absent" and are silently omitted from prompts.
type UserContext struct {
	Streak         *int    `json:"streak,omitempty"`          // Current daily streak
	WordsLearned   *int    `json:"words_learned,omitempty"`   // Vocabulary words learned so far
	RecentMood     *string `json:"recent_mood,omitempty"`     // Most recent journal mood
	Challenge      *string `json:"challenge,omitempty"`       // Active challenge, if any
	JournalSummary *string `json:"journal_summary,omitempty"` // Summary of recent journaling
}

// Empty reports whether no context field is present.
func (c *UserContext) Empty() bool {
	if c == nil {
		return true
	}
	return c.Streak == nil && c.WordsLearned == nil && c.RecentMood == nil &&
		c.Challenge == nil && c.JournalSummary == nil
}

// ChatMessage is one turn of a conversation passed back into the chat prompt.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// -----------------------------------------------------------------------------
// FUTURE SELF LETTER
// -----------------------------------------------------------------------------

// LetterID is a type-safe identifier for future-self letters
type LetterID string

// FutureSelfLetter is a message the user writes to their future self.
// Lifecycle: Pending (delivered=false) -> Delivered (delivered=true) ->
// Opened (opened=true). Each transition fires at most once, and opened can
// only become true once delivered is true.
type FutureSelfLetter struct {
	ID      LetterID `json:"id"`
	Content string   `json:"content"`
	Subject string   `json:"subject,omitempty"`
	Mood    Mood     `json:"mood"` // Mood at writing time

	CreatedAt  time.Time `json:"created_at"`
	DeliveryAt time.Time `json:"delivery_at"` // Always after CreatedAt

	Delivered bool `json:"delivered"`
	Opened    bool `json:"opened"`

	// AI reflection, set at most once after the letter is opened and only
	// when the AI call succeeds.
	Analysis      string `json:"analysis,omitempty"`
	Encouragement string `json:"encouragement,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DaysSinceWritten returns the whole days elapsed between writing and now.
func (l *FutureSelfLetter) DaysSinceWritten(now time.Time) int {
	d := int(now.Sub(l.CreatedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// -----------------------------------------------------------------------------
// JOURNAL
// -----------------------------------------------------------------------------

// EntryID is a type-safe identifier for journal entries
type EntryID string

// JournalEntry is one journal record with its optional AI analysis.
type JournalEntry struct {
	ID      EntryID `json:"id"`
	Content string  `json:"content"`
	Mood    Mood    `json:"mood,omitempty"`

	// AI analysis fields, filled by the orchestrator on demand.
	Summary    string     `json:"summary,omitempty"`
	Reflection string     `json:"reflection,omitempty"`
	Suggestion string     `json:"suggestion,omitempty"`
	Sentiment  string     `json:"sentiment,omitempty"`
	Themes     []string   `json:"themes,omitempty"`
	AnalyzedAt *time.Time `json:"analyzed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// -----------------------------------------------------------------------------
// VOCABULARY
// -----------------------------------------------------------------------------

// WordID is a type-safe identifier for vocabulary words
type WordID string

// VocabWord is a vocabulary word the user is learning.
type VocabWord struct {
	ID      WordID `json:"id"`
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Type    string `json:"type"` // Part of speech: noun, verb, ...

	// AI enhancement, filled on demand.
	Mnemonic   string     `json:"mnemonic,omitempty"`
	UsageNotes string     `json:"usage_notes,omitempty"`
	EnhancedAt *time.Time `json:"enhanced_at,omitempty"`

	Learned   bool       `json:"learned"`
	LearnedAt *time.Time `json:"learned_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// -----------------------------------------------------------------------------
// REWARDS
// -----------------------------------------------------------------------------

// RewardSource tags where an XP grant came from.
type RewardSource string

const (
	RewardLetterWritten   RewardSource = "letter.written"
	RewardLetterReflected RewardSource = "letter.reflected"
	RewardJournalEntry    RewardSource = "journal.entry"
	RewardWordLearned     RewardSource = "vocab.learned"
	RewardChatSession     RewardSource = "chat.session"
	RewardDailyWisdom     RewardSource = "wisdom.read"
)

// RewardGrant is one immutable XP grant in the ledger.
type RewardGrant struct {
	ID          string       `json:"id"`
	Amount      int          `json:"amount"`
	Source      RewardSource `json:"source"`
	Description string       `json:"description,omitempty"`
	GrantedAt   time.Time    `json:"granted_at"`
}
