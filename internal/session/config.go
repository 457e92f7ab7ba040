package session

import (
	"fmt"
	"strings"
)

// Language is a target language the tutor can teach.
type Language string

const (
	Spanish    Language = "spanish"
	Urdu       Language = "urdu"
	Italian    Language = "italian"
	French     Language = "french"
	Finnish    Language = "finnish"
	German     Language = "german"
	Swahili    Language = "swahili"
	Indonesian Language = "indonesian"
	Icelandic  Language = "icelandic"
)

var languages = []Language{Spanish, Urdu, Italian, French, Finnish, German, Swahili, Indonesian, Icelandic}

// Languages returns the language catalog in display order.
func Languages() []Language {
	return append([]Language(nil), languages...)
}

// Valid reports whether l is in the catalog.
func (l Language) Valid() bool {
	for _, c := range languages {
		if c == l {
			return true
		}
	}
	return false
}

// Title returns the display name, e.g. "Spanish".
func (l Language) Title() string {
	return title(string(l))
}

// ParseLanguage resolves a case-insensitive language name.
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
	return l, nil
}

// Level is the learner's proficiency level.
type Level string

const (
	Novice       Level = "novice"
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

var levels = []Level{Novice, Beginner, Intermediate, Advanced}

// Levels returns the level catalog from easiest to hardest.
func Levels() []Level {
	return append([]Level(nil), levels...)
}

func (l Level) Valid() bool {
	for _, c := range levels {
		if c == l {
			return true
		}
	}
	return false
}

func (l Level) Title() string {
	return title(string(l))
}

// ParseLevel resolves a case-insensitive level name.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	return l, nil
}

// Mode selects between free conversation and structured exercises.
type Mode string

const (
	ModeConversation Mode = "conversation"
	ModeExercise     Mode = "exercise"
)

func (m Mode) Valid() bool {
	return m == ModeConversation || m == ModeExercise
}

func (m Mode) Title() string {
	switch m {
	case ModeConversation:
		return "Conversation"
	case ModeExercise:
		return "Exercises"
	default:
		return string(m)
	}
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeExercise {
		return ModeConversation
	}
	return ModeExercise
}

// ParseMode resolves a mode name. "exercises" is accepted as an alias.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conversation", "chat":
		return ModeConversation, nil
	case "exercise", "exercises":
		return ModeExercise, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Config is the learner's current selection. It only changes through
// explicit calls on the Controller.
type Config struct {
	Language        Language
	Level           Level
	Mode            Mode
	FeedbackEnabled bool
}

// DefaultConfig returns the selection a new session starts with.
func DefaultConfig() Config {
	return Config{
		Language:        Spanish,
		Level:           Novice,
		Mode:            ModeConversation,
		FeedbackEnabled: true,
	}
}

// Validate checks that every field is in its catalog.
func (c Config) Validate() error {
	if !c.Language.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, c.Language)
	}
	if !c.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, c.Level)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, c.Mode)
	}
	return nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
