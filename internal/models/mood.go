package models

import "strings"

// Mood is the label a user attaches to a journal entry. The known labels form
// a closed set; anything else read back from storage is treated as unknown.
type Mood string

const (
	MoodHappy   Mood = "Happy"
	MoodCalm    Mood = "Calm"
	MoodNeutral Mood = "Neutral"
	MoodAnxious Mood = "Anxious"
	MoodSad     Mood = "Sad"
	MoodAngry   Mood = "Angry"
)

// NeutralScore is the midpoint of the mood scale and the score of unknown labels.
const NeutralScore = 3

var moodScores = map[Mood]int{
	MoodHappy:   5,
	MoodCalm:    4,
	MoodNeutral: NeutralScore,
	MoodAnxious: 2,
	MoodAngry:   2,
	MoodSad:     1,
}

// Moods lists the known labels from the most to the least positive.
var Moods = []Mood{MoodHappy, MoodCalm, MoodNeutral, MoodAnxious, MoodAngry, MoodSad}

// Known reports whether m is one of the closed label set.
func (m Mood) Known() bool {
	_, ok := moodScores[m]
	return ok
}

// Score maps the label to its ordinal value. Unknown labels score as Neutral.
func (m Mood) Score() int {
	if s, ok := moodScores[m]; ok {
		return s
	}
	return NeutralScore
}

// ParseMood resolves a client-supplied label, case-insensitively.
// An empty label defaults to Neutral.
func ParseMood(s string) (Mood, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MoodNeutral, true
	}
	for _, m := range Moods {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return Mood(s), false
}
