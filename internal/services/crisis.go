package services

import (
	"strings"
	"unicode"
)

// CrisisSupportMessage accompanies a journal reply when the thought reads as
// a self-harm risk.
const CrisisSupportMessage = "It sounds like you are going through something really painful. " +
	"You don't have to face it alone: if you are in danger, please contact local emergency services " +
	"or a crisis line such as 988 (US) or findahelpline.com."

var selfHarmPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"take my life",
	"end it all",
	"self harm",
	"cut myself",
	"hurt myself",
	"harm myself",
	"want to die",
	"wish i was dead",
	"not worth living",
	"better off dead",
	"end myself",
	"unalive",
}

var leetReplacer = strings.NewReplacer(
	"@", "a",
	"4", "a",
	"3", "e",
	"!", "i",
	"1", "i",
	"0", "o",
	"$", "s",
	"5", "s",
	"7", "t",
	"+", "t",
)

var cleanedPhrases = func() []string {
	out := make([]string, len(selfHarmPhrases))
	for i, p := range selfHarmPhrases {
		out[i] = CleanText(p)
	}
	return out
}()

// CleanText lower-cases text, undoes common character substitutions, keeps
// letters only, collapses repeated letters and single-spaces the result.
func CleanText(text string) string {
	cleaned := leetReplacer.Replace(strings.ToLower(text))

	var b strings.Builder
	last := rune(0)
	for _, r := range cleaned {
		if !unicode.IsLetter(r) {
			r = ' '
		} else if r == last {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DetectCrisis reports whether text contains a self-harm phrase. Phrases
// match on word boundaries, so "skill" never matches "kill".
func DetectCrisis(text string) bool {
	padded := " " + CleanText(text) + " "
	for _, p := range cleanedPhrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}
