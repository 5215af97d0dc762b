package requirement

import (
	"strings"
	"unicode"
)

type morseMessage struct {
	plain, code string
}

var morseMessages = []morseMessage{
	{"LOVEYOU", ".-..---...-.-.-----..-"},
	{"SOS", "...---..."},
}

// StripSpace drops every whitespace rune from text.
func StripSpace(text string) string {
	return strings.Map(func(c rune) rune {
		if unicode.IsSpace(c) {
			return -1
		}
		return c
	}, text)
}

// spellsWord reports whether text holds word as a whole run of ASCII letters,
// ignoring case. Letters glued to other letters do not count, so "SOSO" does
// not spell "SOS".
func spellsWord(text, word string) bool {
	start := -1
	for i := 0; i <= len(text); i++ {
		letter := i < len(text) && isASCIILetter(text[i])
		switch {
		case letter && start < 0:
			start = i
		case !letter && start >= 0:
			if strings.EqualFold(text[start:i], word) {
				return true
			}
			start = -1
		}
	}
	return false
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// checkMorse accepts the literal dot/dash sequence, or the plain word spelled
// out on its own. Digits and other words are never read as morse.
func checkMorse(r *Requirement, text string) bool {
	text = StripSpace(text)
	return strings.Contains(text, r.Params.Pattern) || spellsWord(text, r.Params.Word)
}
