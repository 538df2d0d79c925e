package application

import "strings"

// WakeMatcher checks recognized text against the configured wake phrases.
// Matching is case-insensitive, punctuation-blind and whole-word, so the
// phrase "hey jarvis" matches "Hey, Jarvis!" but not "heyjarvis station".
type WakeMatcher struct {
	phrases [][]string
}

func NewWakeMatcher(phrases []string) *WakeMatcher {
	m := &WakeMatcher{}
	for _, p := range phrases {
		words := strings.Fields(normalizeText(p))
		if len(words) > 0 {
			m.phrases = append(m.phrases, words)
		}
	}
	return m
}

// Match reports whether text contains a wake phrase and returns the words
// following the match; those become the first command of the session.
func (m *WakeMatcher) Match(text string) (bool, string) {
	words := strings.Fields(normalizeText(text))
	for _, phrase := range m.phrases {
		for i := 0; i+len(phrase) <= len(words); i++ {
			if phraseAt(words, phrase, i) {
				return true, strings.Join(words[i+len(phrase):], " ")
			}
		}
	}
	return false, ""
}

func phraseAt(words, phrase []string, at int) bool {
	for j, w := range phrase {
		if words[at+j] != w {
			return false
		}
	}
	return true
}

// normalizeText lowercases and keeps only letters, digits and apostrophes,
// which sidesteps recognizer punctuation quirks around the wake phrase.
func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}
