package utils

import (
	"strings"
	"unicode"
)

// StringHelper provides string utility functions.
type StringHelper struct {
	stopwords map[string]struct{}
}

// NewStringHelper creates a new string helper using the built-in English stopword list.
func NewStringHelper() *StringHelper {
	return &StringHelper{stopwords: englishStopwords}
}

// NewStringHelperWithStopwords creates a helper that removes the given words instead.
func NewStringHelperWithStopwords(words []string) *StringHelper {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}

	return &StringHelper{stopwords: set}
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates string to max length in runes.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	runes := []rune(str)
	if len(runes) <= maxLength {
		return str
	}

	return string(runes[:maxLength]) + "..."
}

// WrapWords splits text into groups of maxWords words joined by sep.
// A non-positive maxWords returns the normalized text on one line.
func (s *StringHelper) WrapWords(text string, maxWords int, sep string) string {
	words := strings.Fields(text)
	if maxWords <= 0 || len(words) <= maxWords {
		return strings.Join(words, " ")
	}

	lines := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for i := 0; i < len(words); i += maxWords {
		end := min(i+maxWords, len(words))
		lines = append(lines, strings.Join(words[i:end], " "))
	}

	return strings.Join(lines, sep)
}

// Words splits text into lowercase words, dropping surrounding punctuation.
func (s *StringHelper) Words(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))

	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if w != "" {
			words = append(words, strings.ToLower(w))
		}
	}

	return words
}

// IsStopword reports whether word is in the stopword list.
func (s *StringHelper) IsStopword(word string) bool {
	_, ok := s.stopwords[strings.ToLower(word)]

	return ok
}

// RemoveStopwords returns the words of text that are not stopwords,
// lowercased and joined by single spaces.
func (s *StringHelper) RemoveStopwords(text string) string {
	words := s.Words(text)
	kept := words[:0]

	for _, w := range words {
		if !s.IsStopword(w) {
			kept = append(kept, w)
		}
	}

	return strings.Join(kept, " ")
}
