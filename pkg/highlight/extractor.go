package highlight

import (
	"fmt"
	"unicode/utf8"
)

const (
	// MinMatchLength is the minimum rune length for a candidate phrase.
	MinMatchLength = 4
	// MaxMatchLength caps phrase length; bounds indexing to O(cap * len).
	MaxMatchLength = 50

	minTokenLength = 2
)

// PhraseSet is a membership-only collection of candidate grounded phrases.
type PhraseSet map[string]struct{}

func (s PhraseSet) add(phrase string) {
	s[phrase] = struct{}{}
}

// Contains reports whether the phrase was extracted from the reference.
func (s PhraseSet) Contains(phrase string) bool {
	_, ok := s[phrase]
	return ok
}

// PhraseExtractor contributes candidate phrases from reference text into a
// shared set. Extractors are independent strategies; the highlighter runs
// them in sequence and tolerates individual failures.
type PhraseExtractor interface {
	Extract(text string, phrases PhraseSet) error
}

// TokenNGramExtractor emits single tokens plus 2-gram and 3-gram
// concatenations of consecutive tokens.
type TokenNGramExtractor struct {
	Tokenizer Tokenizer
}

func (e TokenNGramExtractor) Extract(text string, phrases PhraseSet) error {
	tokens, err := e.Tokenizer.Segment(text)
	if err != nil {
		return fmt.Errorf("segment reference text: %w", err)
	}

	for i, token := range tokens {
		if utf8.RuneCountInString(token) >= minTokenLength {
			phrases.add(token)
		}

		if i+1 < len(tokens) {
			bigram := token + tokens[i+1]
			if utf8.RuneCountInString(bigram) >= MinMatchLength {
				phrases.add(bigram)
			}
		}

		if i+2 < len(tokens) {
			trigram := token + tokens[i+1] + tokens[i+2]
			if utf8.RuneCountInString(trigram) >= MinMatchLength {
				phrases.add(trigram)
			}
		}
	}

	return nil
}

// SlidingWindowExtractor emits every contiguous substring of the raw text
// with rune length in [MinMatchLength, MaxMatchLength]. Phrase boundaries
// therefore never depend on the tokenizer being right, or available at all.
type SlidingWindowExtractor struct{}

func (SlidingWindowExtractor) Extract(text string, phrases PhraseSet) error {
	runes := []rune(text)

	maxLen := MaxMatchLength
	if len(runes) < maxLen {
		maxLen = len(runes)
	}

	for length := MinMatchLength; length <= maxLen; length++ {
		for i := 0; i+length <= len(runes); i++ {
			phrases.add(string(runes[i : i+length]))
		}
	}

	return nil
}
