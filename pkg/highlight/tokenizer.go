package highlight

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Tokenizer splits text into ordered word-like tokens. Implementations may
// be language-specific; the rest of the package only depends on this
// contract, so a different segmenter can be plugged in without touching
// the matcher.
type Tokenizer interface {
	Segment(text string) ([]string, error)
}

// UnisegTokenizer segments text on Unicode word boundaries (UAX #29).
// Whitespace-only segments are discarded; punctuation is kept as its own
// token so n-grams can span it the same way the raw text does.
type UnisegTokenizer struct{}

func (UnisegTokenizer) Segment(text string) ([]string, error) {
	var tokens []string
	state := -1
	remaining := text
	for len(remaining) > 0 {
		var word string
		word, remaining, state = uniseg.FirstWordInString(remaining, state)
		if strings.TrimSpace(word) == "" {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens, nil
}
