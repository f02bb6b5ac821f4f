package highlight

import "log"

// Segment is one run of answer text. Concatenating the Text of every
// segment in order reproduces the answer exactly; Highlighted marks runs
// that restate the reference material.
type Segment struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
}

// Highlighter marks the spans of a model answer that are copied, verbatim
// or near-verbatim, from reference material. Highlighting is best-effort:
// any failure degrades to an all-plain result, never an error.
type Highlighter struct {
	extractors []PhraseExtractor
}

// NewHighlighter builds a highlighter with the default strategy pair:
// token n-grams from the given tokenizer, plus the raw sliding window.
func NewHighlighter(tokenizer Tokenizer) *Highlighter {
	return &Highlighter{
		extractors: []PhraseExtractor{
			TokenNGramExtractor{Tokenizer: tokenizer},
			SlidingWindowExtractor{},
		},
	}
}

// Index builds the candidate phrase set from reference material.
// An empty reference yields an empty set. A failing extractor is skipped;
// the remaining strategies still contribute, so a broken tokenizer only
// costs precision, not the whole result.
func (h *Highlighter) Index(reference string) PhraseSet {
	phrases := make(PhraseSet)
	if reference == "" {
		return phrases
	}

	for _, extractor := range h.extractors {
		if err := extractor.Extract(reference, phrases); err != nil {
			log.Printf("[WARN] phrase extraction failed, continuing with remaining strategies: %v", err)
		}
	}

	return phrases
}

// Match partitions the answer into alternating plain and highlighted
// segments using a greedy left-to-right longest-match scan. Highlighted
// segments never overlap and are each at least MinMatchLength runes.
func (h *Highlighter) Match(answer string, phrases PhraseSet) (segments []Segment) {
	if answer == "" {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] highlight matching panicked, returning plain answer: %v", r)
			segments = []Segment{{Text: answer}}
		}
	}()

	if len(phrases) == 0 {
		return []Segment{{Text: answer}}
	}

	runes := []rune(answer)
	var out []Segment
	last := 0

	for i := 0; i < len(runes); {
		matched := longestMatchAt(runes, i, phrases)
		if matched == 0 {
			i++
			continue
		}

		if i > last {
			out = append(out, Segment{Text: string(runes[last:i])})
		}
		out = append(out, Segment{Text: string(runes[i : i+matched]), Highlighted: true})

		i += matched
		last = i
	}

	if last < len(runes) {
		out = append(out, Segment{Text: string(runes[last:])})
	}

	if len(out) == 0 {
		out = []Segment{{Text: answer}}
	}
	return out
}

// Highlight indexes the reference and matches the answer in one call.
func (h *Highlighter) Highlight(answer, reference string) []Segment {
	return h.Match(answer, h.Index(reference))
}

// longestMatchAt returns the rune length of the longest phrase starting at
// position start, or 0 when nothing at least MinMatchLength long matches.
func longestMatchAt(runes []rune, start int, phrases PhraseSet) int {
	longest := 0

	max := MaxMatchLength
	if remaining := len(runes) - start; remaining < max {
		max = remaining
	}

	for length := MinMatchLength; length <= max; length++ {
		if phrases.Contains(string(runes[start : start+length])) {
			longest = length
		}
	}

	return longest
}
