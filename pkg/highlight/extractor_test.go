package highlight

import "testing"

func TestUnisegTokenizer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple words",
			text: "match all queries",
			want: []string{"match", "all", "queries"},
		},
		{
			name: "punctuation kept as tokens",
			text: "shards, replicas",
			want: []string{"shards", ",", "replicas"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   \t\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnisegTokenizer{}.Segment(tt.text)
			if err != nil {
				t.Fatalf("Segment() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Segment() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenNGramExtractor(t *testing.T) {
	phrases := make(PhraseSet)
	extractor := TokenNGramExtractor{Tokenizer: UnisegTokenizer{}}

	if err := extractor.Extract("bool must clause", phrases); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for _, want := range []string{"bool", "must", "clause", "boolmust", "mustclause", "boolmustclause"} {
		if !phrases.Contains(want) {
			t.Errorf("missing phrase %q", want)
		}
	}

	// Single runes never qualify as tokens.
	phrases = make(PhraseSet)
	if err := extractor.Extract("a b", phrases); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if phrases.Contains("a") || phrases.Contains("b") {
		t.Errorf("single-rune tokens should be skipped, got %v", phrases)
	}
	// The bigram "ab" is below the minimum match length too.
	if phrases.Contains("ab") {
		t.Errorf("bigram below minimum match length should be skipped")
	}
}

func TestSlidingWindowExtractor(t *testing.T) {
	phrases := make(PhraseSet)
	if err := (SlidingWindowExtractor{}).Extract("abcdef", phrases); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for _, want := range []string{"abcd", "bcde", "cdef", "abcde", "bcdef", "abcdef"} {
		if !phrases.Contains(want) {
			t.Errorf("missing substring %q", want)
		}
	}
	if phrases.Contains("abc") {
		t.Errorf("substrings below minimum match length should be skipped")
	}
	if len(phrases) != 6 {
		t.Errorf("phrase count = %d, want 6", len(phrases))
	}
}

func TestSlidingWindowExtractorRuneBoundaries(t *testing.T) {
	phrases := make(PhraseSet)
	if err := (SlidingWindowExtractor{}).Extract("日本語のテスト", phrases); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !phrases.Contains("日本語の") {
		t.Errorf("expected 4-rune CJK substring to be indexed")
	}
	if phrases.Contains("日本語") {
		t.Errorf("3-rune substring should be below the minimum match length")
	}
}
