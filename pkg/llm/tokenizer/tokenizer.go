// Package tokenizer counts and truncates text in model tokens.
package tokenizer

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// charsPerToken is the estimate used when no encoding could be loaded.
const charsPerToken = 4

// Tokenizer wraps a tiktoken encoding. The encoding is loaded lazily on first
// use; if it cannot be loaded (tiktoken may need to download the BPE file)
// counts fall back to a character estimate.
type Tokenizer struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
	initErr  error
}

// ForModel returns a tokenizer using the encoding of the given model family.
func ForModel(model string) *Tokenizer {
	encoding := "cl100k_base"
	for _, prefix := range []string{"gpt-4.1", "gpt-4o", "o1", "o3", "o4"} {
		if strings.HasPrefix(model, prefix) {
			encoding = "o200k_base"
			break
		}
	}
	return &Tokenizer{encoding: encoding}
}

// New returns a cl100k_base tokenizer.
func New() *Tokenizer {
	return &Tokenizer{encoding: "cl100k_base"}
}

func (t *Tokenizer) load() error {
	t.once.Do(func() {
		t.enc, t.initErr = tiktoken.GetEncoding(t.encoding)
	})
	return t.initErr
}

// Exact reports whether counts come from the real encoding.
func (t *Tokenizer) Exact() bool {
	return t.load() == nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.load() != nil {
		return (utf8.RuneCountInString(text) + charsPerToken - 1) / charsPerToken
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate returns the longest prefix of text that fits in maxTokens.
// A non-positive maxTokens disables truncation.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	if t == nil || t.load() != nil {
		limit := maxTokens * charsPerToken
		if utf8.RuneCountInString(text) <= limit {
			return text
		}
		return string([]rune(text)[:limit])
	}

	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:maxTokens])
}
