// Package textutil holds the tokenizer and stopword list shared by the
// TF-IDF embedder and the frequency summarizer.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// Tokens lowercases text and returns its word tokens. Digits are part of
// words so identifiers such as TRX001 survive tokenization.
func Tokens(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// ContentTokens is Tokens with stopwords removed.
func ContentTokens(text string) []string {
	raw := Tokens(text)
	out := raw[:0]
	for _, t := range raw {
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Sentences splits text after runs of '.', '!' or '?' that are followed by
// whitespace or the end of text, so "75.000" stays whole. An unterminated
// tail is returned as the last sentence. Results are trimmed and non-empty.
func Sentences(text string) []string {
	var out []string
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		j := i + 1
		for j < len(text) && isTerminator(text[j]) {
			j++
		}
		if j == len(text) || unicode.IsSpace(rune(text[j])) {
			emit(text[start:j])
			start = j
		}
		i = j - 1
	}
	emit(text[start:])
	return out
}

func isTerminator(b byte) bool { return b == '.' || b == '!' || b == '?' }

// CollapseWhitespace replaces every whitespace run, newlines included, with a
// single space and trims the ends.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// IsStopword reports whether the lowercased token is a stopword.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

var stopwords = func() map[string]struct{} {
	words := []string{
		// Indonesian
		"yang", "dan", "di", "ke", "dari", "pada", "dengan", "untuk", "ini", "itu", "adalah", "atau",
		"dalam", "oleh", "sebagai", "juga", "akan", "tidak", "ada", "bisa", "dapat", "karena", "agar",
		"saat", "para", "kami", "kita", "saya", "anda", "mereka", "ia", "dia", "apa", "bagaimana",
		"siapa", "kenapa", "mengapa", "berapa", "jelaskan", "tersebut", "telah", "sudah", "masih",
		"lebih", "sangat", "hanya", "secara", "bahwa", "jika", "maka", "serta", "namun", "tetapi",
		// English
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "out", "off", "too", "very", "can", "will",
		"just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
