// Package chunker splits label section text into overlapping,
// sentence-respecting passages.
package chunker

import (
	"fmt"
	"strings"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

// DefaultMaxChars is the default maximum passage size in characters.
const DefaultMaxChars = 1000

// DefaultOverlapChars is the default overlap budget between consecutive passages.
const DefaultOverlapChars = 100

// Chunker cuts section text into passages of at most maxChars characters,
// with consecutive passages sharing at most overlapChars of trailing
// sentences. Splitting never happens mid-sentence.
type Chunker struct {
	maxChars     int
	overlapChars int
}

// New creates a chunker. Configuration is validated up front: both limits
// must be positive and the overlap must be smaller than the passage size.
func New(maxChars, overlapChars int) (*Chunker, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max_chars must be positive, got %d", domain.ErrChunkConfig, maxChars)
	}
	if overlapChars <= 0 {
		return nil, fmt.Errorf("%w: overlap_chars must be positive, got %d", domain.ErrChunkConfig, overlapChars)
	}
	if overlapChars >= maxChars {
		return nil, fmt.Errorf("%w: overlap_chars (%d) must be smaller than max_chars (%d)",
			domain.ErrChunkConfig, overlapChars, maxChars)
	}
	return &Chunker{maxChars: maxChars, overlapChars: overlapChars}, nil
}

// Split cuts text into ordered passages. Empty text yields no passages.
// Text with no sentence boundaries degrades to a single whole-text
// passage. A single sentence longer than maxChars becomes its own
// oversized passage rather than being cut mid-sentence.
//
// Sentences keep their trailing whitespace, so concatenating the
// non-overlapping span of each passage reconstructs the input verbatim.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var passages []string
	start := 0
	for start < len(sentences) {
		// Greedily accumulate sentences; always take at least one so an
		// oversized sentence forms its own passage.
		end := start + 1
		size := len(sentences[start])
		for end < len(sentences) && size+len(sentences[end]) <= c.maxChars {
			size += len(sentences[end])
			end++
		}

		passages = append(passages, strings.Join(sentences[start:end], ""))

		if end >= len(sentences) {
			break
		}
		start = c.overlapStart(sentences, start, end)
	}

	return passages
}

// overlapStart walks backward from the passage end by whole sentences so
// the next passage opens with the current passage's trailing context.
// The shared span never exceeds overlapChars, never swallows the whole
// previous passage, and always leaves room within maxChars for the first
// uncovered sentence.
func (c *Chunker) overlapStart(sentences []string, start, end int) int {
	next := len(sentences[end])
	newStart := end
	overlap := 0
	for newStart > start+1 {
		s := len(sentences[newStart-1])
		if overlap+s > c.overlapChars || overlap+s+next > c.maxChars {
			break
		}
		overlap += s
		newStart--
	}
	return newStart
}

// splitSentences segments text at sentence boundaries (., !, ? or a line
// break, folding runs of terminators). Each sentence keeps its terminator
// and any following whitespace, so the concatenation of all sentences is
// byte-identical to the input.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(text) {
		if !isTerminator(text[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isTerminator(text[j]) {
			j++
		}
		for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\r') {
			j++
		}
		sentences = append(sentences, text[start:j])
		start = j
		i = j
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?' || c == '\n'
}
