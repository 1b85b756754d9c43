package services

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

// fallbackLine is the single answer line used when no evidence clears
// the threshold.
const fallbackLine = "The label does not address this question. " +
	"Try asking about drug interactions, warnings, contraindications, adverse reactions, or dosage."

// maxLineLength bounds an extracted answer line.
const maxLineLength = 240

// Composer builds citation-bearing answers strictly from retrieved
// evidence. Every line is extracted from evidence text and tagged with
// the passage ids it derives from; only the fallback line for empty
// evidence goes out uncited.
type Composer struct {
	safetyNote string
}

// NewComposer creates a composer. An empty safetyNote falls back to
// domain.DefaultSafetyNote; the note is always attached.
func NewComposer(safetyNote string) *Composer {
	if safetyNote == "" {
		safetyNote = domain.DefaultSafetyNote
	}
	return &Composer{safetyNote: safetyNote}
}

// Compose builds an answer from the question and its retrieved evidence.
// Evidence spanning multiple sections is grouped by section importance
// (contraindications first, indications last) rather than raw similarity
// rank, so safety-critical language surfaces first. Empty evidence
// yields exactly the fallback line with no citations.
func (c *Composer) Compose(question string, evidence []domain.EvidenceItem) domain.AnswerResult {
	if len(evidence) == 0 {
		return domain.AnswerResult{
			Answer:     []domain.AnswerLine{{Text: fallbackLine}},
			SafetyNote: c.safetyNote,
			Evidence:   []domain.EvidenceItem{},
		}
	}

	ordered := orderBySectionPrecedence(evidence)
	keywords := keywordsFor(question)

	lines := make([]domain.AnswerLine, 0, len(ordered))
	for _, ev := range ordered {
		snippet := bestSentence(ev.Text, keywords)
		if snippet == "" {
			continue
		}
		lines = append(lines, domain.AnswerLine{
			Text:       snippet,
			PassageIDs: []string{ev.PassageID},
		})
	}

	return domain.AnswerResult{
		Answer:     lines,
		SafetyNote: c.safetyNote,
		Evidence:   ordered,
	}
}

// orderBySectionPrecedence sorts evidence by section importance, keeping
// retrieval rank within a section.
func orderBySectionPrecedence(evidence []domain.EvidenceItem) []domain.EvidenceItem {
	ordered := make([]domain.EvidenceItem, len(evidence))
	copy(ordered, evidence)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Section.Precedence() < ordered[j].Section.Precedence()
	})
	return ordered
}

// keywordsFor derives extraction keywords from the question. Unmatched
// questions default to the broad safety terms.
func keywordsFor(question string) []string {
	q := strings.ToLower(question)

	var keywords []string
	if strings.Contains(q, "interaction") {
		keywords = append(keywords, "interaction", "interact")
	}
	if strings.Contains(q, "warning") || strings.Contains(q, "risk") || strings.Contains(q, "bleeding") {
		keywords = append(keywords, "warning", "bleeding", "risk", "ulcer", "stroke", "heart")
	}
	if strings.Contains(q, "dose") || strings.Contains(q, "dosage") {
		keywords = append(keywords, "dose", "dosage")
	}
	if strings.Contains(q, "contra") {
		keywords = append(keywords, "contraindication")
	}

	if len(keywords) == 0 {
		keywords = []string{"warning", "interaction", "risk"}
	}
	return keywords
}

// bestSentence picks the sentence from text most worth quoting: the
// first sufficiently long sentence containing a keyword, else the first
// substantial sentence, else the text prefix. The result is always a
// substring of text, truncated to maxLineLength.
func bestSentence(text string, keywords []string) string {
	if text == "" {
		return ""
	}

	sentences := sentenceCandidates(text)

	for _, s := range sentences {
		lower := strings.ToLower(s)
		if len(s) <= 20 {
			continue
		}
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return truncate(s, maxLineLength)
			}
		}
	}

	for _, s := range sentences {
		if len(s) > 40 {
			return truncate(s, maxLineLength)
		}
	}

	return truncate(strings.TrimSpace(text), maxLineLength)
}

// sentenceCandidates splits text into trimmed sentence-ish pieces.
func sentenceCandidates(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// truncate cuts s to at most n bytes, backing up to a rune boundary so
// a multibyte character is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
