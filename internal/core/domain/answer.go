package domain

import "unicode/utf8"

// PreviewLength is the maximum length of an evidence preview in bytes.
const PreviewLength = 200

// DefaultSafetyNote is attached to every answer unless overridden.
const DefaultSafetyNote = "Not medical advice. Confirm with a pharmacist/clinician."

// EvidenceItem is a read-only projection of a Passage surfaced in
// response to a query. It is derived at retrieval time and never
// persisted independently.
type EvidenceItem struct {
	// PassageID identifies the source passage for citation drill-down.
	PassageID string `json:"chunk_id"`

	// Section is the label section the passage belongs to.
	Section Section `json:"section"`

	// Position is the passage ordinal within its section.
	Position int `json:"chunk_index"`

	// Preview is a truncated view of the passage text.
	Preview string `json:"preview"`

	// Score is the similarity score the passage was retrieved with.
	Score float64 `json:"score"`

	// Text is the full passage text, carried for answer composition but
	// not part of the wire shape; full text is served by get_passage.
	Text string `json:"-"`
}

// MakePreview truncates text to PreviewLength, appending an ellipsis when
// anything was cut. The cut backs up to a rune boundary so label text
// with multibyte characters never yields an invalid UTF-8 preview.
func MakePreview(text string) string {
	if len(text) <= PreviewLength {
		return text
	}
	cut := PreviewLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// AnswerLine is one cited line of a composed answer.
type AnswerLine struct {
	// Text is the extractive line content.
	Text string `json:"text"`

	// PassageIDs are the evidence passages the line derives from.
	// Empty only on the fallback line emitted when no evidence cleared
	// the threshold; every other line cites at least one passage.
	PassageIDs []string `json:"chunk_ids"`
}

// AnswerResult is a citation-bearing answer to a single-label question.
type AnswerResult struct {
	// Answer is the ordered sequence of cited lines.
	Answer []AnswerLine `json:"answer"`

	// SafetyNote reminds the reader this is not medical advice.
	SafetyNote string `json:"safety_note"`

	// Evidence is the ordered evidence backing the answer lines.
	Evidence []EvidenceItem `json:"evidence"`
}
