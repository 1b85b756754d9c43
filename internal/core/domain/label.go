package domain

import "time"

// LabelRecord is the raw labeling record handed to ingestion by the
// registry collaborator. It carries no surrogate id; one is assigned
// when the record becomes a Label.
type LabelRecord struct {
	// DrugName is the name the label was looked up under.
	DrugName string

	// SetID is the external version/set identifier of the labeling document.
	SetID string

	// EffectiveTime is the label's effective date as reported upstream.
	EffectiveTime string

	// Sections maps section names to raw section text. Absent or empty
	// sections are simply not chunked.
	Sections map[Section]string
}

// Label represents one ingested drug-labeling record.
// Labels are immutable once ingested; re-ingesting a drug produces a new
// Label rather than mutating an existing one.
type Label struct {
	// ID is the unique identifier for the label.
	ID string

	// DrugName is the name the label was ingested under.
	DrugName string

	// SetID is the external version/set identifier.
	SetID string

	// EffectiveTime is the label's effective date as reported upstream.
	EffectiveTime string

	// Sections maps section names to raw section text.
	Sections map[Section]string

	// CreatedAt is when the label was ingested.
	CreatedAt time.Time
}

// Passage is a bounded, ordered span of text within one section of one
// label. Passages are created once at ingestion and never mutated; only
// the embedding vector is filled in afterwards.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// LabelID links to the owning Label.
	LabelID string

	// Section is the label section this passage was cut from.
	Section Section

	// Position is the zero-based ordinal within (label, section).
	// Ascending positions follow original text order.
	Position int

	// Text is the literal passage text.
	Text string

	// Embedding is the vector representation, nil until computed.
	Embedding []float32
}

// Embedded reports whether the passage carries an embedding vector.
func (p Passage) Embedded() bool {
	return len(p.Embedding) > 0
}
