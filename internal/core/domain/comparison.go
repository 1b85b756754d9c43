package domain

// ComparisonStatus tags the outcome of a two-label comparison.
type ComparisonStatus string

const (
	// ComparisonReady means both labels were resolved and embedded and
	// the result carries evidence for both sides.
	ComparisonReady ComparisonStatus = "ready"

	// ComparisonNeedsEmbeddings means one or both labels have no embedded
	// passages yet. This is a normal workflow step, not a failure: the
	// caller embeds both label ids and retries.
	ComparisonNeedsEmbeddings ComparisonStatus = "needs_embeddings"

	// ComparisonError means a label could not be resolved, or evidence
	// retrieval failed on both sides.
	ComparisonError ComparisonStatus = "error"
)

// ComparisonSide identifies one label in a comparison.
type ComparisonSide struct {
	// DrugName is the name the comparison was requested under.
	DrugName string `json:"name"`

	// LabelID is the resolved label, empty when resolution failed.
	LabelID string `json:"label_id,omitempty"`
}

// ComparisonResult is the outcome of comparing two labels with shared
// interaction-oriented queries. Each evidence sequence is independently
// usable for citation drill-down.
type ComparisonResult struct {
	// Status is ready, needs_embeddings, or error.
	Status ComparisonStatus `json:"status"`

	// DrugA and DrugB identify the two labels.
	DrugA ComparisonSide `json:"drug_a"`
	DrugB ComparisonSide `json:"drug_b"`

	// Summary is the ordered comparative summary. It surfaces label
	// language only, never a clinical interaction determination.
	Summary []string `json:"summary,omitempty"`

	// EvidenceA and EvidenceB are the per-side evidence sequences.
	EvidenceA []EvidenceItem `json:"evidence_a,omitempty"`
	EvidenceB []EvidenceItem `json:"evidence_b,omitempty"`

	// Message explains a non-ready status.
	Message string `json:"message,omitempty"`
}
