package domain

// Section identifies a named section of a drug label.
type Section string

// Label sections as named by the FDA structured product label.
const (
	SectionIndicationsAndUsage     Section = "indications_and_usage"
	SectionContraindications       Section = "contraindications"
	SectionWarnings                Section = "warnings"
	SectionWarningsAndCautions     Section = "warnings_and_cautions"
	SectionDrugInteractions        Section = "drug_interactions"
	SectionAdverseReactions        Section = "adverse_reactions"
	SectionDosageAndAdministration Section = "dosage_and_administration"
)

// CanonicalSections is the fixed ingestion order for label sections.
// Chunking iterates sections in this order so passage creation is
// deterministic for a given label record.
var CanonicalSections = []Section{
	SectionIndicationsAndUsage,
	SectionContraindications,
	SectionWarnings,
	SectionWarningsAndCautions,
	SectionDrugInteractions,
	SectionAdverseReactions,
	SectionDosageAndAdministration,
}

// sectionPrecedence orders sections by safety importance for answer
// composition. Safety-critical sections surface first regardless of
// similarity rank; anything unlisted sorts last.
var sectionPrecedence = map[Section]int{
	SectionContraindications:       0,
	SectionWarnings:                1,
	SectionWarningsAndCautions:     1,
	SectionDrugInteractions:        2,
	SectionAdverseReactions:        3,
	SectionDosageAndAdministration: 4,
	SectionIndicationsAndUsage:     5,
}

// precedenceOther ranks below every named section.
const precedenceOther = 6

// Precedence returns the safety-importance rank of the section.
// Lower ranks surface earlier in composed answers.
func (s Section) Precedence() int {
	if p, ok := sectionPrecedence[s]; ok {
		return p
	}
	return precedenceOther
}

// Known reports whether the section is one of the canonical label sections.
func (s Section) Known() bool {
	_, ok := sectionPrecedence[s]
	return ok
}
