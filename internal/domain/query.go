package domain

// Intent classifies what kind of clinical answer a query is after.
type Intent string

const (
	// IntentDosing is a medication dose question.
	IntentDosing Intent = "dosing"
	// IntentProcedure is a skills/procedure question.
	IntentProcedure Intent = "procedure"
	// IntentContraindication is a "when not to" question.
	IntentContraindication Intent = "contraindication"
	// IntentGeneral is the fallback when no keyword bucket matches.
	IntentGeneral Intent = "general"
)

// Scope restricts which protocols a query may retrieve.
// An empty field means "no restriction on that axis".
type Scope struct {
	AgencyID  string
	StateCode string
}

// IsZero reports whether the scope carries no restriction at all.
func (s Scope) IsZero() bool {
	return s.AgencyID == "" && s.StateCode == ""
}

// Query is the raw search input as received from the caller. Immutable.
type Query struct {
	Raw         string
	Scope       Scope
	VoiceOrigin bool
}

// NormalizedQuery is the canonical form of a Query, produced once by the
// normalizer and never mutated afterward. SubQueries is always non-empty;
// each element is non-empty after trimming.
type NormalizedQuery struct {
	Canonical  string
	SubQueries []string
	Intent     Intent
	Urgent     bool
}
