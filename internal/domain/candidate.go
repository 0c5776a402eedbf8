package domain

// Candidate is one retrieved protocol chunk. Score is the raw vector
// similarity in [0,1]. Candidates live only for the duration of a request,
// except as part of a cached RankedResult.
type Candidate struct {
	ChunkID        string  `json:"chunk_id"`
	Score          float64 `json:"score"`
	AgencyID       string  `json:"agency_id,omitempty"`
	StateCode      string  `json:"state_code,omitempty"`
	ProtocolNumber string  `json:"protocol_number,omitempty"`
	Title          string  `json:"title,omitempty"`
	Text           string  `json:"text,omitempty"`
	Urgent         bool    `json:"urgent,omitempty"`
}

// RankedItem is a Candidate with its composite score and final position.
type RankedItem struct {
	Candidate
	Composite float64 `json:"composite"`
	Rank      int     `json:"rank"`
}

// RankedResult is the final ordered answer for one query. Built once by the
// fusion engine, cached as a unit. NoQuery marks the "empty input" case so
// callers can distinguish it from "nothing matched".
type RankedResult struct {
	Items   []RankedItem `json:"items"`
	NoQuery bool         `json:"no_query,omitempty"`
}
