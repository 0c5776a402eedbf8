package search

import (
	"sort"
	"strings"

	"github.com/rescuelink/emsearch/internal/domain"
)

// Boost weights, additive on top of the raw similarity score. These are the
// relevance tuning knobs; keep them here and nowhere else.
const (
	// boostIntentMatch rewards candidates whose text carries the signal
	// the query's intent is after (dose units for dosing, step language
	// for procedures, warning language for contraindications).
	boostIntentMatch = 0.15
	// boostAgencyMatch rewards an exact agency match over a broader
	// state-level fallback chunk.
	boostAgencyMatch = 0.10
	// boostStateMatch rewards a state match when no agency match exists.
	boostStateMatch = 0.05
	// boostUrgent rewards urgency-tagged chunks, but only when the query
	// itself was flagged urgent.
	boostUrgent = 0.10
)

// Intent-evidence markers looked up in candidate text during re-ranking.
var intentMarkers = map[domain.Intent][]string{
	domain.IntentDosing: {
		"mg", "mcg", "ml", "mg/kg", "mcg/kg", "units", "dose", "grams",
	},
	domain.IntentProcedure: {
		"step", "technique", "insert", "placement", "position", "confirm",
	},
	domain.IntentContraindication: {
		"contraindicated", "contraindication", "do not", "avoid", "caution",
	},
}

// fuse merges per-sub-query candidate sets into one ranked list.
//
// Chunks retrieved by several sub-queries are merged keeping the maximum
// similarity seen; they are likely globally relevant but must not be
// double-counted. Ordering is a total order: composite score desc, then raw
// similarity desc, then chunk id asc, so identical inputs always produce an
// identical list.
func fuse(
	perSub [][]domain.Candidate,
	intent domain.Intent,
	urgent bool,
	scope domain.Scope,
	limit int,
) domain.RankedResult {
	merged := make(map[string]domain.Candidate)
	for _, candidates := range perSub {
		for _, c := range candidates {
			if existing, ok := merged[c.ChunkID]; !ok || c.Score > existing.Score {
				merged[c.ChunkID] = c
			}
		}
	}

	items := make([]domain.RankedItem, 0, len(merged))
	for _, c := range merged {
		items = append(items, domain.RankedItem{
			Candidate: c,
			Composite: c.Score + boost(c, intent, urgent, scope),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Composite != items[j].Composite {
			return items[i].Composite > items[j].Composite
		}
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ChunkID < items[j].ChunkID
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for i := range items {
		items[i].Rank = i + 1
	}

	return domain.RankedResult{Items: items}
}

// boost computes the additive score adjustment for one candidate.
func boost(c domain.Candidate, intent domain.Intent, urgent bool, scope domain.Scope) float64 {
	var b float64

	if markers, ok := intentMarkers[intent]; ok && containsAnyWord(c.Text, markers) {
		b += boostIntentMatch
	}

	switch {
	case scope.AgencyID != "" && c.AgencyID == scope.AgencyID:
		b += boostAgencyMatch
	case scope.StateCode != "" && c.StateCode == scope.StateCode:
		b += boostStateMatch
	}

	if urgent && c.Urgent {
		b += boostUrgent
	}

	return b
}

// containsAnyWord reports whether text contains any marker as a whole word,
// case-insensitively.
func containsAnyWord(text string, markers []string) bool {
	padded := " " + strings.ToLower(text) + " "
	for _, m := range markers {
		if strings.Contains(padded, " "+m+" ") {
			return true
		}
	}
	return false
}
