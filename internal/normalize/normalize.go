// Package normalize canonicalizes raw EMS queries before embedding.
// Everything here is a pure text transform: no I/O, no clocks, no state.
package normalize

import (
	"strings"

	"github.com/rescuelink/emsearch/internal/domain"
)

// MaxSubQueries caps compound-question fan-out. Retrieval cost grows
// linearly with the split count, so overflow parts are merged into the last
// sub-query instead of being dropped.
const MaxSubQueries = 3

// maxPhraseWords is the longest abbreviation key, in words.
const maxPhraseWords = 2

// Normalize canonicalizes a raw query. It never fails: worst case the
// result is the trimmed, lowercased input as a single sub-query with intent
// general and no urgency flag. An input that is empty after trimming yields
// an empty Canonical and no sub-queries; callers treat that as "no query",
// not as an error.
//
// Normalize is idempotent on its own output: Normalize(q).Canonical
// normalizes to the same NormalizedQuery.
func Normalize(raw string) domain.NormalizedQuery {
	subs := split(expand(canonicalize(raw)))

	// The canonical text is rebuilt from the split parts so that
	// re-normalizing it reproduces the same split.
	canonical := strings.Join(subs, " and ")

	return domain.NormalizedQuery{
		Canonical:  canonical,
		SubQueries: subs,
		Intent:     tagIntent(canonical),
		Urgent:     isUrgent(canonical),
	}
}

// canonicalize lowercases, trims, collapses whitespace and strips
// punctuation that carries no retrieval signal. Question marks become
// standalone tokens so split can use them as boundaries.
func canonicalize(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch r {
		case '?':
			b.WriteString(" ? ")
		case ',', '.', '!', ';', ':', '"', '(', ')':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// expand replaces clinical shorthand with full terms and fixes known typos.
// Matching is greedy longest-match-first over the token stream, so a
// two-word abbreviation ("v fib") is tried before its one-word suffix.
func expand(text string) string {
	if text == "" {
		return ""
	}

	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); {
		matched := false
		for n := maxPhraseWords; n >= 1; n-- {
			if i+n > len(tokens) {
				continue
			}
			phrase := strings.Join(tokens[i:i+n], " ")
			if full, ok := abbreviations[phrase]; ok {
				out = append(out, strings.Fields(full)...)
				i += n
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		tok := tokens[i]
		if fixed, ok := typoCorrections[tok]; ok {
			tok = fixed
		}
		out = append(out, tok)
		i++
	}

	return strings.Join(out, " ")
}

// split breaks a compound question into independent sub-queries at
// conjunction tokens and question marks. A fragment only counts as an
// independent question when it has at least two tokens; shorter fragments
// are glued back onto their neighbor ("adult and pediatric dosing" stays
// whole). The split is capped at MaxSubQueries; overflow merges into the
// final sub-query.
func split(canonical string) []string {
	if canonical == "" {
		return nil
	}

	tokens := strings.Fields(canonical)

	var parts [][]string
	current := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "and" || tok == "or" || tok == "?" {
			if len(current) >= 2 {
				parts = append(parts, current)
				current = nil
				continue
			}
			if tok == "?" {
				// A dangling question mark is noise either way.
				continue
			}
		}
		current = append(current, tok)
	}
	if len(current) > 0 {
		if len(current) < 2 && len(parts) > 0 {
			parts[len(parts)-1] = append(parts[len(parts)-1], current...)
		} else {
			parts = append(parts, current)
		}
	}

	if len(parts) > MaxSubQueries {
		tail := parts[MaxSubQueries-1]
		for _, extra := range parts[MaxSubQueries:] {
			tail = append(tail, "and")
			tail = append(tail, extra...)
		}
		parts = append(parts[:MaxSubQueries-1], tail)
	}

	subs := make([]string, 0, len(parts))
	for _, p := range parts {
		subs = append(subs, strings.Join(p, " "))
	}
	return subs
}

// tagIntent assigns the first matching keyword bucket, defaulting to general.
func tagIntent(canonical string) domain.Intent {
	switch {
	case matchesAny(canonical, contraindicationKeywords):
		return domain.IntentContraindication
	case matchesAny(canonical, dosingKeywords):
		return domain.IntentDosing
	case matchesAny(canonical, procedureKeywords):
		return domain.IntentProcedure
	default:
		return domain.IntentGeneral
	}
}

func isUrgent(canonical string) bool {
	return matchesAny(canonical, urgencyTerms)
}

// matchesAny reports whether text contains any term as a whole-word match.
func matchesAny(text string, terms []string) bool {
	padded := " " + text + " "
	for _, term := range terms {
		if strings.Contains(padded, " "+term+" ") {
			return true
		}
	}
	return false
}
