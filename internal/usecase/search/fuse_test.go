package search

import (
	"reflect"
	"testing"

	"github.com/rescuelink/emsearch/internal/domain"
)

func TestFuse_DeduplicatesKeepingMaxScore(t *testing.T) {
	perSub := [][]domain.Candidate{
		{{ChunkID: "c1", Score: 0.7}, {ChunkID: "c2", Score: 0.6}},
		{{ChunkID: "c1", Score: 0.9}},
	}

	result := fuse(perSub, domain.IntentGeneral, false, domain.Scope{}, 10)

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}

	var c1 *domain.RankedItem
	for i := range result.Items {
		if result.Items[i].ChunkID == "c1" {
			if c1 != nil {
				t.Fatal("c1 appears more than once")
			}
			c1 = &result.Items[i]
		}
	}
	if c1 == nil {
		t.Fatal("c1 missing from fused result")
	}
	if c1.Score < 0.9 {
		t.Errorf("c1 score = %v, want max of duplicates (0.9)", c1.Score)
	}
}

func TestFuse_InterleavesSubQueryResults(t *testing.T) {
	// Second sub-query's best candidate outranks the first's weaker ones.
	perSub := [][]domain.Candidate{
		{{ChunkID: "epi-1", Score: 0.9}, {ChunkID: "epi-2", Score: 0.5}},
		{{ChunkID: "atropine-1", Score: 0.8}},
	}

	result := fuse(perSub, domain.IntentGeneral, false, domain.Scope{}, 10)

	got := make([]string, len(result.Items))
	for i, item := range result.Items {
		got[i] = item.ChunkID
	}
	want := []string{"epi-1", "atropine-1", "epi-2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestFuse_IntentBoost(t *testing.T) {
	perSub := [][]domain.Candidate{{
		{ChunkID: "with-dose", Score: 0.70, Text: "give epinephrine 0.3 mg IM"},
		{ChunkID: "no-dose", Score: 0.75, Text: "epinephrine is indicated for anaphylaxis"},
	}}

	result := fuse(perSub, domain.IntentDosing, false, domain.Scope{}, 10)

	if result.Items[0].ChunkID != "with-dose" {
		t.Fatalf("dosing intent should float the chunk with dose units, got %q first",
			result.Items[0].ChunkID)
	}
	if result.Items[0].Composite <= result.Items[0].Score {
		t.Error("intent boost not applied to composite score")
	}
}

func TestFuse_ScopeSpecificityBoost(t *testing.T) {
	scope := domain.Scope{AgencyID: "denver-ems", StateCode: "CO"}
	perSub := [][]domain.Candidate{{
		{ChunkID: "state-level", Score: 0.80, StateCode: "CO"},
		{ChunkID: "agency-level", Score: 0.78, AgencyID: "denver-ems", StateCode: "CO"},
	}}

	result := fuse(perSub, domain.IntentGeneral, false, scope, 10)

	if result.Items[0].ChunkID != "agency-level" {
		t.Fatalf("exact agency match should outrank state fallback, got %q first",
			result.Items[0].ChunkID)
	}
}

func TestFuse_UrgencyBoostOnlyForUrgentQueries(t *testing.T) {
	perSub := [][]domain.Candidate{{
		{ChunkID: "urgent-chunk", Score: 0.75, Urgent: true},
		{ChunkID: "routine-chunk", Score: 0.80},
	}}

	calm := fuse(perSub, domain.IntentGeneral, false, domain.Scope{}, 10)
	if calm.Items[0].ChunkID != "routine-chunk" {
		t.Error("urgency boost must not apply to a non-urgent query")
	}

	urgent := fuse(perSub, domain.IntentGeneral, true, domain.Scope{}, 10)
	if urgent.Items[0].ChunkID != "urgent-chunk" {
		t.Error("urgent query should float urgency-tagged chunks")
	}
}

func TestFuse_DeterministicTieBreak(t *testing.T) {
	perSub := [][]domain.Candidate{{
		{ChunkID: "zz", Score: 0.8},
		{ChunkID: "aa", Score: 0.8},
		{ChunkID: "mm", Score: 0.8},
	}}

	first := fuse(perSub, domain.IntentGeneral, false, domain.Scope{}, 10)
	for i := 0; i < 20; i++ {
		again := fuse(perSub, domain.IntentGeneral, false, domain.Scope{}, 10)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("fusion not deterministic on run %d", i)
		}
	}

	// Equal scores fall back to lexicographic chunk id.
	got := []string{first.Items[0].ChunkID, first.Items[1].ChunkID, first.Items[2].ChunkID}
	want := []string{"aa", "mm", "zz"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tie-break order = %v, want %v", got, want)
	}
}

func TestFuse_TruncatesAndRanks(t *testing.T) {
	var candidates []domain.Candidate
	for i := 0; i < 30; i++ {
		candidates = append(candidates, domain.Candidate{
			ChunkID: string(rune('a' + i)),
			Score:   float64(30-i) / 100,
		})
	}

	result := fuse([][]domain.Candidate{candidates}, domain.IntentGeneral, false, domain.Scope{}, 10)

	if len(result.Items) != 10 {
		t.Fatalf("expected 10 items after truncation, got %d", len(result.Items))
	}
	for i, item := range result.Items {
		if item.Rank != i+1 {
			t.Errorf("item %d rank = %d, want %d", i, item.Rank, i+1)
		}
	}
}

func TestFuse_EmptyInput(t *testing.T) {
	result := fuse(nil, domain.IntentGeneral, false, domain.Scope{}, 10)
	if len(result.Items) != 0 {
		t.Fatalf("expected empty result, got %d items", len(result.Items))
	}
	if result.NoQuery {
		t.Error("fusion of zero candidates is not the no-query case")
	}
}
