// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"testing"

	"github.com/pdiddy/seqatlas/internal/accession"
	"github.com/pdiddy/seqatlas/pkg/types"
)

func testResolver(entries ...types.ReferenceEntry) *accession.Resolver {
	return accession.NewResolver(accession.NewIndex(entries), types.ResolverConfig{})
}

func completedJob(projection *types.Coordinates, hits ...types.SimilarityResult) types.Job {
	return types.Job{
		ID:     "job-1",
		Status: types.JobCompleted,
		Result: &types.JobResult{Projection: projection, Results: hits},
	}
}

func TestAssemble(t *testing.T) {
	resolver := testResolver(
		types.ReferenceEntry{
			Accession:   "NZ_A.1",
			Coordinates: types.Coordinates{X: 10, Y: 20},
			Metadata:    types.PointMetadata{Country: "Canada", Year: 2019, Host: "Homo sapiens"},
		},
	)
	j := completedJob(
		&types.Coordinates{X: 1, Y: 2},
		types.SimilarityResult{
			ID: "r1", Accession: "detached", Similarity: 0.99,
			Coordinates: &types.Coordinates{X: 5, Y: 6},
		},
		types.SimilarityResult{ID: "r2", Accession: "NZ_A.1", Similarity: 0.95},
		types.SimilarityResult{ID: "r3", Accession: "GHOST.9", Similarity: 0.90},
	)

	set := Assemble(j, resolver)

	if len(set.Points) != 4 {
		t.Fatalf("points = %d, want 4 (user + 3 hits)", len(set.Points))
	}
	if set.Total() != 3 {
		t.Fatalf("Total = %d, want 3 hits", set.Total())
	}
	if set.Matched != 2 || set.Unmatched != 1 {
		t.Fatalf("Matched/Unmatched = %d/%d, want 2/1", set.Matched, set.Unmatched)
	}

	user := set.Points[0]
	if !user.IsUserSequence {
		t.Fatal("first point must be the user sequence")
	}
	if user.Rank != 0 || user.Accession != types.SelfAccession {
		t.Errorf("user point = rank %d accession %q", user.Rank, user.Accession)
	}
	if user.Strategy != types.MatchProjection {
		t.Errorf("user strategy = %q, want %q", user.Strategy, types.MatchProjection)
	}
	if user.Coordinates == nil || user.Coordinates.X != 1 {
		t.Errorf("user coordinates = %+v, want projection (1,2)", user.Coordinates)
	}
	if user.Similarity != 1 {
		t.Errorf("user similarity = %v, want 1", user.Similarity)
	}

	// Hits keep their rank order after the user point.
	for i, wantID := range []string{"r1", "r2", "r3"} {
		p := set.Points[i+1]
		if p.ID != wantID {
			t.Errorf("point %d ID = %q, want %q", i+1, p.ID, wantID)
		}
		if p.Rank != i+1 {
			t.Errorf("point %s rank = %d, want %d", p.ID, p.Rank, i+1)
		}
	}

	provided := set.Points[1]
	if provided.Strategy != types.MatchProvided {
		t.Errorf("provided strategy = %q", provided.Strategy)
	}
	if provided.Coordinates.X != 5 || provided.Coordinates.Y != 6 {
		t.Errorf("provided coordinates = %+v", provided.Coordinates)
	}

	resolved := set.Points[2]
	if resolved.Strategy != types.MatchExact {
		t.Errorf("resolved strategy = %q, want exact", resolved.Strategy)
	}
	if resolved.Coordinates == nil || resolved.Coordinates.X != 10 {
		t.Errorf("resolved coordinates = %+v, want entry (10,20)", resolved.Coordinates)
	}
	if resolved.Metadata.Country != "Canada" || resolved.Metadata.Year != 2019 {
		t.Errorf("resolved metadata = %+v, want entry metadata", resolved.Metadata)
	}

	miss := set.Points[3]
	if miss.Resolved() {
		t.Error("unmatched hit must stay unresolved")
	}
	if miss.Strategy != types.MatchNone {
		t.Errorf("unmatched strategy = %q, want none", miss.Strategy)
	}
}

func TestAssembleProvidedCoordinatesSkipResolver(t *testing.T) {
	// The accession would resolve, but service coordinates take priority.
	resolver := testResolver(types.ReferenceEntry{
		Accession:   "NZ_A.1",
		Coordinates: types.Coordinates{X: 100, Y: 100},
	})
	j := completedJob(nil, types.SimilarityResult{
		ID: "r1", Accession: "NZ_A.1",
		Coordinates: &types.Coordinates{X: 5, Y: 6},
	})

	set := Assemble(j, resolver)
	p := set.Points[0]
	if p.Strategy != types.MatchProvided {
		t.Fatalf("strategy = %q, want provided", p.Strategy)
	}
	if p.Coordinates.X != 5 {
		t.Errorf("coordinates = %+v, want service-provided (5,6)", p.Coordinates)
	}
}

func TestAssembleMetadataMerge(t *testing.T) {
	resolver := testResolver(types.ReferenceEntry{
		Accession:   "NZ_A.1",
		Coordinates: types.Coordinates{X: 1, Y: 1},
		Metadata:    types.PointMetadata{Country: "Denmark", Year: 2015, Host: "Sus scrofa", Lineage: "ST10"},
	})
	j := completedJob(nil, types.SimilarityResult{
		ID: "r1", Accession: "NZ_A.1",
		Metadata: types.PointMetadata{Country: "Norway"},
	})

	set := Assemble(j, resolver)
	md := set.Points[0].Metadata
	if md.Country != "Norway" {
		t.Errorf("Country = %q, service-reported field must win", md.Country)
	}
	if md.Year != 2015 || md.Host != "Sus scrofa" || md.Lineage != "ST10" {
		t.Errorf("entry fields must fill blanks, got %+v", md)
	}
}

func TestAssembleWithoutProjection(t *testing.T) {
	resolver := testResolver()
	j := completedJob(nil, types.SimilarityResult{ID: "r1", Accession: "GHOST.1"})

	set := Assemble(j, resolver)
	if len(set.Points) != 1 {
		t.Fatalf("points = %d, want 1 (no user point without a projection)", len(set.Points))
	}
	if set.Points[0].IsUserSequence {
		t.Error("hit must not be marked as the user sequence")
	}
}

func TestAssembleNoResult(t *testing.T) {
	set := Assemble(types.Job{ID: "job-1", Status: types.JobRunning}, testResolver())
	if set.Total() != 0 || set.Matched != 0 || set.Unmatched != 0 {
		t.Fatalf("non-terminal job should assemble empty, got %+v", set)
	}
}
