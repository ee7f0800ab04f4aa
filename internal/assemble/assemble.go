// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble turns a completed job into the plottable point set.
//
// The user's own sequence comes first, placed at the projection the service
// computed for it. Every similarity hit follows in rank order, placed
// either at service-provided coordinates or at the reference entry the
// accession resolver matched. Hits that resolve nowhere stay in the set as
// unresolved points; they still appear in listings even though no view can
// plot them.
package assemble

import (
	"github.com/pdiddy/seqatlas/internal/accession"
	"github.com/pdiddy/seqatlas/pkg/types"
)

// Assemble builds the point set for a finished job. Pure: identical inputs
// produce identical sets. Matched/Unmatched count the similarity hits only,
// never the user point.
func Assemble(j types.Job, resolver *accession.Resolver) types.AssembledSet {
	var set types.AssembledSet
	if j.Result == nil {
		return set
	}

	if j.Result.Projection != nil {
		proj := *j.Result.Projection
		set.Points = append(set.Points, types.ResolvedPoint{
			ID:             types.SelfAccession,
			Accession:      types.SelfAccession,
			Similarity:     1,
			Coordinates:    &proj,
			Strategy:       types.MatchProjection,
			IsUserSequence: true,
			Rank:           0,
		})
	}

	for i, hit := range j.Result.Results {
		p := types.ResolvedPoint{
			ID:         hit.ID,
			Accession:  hit.Accession,
			Similarity: hit.Similarity,
			Distance:   hit.Distance,
			Metadata:   hit.Metadata,
			Rank:       i + 1,
		}

		switch {
		case hit.Coordinates != nil:
			coords := *hit.Coordinates
			p.Coordinates = &coords
			p.Strategy = types.MatchProvided
			set.Matched++

		default:
			m, err := resolver.Resolve(hit.Accession)
			if err != nil {
				set.Unmatched++
				set.Points = append(set.Points, p)
				continue
			}
			coords := m.Entry.Coordinates
			p.Coordinates = &coords
			p.Strategy = m.Strategy
			p.Metadata = mergeMetadata(hit.Metadata, m.Entry.Metadata)
			set.Matched++
		}
		set.Points = append(set.Points, p)
	}

	return set
}

// mergeMetadata keeps the service-reported fields and fills the blanks
// from the matched reference entry.
func mergeMetadata(hit, entry types.PointMetadata) types.PointMetadata {
	out := hit
	if out.Country == "" {
		out.Country = entry.Country
	}
	if out.Year == 0 {
		out.Year = entry.Year
	}
	if out.Host == "" {
		out.Host = entry.Host
	}
	if out.Lineage == "" {
		out.Lineage = entry.Lineage
	}
	return out
}
