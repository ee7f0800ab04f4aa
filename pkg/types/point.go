// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the seqatlas pipeline:
// the reference dataset entries, the raw similarity results returned by the
// analysis service, and the resolved points every downstream view consumes.
package types

// SelfAccession is the identifier reserved for the user's own submitted
// sequence. It never collides with a reference accession and views treat
// it specially (highlighting it is a no-op).
const SelfAccession = "self"

// Coordinates is a 2D embedding position. The embedding itself is computed
// server-side; clients treat the values as opaque plot coordinates.
type Coordinates struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PointMetadata carries the descriptive fields attached to a sequence
// record. Year is 0 when the collection year is unknown.
type PointMetadata struct {
	Country string `json:"country,omitempty" yaml:"country,omitempty"`
	Year    int    `json:"year,omitempty" yaml:"year,omitempty"`
	Host    string `json:"host,omitempty" yaml:"host,omitempty"`
	Lineage string `json:"lineage,omitempty" yaml:"lineage,omitempty"`
}

// ReferenceEntry is one sequence record of the reference dataset. Entries
// are immutable once loaded; the cache replaces them wholesale on refresh.
type ReferenceEntry struct {
	// Accession is the canonical identifier as published by the dataset
	// (e.g. "NZ_CP012345.1").
	Accession string `json:"accession" yaml:"accession"`

	// NormalizedKeys lists the lookup keys this entry is findable under:
	// the verbatim accession, its lowercase form, and the version-stripped
	// form. Built once at load time.
	NormalizedKeys []string `json:"-" yaml:"-"`

	// Coordinates is the precomputed embedding position of this entry.
	Coordinates Coordinates `json:"coordinates" yaml:"coordinates"`

	// Metadata holds country, collection year, host, and lineage.
	Metadata PointMetadata `json:"metadata" yaml:"metadata"`
}

// SimilarityResult is one raw hit from the analysis service, before
// accession resolution. Immutable.
type SimilarityResult struct {
	// ID is the service-assigned identifier of the hit.
	ID string `json:"id" yaml:"id"`

	// Accession is the loosely-formatted identifier naming the reference
	// sequence this hit corresponds to. Resolution against the reference
	// cache may normalize it.
	Accession string `json:"accession" yaml:"accession"`

	// Similarity is the similarity score in [0,1]; higher is closer.
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// Distance is the raw model distance backing the similarity score.
	Distance float64 `json:"distance" yaml:"distance"`

	// Coordinates is non-nil when the service already projected this hit
	// into the embedding, making cache resolution unnecessary.
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`

	// Metadata holds the descriptive fields returned with the hit.
	Metadata PointMetadata `json:"metadata" yaml:"metadata"`
}

// MatchStrategy identifies how a point obtained its coordinates.
type MatchStrategy string

const (
	// MatchNone marks a point whose accession could not be resolved.
	MatchNone MatchStrategy = ""
	// MatchExact is a verbatim accession match.
	MatchExact MatchStrategy = "exact"
	// MatchCaseInsensitive matched after lowercasing both sides.
	MatchCaseInsensitive MatchStrategy = "case-insensitive"
	// MatchVersionStripped matched after truncating both sides at the
	// first '.' (version suffix).
	MatchVersionStripped MatchStrategy = "version-stripped"
	// MatchPrefixStripped matched after removing a known organizational
	// prefix from the query, case-insensitively.
	MatchPrefixStripped MatchStrategy = "prefix-stripped"
	// MatchSubstring is the opt-in containment match. Low confidence.
	MatchSubstring MatchStrategy = "substring"
	// MatchProvided means the service response already carried
	// coordinates, so no cache lookup happened.
	MatchProvided MatchStrategy = "provided"
	// MatchProjection marks the user's own sequence, placed by the
	// job's projection rather than the resolver.
	MatchProjection MatchStrategy = "projection"
)

// ResolvedPoint is a similarity result enriched with coordinates. It is the
// canonical unit every view renders.
type ResolvedPoint struct {
	ID         string         `json:"id" yaml:"id"`
	Accession  string         `json:"accession" yaml:"accession"`
	Similarity float64        `json:"similarity" yaml:"similarity"`
	Distance   float64        `json:"distance" yaml:"distance"`
	Metadata   PointMetadata  `json:"metadata" yaml:"metadata"`

	// Coordinates is nil exactly when the point is unresolved. Unresolved
	// points are retained, never dropped and never given placeholder
	// coordinates.
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`

	// Strategy records which matching strategy produced the coordinates,
	// MatchNone for unresolved points.
	Strategy MatchStrategy `json:"strategy" yaml:"strategy"`

	// IsUserSequence marks the user's own submitted sequence.
	IsUserSequence bool `json:"is_user_sequence" yaml:"is_user_sequence"`

	// Rank is the position within the job's ranked result list. The user
	// sequence carries rank 0; hits start at 1.
	Rank int `json:"rank" yaml:"rank"`
}

// Resolved reports whether the point carries usable coordinates.
func (p ResolvedPoint) Resolved() bool {
	return p.Coordinates != nil
}

// Year returns the collection year, 0 when unknown.
func (p ResolvedPoint) Year() int {
	return p.Metadata.Year
}

// AssembledSet is the output of result assembly: the resolved points in
// presentation order plus the match bookkeeping views report as
// "k of n matched".
type AssembledSet struct {
	Points    []ResolvedPoint `json:"points" yaml:"points"`
	Matched   int             `json:"matched" yaml:"matched"`
	Unmatched int             `json:"unmatched" yaml:"unmatched"`
}

// Total returns the number of reference hits (the user sequence excluded).
func (s AssembledSet) Total() int {
	return s.Matched + s.Unmatched
}

// TimeWindow is the filter state the player exposes to views: the known
// year range of the point set, the active cutoff and similarity threshold,
// and whether playback is running.
type TimeWindow struct {
	// MinYear and MaxYear bound the known collection years, both 0 when
	// no point carries a year.
	MinYear int `json:"min_year" yaml:"min_year"`
	MaxYear int `json:"max_year" yaml:"max_year"`

	// CurrentYear is the inclusive cutoff, 0 when no temporal filter is
	// active.
	CurrentYear int `json:"current_year" yaml:"current_year"`

	// Threshold is the minimum similarity a point needs to stay visible.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	Playing bool `json:"playing" yaml:"playing"`
}
