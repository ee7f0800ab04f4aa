// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package view

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/seqatlas/pkg/types"
)

// Document is the export payload written by analyze --export and read back
// by the timelapse command. The file extension picks the format: .json,
// .yaml/.yml, or .csv (write-only).
type Document struct {
	JobID        string                `json:"job_id" yaml:"job_id"`
	SubmissionID string                `json:"submission_id,omitempty" yaml:"submission_id,omitempty"`
	Model        string                `json:"model,omitempty" yaml:"model,omitempty"`
	GeneratedAt  time.Time             `json:"generated_at" yaml:"generated_at"`
	Matched      int                   `json:"matched" yaml:"matched"`
	Unmatched    int                   `json:"unmatched" yaml:"unmatched"`
	Points       []types.ResolvedPoint `json:"points" yaml:"points"`
}

// NewDocument pairs a finished job with its assembled set.
func NewDocument(j types.Job, set types.AssembledSet) Document {
	return Document{
		JobID:        j.ID,
		SubmissionID: j.SubmissionID,
		Model:        j.Model,
		GeneratedAt:  time.Now().UTC(),
		Matched:      set.Matched,
		Unmatched:    set.Unmatched,
		Points:       set.Points,
	}
}

// Set rebuilds the assembled set carried by the document.
func (d Document) Set() types.AssembledSet {
	return types.AssembledSet{Points: d.Points, Matched: d.Matched, Unmatched: d.Unmatched}
}

// WriteDocument writes doc to path in the format its extension names.
func WriteDocument(path string, doc Document) error {
	var data []byte
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
	case ".yaml", ".yml":
		data, err = yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case ".csv":
		data, err = marshalCSV(doc)
		if err != nil {
			return fmt.Errorf("marshaling CSV: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q (use .json, .yaml or .csv)", ext)
	}

	return os.WriteFile(path, data, 0o644)
}

// ReadDocument loads a previously exported document. CSV exports are flat
// tables and cannot be read back.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading export: %w", err)
	}

	var doc Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return Document{}, fmt.Errorf("unsupported input format %q (use .json or .yaml)", ext)
	}
	return doc, nil
}

func marshalCSV(doc Document) ([]byte, error) {
	var b strings.Builder
	cw := csv.NewWriter(&b)

	header := []string{"rank", "accession", "similarity", "distance", "x", "y",
		"year", "country", "host", "lineage", "strategy", "user_sequence"}
	if err := cw.Write(header); err != nil {
		return nil, err
	}

	for _, p := range doc.Points {
		x, y := "", ""
		if p.Resolved() {
			x = strconv.FormatFloat(p.Coordinates.X, 'f', -1, 64)
			y = strconv.FormatFloat(p.Coordinates.Y, 'f', -1, 64)
		}
		year := ""
		if p.Year() != 0 {
			year = strconv.Itoa(p.Year())
		}
		row := []string{
			strconv.Itoa(p.Rank),
			p.Accession,
			strconv.FormatFloat(p.Similarity, 'f', -1, 64),
			strconv.FormatFloat(p.Distance, 'f', -1, 64),
			x, y, year,
			p.Metadata.Country,
			p.Metadata.Host,
			p.Metadata.Lineage,
			string(p.Strategy),
			strconv.FormatBool(p.IsUserSequence),
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
