package fasta

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadQuery(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantID  string
		wantSeq string
		wantErr string
	}{
		{
			name:    "single record",
			content: ">NZ_CP012345.1 Escherichia coli\nACGTACGT\nTTGGCCAA\n",
			wantID:  "NZ_CP012345.1",
			wantSeq: "ACGTACGTTTGGCCAA",
		},
		{
			name:    "bare sequence without header",
			content: "acgt acgt\nnnNN\n",
			wantSeq: "ACGTACGTNNNN",
		},
		{
			name:    "lowercase and ambiguity codes normalized",
			content: ">q\nacgtrswkmbdhvny\n",
			wantID:  "q",
			wantSeq: "ACGTRSWKMBDHVNY",
		},
		{
			name:    "multiple records rejected",
			content: ">a\nACGT\n>b\nTTTT\n",
			wantErr: "expected a single sequence, found 2 records",
		},
		{
			name:    "invalid base reported with position",
			content: ">q\nACGTXACGT\n",
			wantErr: `invalid base 'X' at position 5`,
		},
		{
			name:    "empty input",
			content: "\n\n",
			wantErr: "empty input",
		},
		{
			name:    "sequence before header rejected",
			content: "ACGT\n>late\nTTTT\n",
			wantErr: "header after sequence data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "query.fasta", tt.content)
			rec, err := ReadQuery(path)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got record %+v", tt.wantErr, rec)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if rec.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", rec.ID, tt.wantID)
			}
			if rec.Seq != tt.wantSeq {
				t.Errorf("Seq = %q, want %q", rec.Seq, tt.wantSeq)
			}
		})
	}
}

func TestReadQueryGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.fasta.gz")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(">zipped\nACGTACGT\n")); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fh.Close(); err != nil {
		t.Fatal(err)
	}

	rec, err := ReadQuery(path)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "zipped" || rec.Seq != "ACGTACGT" {
		t.Errorf("got %+v", rec)
	}
}

func TestReadQueryMissingFile(t *testing.T) {
	if _, err := ReadQuery(filepath.Join(t.TempDir(), "nope.fasta")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "acgt", want: "ACGT"},
		{raw: "  AC GT\t", want: "ACGT"},
		{raw: `"ACGT"`, want: "ACGT"},
		{raw: "ACGTN", want: "ACGTN"},
		{raw: "RYSWKMBDHV", want: "RYSWKMBDHV"},
		{raw: "", wantErr: true},
		{raw: "   ", wantErr: true},
		{raw: "ACGU", wantErr: true},
		{raw: "ACG7", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Validate(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Validate(%q) = %q, want error", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Validate(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Validate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
