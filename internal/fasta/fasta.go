// Package fasta reads query sequences for analysis submission.
//
// Input may be a FASTA file or a bare sequence pasted into a file with no
// header line. Exactly one record is expected either way.
package fasta

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Record is one parsed sequence with its header identifier (empty for bare
// sequences).
type Record struct {
	ID  string
	Seq string
}

// Allowed IUPAC DNA codes.
var iupac = map[rune]bool{
	'A': true, 'C': true, 'G': true, 'T': true,
	'R': true, 'Y': true, 'S': true, 'W': true,
	'K': true, 'M': true, 'B': true, 'D': true,
	'H': true, 'V': true, 'N': true,
}

// Normalize removes whitespace and quote characters and uppercases bases.
func Normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	return string(out)
}

// Validate returns a normalized sequence or an error if any char is non-IUPAC.
func Validate(raw string) (string, error) {
	s := Normalize(raw)
	if s == "" {
		return "", fmt.Errorf("empty sequence")
	}
	for i, r := range s {
		if !iupac[r] {
			return "", fmt.Errorf("invalid base %q at position %d; allowed: A C G T R Y S W K M B D H V N", r, i+1)
		}
	}
	return s, nil
}

// ReadQuery reads the single query sequence from path. "-" reads stdin and
// a .gz suffix wraps the file in a gzip reader. A file whose first
// non-blank line is not a FASTA header is treated as one bare sequence.
// More than one record is an error rather than a silent truncation.
func ReadQuery(path string) (Record, error) {
	rc, err := openReader(path)
	if err != nil {
		return Record{}, err
	}
	defer rc.Close()

	records, err := parse(rc)
	if err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("reading %s: empty input", path)
	}
	if len(records) > 1 {
		return Record{}, fmt.Errorf("reading %s: expected a single sequence, found %d records", path, len(records))
	}

	seq, err := Validate(records[0].Seq)
	if err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Record{ID: records[0].ID, Seq: seq}, nil
}

func parse(r io.Reader) ([]Record, error) {
	var (
		records []Record
		id      string
		seq     strings.Builder
		inFasta bool
	)

	flush := func() {
		records = append(records, Record{ID: id, Seq: seq.String()})
		seq.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if !inFasta && seq.Len() > 0 {
				return nil, fmt.Errorf("header after sequence data")
			}
			if inFasta {
				flush()
			}
			inFasta = true
			id = ""
			if fields := strings.Fields(line[1:]); len(fields) > 0 {
				id = fields[0]
			}
			continue
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !inFasta {
		if seq.Len() == 0 {
			return nil, nil
		}
		return []Record{{Seq: seq.String()}}, nil
	}
	flush()
	return records, nil
}

func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}
