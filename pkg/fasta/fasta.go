// Package fasta loads a varsplic-style isoform sidecar into an
// accession -> sequence map, shared read-only across pipeline workers.
package fasta

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LoadMap reads a FASTA file keyed by isoform accession.
//
// Header parsing: UniProt pipe headers like ">sp|P04637-2|TP53_HUMAN ..."
// key by the accession field; otherwise the first whitespace-delimited token
// after ">" is the key.
func LoadMap(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening FASTA sidecar %s", path)
	}
	defer f.Close()

	m := make(map[string]string)

	var (
		key string
		seq strings.Builder
		has bool
	)

	sc := bufio.NewScanner(f)
	// Sequence lines are short, but headers with long descriptions exist.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ">") {
			if has {
				m[key] = seq.String()
			}
			key = ParseKey(strings.TrimSpace(strings.TrimPrefix(line, ">")))
			seq.Reset()
			has = true
			continue
		}
		if part := strings.TrimSpace(line); part != "" {
			seq.WriteString(part)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading FASTA sidecar %s", path)
	}
	if has {
		m[key] = seq.String()
	}

	return m, nil
}

// ParseKey extracts the map key from a FASTA header (without the ">").
func ParseKey(header string) string {
	first := header
	if i := strings.IndexAny(first, " \t"); i >= 0 {
		first = first[:i]
	}

	// Prefer the accession inside UniProt pipe headers: sp|P04637-2|TP53_HUMAN.
	parts := strings.Split(first, "|")
	if len(parts) >= 3 && parts[1] != "" {
		return parts[1]
	}
	return first
}
