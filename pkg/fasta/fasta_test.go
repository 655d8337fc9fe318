package fasta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyPipeHeader(t *testing.T) {
	assert.Equal(t, "P04637-2", ParseKey("sp|P04637-2|TP53_HUMAN Isoform 2 of Cellular tumor antigen p53"))
	assert.Equal(t, "Q9TEST-1", ParseKey("tr|Q9TEST-1|SOME"))
}

func TestParseKeyBareHeader(t *testing.T) {
	assert.Equal(t, "Q9TEST-1", ParseKey("Q9TEST-1 some desc"))
	assert.Equal(t, "Q9TEST-1", ParseKey("Q9TEST-1"))
}

func TestLoadMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "varsplic.fasta")
	require.NoError(t, os.WriteFile(path, []byte(`>sp|P04637-2|TP53_HUMAN Isoform 2
MEEPQSDPSV
EPPLSQETFS
>Q9TEST-1 bare header
MTAK
`), 0o644))

	m, err := LoadMap(path)
	require.NoError(t, err)

	assert.Len(t, m, 2)
	assert.Equal(t, "MEEPQSDPSVEPPLSQETFS", m["P04637-2"])
	assert.Equal(t, "MTAK", m["Q9TEST-1"])
}

func TestLoadMapMissingFile(t *testing.T) {
	_, err := LoadMap(filepath.Join(t.TempDir(), "missing.fasta"))
	require.Error(t, err)
}

func TestLoadMapEmptySequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "varsplic.fasta")
	require.NoError(t, os.WriteFile(path, []byte(">P1-1\n>P2-1\nACGT\n"), 0o644))

	m, err := LoadMap(path)
	require.NoError(t, err)

	assert.Equal(t, "", m["P1-1"])
	assert.Equal(t, "ACGT", m["P2-1"])
}
