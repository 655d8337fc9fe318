package uniprot

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proteinworks/uniparquet/pkg/metrics"
)

func TestFileReaderPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.xml")
	require.NoError(t, os.WriteFile(path, []byte("<uniprot/>"), 0o644))

	m := metrics.New()
	r, err := NewFileReader(path, 4096, m)
	require.NoError(t, err)
	defer r.Close()

	buf, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<uniprot/>", string(buf))
	assert.Equal(t, uint64(len("<uniprot/>")), m.BytesRead.Load())
}

func TestFileReaderGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.xml.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("<uniprot></uniprot>"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	m := metrics.New()
	r, err := NewFileReader(path, 4096, m)
	require.NoError(t, err)
	defer r.Close()

	buf, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<uniprot></uniprot>", string(buf))

	// Counted bytes are the compressed input actually consumed.
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(fi.Size()), m.BytesRead.Load())
}

func TestFileReaderMissingFile(t *testing.T) {
	_, err := NewFileReader(filepath.Join(t.TempDir(), "nope.xml"), 4096, metrics.New())
	require.Error(t, err)
}
