package pipeline

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	kitlog "github.com/go-kit/log"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/sampler"
)

const smokeXML = `<?xml version="1.0" encoding="UTF-8"?>
<uniprot>
<entry>
  <accession>Q9TEST</accession>
  <name>TEST_HUMAN</name>
  <gene><name type="primary">TST</name></gene>
  <comment type="alternative products">
    <isoform>
      <id>Q9TEST-1</id>
      <sequence type="displayed"/>
    </isoform>
    <isoform>
      <id>ISO1</id>
      <sequence ref="Q16670-2"/>
    </isoform>
  </comment>
  <proteinExistence type="evidence at protein level"/>
  <feature type="modified residue" description="Phosphothreonine" evidence="1">
    <location><position position="2"/></location>
  </feature>
  <evidence key="1" type="ECO:0000269"/>
  <sequence>MTAK</sequence>
</entry>
<entry>
  <accession>P00001</accession>
  <sequence>MSTN</sequence>
</entry>
</uniprot>
`

func testOptions() Options {
	return Options{
		BatchSize:       2,
		ChannelCapacity: 4,
		BufferSize:      64 * 1024,
		ZstdLevel:       3,
		MaxRowGroupSize: 1000,
	}
}

func TestRunFileEndToEnd(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	in := filepath.Join(dir, "test.xml")
	out := filepath.Join(dir, "test.parquet")
	require.NoError(t, os.WriteFile(in, []byte(smokeXML), 0o644))

	// The sidecar resolves Q9TEST-1 but not Q16670-2.
	sidecar := map[string]string{"Q9TEST-1": "MTAK"}

	m := metrics.New()
	stats := sampler.NewChannelStats(4)
	require.NoError(t, RunFile(in, out, testOptions(), sidecar, m, stats, kitlog.NewNopLogger()))

	rows, err := parquet.ReadFile[Row](out)
	require.NoError(t, err)

	// Entry 1 expands to canonical + one resolved isoform; the isoform
	// missing from the sidecar is skipped. Entry 2 is canonical only.
	require.Len(t, rows, 3)
	assert.Equal(t, "Q9TEST", rows[0].ID)
	assert.Equal(t, "Q9TEST-1", rows[1].ID)
	assert.Equal(t, "Q9TEST", rows[1].ParentID)
	assert.Equal(t, "P00001", rows[2].ID)

	// The verified PTM site survives on both rows of the entry.
	require.Len(t, rows[0].PtmSites, 1)
	assert.Equal(t, int32(2), rows[0].PtmSites[0].SiteIndex)
	assert.Equal(t, "T", rows[0].PtmSites[0].SiteAA)
	require.Len(t, rows[1].PtmSites, 1)
	require.Len(t, rows[1].PtmSites[0].Modifications, 1)
	assert.Equal(t, int32(1), rows[1].PtmSites[0].Modifications[0].ModType)
	assert.Equal(t, float32(1.0), rows[1].PtmSites[0].Modifications[0].ConfidenceScore)

	// Sequence columns round-trip byte for byte.
	assert.Equal(t, "MTAK", rows[0].Sequence)
	assert.Equal(t, "MSTN", rows[2].Sequence)

	assert.Equal(t, uint64(2), m.EntriesParsed.Load())
	assert.Greater(t, m.BatchesWritten.Load(), uint64(0))
	assert.Greater(t, m.BytesRead.Load(), uint64(0))
	assert.Greater(t, m.BytesWritten.Load(), uint64(0))
}

func TestRunFileGzipInput(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	in := filepath.Join(dir, "test.xml.gz")
	out := filepath.Join(dir, "test.parquet")

	f, err := os.Create(in)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(smokeXML))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	m := metrics.New()
	sidecar := map[string]string{"Q9TEST-1": "MTAK"}
	require.NoError(t, RunFile(in, out, testOptions(), sidecar, m, nil, kitlog.NewNopLogger()))

	rows, err := parquet.ReadFile[Row](out)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRunFileMalformedInputFails(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	in := filepath.Join(dir, "bad.xml")
	out := filepath.Join(dir, "bad.parquet")
	require.NoError(t, os.WriteFile(in, []byte("<uniprot><entry><accession>P1"), 0o644))

	err := RunFile(in, out, testOptions(), nil, metrics.New(), nil, kitlog.NewNopLogger())
	require.Error(t, err)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "a.parquet", OutputName("a.xml"))
	assert.Equal(t, "b.parquet", OutputName("b.xml.gz"))
	assert.Equal(t, "c.parquet", OutputName("c"))
}

func TestRunSwarm(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.xml"), []byte(smokeXML), 0o644))

	f, err := os.Create(filepath.Join(inDir, "b.xml.gz"))
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(smokeXML))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	// Ignored: not an input extension.
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("x"), 0o644))

	global := metrics.New()
	sidecar := map[string]string{"Q9TEST-1": "MTAK"}
	require.NoError(t, RunSwarm(inDir, outDir, testOptions(), sidecar, global, nil, kitlog.NewNopLogger()))

	aRows, err := parquet.ReadFile[Row](filepath.Join(outDir, "a.parquet"))
	require.NoError(t, err)
	bRows, err := parquet.ReadFile[Row](filepath.Join(outDir, "b.parquet"))
	require.NoError(t, err)
	assert.Len(t, aRows, 3)
	assert.Len(t, bRows, 3)

	// Global counters are the sum of the per-file locals.
	assert.Equal(t, uint64(4), global.EntriesParsed.Load())
}

func TestRunSwarmFailureIsolation(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.xml"), []byte("<uniprot><entry>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b.xml"), []byte(smokeXML), 0o644))

	global := metrics.New()
	sidecar := map[string]string{"Q9TEST-1": "MTAK"}
	err := RunSwarm(inDir, outDir, testOptions(), sidecar, global, nil, kitlog.NewNopLogger())

	// The failed file surfaces in the summary error...
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.xml")

	// ...but the healthy file was still written.
	bRows, readErr := parquet.ReadFile[Row](filepath.Join(outDir, "b.parquet"))
	require.NoError(t, readErr)
	assert.Len(t, bRows, 3)
}

func TestRunSwarmEmptyDirectory(t *testing.T) {
	err := RunSwarm(t.TempDir(), t.TempDir(), testOptions(), nil, metrics.New(), nil, kitlog.NewNopLogger())
	require.Error(t, err)
}
