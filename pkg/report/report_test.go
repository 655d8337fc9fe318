package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/sampler"
)

func TestGatherEnvironment(t *testing.T) {
	env := GatherEnvironment()

	assert.NotEmpty(t, env.OS)
	assert.NotEmpty(t, env.CPUModel)
	assert.Greater(t, env.CPUCores, 0)
	assert.Greater(t, env.TotalMemoryGB, 0.0)
}

func TestGenerateAndSave(t *testing.T) {
	m := metrics.New()
	m.IncEntries()
	m.IncBatches()
	m.AddBytesRead(1024)
	m.AddPtmAttempted(3)
	m.AddPtmMapped(2)
	m.PtmFail(metrics.FailResidueMismatch)

	hwm := sampler.HighWaterMarks{
		PeakRSSBytes:       64 << 20,
		PeakCPUPercent:     87.5,
		AvgChannelFullness: 0.95,
	}

	r := Generate("run_test", time.Now().UTC(), m, hwm, nil)

	assert.Equal(t, "run_test", r.RunID)
	assert.Equal(t, "success", r.Status)
	assert.Equal(t, uint64(1), r.Performance.EntriesParsed)
	assert.Equal(t, uint64(1), r.Performance.PtmFailed)
	assert.Equal(t, uint64(1), r.Performance.PtmFailedResidueMismatch)
	assert.Equal(t, 64.0, r.Resources.PeakRSSMB)
	assert.InDelta(t, 95.0, r.Resources.AvgChannelFullnessPct, 0.001)
	assert.Equal(t, "Writer-bound", r.Bottleneck.Diagnosis)
	assert.Equal(t, "high", r.Bottleneck.Confidence)

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, r.SaveYAML(path))

	buf, err := os.ReadFile(path)
	require.NoError(t, err)

	var back Report
	require.NoError(t, yaml.Unmarshal(buf, &back))
	assert.Equal(t, r.RunID, back.RunID)
	assert.Equal(t, r.Performance.EntriesParsed, back.Performance.EntriesParsed)
	assert.Equal(t, r.Bottleneck.Diagnosis, back.Bottleneck.Diagnosis)
}

func TestGenerateErrorStatus(t *testing.T) {
	r := Generate("run_x", time.Now(), metrics.New(), sampler.HighWaterMarks{}, assert.AnError)

	assert.Equal(t, "error", r.Status)
	assert.NotEmpty(t, r.Error)
	// An idle channel reads as parser-bound.
	assert.Equal(t, "Parser-bound", r.Bottleneck.Diagnosis)
}
