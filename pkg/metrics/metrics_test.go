package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalMergeIsAdditive(t *testing.T) {
	m := New()

	l := &Local{}
	l.IncEntries()
	l.IncEntries()
	l.IncBatches()
	l.AddBytesRead(100)
	l.AddBytesWritten(50)
	l.AddFeatures(7)
	l.AddIsoforms(3)
	l.AddPtmAttempted(5)
	l.AddPtmMapped(2)
	l.PtmFail(FailResidueMismatch)
	l.PtmFail(FailResidueMismatch)
	l.PtmFail(FailIsoformOOB)

	l.MergeInto(m)
	l.MergeInto(m)

	assert.Equal(t, uint64(4), m.EntriesParsed.Load())
	assert.Equal(t, uint64(2), m.BatchesWritten.Load())
	assert.Equal(t, uint64(200), m.BytesRead.Load())
	assert.Equal(t, uint64(100), m.BytesWritten.Load())
	assert.Equal(t, uint64(14), m.FeaturesCount.Load())
	assert.Equal(t, uint64(6), m.IsoformsCount.Load())
	assert.Equal(t, uint64(10), m.PtmAttempted.Load())
	assert.Equal(t, uint64(4), m.PtmMapped.Load())
	assert.Equal(t, uint64(6), m.PtmFailed.Load())
	assert.Equal(t, uint64(4), m.PtmFailures.ResidueMismatch.Load())
	assert.Equal(t, uint64(2), m.PtmFailures.IsoformOOB.Load())
	assert.Equal(t, uint64(0), m.PtmFailures.CanonicalOOB.Load())
}

func TestConcurrentMerges(t *testing.T) {
	m := New()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := &Local{}
			for j := 0; j < 1000; j++ {
				l.IncEntries()
			}
			l.MergeInto(m)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(workers*1000), m.EntriesParsed.Load())
}

func TestPtmFailCodesRouteToCounters(t *testing.T) {
	m := New()
	codes := []FailureCode{
		FailCanonicalOOB, FailVspDeletion, FailMapperOOB,
		FailVspUnresolvable, FailIsoformOOB, FailResidueMismatch,
	}
	for _, c := range codes {
		m.PtmFail(c)
	}

	assert.Equal(t, uint64(len(codes)), m.PtmFailed.Load())
	assert.Equal(t, uint64(1), m.PtmFailures.CanonicalOOB.Load())
	assert.Equal(t, uint64(1), m.PtmFailures.VspDeletion.Load())
	assert.Equal(t, uint64(1), m.PtmFailures.MapperOOB.Load())
	assert.Equal(t, uint64(1), m.PtmFailures.VspUnresolvable.Load())
	assert.Equal(t, uint64(1), m.PtmFailures.IsoformOOB.Load())
	assert.Equal(t, uint64(1), m.PtmFailures.ResidueMismatch.Load())
}

func TestMetricsRegistersAsCollector(t *testing.T) {
	m := New()
	m.IncEntries()

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	found := false
	for _, f := range families {
		if f.GetName() == "uniparquet_entries_parsed_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, float64(1), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
