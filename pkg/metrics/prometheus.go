package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	descEntries  = prometheus.NewDesc("uniparquet_entries_parsed_total", "Entries parsed across all files.", nil, nil)
	descBatches  = prometheus.NewDesc("uniparquet_batches_written_total", "Record batches handed to the parquet writer.", nil, nil)
	descRead     = prometheus.NewDesc("uniparquet_bytes_read_total", "Bytes consumed from input files.", nil, nil)
	descWritten  = prometheus.NewDesc("uniparquet_bytes_written_total", "In-memory bytes of batches written.", nil, nil)
	descFeatures = prometheus.NewDesc("uniparquet_features_total", "Features extracted.", nil, nil)
	descIsoforms = prometheus.NewDesc("uniparquet_isoforms_total", "Isoforms parsed.", nil, nil)
	descPtm      = prometheus.NewDesc("uniparquet_ptm_total", "PTM remap outcomes.", []string{"outcome"}, nil)
	descPtmFail  = prometheus.NewDesc("uniparquet_ptm_failures_total", "PTM verification failures by code.", []string{"code"}, nil)
)

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- descEntries
	ch <- descBatches
	ch <- descRead
	ch <- descWritten
	ch <- descFeatures
	ch <- descIsoforms
	ch <- descPtm
	ch <- descPtmFail
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(descEntries, m.EntriesParsed.Load())
	counter(descBatches, m.BatchesWritten.Load())
	counter(descRead, m.BytesRead.Load())
	counter(descWritten, m.BytesWritten.Load())
	counter(descFeatures, m.FeaturesCount.Load())
	counter(descIsoforms, m.IsoformsCount.Load())
	counter(descPtm, m.PtmAttempted.Load(), "attempted")
	counter(descPtm, m.PtmMapped.Load(), "mapped")
	counter(descPtm, m.PtmFailed.Load(), "failed")
	counter(descPtmFail, m.PtmFailures.CanonicalOOB.Load(), string(FailCanonicalOOB))
	counter(descPtmFail, m.PtmFailures.VspDeletion.Load(), string(FailVspDeletion))
	counter(descPtmFail, m.PtmFailures.MapperOOB.Load(), string(FailMapperOOB))
	counter(descPtmFail, m.PtmFailures.VspUnresolvable.Load(), string(FailVspUnresolvable))
	counter(descPtmFail, m.PtmFailures.IsoformOOB.Load(), string(FailIsoformOOB))
	counter(descPtmFail, m.PtmFailures.ResidueMismatch.Load(), string(FailResidueMismatch))
}
