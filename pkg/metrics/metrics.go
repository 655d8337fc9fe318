// Package metrics holds the pipeline counters.
//
// Two tiers: the shared Metrics value carries monotonic atomic counters and
// the run clock; Local is a plain additive snapshot owned by a single worker
// and folded into the global counters once, when the worker's file is done.
package metrics

import (
	"time"

	"go.uber.org/atomic"
)

// Metrics is the global counter set. It is cheap to copy by pointer and safe
// to share across goroutines; all counters are atomics, read without further
// synchronization, and are eventually correct after pipeline join.
type Metrics struct {
	start time.Time

	EntriesParsed  atomic.Uint64
	BatchesWritten atomic.Uint64
	BytesRead      atomic.Uint64
	BytesWritten   atomic.Uint64
	FeaturesCount  atomic.Uint64
	IsoformsCount  atomic.Uint64

	PtmAttempted atomic.Uint64
	PtmMapped    atomic.Uint64
	PtmFailed    atomic.Uint64

	PtmFailures PtmFailures
}

// PtmFailures breaks PtmFailed down by failure code.
type PtmFailures struct {
	CanonicalOOB    atomic.Uint64
	VspDeletion     atomic.Uint64
	MapperOOB       atomic.Uint64
	VspUnresolvable atomic.Uint64
	IsoformOOB      atomic.Uint64
	ResidueMismatch atomic.Uint64
}

func New() *Metrics {
	return &Metrics{start: time.Now()}
}

// Elapsed returns wall time since the metrics were created.
func (m *Metrics) Elapsed() time.Duration {
	return time.Since(m.start)
}

// Local is a zero-contention per-worker snapshot. It is not safe for
// concurrent use; each worker owns exactly one.
type Local struct {
	EntriesParsed  uint64
	BatchesWritten uint64
	BytesRead      uint64
	BytesWritten   uint64
	FeaturesCount  uint64
	IsoformsCount  uint64

	PtmAttempted uint64
	PtmMapped    uint64
	PtmFailed    uint64

	PtmCanonicalOOB    uint64
	PtmVspDeletion     uint64
	PtmMapperOOB       uint64
	PtmVspUnresolvable uint64
	PtmIsoformOOB      uint64
	PtmResidueMismatch uint64
}

// MergeInto folds the snapshot into the global counters, one addition per
// non-zero field.
func (l *Local) MergeInto(m *Metrics) {
	add := func(c *atomic.Uint64, v uint64) {
		if v > 0 {
			c.Add(v)
		}
	}
	add(&m.EntriesParsed, l.EntriesParsed)
	add(&m.BatchesWritten, l.BatchesWritten)
	add(&m.BytesRead, l.BytesRead)
	add(&m.BytesWritten, l.BytesWritten)
	add(&m.FeaturesCount, l.FeaturesCount)
	add(&m.IsoformsCount, l.IsoformsCount)
	add(&m.PtmAttempted, l.PtmAttempted)
	add(&m.PtmMapped, l.PtmMapped)
	add(&m.PtmFailed, l.PtmFailed)
	add(&m.PtmFailures.CanonicalOOB, l.PtmCanonicalOOB)
	add(&m.PtmFailures.VspDeletion, l.PtmVspDeletion)
	add(&m.PtmFailures.MapperOOB, l.PtmMapperOOB)
	add(&m.PtmFailures.VspUnresolvable, l.PtmVspUnresolvable)
	add(&m.PtmFailures.IsoformOOB, l.PtmIsoformOOB)
	add(&m.PtmFailures.ResidueMismatch, l.PtmResidueMismatch)
}

// Recorder is the counting surface the pipeline writes through. Metrics
// implements it for single-file runs; Local implements it for swarm workers.
type Recorder interface {
	IncEntries()
	IncBatches()
	AddBytesRead(n uint64)
	AddBytesWritten(n uint64)
	AddFeatures(n uint64)
	AddIsoforms(n uint64)
	AddPtmAttempted(n uint64)
	AddPtmMapped(n uint64)
	PtmFail(code FailureCode)
}

// FailureCode identifies a PTM verification failure for counting and
// diagnostics.
type FailureCode string

const (
	FailCanonicalOOB    FailureCode = "CANONICAL_OOB"
	FailVspDeletion     FailureCode = "VSP_DELETION_EVENT"
	FailMapperOOB       FailureCode = "MAPPER_OOB"
	FailVspUnresolvable FailureCode = "VSP_UNRESOLVABLE"
	FailIsoformOOB      FailureCode = "ISOFORM_OOB"
	FailResidueMismatch FailureCode = "RESIDUE_MISMATCH"
)

func (m *Metrics) IncEntries()              { m.EntriesParsed.Add(1) }
func (m *Metrics) IncBatches()              { m.BatchesWritten.Add(1) }
func (m *Metrics) AddBytesRead(n uint64)    { m.BytesRead.Add(n) }
func (m *Metrics) AddBytesWritten(n uint64) { m.BytesWritten.Add(n) }
func (m *Metrics) AddFeatures(n uint64)     { m.FeaturesCount.Add(n) }
func (m *Metrics) AddIsoforms(n uint64)     { m.IsoformsCount.Add(n) }
func (m *Metrics) AddPtmAttempted(n uint64) { m.PtmAttempted.Add(n) }
func (m *Metrics) AddPtmMapped(n uint64)    { m.PtmMapped.Add(n) }

func (m *Metrics) PtmFail(code FailureCode) {
	m.PtmFailed.Add(1)
	switch code {
	case FailCanonicalOOB:
		m.PtmFailures.CanonicalOOB.Add(1)
	case FailVspDeletion:
		m.PtmFailures.VspDeletion.Add(1)
	case FailMapperOOB:
		m.PtmFailures.MapperOOB.Add(1)
	case FailVspUnresolvable:
		m.PtmFailures.VspUnresolvable.Add(1)
	case FailIsoformOOB:
		m.PtmFailures.IsoformOOB.Add(1)
	case FailResidueMismatch:
		m.PtmFailures.ResidueMismatch.Add(1)
	}
}

func (l *Local) IncEntries()              { l.EntriesParsed++ }
func (l *Local) IncBatches()              { l.BatchesWritten++ }
func (l *Local) AddBytesRead(n uint64)    { l.BytesRead += n }
func (l *Local) AddBytesWritten(n uint64) { l.BytesWritten += n }
func (l *Local) AddFeatures(n uint64)     { l.FeaturesCount += n }
func (l *Local) AddIsoforms(n uint64)     { l.IsoformsCount += n }
func (l *Local) AddPtmAttempted(n uint64) { l.PtmAttempted += n }
func (l *Local) AddPtmMapped(n uint64)    { l.PtmMapped += n }

func (l *Local) PtmFail(code FailureCode) {
	l.PtmFailed++
	switch code {
	case FailCanonicalOOB:
		l.PtmCanonicalOOB++
	case FailVspDeletion:
		l.PtmVspDeletion++
	case FailMapperOOB:
		l.PtmMapperOOB++
	case FailVspUnresolvable:
		l.PtmVspUnresolvable++
	case FailIsoformOOB:
		l.PtmIsoformOOB++
	case FailResidueMismatch:
		l.PtmResidueMismatch++
	}
}
