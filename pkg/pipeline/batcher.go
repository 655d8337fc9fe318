package pipeline

import (
	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/sampler"
)

// Batch is an immutable snapshot of accumulated rows, handed to the writer
// over the bounded channel.
type Batch struct {
	Rows []Row
}

// MemorySize is the in-memory footprint used for the bytes-written counter.
func (b *Batch) MemorySize() uint64 {
	var n uint64
	for i := range b.Rows {
		n += b.Rows[i].MemorySize()
	}
	return n
}

// Batcher accumulates rows until batchSize are resident, then snapshots them
// into a Batch on the bounded channel. The send blocks when the writer is
// behind; that is the pipeline's backpressure.
type Batcher struct {
	rows      []Row
	batchSize int
	out       chan Batch
	rec       metrics.Recorder
	occupancy *sampler.ChannelStats
}

// NewBatcher wires the batcher to the writer channel. stats may be nil;
// when set, the channel occupancy is sampled after every enqueued batch.
func NewBatcher(out chan Batch, batchSize int, rec metrics.Recorder, stats *sampler.ChannelStats) *Batcher {
	return &Batcher{
		rows:      make([]Row, 0, batchSize),
		batchSize: batchSize,
		out:       out,
		rec:       rec,
		occupancy: stats,
	}
}

// Add appends one row, flushing when the batch boundary is reached.
func (b *Batcher) Add(row Row) {
	b.rows = append(b.rows, row)
	if len(b.rows) >= b.batchSize {
		b.Flush()
	}
}

// Flush snapshots the resident rows into a batch and resets the builders
// for reuse. Empty flushes are no-ops.
func (b *Batcher) Flush() {
	if len(b.rows) == 0 {
		return
	}

	batch := Batch{Rows: b.rows}
	b.rows = make([]Row, 0, b.batchSize)

	b.out <- batch
	b.rec.IncBatches()

	if b.occupancy != nil {
		b.occupancy.Record(len(b.out))
	}
}

// Finish flushes any residual rows and closes the channel, signalling the
// writer to drain and finalize.
func (b *Batcher) Finish() {
	b.Flush()
	close(b.out)
}

// Len reports the resident row count.
func (b *Batcher) Len() int { return len(b.rows) }
