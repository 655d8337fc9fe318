// Package pipeline wires the per-file flow: reader -> tag handlers ->
// transformer -> batcher -> bounded queue -> parquet writer. The parser runs
// in the calling goroutine, the writer in a dedicated one; the bounded
// channel between them is the only synchronization.
package pipeline

import (
	kitlog "github.com/go-kit/log"

	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/sampler"
	"github.com/proteinworks/uniparquet/pkg/uniprot"
)

// Options are the per-file pipeline knobs, resolved from configuration.
type Options struct {
	BatchSize       int
	ChannelCapacity int
	BufferSize      int
	ZstdLevel       int
	MaxRowGroupSize int
}

// RunFile processes one input file into one parquet output. Sidecar may be
// nil when no entry carries isoforms. The first fatal error from either the
// parser or the writer is returned; mapping and verification failures only
// surface as counters and diagnostics.
func RunFile(inputPath, outputPath string, opts Options, sidecar map[string]string, rec metrics.Recorder, stats *sampler.ChannelStats, logger kitlog.Logger) error {
	reader, err := uniprot.NewFileReader(inputPath, opts.BufferSize, rec)
	if err != nil {
		return err
	}
	defer reader.Close()

	batches := make(chan Batch, opts.ChannelCapacity)
	writerDone := make(chan error, 1)
	go func() {
		writerDone <- WriteBatches(outputPath, batches, WriterOptions{
			ZstdLevel:       opts.ZstdLevel,
			MaxRowGroupSize: opts.MaxRowGroupSize,
		}, rec, logger)
	}()

	transformer := NewTransformer(rec, logger, sidecar)
	batcher := NewBatcher(batches, opts.BatchSize, rec, stats)

	parser := uniprot.NewParser()
	parseErr := parser.Parse(reader, func(e *uniprot.ParsedEntry) error {
		rows, err := transformer.Transform(e)
		if err != nil {
			return err
		}
		for i := range rows {
			batcher.Add(BuildRow(&rows[i], rec, logger))
		}
		rec.IncEntries()
		return nil
	})

	if parseErr != nil {
		// Abort: close without flushing the residual; the writer drains and
		// finalizes what it already has, but the file is not claimed.
		close(batches)
		<-writerDone
		return parseErr
	}

	batcher.Finish()
	return <-writerDone
}
