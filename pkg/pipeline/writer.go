package pipeline

import (
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	zstdlib "github.com/klauspost/compress/zstd"
	"github.com/parquet-go/parquet-go"
	pqzstd "github.com/parquet-go/parquet-go/compress/zstd"
	"github.com/pkg/errors"

	"github.com/proteinworks/uniparquet/pkg/metrics"
)

// WriterOptions carries the parquet tuning knobs from configuration.
type WriterOptions struct {
	ZstdLevel       int
	MaxRowGroupSize int
}

// WriteBatches drains the channel in FIFO order and writes ZSTD-compressed
// parquet to path. The channel close is the exit signal. On an internal
// writer error the channel keeps draining so the parser is never blocked;
// the first error is returned after the drain.
func WriteBatches(path string, batches <-chan Batch, opts WriterOptions, rec metrics.Recorder, logger kitlog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		// Unblock the parser before reporting.
		for range batches {
		}
		return errors.Wrapf(err, "creating output %s", path)
	}

	w := parquet.NewGenericWriter[Row](f,
		parquet.Compression(&pqzstd.Codec{
			Level: pqzstd.Level(zstdlib.EncoderLevelFromZstd(opts.ZstdLevel)),
		}),
		parquet.MaxRowsPerRowGroup(int64(opts.MaxRowGroupSize)),
		parquet.DataPageVersion(2),
	)

	var firstErr error
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	for batch := range batches {
		if firstErr != nil {
			continue
		}
		if _, err := w.Write(batch.Rows); err != nil {
			fail(errors.Wrap(err, "writing parquet batch"))
			continue
		}
		rec.AddBytesWritten(batch.MemorySize())
	}

	if firstErr == nil {
		if err := w.Close(); err != nil {
			fail(errors.Wrap(err, "closing parquet writer"))
		}
	}
	if err := f.Close(); err != nil {
		fail(errors.Wrapf(err, "closing output %s", path))
	}

	if firstErr != nil {
		return firstErr
	}

	if fi, err := os.Stat(path); err == nil {
		level.Info(logger).Log("msg", "parquet file written", "path", path, "bytes", fi.Size())
	}
	return nil
}
