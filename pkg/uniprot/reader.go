package uniprot

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"

	"github.com/proteinworks/uniparquet/pkg/metrics"
)

// Reader is a buffered byte source for one input file. Gzip compression is
// detected by the .gz extension and decompressed transparently; bytes
// consumed from the underlying file are reported to the recorder.
type Reader struct {
	io.Reader
	closers []io.Closer
}

func (r *Reader) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewFileReader opens path for streaming. bufferSize is the read-buffer
// hint; rec receives the consumed (compressed) byte counts.
func NewFileReader(path string, bufferSize int, rec metrics.Recorder) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	var src io.Reader = &countingReader{r: f, rec: rec}
	closers := []io.Closer{f}

	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(src)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "opening gzip stream %s", path)
		}
		src = gz
		closers = append(closers, gz)
	}

	return &Reader{
		Reader:  bufio.NewReaderSize(src, bufferSize),
		closers: closers,
	}, nil
}

type countingReader struct {
	r   io.Reader
	rec metrics.Recorder
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.rec.AddBytesRead(uint64(n))
	}
	return n, err
}
