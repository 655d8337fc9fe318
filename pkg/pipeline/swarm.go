package pipeline

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/sampler"
)

// RunSwarm fans the *.xml / *.xml.gz files of inputDir out across a worker
// pool. Each worker runs a full pipeline per file, accumulating into a
// private local counter that is merged into the global metrics exactly once,
// when its file completes. A failed file is recorded and does not stop the
// remaining files; the combined error is returned at the end.
func RunSwarm(inputDir, outputDir string, opts Options, sidecar map[string]string, global *metrics.Metrics, stats *sampler.ChannelStats, logger kitlog.Logger) error {
	files, err := listInputFiles(inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no .xml or .xml.gz files in %s", inputDir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", outputDir)
	}

	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}

	level.Info(logger).Log("msg", "starting swarm", "files", len(files), "workers", workers)

	jobs := make(chan string)
	errs := make([]error, len(files))
	index := make(map[string]int, len(files))
	for i, f := range files {
		index[f] = i
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				local := &metrics.Local{}
				out := filepath.Join(outputDir, OutputName(filepath.Base(file)))

				err := RunFile(file, out, opts, sidecar, local, stats, kitlog.With(logger, "file", filepath.Base(file)))
				local.MergeInto(global)

				if err != nil {
					level.Error(logger).Log("msg", "file failed", "file", file, "err", err)
					errs[index[file]] = errors.Wrapf(err, "processing %s", file)
					continue
				}
				level.Info(logger).Log("msg", "file complete", "file", file, "output", out)
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	return multierr.Combine(errs...)
}

// OutputName derives the parquet file name from an input name by stripping
// .gz then .xml and appending .parquet.
func OutputName(name string) string {
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".xml")
	return name + ".parquet"
}

func listInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading input directory %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".xml.gz") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}
