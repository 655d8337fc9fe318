// Command etl converts UniProtKB/Swiss-Prot XML into columnar parquet. A
// file input runs a single pipeline; a directory input fans out one pipeline
// per file across a worker pool.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/proteinworks/uniparquet/pkg/config"
	"github.com/proteinworks/uniparquet/pkg/fasta"
	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/pipeline"
	"github.com/proteinworks/uniparquet/pkg/report"
	"github.com/proteinworks/uniparquet/pkg/runs"
	"github.com/proteinworks/uniparquet/pkg/sampler"
	"github.com/proteinworks/uniparquet/pkg/util/log"
)

var cli struct {
	Input        string `short:"i" help:"Input UniProt XML file (.xml or .xml.gz) or a directory of them."`
	Output       string `short:"o" help:"Output parquet file, or output directory for directory input."`
	Config       string `short:"c" default:"config.yaml" help:"Path to the YAML configuration."`
	BatchSize    int    `short:"b" name:"batch-size" help:"Rows per record batch."`
	FastaSidecar string `name:"fasta-sidecar" help:"Isoform FASTA sidecar; required when entries carry isoforms."`
	RunID        string `name:"run-id" help:"Deterministic run directory name."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("etl"),
		kong.Description("High-throughput ETL for UniProtKB/Swiss-Prot XML to Apache Parquet."),
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	settings, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	settings.Apply(config.Overrides{
		InputPath:        cli.Input,
		OutputPath:       cli.Output,
		BatchSize:        cli.BatchSize,
		FastaSidecarPath: cli.FastaSidecar,
	})

	log.InitLogger(settings.Logging.LogLevel)
	logger := log.Logger

	if err := settings.Validate(); err != nil {
		return err
	}

	var runCtx *runs.Context
	if settings.Runs.RunsDir != "" {
		if runCtx, err = runs.New(settings.Runs.RunsDir, cli.RunID); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "run directory created", "run_id", runCtx.RunID, "dir", runCtx.Dir)

		if buf, err := yaml.Marshal(settings); err == nil {
			if err := os.WriteFile(runCtx.ConfigSnapshotPath(), buf, 0o644); err != nil {
				level.Warn(logger).Log("msg", "failed to write config snapshot", "err", err)
			}
		}
	}

	var sidecar map[string]string
	if settings.Storage.FastaSidecarPath != "" {
		if sidecar, err = fasta.LoadMap(settings.Storage.FastaSidecarPath); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "fasta sidecar loaded", "path", settings.Storage.FastaSidecarPath, "isoforms", len(sidecar))
	}

	m := metrics.New()
	prometheus.MustRegister(m)

	stats := sampler.NewChannelStats(settings.Performance.ChannelCapacity)
	smp := sampler.Start(stats, time.Second)

	stopProgress := startProgressLogger(m, settings.Logging.MetricsIntervalSecs)

	start := time.Now().UTC()
	runErr := execute(settings, sidecar, m, stats, logger)

	stopProgress()
	smp.Stop()

	printSummary(m)

	if runCtx != nil {
		rep := report.Generate(runCtx.RunID, start, m, smp.HighWaterMarks(), runErr)
		if err := rep.SaveYAML(runCtx.ReportPath()); err != nil {
			level.Warn(logger).Log("msg", "failed to write run report", "err", err)
		}
		if settings.Runs.KeepRuns > 0 {
			if err := runs.Cleanup(settings.Runs.RunsDir, settings.Runs.KeepRuns); err != nil {
				level.Warn(logger).Log("msg", "run cleanup failed", "err", err)
			}
		}
	}

	return runErr
}

func execute(settings *config.Settings, sidecar map[string]string, m *metrics.Metrics, stats *sampler.ChannelStats, logger kitlog.Logger) error {
	opts := pipeline.Options{
		BatchSize:       settings.Performance.BatchSize,
		ChannelCapacity: settings.Performance.ChannelCapacity,
		BufferSize:      settings.Performance.BufferSize,
		ZstdLevel:       settings.Performance.ZstdLevel,
		MaxRowGroupSize: settings.Performance.MaxRowGroupSize,
	}

	fi, err := os.Stat(settings.Storage.InputPath)
	if err != nil {
		return err
	}

	if fi.IsDir() {
		return pipeline.RunSwarm(settings.Storage.InputPath, settings.Storage.OutputPath, opts, sidecar, m, stats, logger)
	}

	out := settings.Storage.OutputPath
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return pipeline.RunFile(settings.Storage.InputPath, out, opts, sidecar, m, stats, logger)
}

func startProgressLogger(m *metrics.Metrics, intervalSecs int) func() {
	if intervalSecs <= 0 {
		return func() {}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Duration(intervalSecs) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				elapsed := m.Elapsed().Seconds()
				entries := m.EntriesParsed.Load()
				rate := float64(entries) / elapsed
				level.Info(log.Logger).Log(
					"msg", "progress",
					"entries", entries,
					"entries_per_sec", fmt.Sprintf("%.0f", rate),
					"read", humanize.Bytes(m.BytesRead.Load()),
				)
			}
		}
	}()
	return func() {
		close(stop)
		<-done
	}
}

func printSummary(m *metrics.Metrics) {
	elapsed := m.Elapsed().Seconds()
	entries := m.EntriesParsed.Load()

	var rate float64
	if elapsed > 0 {
		rate = float64(entries) / elapsed
	}

	fmt.Fprintln(os.Stderr, "\n=== ETL Summary ===")
	fmt.Fprintf(os.Stderr, "Entries parsed:  %d\n", entries)
	fmt.Fprintf(os.Stderr, "Batches written: %d\n", m.BatchesWritten.Load())
	fmt.Fprintf(os.Stderr, "Features:        %d\n", m.FeaturesCount.Load())
	fmt.Fprintf(os.Stderr, "Isoforms:        %d\n", m.IsoformsCount.Load())
	fmt.Fprintf(os.Stderr, "PTMs attempted:  %d\n", m.PtmAttempted.Load())
	fmt.Fprintf(os.Stderr, "PTMs mapped:     %d\n", m.PtmMapped.Load())
	fmt.Fprintf(os.Stderr, "PTMs failed:     %d\n", m.PtmFailed.Load())
	fmt.Fprintf(os.Stderr, "  - canonical_oob:    %d\n", m.PtmFailures.CanonicalOOB.Load())
	fmt.Fprintf(os.Stderr, "  - vsp_deletion:     %d\n", m.PtmFailures.VspDeletion.Load())
	fmt.Fprintf(os.Stderr, "  - mapper_oob:       %d\n", m.PtmFailures.MapperOOB.Load())
	fmt.Fprintf(os.Stderr, "  - vsp_unresolvable: %d\n", m.PtmFailures.VspUnresolvable.Load())
	fmt.Fprintf(os.Stderr, "  - isoform_oob:      %d\n", m.PtmFailures.IsoformOOB.Load())
	fmt.Fprintf(os.Stderr, "  - residue_mismatch: %d\n", m.PtmFailures.ResidueMismatch.Load())
	fmt.Fprintf(os.Stderr, "Time elapsed:    %.2fs\n", elapsed)
	fmt.Fprintf(os.Stderr, "Throughput:      %.0f entries/sec\n", rate)
	fmt.Fprintf(os.Stderr, "Bytes read:      %s\n", humanize.Bytes(m.BytesRead.Load()))
	fmt.Fprintf(os.Stderr, "Bytes written:   %s\n", humanize.Bytes(m.BytesWritten.Load()))
}
