// Package report persists the per-run YAML report: identity, environment,
// performance counters, resource high-water marks, and the bottleneck
// verdict.
package report

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/proteinworks/uniparquet/pkg/metrics"
	"github.com/proteinworks/uniparquet/pkg/sampler"
)

type Report struct {
	RunID        string    `yaml:"run_id"`
	Timestamp    time.Time `yaml:"timestamp"`
	DurationSecs float64   `yaml:"duration_secs"`
	Status       string    `yaml:"status"`
	Error        string    `yaml:"error,omitempty"`

	Environment Environment `yaml:"environment"`
	Performance Performance `yaml:"performance"`
	Resources   Resources   `yaml:"resources"`
	Bottleneck  Bottleneck  `yaml:"bottleneck"`
}

type Environment struct {
	OS            string  `yaml:"os"`
	KernelVersion string  `yaml:"kernel_version,omitempty"`
	CPUModel      string  `yaml:"cpu_model"`
	CPUCores      int     `yaml:"cpu_cores"`
	TotalMemoryGB float64 `yaml:"total_memory_gb"`
}

type Performance struct {
	EntriesParsed  uint64  `yaml:"entries_parsed"`
	EntriesPerSec  float64 `yaml:"entries_per_sec"`
	BatchesWritten uint64  `yaml:"batches_written"`
	Features       uint64  `yaml:"features_extracted"`
	Isoforms       uint64  `yaml:"isoforms_extracted"`

	PtmAttempted uint64 `yaml:"ptm_attempted"`
	PtmMapped    uint64 `yaml:"ptm_mapped"`
	PtmFailed    uint64 `yaml:"ptm_failed"`

	PtmFailedCanonicalOOB    uint64 `yaml:"ptm_failed_canonical_oob"`
	PtmFailedVspDeletion     uint64 `yaml:"ptm_failed_vsp_deletion"`
	PtmFailedMapperOOB       uint64 `yaml:"ptm_failed_mapper_oob"`
	PtmFailedVspUnresolvable uint64 `yaml:"ptm_failed_vsp_unresolvable"`
	PtmFailedIsoformOOB      uint64 `yaml:"ptm_failed_isoform_oob"`
	PtmFailedResidueMismatch uint64 `yaml:"ptm_failed_residue_mismatch"`

	BytesRead    uint64  `yaml:"bytes_read"`
	BytesWritten uint64  `yaml:"bytes_written"`
	BytesPerSec  float64 `yaml:"bytes_per_sec"`
}

type Resources struct {
	PeakRSSMB             float64 `yaml:"peak_rss_mb"`
	PeakCPUPercent        float64 `yaml:"peak_cpu_percent"`
	AvgChannelFullnessPct float64 `yaml:"avg_channel_fullness_percent"`
}

type Bottleneck struct {
	Diagnosis       string   `yaml:"diagnosis"`
	Confidence      string   `yaml:"confidence"`
	Recommendations []string `yaml:"recommendations"`
}

// GatherEnvironment probes the host: OS and kernel, CPU brand and core
// count, total physical memory.
func GatherEnvironment() Environment {
	env := Environment{
		OS:            runtime.GOOS,
		CPUModel:      cpuid.CPU.BrandName,
		CPUCores:      runtime.NumCPU(),
		TotalMemoryGB: float64(memory.TotalMemory()) / (1 << 30),
	}
	if env.CPUModel == "" {
		env.CPUModel = "unknown"
	}
	if release, err := os.ReadFile("/proc/sys/kernel/osrelease"); err == nil {
		env.KernelVersion = strings.TrimSpace(string(release))
	}
	return env
}

// Generate assembles the report from the run identity, final counters, and
// sampler aggregates. runErr marks a failed run.
func Generate(runID string, start time.Time, m *metrics.Metrics, hwm sampler.HighWaterMarks, runErr error) *Report {
	elapsed := m.Elapsed().Seconds()
	entries := m.EntriesParsed.Load()
	bytesRead := m.BytesRead.Load()

	var entriesPerSec, bytesPerSec float64
	if elapsed > 0 {
		entriesPerSec = float64(entries) / elapsed
		bytesPerSec = float64(bytesRead) / elapsed
	}

	r := &Report{
		RunID:        runID,
		Timestamp:    start,
		DurationSecs: elapsed,
		Status:       "success",
		Environment:  GatherEnvironment(),
		Performance: Performance{
			EntriesParsed:  entries,
			EntriesPerSec:  entriesPerSec,
			BatchesWritten: m.BatchesWritten.Load(),
			Features:       m.FeaturesCount.Load(),
			Isoforms:       m.IsoformsCount.Load(),

			PtmAttempted: m.PtmAttempted.Load(),
			PtmMapped:    m.PtmMapped.Load(),
			PtmFailed:    m.PtmFailed.Load(),

			PtmFailedCanonicalOOB:    m.PtmFailures.CanonicalOOB.Load(),
			PtmFailedVspDeletion:     m.PtmFailures.VspDeletion.Load(),
			PtmFailedMapperOOB:       m.PtmFailures.MapperOOB.Load(),
			PtmFailedVspUnresolvable: m.PtmFailures.VspUnresolvable.Load(),
			PtmFailedIsoformOOB:      m.PtmFailures.IsoformOOB.Load(),
			PtmFailedResidueMismatch: m.PtmFailures.ResidueMismatch.Load(),

			BytesRead:    bytesRead,
			BytesWritten: m.BytesWritten.Load(),
			BytesPerSec:  bytesPerSec,
		},
		Resources: Resources{
			PeakRSSMB:             float64(hwm.PeakRSSBytes) / (1 << 20),
			PeakCPUPercent:        hwm.PeakCPUPercent,
			AvgChannelFullnessPct: hwm.AvgChannelFullness * 100,
		},
	}

	verdict := sampler.DiagnoseBottleneck(hwm.AvgChannelFullness)
	r.Bottleneck = Bottleneck{
		Diagnosis:       verdict.Diagnosis,
		Confidence:      verdict.Confidence,
		Recommendations: verdict.Recommendations,
	}

	if runErr != nil {
		r.Status = "error"
		r.Error = runErr.Error()
	}
	return r
}

// SaveYAML writes the report to path.
func (r *Report) SaveYAML(path string) error {
	buf, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "serializing run report")
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrapf(err, "writing run report %s", path)
	}
	return nil
}
