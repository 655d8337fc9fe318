// Package config loads the YAML settings file and applies CLI overrides.
// Precedence is CLI > YAML > defaults.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Storage     StorageConfig     `yaml:"storage"`
	Performance PerformanceConfig `yaml:"performance"`
	Logging     LoggingConfig     `yaml:"logging"`
	Runs        RunsConfig        `yaml:"runs"`
}

type StorageConfig struct {
	// InputPath may be a single .xml / .xml.gz file or a directory of them.
	InputPath string `yaml:"input_path"`
	// OutputPath is a parquet file in single-file mode, a directory in swarm mode.
	OutputPath       string `yaml:"output_path"`
	TempDir          string `yaml:"temp_dir"`
	FastaSidecarPath string `yaml:"fasta_sidecar_path"`
}

type PerformanceConfig struct {
	BatchSize       int `yaml:"batch_size"`
	ChannelCapacity int `yaml:"channel_capacity"`
	ZstdLevel       int `yaml:"zstd_level"`
	MaxRowGroupSize int `yaml:"max_row_group_size"`
	BufferSize      int `yaml:"buffer_size"`
	// ThreadCount is reserved; directory mode sizes its pool from the CPU count.
	ThreadCount int `yaml:"thread_count"`
}

type LoggingConfig struct {
	LogLevel            string `yaml:"log_level"`
	MetricsIntervalSecs int    `yaml:"metrics_interval_secs"`
}

type RunsConfig struct {
	RunsDir  string `yaml:"runs_dir"`
	KeepRuns int    `yaml:"keep_runs"`
}

func Default() *Settings {
	return &Settings{
		Storage: StorageConfig{
			OutputPath: "data/parquet/uniprot.parquet",
			TempDir:    "data/tmp",
		},
		Performance: PerformanceConfig{
			BatchSize:       10_000,
			ChannelCapacity: 8,
			ZstdLevel:       3,
			MaxRowGroupSize: 100_000,
			BufferSize:      256 * 1024,
			ThreadCount:     1,
		},
		Logging: LoggingConfig{
			LogLevel:            "info",
			MetricsIntervalSecs: 5,
		},
	}
}

// Load reads settings from path. A missing file yields the defaults; a
// present but malformed file is an error.
func Load(path string) (*Settings, error) {
	s := Default()

	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := yaml.Unmarshal(buf, s); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return s, nil
}

// Overrides carries the CLI flags that win over YAML values. Zero values
// mean "not set".
type Overrides struct {
	InputPath        string
	OutputPath       string
	BatchSize        int
	FastaSidecarPath string
}

func (s *Settings) Apply(o Overrides) {
	if o.InputPath != "" {
		s.Storage.InputPath = o.InputPath
	}
	if o.OutputPath != "" {
		s.Storage.OutputPath = o.OutputPath
	}
	if o.BatchSize > 0 {
		s.Performance.BatchSize = o.BatchSize
	}
	if o.FastaSidecarPath != "" {
		s.Storage.FastaSidecarPath = o.FastaSidecarPath
	}
}

func (s *Settings) Validate() error {
	if s.Storage.InputPath == "" {
		return errors.New("input_path is required (set via --input or config)")
	}
	if s.Performance.BatchSize <= 0 {
		return errors.Errorf("batch_size must be positive, got %d", s.Performance.BatchSize)
	}
	if s.Performance.ChannelCapacity <= 0 {
		return errors.Errorf("channel_capacity must be positive, got %d", s.Performance.ChannelCapacity)
	}
	if s.Performance.ZstdLevel < 1 || s.Performance.ZstdLevel > 22 {
		return errors.Errorf("zstd_level must be in 1..=22, got %d", s.Performance.ZstdLevel)
	}
	if s.Performance.MaxRowGroupSize <= 0 {
		return errors.Errorf("max_row_group_size must be positive, got %d", s.Performance.MaxRowGroupSize)
	}
	if s.Performance.BufferSize <= 0 {
		return errors.Errorf("buffer_size must be positive, got %d", s.Performance.BufferSize)
	}
	return nil
}
