// Package runs manages per-run artifact directories: creation with a
// timestamped or caller-supplied id, and retention cleanup of old runs.
package runs

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Context is one ETL run's directory and identity.
type Context struct {
	Dir       string
	RunID     string
	StartTime time.Time
}

// New creates a run directory under runsDir. With an empty override the id
// is run_<YYYYMMDD_HHMMSS>; otherwise the override is normalized (a run_
// prefix added when absent) and the directory must not already exist.
func New(runsDir, runIDOverride string) (*Context, error) {
	start := time.Now().UTC()

	runID := "run_" + start.Format("20060102_150405")
	if runIDOverride != "" {
		normalized, err := normalizeRunID(runIDOverride)
		if err != nil {
			return nil, err
		}
		runID = normalized
	}

	dir := filepath.Join(runsDir, runID)
	if _, err := os.Stat(dir); err == nil {
		return nil, errors.Errorf("run directory already exists: %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating run directory %s", dir)
	}

	return &Context{Dir: dir, RunID: runID, StartTime: start}, nil
}

// ReportPath is the report.yaml location inside the run directory.
func (c *Context) ReportPath() string {
	return filepath.Join(c.Dir, "report.yaml")
}

// ConfigSnapshotPath is the config_snapshot.yaml location inside the run
// directory.
func (c *Context) ConfigSnapshotPath() string {
	return filepath.Join(c.Dir, "config_snapshot.yaml")
}

func normalizeRunID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("run id cannot be empty")
	}
	if strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return "", errors.Errorf("run id contains path characters: %q", raw)
	}

	normalized := trimmed
	if !strings.HasPrefix(normalized, "run_") {
		normalized = "run_" + normalized
	}
	if !runIDPattern.MatchString(normalized) {
		return "", errors.Errorf("run id may only contain letters, digits, '_' and '-': %q", raw)
	}
	return normalized, nil
}

// Cleanup removes the oldest run_ directories beyond keep. Names sort by
// timestamp, so lexical order is age order. Individual removal failures are
// skipped; the cleanup is best effort.
func Cleanup(runsDir string, keep int) error {
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "reading runs directory %s", runsDir)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "run_") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	if len(dirs) <= keep {
		return nil
	}
	for _, name := range dirs[:len(dirs)-keep] {
		_ = os.RemoveAll(filepath.Join(runsDir, name))
	}
	return nil
}
