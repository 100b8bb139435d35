package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/contagion/config"
)

// OutputManager handles structured run output with CSV logging.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir        string
	censusFile *os.File
	perfFile   *os.File

	// Track if headers have been written
	censusHeaderWritten bool
	perfHeaderWritten   bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "census.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating census.csv: %w", err)
	}
	om.censusFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.censusFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteCensus appends a census row to census.csv.
func (om *OutputManager) WriteCensus(c Census) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.censusFile, []Census{c}, &om.censusHeaderWritten); err != nil {
		return fmt.Errorf("writing census: %w", err)
	}
	return nil
}

// WritePerf appends a performance row to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, tick int) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.perfFile, []PerfStatsCSV{stats.ToCSV(tick)}, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteSummary writes summary.csv (one header row, one data row).
func (om *OutputManager) WriteSummary(s Summary) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "summary.csv"))
	if err != nil {
		return fmt.Errorf("creating summary.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile([]Summary{s}, f); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// appendCSV writes records, including the header only on the first call.
func appendCSV[T any](f *os.File, records []T, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files. Closing twice is a no-op.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []**os.File{&om.censusFile, &om.perfFile} {
		if *f == nil {
			continue
		}
		if err := (*f).Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		*f = nil
	}
	return firstErr
}
