package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/freeroam/config"
)

// TraceRecord is one entity's state after a fixed step.
type TraceRecord struct {
	Step    uint64  `csv:"step"`
	Elapsed float64 `csv:"elapsed_s"`
	Entity  uint32  `csv:"entity"`
	PosX    float64 `csv:"pos_x"`
	PosY    float64 `csv:"pos_y"`
	PosZ    float64 `csv:"pos_z"`
	VelX    float64 `csv:"vel_x"`
	VelY    float64 `csv:"vel_y"`
	VelZ    float64 `csv:"vel_z"`
	InputX  float64 `csv:"input_x"`
	InputY  float64 `csv:"input_y"`
	InputZ  float64 `csv:"input_z"`
}

// csvWriter appends records to w, writing the header only once.
type csvWriter struct {
	w             io.Writer
	headerWritten bool
}

func (c *csvWriter) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.w); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.w)
}

// TraceWriter writes fixed-step trace records as CSV.
type TraceWriter struct {
	out csvWriter
}

// NewTraceWriter returns a writer appending to w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{out: csvWriter{w: w}}
}

// Write appends records. Empty batches are skipped.
func (t *TraceWriter) Write(records []TraceRecord) error {
	if t == nil || len(records) == 0 {
		return nil
	}
	if err := t.out.write(records); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// OutputManager handles run output: trace.csv, perf.csv and a config snapshot.
type OutputManager struct {
	dir       string
	traceFile *os.File
	perfFile  *os.File

	trace *TraceWriter
	perf  csvWriter
}

// NewOutputManager creates the output directory and files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "trace.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating trace.csv: %w", err)
	}
	om.traceFile = f
	om.trace = NewTraceWriter(f)

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.traceFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f
	om.perf = csvWriter{w: f}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// Trace returns the trace writer, or nil when output is disabled.
func (om *OutputManager) Trace() *TraceWriter {
	if om == nil {
		return nil
	}
	return om.trace
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, frame uint64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(frame)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	if om.traceFile != nil {
		if err := om.traceFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
