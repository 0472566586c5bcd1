package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.Record(16*time.Millisecond, 2*time.Millisecond, 4*time.Millisecond, 1, 0)
	}

	stats := pc.Stats()

	if stats.AvgFrame != 16*time.Millisecond {
		t.Errorf("expected 16ms average frame, got %v", stats.AvgFrame)
	}
	if stats.PhaseAvg[PhaseVariable] != 2*time.Millisecond {
		t.Errorf("expected 2ms variable phase, got %v", stats.PhaseAvg[PhaseVariable])
	}
	if stats.PhaseAvg[PhaseFixed] != 4*time.Millisecond {
		t.Errorf("expected 4ms fixed phase, got %v", stats.PhaseAvg[PhaseFixed])
	}
	if stats.FPS < 62 || stats.FPS > 63 {
		t.Errorf("expected ~62.5 FPS, got %v", stats.FPS)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	// Old samples are overwritten once the window wraps.
	for i := 0; i < 5; i++ {
		pc.Record(100*time.Millisecond, 0, 0, 6, 2)
	}
	for i := 0; i < 5; i++ {
		pc.Record(10*time.Millisecond, 0, 0, 1, 0)
	}

	stats := pc.Stats()

	if stats.AvgFrame != 10*time.Millisecond {
		t.Errorf("expected window to hold only recent frames, avg %v", stats.AvgFrame)
	}
	if stats.MaxFixedSteps != 1 {
		t.Errorf("expected max 1 fixed step in window, got %d", stats.MaxFixedSteps)
	}
	if stats.TotalFixedSteps != 35 {
		t.Errorf("expected 35 total fixed steps, got %d", stats.TotalFixedSteps)
	}
	if stats.TotalDroppedSteps != 10 {
		t.Errorf("expected 10 total dropped steps, got %d", stats.TotalDroppedSteps)
	}
}

func TestPerfCollector_MinMax(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.Record(20*time.Millisecond, 0, 0, 1, 0)
	pc.Record(5*time.Millisecond, 0, 0, 0, 0)
	pc.Record(30*time.Millisecond, 0, 0, 2, 0)

	stats := pc.Stats()

	if stats.MinFrame != 5*time.Millisecond {
		t.Errorf("min frame = %v, want 5ms", stats.MinFrame)
	}
	if stats.MaxFrame != 30*time.Millisecond {
		t.Errorf("max frame = %v, want 30ms", stats.MaxFrame)
	}
	if stats.AvgFixedSteps != 1 {
		t.Errorf("avg fixed steps = %v, want 1", stats.AvgFixedSteps)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgFrame != 0 {
		t.Error("expected zero avg frame for empty collector")
	}
	if stats.FPS != 0 {
		t.Error("expected zero FPS for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.Record(8*time.Millisecond, time.Millisecond, 3*time.Millisecond, 2, 1)

	row := pc.Stats().ToCSV(42)

	if row.Frame != 42 {
		t.Errorf("frame = %d, want 42", row.Frame)
	}
	if row.AvgFrameUS != 8000 {
		t.Errorf("avg_frame_us = %d, want 8000", row.AvgFrameUS)
	}
	if row.VariableUS != 1000 || row.FixedUS != 3000 {
		t.Errorf("phase us = %d/%d, want 1000/3000", row.VariableUS, row.FixedUS)
	}
	if row.TotalDropped != 1 {
		t.Errorf("total_dropped_steps = %d, want 1", row.TotalDropped)
	}
}

func TestPerfStats_LogValue(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.Record(8*time.Millisecond, time.Millisecond, 3*time.Millisecond, 2, 1)

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("perf", "stats", pc.Stats())

	var entry struct {
		Stats map[string]float64 `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}
	want := map[string]float64{
		"avg_frame_us":        8000,
		"variable_us":         1000,
		"fixed_us":            3000,
		"max_fixed_steps":     2,
		"total_dropped_steps": 1,
	}
	for k, v := range want {
		if entry.Stats[k] != v {
			t.Errorf("stats.%s = %v, want %v", k, entry.Stats[k], v)
		}
	}
}

func TestTraceWriter_HeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTraceWriter(&buf)

	if err := tw.Write([]TraceRecord{{Step: 1, Entity: 3, PosX: 0.1}}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := tw.Write(nil); err != nil {
		t.Fatalf("empty write: %v", err)
	}
	if err := tw.Write([]TraceRecord{{Step: 2, Entity: 3, PosX: 0.2}}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "step,elapsed_s,entity,pos_x") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(buf.String(), "step,") != 1 {
		t.Error("header written more than once")
	}
}

func TestTraceWriter_Nil(t *testing.T) {
	var tw *TraceWriter
	if err := tw.Write([]TraceRecord{{Step: 1}}); err != nil {
		t.Errorf("nil writer should be a no-op, got %v", err)
	}
}

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}
	if om.Trace() != nil {
		t.Error("expected nil trace writer")
	}
	if err := om.WritePerf(PerfStats{}, 1); err != nil {
		t.Errorf("WritePerf on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManager_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if err := om.Trace().Write([]TraceRecord{{Step: 1}}); err != nil {
		t.Fatalf("trace write: %v", err)
	}
	if err := om.WritePerf(PerfStats{PhaseAvg: map[string]time.Duration{}}, 60); err != nil {
		t.Fatalf("perf write: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if om.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", om.Dir(), dir)
	}
}
