// Package main sweeps fixed-step rates against frame rates and reports how
// faithfully the accumulator tracks wall-clock time.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/freeroam/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config file (empty = use defaults)")
	hzList := flag.String("hz", "30,60,120", "Comma-separated fixed step rates")
	fpsList := flag.String("fps", "30,60,144", "Comma-separated frame rates")
	jitter := flag.Float64("jitter", 0.2, "Relative frame delta noise")
	seconds := flag.Float64("seconds", 10, "Wall-clock seconds simulated per case")
	seed := flag.Int64("seed", 42, "RNG seed for frame jitter")
	outputDir := flag.String("output", "", "Output directory for sweep.csv (empty = stdout)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	hzs, err := parseFloats(*hzList)
	if err != nil {
		log.Fatalf("invalid -hz: %v", err)
	}
	fpss, err := parseFloats(*fpsList)
	if err != nil {
		log.Fatalf("invalid -fps: %v", err)
	}

	start := time.Now()
	var results []*Result
	for _, hz := range hzs {
		for _, fps := range fpss {
			c := Case{
				FixedHz:    hz,
				FrameDelta: time.Duration(float64(time.Second) / fps),
				Jitter:     *jitter,
			}
			frames := int(*seconds * fps)
			r, err := Evaluate(baseCfg, c, frames, *seed)
			if err != nil {
				log.Fatalf("case hz=%v fps=%v: %v", hz, fps, err)
			}
			results = append(results, &r)
			log.Printf("hz=%-6v fps=%-6v steps=%-6d dropped=%-4d err=%.3g",
				hz, fps, r.FixedSteps, r.DroppedSteps, r.AbsError)
		}
	}
	log.Printf("sweep finished in %s", time.Since(start).Round(time.Millisecond))

	out := os.Stdout
	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Fatalf("failed to create output directory: %v", err)
		}
		f, err := os.Create(filepath.Join(*outputDir, "sweep.csv"))
		if err != nil {
			log.Fatalf("failed to create sweep.csv: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := gocsv.Marshal(results, out); err != nil {
		log.Fatalf("writing results: %v", err)
	}
}

func parseFloats(list string) ([]float64, error) {
	var vals []float64
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("rate must be positive, got %v", v)
		}
		vals = append(vals, v)
	}
	return vals, nil
}
