package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"time"

	"go.uber.org/zap"

	"hawkbook/recorder"
	"hawkbook/simulator"
	"hawkbook/stream"
	"hawkbook/telemetry"
)

func main() {
	events := flag.Int("events", 100000, "number of simulated events to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "overrides both the Hawkes and placement seeds when non-zero")
	tick := flag.Float64("tick", 0, "overrides the book tick size when non-zero")
	configPath := flag.String("config", "", "path to a YAML parameter bundle")
	csvPath := flag.String("csv", "", "path to write observation records as CSV, empty to skip")
	serveAddr := flag.String("serve", "", "address to serve /ws/observations and /metrics on, empty to skip")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile := flag.String("memprofile", "", "write heap profile to file")
	flag.Parse()

	logger := telemetry.Must()
	defer logger.Sync()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}

	params, err := loadParams(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
	if *tick != 0 {
		params.TickSize = *tick
	}
	if *seed != 0 {
		params.Hawkes.Seed = *seed
		params.Placement.Seed = *seed + 1
	}

	params = params.WithDefaults()
	sim, err := simulator.New(params, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting run", zap.String("run_id", sim.RunID().String()), zap.Int("events", *events))

	var srv *stream.Server
	if *serveAddr != "" {
		srv = stream.NewServer("", "*", nil, logger)
		go func() {
			if err := http.ListenAndServe(*serveAddr, srv.Routes()); err != nil {
				logger.Error("stream server exited", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	records := make([]simulator.ObservationRecord, 0, *events)
	for i := 0; i < *events; i++ {
		rec := sim.Step()
		records = append(records, rec)
		if srv != nil {
			srv.Publish(rec)
		}
	}
	elapsed := time.Since(start)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err == nil {
			defer f.Close()
			_ = pprof.WriteHeapProfile(f)
		}
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		rec := recorder.NewCSVRecorder(f)
		if err := rec.WriteAll(records); err != nil {
			fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
			os.Exit(1)
		}
	}

	eventsPerSec := float64(*events) / elapsed.Seconds()
	fmt.Printf("simulated %d events in %s (%.0f events/s)\n", *events, elapsed.Truncate(time.Millisecond), eventsPerSec)
	fmt.Printf("run id: %s\n", sim.RunID())
	fmt.Printf("config: tick=%.4g price_center=%.4g seed_levels=%d\n", params.TickSize, params.PriceCenter, params.SeedLevels)
	if last := records[len(records)-1]; last.Mid != nil {
		fmt.Printf("final mid: %.4g spread: %.4g\n", *last.Mid, *last.Spread)
	}
}
