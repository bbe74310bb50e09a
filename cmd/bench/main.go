package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/capsule/internal/platform"
)

func main() {
	count := flag.Int("count", 1000, "Number of capsules to add")
	backend := flag.String("backend", platform.BackendFS, "Storage backend: fs, sqlite or memory")
	keep := flag.Bool("keep", false, "Keep the benchmark store after running")
	flag.Parse()

	// 1. Setup store
	benchDir, err := os.MkdirTemp("", "capsule_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []platform.Option{
		platform.WithLogger(logger),
		platform.WithBackend(*backend),
		platform.WithDevSafety(false),
	}

	service, err := platform.New(benchDir, opts...)
	if err != nil {
		panic(err)
	}

	ctx := context.TODO()

	// Run 1: every Add rewrites the whole slot
	fmt.Printf("Adding %d capsules to %s (%s)...\n", *count, benchDir, *backend)
	startAdd := time.Now()
	unlock := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	for i := 0; i < *count; i++ {
		if _, err := service.Add(ctx, fmt.Sprintf("Benchmark capsule %d", i), unlock); err != nil {
			panic(err)
		}
		if err := service.LastPersistError(); err != nil {
			panic(err)
		}
	}
	addDuration := time.Since(startAdd)
	_ = service.Close()

	// Run 2: reopen to measure a cold load of the full slot
	fmt.Println("Reopening store (cold load)...")
	startLoad := time.Now()
	service2, err := platform.New(benchDir, opts...)
	if err != nil {
		panic(err)
	}
	loadDuration := time.Since(startLoad)
	loaded := service2.Len()
	_ = service2.Close()

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d capsules, %s):\n", *count, *backend)
	fmt.Printf("  Add (total): %v\n", addDuration)
	fmt.Printf("  Add (avg):   %v\n", addDuration/time.Duration(max(*count, 1)))
	fmt.Printf("  Load:        %v (Items: %d)\n", loadDuration, loaded)
	fmt.Printf("--------------------------------------------------\n")
}
