package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/mvidal/destino/internal/seedtool"
	"github.com/mvidal/destino/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumUsers = 200
	defaultPoolSize = 100
	defaultMaxPrefs = 10
	defaultTimeout  = 30 * time.Second
	defaultRunLimit = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		season   = flag.String("season", "2025", "Season to seed")
		numUsers = flag.Int("users", defaultNumUsers, "Number of users to generate")
		poolSize = flag.Int("pool", defaultPoolSize, "Number of distinct destination IDs")
		maxPrefs = flag.Int("prefs", defaultMaxPrefs, "Longest preference list to generate")
		workers  = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		gaps     = flag.Bool("gaps", true, "Leave holes in the order sequence")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunLimit)
	defer cancel()

	cfg := &seedtool.Config{
		BaseURL:  *baseURL,
		Season:   *season,
		NumUsers: *numUsers,
		PoolSize: *poolSize,
		MaxPrefs: *maxPrefs,
		Workers:  *workers,
		Timeout:  *timeout,
		Gaps:     *gaps,
		Verbose:  *verbose,
	}

	stats, err := seedtool.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
}
