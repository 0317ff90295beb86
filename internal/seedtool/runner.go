package seedtool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mvidal/destino/pkg/logger"
)

// Run generates submissions and posts them to the service.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("seed")
	start := time.Now()

	subs := generate(cfg)
	log.Info(ctx, "generated submissions",
		logger.Int("users", len(subs)),
		logger.String("season", cfg.Season))

	client := &http.Client{Timeout: cfg.Timeout}
	url := cfg.BaseURL + "/api/submit"

	var submitted, failed int64

	jobs := make(chan submission)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				switch code, err := post(ctx, client, url, sub); {
				case err != nil:
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "submit failed",
							logger.String("user_id", sub.UserID),
							logger.Error(err))
					}
				case code == http.StatusOK:
					atomic.AddInt64(&submitted, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "submit rejected",
							logger.String("user_id", sub.UserID),
							logger.Int("status", code))
					}
				}
			}
		}()
	}

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- sub:
		}
	}
	close(jobs)
	wg.Wait()

	stats := &Stats{
		Generated: len(subs),
		Submitted: int(submitted),
		Failed:    int(failed),
		Elapsed:   time.Since(start),
	}

	log.Info(ctx, "seeding finished",
		logger.Int("submitted", stats.Submitted),
		logger.Int("failed", stats.Failed),
		logger.Duration("elapsed", stats.Elapsed))

	if err := verify(ctx, client, cfg, stats); err != nil {
		log.Warn(ctx, "verification failed", logger.Error(err))
	}

	return stats, nil
}

func post(ctx context.Context, client *http.Client, url string, body interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// verify reads the season back and checks the stored count matches what
// was accepted.
func verify(ctx context.Context, client *http.Client, cfg *Config, stats *Stats) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		cfg.BaseURL+"/api/state?season="+cfg.Season, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var state struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	if state.Count < stats.Submitted {
		return fmt.Errorf("stored %d submissions but %d were accepted", state.Count, stats.Submitted)
	}

	logger.Get().Named("seed").Info(ctx, "verified season state",
		logger.String("season", cfg.Season),
		logger.Int("stored", state.Count))
	return nil
}
