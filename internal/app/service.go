// Package service wires the store, catalog, cache and allocation engine
// together and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mvidal/destino/internal/adapters/catalog"
	"github.com/mvidal/destino/internal/adapters/http/api"
	refreshqueue "github.com/mvidal/destino/internal/adapters/mq/queue"
	workerpool "github.com/mvidal/destino/internal/adapters/mq/worker"
	"github.com/mvidal/destino/internal/adapters/repository"
	"github.com/mvidal/destino/internal/cache"
	"github.com/mvidal/destino/internal/config"
	"github.com/mvidal/destino/internal/domain/allocation"
	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/internal/domain/ratelimit"
	"github.com/mvidal/destino/pkg/logger"
	"github.com/mvidal/destino/pkg/metrics"
)

// Service implements the API dependencies for the allocation system.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	store        repository.Store
	source       catalog.Source
	catalog      *catalog.Cached
	seasonCache  *cache.SeasonCache
	refreshQueue refreshqueue.Queue
	pool         *workerpool.Pool
	limiter      ratelimit.Limiter
	engine       *allocation.Engine
	scheduler    gocron.Scheduler

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a submission store, bypassing the driver selection.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCatalogSource injects a catalog backend, bypassing the source
// selection. The service still wraps it in the caching layer.
func WithCatalogSource(src catalog.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithLimiter injects an allocation rate limiter.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithEngine injects an allocation engine, used by tests to seed the
// synthetic-user generator.
func WithEngine(e *allocation.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service from configuration. Call Start before use.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}

	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting allocation service...")

	if s.store == nil {
		store, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		s.store = store
	}

	if s.source == nil {
		src, err := s.openCatalogSource(ctx)
		if err != nil {
			return err
		}
		s.source = src
	}
	s.catalog = catalog.NewCached(s.source,
		catalog.WithTTL(time.Duration(s.cfg.CatalogTTLSeconds)*time.Second),
	)

	s.seasonCache = cache.New(
		cache.WithTTL(time.Duration(s.cfg.SeasonCacheTTLSeconds) * time.Second),
	)

	if s.limiter == nil {
		s.limiter = ratelimit.NewInMemoryLimiter(
			ratelimit.WithCooldown(time.Duration(s.cfg.RateLimitSeconds)*time.Second),
			ratelimit.WithMaxEntries(s.cfg.RateLimitMaxEntries),
		)
	}

	if s.engine == nil {
		s.engine = allocation.NewEngine(
			allocation.WithBackupCaps(s.cfg.FullBackupCap, s.cfg.UserBackupCap),
		)
	}

	s.refreshQueue = refreshqueue.NewInMemoryQueue(
		refreshqueue.WithCapacity(s.cfg.RefreshQueueSize),
		refreshqueue.WithBufferSize(s.cfg.RefreshQueueSize),
	)
	s.pool = workerpool.NewPool(s.cfg.WorkerCount, s.refreshQueue, s)
	s.pool.Start(ctx)

	if err := s.startSweep(ctx); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "allocation service started",
		logger.String("storage", s.cfg.StorageDriver),
		logger.String("catalog", s.cfg.CatalogSource),
		logger.Int("workers", s.cfg.WorkerCount),
		logger.Int("queueSize", s.cfg.RefreshQueueSize),
	)

	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	switch s.cfg.StorageDriver {
	case "postgres":
		store, err := repository.NewGormStore(ctx, s.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		s.logger.Info(ctx, "using postgres store")
		return store, nil
	default:
		s.logger.Info(ctx, "using in-memory store")
		return repository.NewMemStore(ctx), nil
	}
}

func (s *Service) openCatalogSource(ctx context.Context) (catalog.Source, error) {
	switch s.cfg.CatalogSource {
	case "s3":
		src, err := catalog.NewS3Source(ctx, catalog.S3Config{
			Region:    s.cfg.CatalogRegion,
			Bucket:    s.cfg.CatalogBucket,
			Prefix:    s.cfg.CatalogPrefix,
			IDField:   s.cfg.CatalogIDField,
			Endpoint:  s.cfg.CatalogEndpoint,
			AccessKey: s.cfg.CatalogAccessKey,
			SecretKey: s.cfg.CatalogSecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 catalog: %w", err)
		}
		s.logger.Info(ctx, "using s3 catalog",
			logger.String("bucket", s.cfg.CatalogBucket))
		return src, nil
	default:
		s.logger.Info(ctx, "using local catalog",
			logger.String("dir", s.cfg.CatalogDir))
		return catalog.NewLocalSource(s.cfg.CatalogDir,
			catalog.WithLocalIDField(s.cfg.CatalogIDField),
		), nil
	}
}

// startSweep schedules the periodic job that re-enqueues refreshes for
// seasons whose cache went stale while still being read.
func (s *Service) startSweep(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	interval := time.Duration(s.cfg.SweepIntervalSeconds) * time.Second
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			for _, season := range s.seasonCache.StaleActiveSeasons() {
				s.refreshQueue.Enqueue(ctx, model.RefreshJob{Season: season})
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}

	sched.Start()
	s.scheduler = sched
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping allocation service...")

	if s.scheduler != nil {
		_ = s.scheduler.Shutdown()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "allocation service stopped")
}

// RefreshSeason reloads a season from the store into the cache. It is the
// unit of work processed by the refresh workers.
func (s *Service) RefreshSeason(ctx context.Context, season string) error {
	subs, err := s.store.SeasonSubmissions(ctx, season)
	if err != nil {
		return fmt.Errorf("refresh season %s: %w", season, err)
	}
	s.seasonCache.Set(season, subs)
	return nil
}

// Allow reports whether a user may run an allocation now.
func (s *Service) Allow(ctx context.Context, userID string) (bool, time.Duration) {
	return s.limiter.Allow(ctx, userID)
}

// SubmitPreferences stores a preference list and invalidates the season
// caches that depended on it.
func (s *Service) SubmitPreferences(ctx context.Context, sub model.Submission) (model.Submission, error) {
	stored, err := s.store.Upsert(ctx, sub.Season, sub)
	if err != nil {
		return model.Submission{}, err
	}

	// The next reader repopulates the cache; keep the season on the sweep
	// radar so it refreshes even without readers.
	s.seasonCache.Invalidate(sub.Season)
	s.seasonCache.MarkActive(sub.Season)
	s.refreshQueue.Enqueue(ctx, model.RefreshJob{Season: sub.Season})

	return stored, nil
}

// seasonSubmissions serves a season from the cache, falling back to the
// store and warming the cache on a miss.
func (s *Service) seasonSubmissions(ctx context.Context, season string) ([]model.Submission, error) {
	if subs, ok := s.seasonCache.Get(season); ok {
		return subs, nil
	}

	subs, err := s.store.SeasonSubmissions(ctx, season)
	if err != nil {
		return nil, err
	}
	s.seasonCache.Set(season, subs)
	return subs, nil
}

// seasonCatalog loads the destination catalog for a season. A missing
// catalog is not an error; the engine then runs without item metadata.
func (s *Service) seasonCatalog(ctx context.Context, season string) []model.Item {
	items, err := s.catalog.Items(ctx, season)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.Warn(ctx, "catalog unavailable",
				logger.String("season", season),
				logger.Error(err))
		}
		return nil
	}
	return items
}

// Allocate runs the full-population assignment for a season.
func (s *Service) Allocate(ctx context.Context, req api.AllocateRequest) ([]model.AllocationResult, error) {
	start := time.Now()

	subs, err := s.seasonSubmissions(ctx, req.Season)
	if err != nil {
		return nil, err
	}
	items := s.seasonCatalog(ctx, req.Season)

	results := s.engine.Allocate(subs, req.Scenario, items, req.CompetitionDepth)

	metrics.RecordAllocationRun(strconv.Itoa(req.Scenario))
	metrics.RecordAllocationLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordAllocationUsers(len(results))

	return results, nil
}

// AllocateForUser computes a single user's assignment and backup list.
func (s *Service) AllocateForUser(ctx context.Context, req api.AllocateRequest) (model.AllocationResult, error) {
	start := time.Now()

	target, err := s.store.Submission(ctx, req.Season, req.UserID)
	if err != nil {
		return model.AllocationResult{}, err
	}
	above, err := s.store.SubmissionsAbove(ctx, req.Season, target.Order)
	if err != nil {
		return model.AllocationResult{}, err
	}
	items := s.seasonCatalog(ctx, req.Season)

	result := s.engine.AllocateForUser(above, target, req.Scenario, items, req.BlockedItems, req.CompetitionDepth)

	metrics.RecordAllocationRun(strconv.Itoa(req.Scenario))
	metrics.RecordAllocationLatency(float64(time.Since(start).Milliseconds()))

	return result, nil
}

// MaxCompetitionDepth returns the configured upper bound for the
// preference-depth scenario.
func (s *Service) MaxCompetitionDepth() int {
	return s.cfg.MaxCompetitionDepth
}

// SeasonState returns the stored submissions of a season in priority order.
func (s *Service) SeasonState(ctx context.Context, season string) ([]model.Submission, error) {
	return s.seasonSubmissions(ctx, season)
}

// SeasonItems returns the destination catalog of a season, nil when no
// catalog exists.
func (s *Service) SeasonItems(ctx context.Context, season string) []model.Item {
	return s.seasonCatalog(ctx, season)
}

// ItemIDField names the catalog column used as the destination identifier.
func (s *Service) ItemIDField() string {
	return s.cfg.CatalogIDField
}

// Orders returns the claimed priority slots of a season.
func (s *Service) Orders(ctx context.Context, season string) ([]model.OrderEntry, error) {
	return s.store.Orders(ctx, season)
}

// ResetUser removes one user's submission from one season.
func (s *Service) ResetUser(ctx context.Context, season, userID string) error {
	if err := s.store.Delete(ctx, season, userID); err != nil {
		return err
	}
	s.seasonCache.Invalidate(season)
	s.limiter.Forget(ctx, userID)
	return nil
}

// ResetUserAll removes a user's submissions from every season.
func (s *Service) ResetUserAll(ctx context.Context, userID string) ([]string, error) {
	seasons, err := s.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, season := range seasons {
		s.seasonCache.Invalidate(season)
	}
	s.limiter.Forget(ctx, userID)
	return seasons, nil
}

// PublicConfig returns the runtime settings a client is allowed to see.
func (s *Service) PublicConfig() map[string]interface{} {
	return map[string]interface{}{
		"rateLimitSeconds":    s.cfg.RateLimitSeconds,
		"maxCompetitionDepth": s.cfg.MaxCompetitionDepth,
		"fullBackupCap":       s.cfg.FullBackupCap,
		"userBackupCap":       s.cfg.UserBackupCap,
		"catalogIdField":      s.cfg.CatalogIDField,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.cfg.WorkerCount,
		"storage":     s.cfg.StorageDriver,
	}

	if s.started {
		seasons := s.store.Seasons(ctx)
		perSeason := make(map[string]int, len(seasons))
		total := 0
		for _, season := range seasons {
			n := s.store.Count(ctx, season)
			perSeason[season] = n
			total += n
		}

		queueLen := s.refreshQueue.Len(ctx)

		stats["seasons"] = seasons
		stats["submissionsPerSeason"] = perSeason
		stats["totalSubmissions"] = total
		stats["queueLength"] = queueLen
		stats["cachedSeasons"] = s.seasonCache.Size()
		stats["cacheStatus"] = s.seasonCache.Status()
		stats["rateLimitEntries"] = s.limiter.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerActiveCount(s.cfg.WorkerCount)
	}

	return stats
}
