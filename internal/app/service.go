// Package service loads a dataset, builds every badge model and answers the
// queries of the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/medallion/internal/adapters/ingest"
	"github.com/okian/medallion/internal/adapters/mq/queue"
	"github.com/okian/medallion/internal/adapters/mq/worker"
	"github.com/okian/medallion/internal/adapters/repository"
	"github.com/okian/medallion/internal/domain/achievement"
	"github.com/okian/medallion/internal/domain/catalog"
	"github.com/okian/medallion/internal/domain/contribution"
	"github.com/okian/medallion/internal/domain/dataset"
	"github.com/okian/medallion/internal/domain/podium"
	"github.com/okian/medallion/internal/domain/types"
	"github.com/okian/medallion/pkg/logger"
	"github.com/okian/medallion/pkg/metrics"
)

// Service implements the API dependencies for the badge engine.
type Service struct {
	mu sync.RWMutex

	// Configuration
	datasetPath     string
	preloaded       *dataset.Index
	criterion       string
	secondary       []catalog.Criterion
	minContributors int
	earlyPoolSize   int
	podiumSize      int
	thresholds      []achievement.ThresholdOption
	workerCount     int

	// State, replaced as a whole by Start
	started   bool
	datasetID string
	loadedAt  time.Time
	index     *dataset.Index
	credits   contribution.Credits
	tally     podium.Tally
	models    []*achievement.Model
	byID      map[string]int
	boards    map[string]repository.Store

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		criterion:       dataset.MainCriterion,
		secondary:       catalog.SecondaryCriteria,
		minContributors: 3,
		earlyPoolSize:   3,
		podiumSize:      10,
		workerCount:     runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset, runs the pre-passes and builds every badge.
// Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting badge service...")

	ix, id, err := s.load(ctx)
	if err != nil {
		return err
	}
	credits, tally, err := s.prePass(ctx, ix)
	if err != nil {
		return err
	}

	defs := catalog.Build(credits, tally,
		catalog.WithCriterion(s.criterion),
		catalog.WithSecondaryCriteria(s.secondary...),
	)
	models, err := s.buildModels(ctx, ix, defs)
	if err != nil {
		return err
	}

	byID := make(map[string]int, len(models))
	boards := make(map[string]repository.Store, len(models))
	for i, m := range models {
		byID[m.ID] = i
		boards[m.ID] = repository.NewBoard(m.ID, m.UserScores)
	}
	metrics.UpdateBadgeCount(len(models))

	s.index = ix
	s.datasetID = id
	s.loadedAt = time.Now()
	s.credits = credits
	s.tally = tally
	s.models = models
	s.byID = byID
	s.boards = boards
	s.started = true

	s.logger.Info(ctx, "badge service started",
		logger.String("dataset", id),
		logger.Int("badges", len(models)),
		logger.Int("users", len(ix.Users())),
		logger.Int("workers", s.workerCount),
	)
	return nil
}

func (s *Service) load(ctx context.Context) (*dataset.Index, string, error) {
	if s.preloaded != nil {
		if err := s.preloaded.Validate(); err != nil {
			return nil, "", err
		}
		return s.preloaded, "preloaded", nil
	}
	if s.datasetPath == "" {
		return nil, "", ErrNoDataset
	}
	res, err := ingest.NewReader(ingest.WithLogger(s.logger.Named("ingest"))).LoadPath(ctx, s.datasetPath)
	if err != nil {
		return nil, "", err
	}
	return res.Index, res.ID, nil
}

func (s *Service) prePass(ctx context.Context, ix *dataset.Index) (contribution.Credits, podium.Tally, error) {
	start := time.Now()
	credits, err := contribution.Classify(ix,
		contribution.WithCriterion(s.criterion),
		contribution.WithMinContributors(s.minContributors),
		contribution.WithEarlyPoolSize(s.earlyPoolSize),
	)
	if err != nil {
		return nil, podium.Tally{}, fmt.Errorf("classify contributions: %w", err)
	}
	metrics.RecordPrePassDuration("contribution", float64(time.Since(start).Milliseconds()))
	first, early, follow := credits.Totals()
	metrics.UpdateContributionCredits(first, early, follow)

	if err := ctx.Err(); err != nil {
		return nil, podium.Tally{}, err
	}

	start = time.Now()
	tally, err := podium.Compute(ix, podium.WithCriterion(s.criterion), podium.WithSize(s.podiumSize))
	if err != nil {
		return nil, podium.Tally{}, fmt.Errorf("compute podiums: %w", err)
	}
	metrics.RecordPrePassDuration("podium", float64(time.Since(start).Milliseconds()))
	metrics.UpdatePodiumBuckets(len(tally.Buckets()))

	s.logger.Info(ctx, "pre-passes done",
		logger.Int("first", first),
		logger.Int("early", early),
		logger.Int("follow", follow),
		logger.Int("podiums", len(tally.Buckets())),
	)
	return credits, tally, nil
}

// buildModels fans definitions out to the worker pool and returns the models in
// definition order.
func (s *Service) buildModels(ctx context.Context, ix *dataset.Index, defs []achievement.Definition) ([]*achievement.Model, error) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(len(defs)))
	sink := worker.NewCollector(len(defs))
	build := worker.BuildFunc(func(ctx context.Context, def achievement.Definition) (*achievement.Model, error) {
		return achievement.NewModel(ctx, ix, def, s.thresholds...)
	})
	pool := worker.NewPool(s.workerCount, q, build, sink, worker.WithLogger(s.logger.Named("worker")))

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(poolCtx)

	for i, def := range defs {
		if !q.Enqueue(poolCtx, queue.Job{Seq: i, Definition: def}) {
			_ = pool.Shutdown(ctx)
			return nil, fmt.Errorf("%w: could not enqueue %s", ErrBuildBadges, def.ID)
		}
	}
	if err := q.Close(); err != nil {
		return nil, err
	}
	if err := pool.Wait(ctx); err != nil {
		return nil, err
	}

	models := make([]*achievement.Model, 0, len(defs))
	for _, r := range sink.Results() {
		if r.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildBadges, r.Err)
		}
		if r.Model == nil {
			return nil, ErrBuildBadges
		}
		models = append(models, r.Model)
	}
	return models, nil
}

// Stop releases the loaded dataset and models.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.index = nil
	s.credits = nil
	s.tally = podium.Tally{}
	s.models = nil
	s.byID = nil
	s.boards = nil
	s.started = false
	s.logger.Info(context.Background(), "badge service stopped")
}

func (s *Service) model(id string) (*achievement.Model, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBadge, id)
	}
	return s.models[i], nil
}

// Badges returns every badge with its thresholds, in catalog order.
func (s *Service) Badges(ctx context.Context) ([]types.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	out := make([]types.Badge, len(s.models))
	for i, m := range s.models {
		out[i] = types.NewBadge(m)
	}
	return out, nil
}

// Badge returns a single badge by id.
func (s *Service) Badge(ctx context.Context, id string) (types.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.model(id)
	if err != nil {
		return types.Badge{}, err
	}
	return types.NewBadge(m), nil
}

// UserBadges grades user on every badge, best first. Locked badges are left out
// unless includeLocked is set.
func (s *Service) UserBadges(ctx context.Context, user string, includeLocked bool) ([]types.UserBadge, error) {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency("user_badges", float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	if !s.index.HasUser(user) {
		metrics.RecordQueryError("user_badges", "unknown_user")
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, user)
	}

	badges := make([]achievement.UserBadge, 0, len(s.models))
	for _, m := range s.models {
		b := m.ApplyForUser(user)
		if !includeLocked && !b.Unlocked() {
			continue
		}
		badges = append(badges, b)
	}
	achievement.SortBadges(badges)

	out := make([]types.UserBadge, len(badges))
	for i, b := range badges {
		out[i] = types.NewUserBadge(b)
	}
	return out, nil
}

// Contributions returns the temporal credits of user.
func (s *Service) Contributions(ctx context.Context, user string) (types.Contributions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.Contributions{}, ErrNotStarted
	}
	if !s.index.HasUser(user) {
		metrics.RecordQueryError("contributions", "unknown_user")
		return types.Contributions{}, fmt.Errorf("%w: %s", ErrUnknownUser, user)
	}
	c := s.credits.For(user)
	return types.Contributions{
		User:        user,
		First:       nonNil(c.First),
		Early:       nonNil(c.Early),
		Follow:      nonNil(c.Follow),
		PodiumWeeks: s.tally.For(user),
	}, nil
}

// TopN returns the top n users of a badge.
func (s *Service) TopN(ctx context.Context, badge string, n int) ([]types.Entry, error) {
	board, err := s.board(badge)
	if err != nil {
		return nil, err
	}
	return board.TopN(ctx, n)
}

// Rank returns the rank and score of user on a badge.
func (s *Service) Rank(ctx context.Context, badge, user string) (types.Entry, error) {
	board, err := s.board(badge)
	if err != nil {
		return types.Entry{}, err
	}
	return board.Rank(ctx, user)
}

func (s *Service) board(badge string) (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	b, ok := s.boards[badge]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBadge, badge)
	}
	return b, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"criterion":   s.criterion,
	}
	if !s.started {
		return stats
	}

	first, early, follow := s.credits.Totals()
	stats["datasetId"] = s.datasetID
	stats["loadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
	stats["dataset"] = s.index.Stats()
	stats["badges"] = len(s.models)
	stats["credits"] = map[string]int{"first": first, "early": early, "follow": follow}
	stats["podiumWeeks"] = len(s.tally.Buckets())
	stats["podiumUsers"] = s.tally.Users()
	return stats
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
