package service

import (
	"github.com/okian/medallion/internal/config"
	"github.com/okian/medallion/internal/domain/achievement"
	"github.com/okian/medallion/internal/domain/catalog"
	"github.com/okian/medallion/internal/domain/dataset"
	"github.com/okian/medallion/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatasetPath sets the dataset archive or directory loaded by Start.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithIndex serves an already built index instead of loading one from disk.
func WithIndex(ix *dataset.Index) Option {
	return func(s *Service) {
		s.preloaded = ix
	}
}

// WithCriterion sets the main criterion used by activity and temporal badges.
func WithCriterion(c string) Option {
	return func(s *Service) {
		if c != "" {
			s.criterion = c
		}
	}
}

// WithSecondaryCriteria replaces the criteria that earn a Comparator badge each.
func WithSecondaryCriteria(cs ...catalog.Criterion) Option {
	return func(s *Service) {
		s.secondary = cs
	}
}

// WithMinContributors sets how many contributors an item needs to earn temporal credit.
func WithMinContributors(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.minContributors = n
		}
	}
}

// WithEarlyPoolSize sets the size the early contributor pool is grown to.
func WithEarlyPoolSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.earlyPoolSize = n
		}
	}
}

// WithPodiumSize sets the number of places on each weekly podium.
func WithPodiumSize(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.podiumSize = k
		}
	}
}

// WithThresholdOptions sets the options passed to every tier calculation.
func WithThresholdOptions(opts ...achievement.ThresholdOption) Option {
	return func(s *Service) {
		s.thresholds = append(s.thresholds, opts...)
	}
}

// WithWorkerCount sets the number of badge build workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
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

// WithConfig applies the engine settings of cfg: dataset path, criterion,
// classifier and podium sizes, worker count and threshold anchors.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		for _, opt := range []Option{
			WithDatasetPath(cfg.DatasetPath),
			WithCriterion(cfg.Criterion),
			WithMinContributors(cfg.MinContributors),
			WithEarlyPoolSize(cfg.EarlyPoolSize),
			WithPodiumSize(cfg.PodiumSize),
			WithWorkerCount(cfg.WorkerCount),
			WithThresholdOptions(
				achievement.WithGoldRank(cfg.GoldRank),
				achievement.WithDecay(cfg.TierDecay),
				achievement.WithMonotonicTiers(cfg.MonotonicTiers),
			),
		} {
			opt(s)
		}
	}
}
