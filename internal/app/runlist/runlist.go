package runlist

import (
	"context"
	"fmt"

	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/storage"
)

// ServiceConfig is the configuration for the run list service.
type ServiceConfig struct {
	Repository storage.RunRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.RunList"})

	return nil
}

// Service lists journaled backup runs.
type Service struct {
	repo   storage.RunRepository
	logger log.Logger
}

// NewService creates a new run list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the run list request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show runs with this status.
	StatusFilter *model.RunStatus
	// Limit caps the number of returned runs, 0 means no limit.
	Limit int
}

// Run lists the runs newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Run, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	runs, err := s.repo.ListRuns(ctx, storage.ListRunsOpts{
		Status: req.StatusFilter,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	s.logger.Debugf("found %d runs", len(runs))
	return runs, nil
}
