package runshow

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/storage"
)

// Latest selects the newest journaled run.
const Latest = "latest"

// ServiceConfig is the configuration for the run show service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.RunShow"})

	return nil
}

// Service retrieves a journaled run with its task results.
type Service struct {
	repo   storage.RunRepository
	logger log.Logger
}

// NewService creates a new run show service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the run show request parameters.
type Request struct {
	// ID is the run ULID or Latest.
	ID string
}

// Run returns the requested run.
func (s *Service) Run(ctx context.Context, req Request) (*model.Run, error) {
	id := req.ID
	if id == "" || id == Latest {
		runs, err := s.repo.ListRuns(ctx, storage.ListRunsOpts{Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("could not list runs: %w", err)
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("no runs journaled yet: %w", model.ErrNotFound)
		}
		id = runs[0].ID
		s.logger.Debugf("latest run is %s", id)
	} else {
		parsed, err := ulid.ParseStrict(id)
		if err != nil {
			return nil, fmt.Errorf("%q is not a run ID: %w", id, model.ErrNotValid)
		}
		id = parsed.String()
	}

	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("run not found: %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	return run, nil
}
