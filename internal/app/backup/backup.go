package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/notify"
	"github.com/slok/bkup/internal/storage"
	"github.com/slok/bkup/internal/task"
)

const (
	// SuccessSubject is the notification subject of a run without failures.
	SuccessSubject = "Backup succeeded"
	// SuccessBody is the notification body of a run without failures.
	SuccessBody = "Hope you're having a nice day :)"
	// FatalSubject is the notification subject used when the run itself breaks.
	FatalSubject = "Backup failed: 1 error"
)

// ServiceConfig is the configuration for the backup service.
type ServiceConfig struct {
	Tasks    []task.Task
	Notifier notify.Notifier
	// Repository is optional, when set every run is journaled on it.
	Repository storage.RunRepository
	// Now is used for run timestamps (default: time.Now).
	Now    func() time.Time
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("tasks are required")
	}

	if c.Notifier == nil {
		return fmt.Errorf("notifier is required")
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Backup"})

	return nil
}

// Service runs the backup tasks in order and notifies the outcome once.
type Service struct {
	tasks    []task.Task
	notifier notify.Notifier
	repo     storage.RunRepository
	now      func() time.Time
	logger   log.Logger
}

// NewService creates a new backup service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		tasks:    cfg.Tasks,
		notifier: cfg.Notifier,
		repo:     cfg.Repository,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the backup request parameters.
type Request struct {
	// DryRun marks the journaled run as a dry run.
	DryRun bool
}

// Result is the outcome of a backup run.
type Result struct {
	Run     model.Run
	Subject string
	Body    string
}

// Run runs every task, collecting failures without stopping, and sends a
// single notification with the summary.
//
// Anything breaking the run itself (a failed notification or a panic outside
// the tasks) is reported with one more notification. Only when that one also
// fails an error is returned.
func (s *Service) Run(ctx context.Context, req Request) (res *Result, err error) {
	run := &model.Run{
		ID:        ulid.Make().String(),
		Status:    model.RunStatusRunning,
		DryRun:    req.DryRun,
		StartedAt: s.now().UTC(),
	}
	ctx = s.logger.SetValuesOnCtx(ctx, log.Kv{"run-id": run.ID})
	logger := s.logger.WithCtxValues(ctx)

	var reported *Result
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		// The run was already reported, a second notification would duplicate it.
		if reported != nil {
			logger.Errorf("Backup run panicked after notifying: %v", r)
			reported.Run = *run
			res, err = reported, nil
			return
		}
		res, err = s.fatal(ctx, logger, run, fmt.Errorf("backup run panicked: %v", r))
	}()

	res, err = s.run(ctx, logger, run, &reported)
	if err != nil {
		return s.fatal(ctx, logger, run, err)
	}

	return res, nil
}

func (s *Service) run(ctx context.Context, logger log.Logger, run *model.Run, reported **Result) (*Result, error) {
	logger.Infof("Starting backup run with %d tasks", len(s.tasks))
	jctx := context.WithoutCancel(ctx)
	s.journal(logger, "create run", func() error { return s.repo.CreateRun(jctx, *run) })

	var failures model.Failures
	for i, t := range s.tasks {
		logger.Infof("Running task %s", t.Name)

		startedAt := s.now().UTC()
		tctx := logger.SetValuesOnCtx(ctx, log.Kv{"task": t.Name})
		taskFailures := task.Try(tctx, t.Name, t.Run)
		result := model.NewTaskResult(i+1, t.Name, taskFailures, startedAt, s.now().UTC())

		failures = append(failures, taskFailures...)
		run.Tasks = append(run.Tasks, result)

		if len(taskFailures) > 0 {
			logger.Warningf("Task %s failed with %d error(s)", t.Name, len(taskFailures))
		}
		s.journal(logger, "add task result", func() error { return s.repo.AddTaskResult(jctx, run.ID, result) })
	}

	subject, body := Summarize(failures)
	if err := s.notify(ctx, subject, body); err != nil {
		return nil, err
	}
	*reported = &Result{Subject: subject, Body: body}
	logger.Infof("Reported backup result: %s", subject)

	run.Status = model.RunStatusSucceeded
	if len(failures) > 0 {
		run.Status = model.RunStatusFailed
	}
	s.finish(ctx, logger, run, subject)

	return &Result{Run: *run, Subject: subject, Body: body}, nil
}

// fatal sends the last resort notification for a broken run.
func (s *Service) fatal(ctx context.Context, logger log.Logger, run *model.Run, cause error) (*Result, error) {
	logger.Errorf("Backup run failed: %s", cause)

	run.Status = model.RunStatusFailed
	body := cause.Error()
	if err := s.notify(ctx, FatalSubject, body); err != nil {
		s.finish(ctx, logger, run, "")
		return nil, fmt.Errorf("could not notify backup failure (%s): %w", cause, err)
	}

	s.finish(ctx, logger, run, FatalSubject)
	return &Result{Run: *run, Subject: FatalSubject, Body: body}, nil
}

// notify sends even when the run context was cancelled, so an interrupted run is still reported.
func (s *Service) notify(ctx context.Context, subject, body string) error {
	if err := s.notifier.Notify(context.WithoutCancel(ctx), subject, body); err != nil {
		return fmt.Errorf("could not send notification: %w", err)
	}
	return nil
}

func (s *Service) finish(ctx context.Context, logger log.Logger, run *model.Run, subject string) {
	finishedAt := s.now().UTC()
	run.FinishedAt = &finishedAt
	run.Subject = subject
	run.Notified = subject != ""
	s.journal(logger, "update run", func() error { return s.repo.UpdateRun(context.WithoutCancel(ctx), *run) })
}

// journal records on the optional repository. Journal errors and panics never change the run outcome.
func (s *Service) journal(logger log.Logger, action string, fn func() error) {
	if s.repo == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warningf("Could not %s on journal: panic: %v", action, r)
		}
	}()

	if err := fn(); err != nil {
		logger.Warningf("Could not %s on journal: %s", action, err)
	}
}

// Summarize returns the notification subject and body for the run failures.
func Summarize(failures model.Failures) (subject, body string) {
	if len(failures) == 0 {
		return SuccessSubject, SuccessBody
	}

	plural := "s"
	if len(failures) == 1 {
		plural = ""
	}

	return fmt.Sprintf("Backup failed! %d error%s", len(failures), plural), failures.Text()
}
