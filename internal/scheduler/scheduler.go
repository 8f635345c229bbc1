// Package scheduler runs the background jobs on cron schedules in the
// market time zone.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named unit of scheduled work
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context)
}

// Scheduler runs jobs on their schedules until its context is cancelled
type Scheduler struct {
	cron   *cron.Cron
	jobs   []Job
	logger zerolog.Logger
}

// New creates a scheduler evaluating schedules in loc
func New(loc *time.Location, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}

	// Create a new cron scheduler with seconds disabled
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(
			cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor,
		)),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Scheduler{cron: c, logger: logger}
}

// Add registers a job. It must be called before Run.
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Run schedules every job, blocks until ctx is done and then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, job := range s.jobs {
		if job.Schedule == "" {
			return fmt.Errorf("job %s has no schedule configured", job.Name)
		}

		// Create a closure to capture the job
		j := job
		_, err := s.cron.AddFunc(j.Schedule, func() {
			start := time.Now()
			s.logger.Info().Str("job", j.Name).Msg("running scheduled job")
			j.Run(ctx)
			s.logger.Info().Str("job", j.Name).Dur("took", time.Since(start)).Msg("scheduled job finished")
		})
		if err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", j.Name, err)
		}

		s.logger.Info().Str("job", j.Name).Str("schedule", j.Schedule).Msg("job scheduled")
	}

	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")

	<-ctx.Done()
	s.logger.Info().Msg("stopping scheduler")
	<-s.cron.Stop().Done()

	return nil
}

// cronLogger adapts zerolog to the cron.Logger interface
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
