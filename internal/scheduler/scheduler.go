// Package scheduler runs the nightly jobs of the back office.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const jobTimeout = 5 * time.Minute

// Closer closes the books of every branch. Satisfied by *service.ClosingService.
type Closer interface {
	Today() pgtype.Date
	CloseAllBranches(ctx context.Context, date pgtype.Date) (int, error)
}

type Scheduler struct {
	cron   *cron.Cron
	closer Closer
}

// New schedules the daily closing at closingSpec (standard 5-field cron) in loc.
func New(loc *time.Location, closingSpec string, closer Closer) (*Scheduler, error) {
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		closer: closer,
	}
	if _, err := s.cron.AddFunc(closingSpec, s.runClosing); err != nil {
		return nil, fmt.Errorf("schedule daily closing %q: %w", closingSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		log.Info().Time("next", e.Next).Msg("scheduler: job registered")
	}
}

// Stop halts new runs and waits for a running job, or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runClosing() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	date := s.closer.Today()
	start := time.Now()
	closed, err := s.closer.CloseAllBranches(ctx, date)
	if err != nil {
		log.Error().Err(err).Str("date", bizdate.Format(date)).Int("closed", closed).Msg("scheduler: daily closing")
		return
	}
	log.Info().
		Str("date", bizdate.Format(date)).
		Int("closed", closed).
		Dur("duration", time.Since(start)).
		Msg("scheduler: daily closing done")
}

// cronLogger routes cron's own messages into zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
