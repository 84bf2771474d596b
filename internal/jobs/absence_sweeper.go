// Package jobs runs background work on a cron schedule
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/registrar/internal/pkg/helpers"
)

// Sweeper marks scheduled students without an attendance row as absent
type Sweeper interface {
	SweepAbsences(ctx context.Context, date time.Time) (int64, error)
}

// AbsenceSweeper runs the sweep for the current day on a cron spec
type AbsenceSweeper struct {
	sweeper Sweeper
	cron    *cron.Cron
	logger  zerolog.Logger
	now     func() time.Time
	timeout time.Duration
}

// NewAbsenceSweeper registers the sweep under spec (standard 5-field cron)
func NewAbsenceSweeper(sweeper Sweeper, spec string, logger zerolog.Logger) (*AbsenceSweeper, error) {
	clog := cronLogger{logger: logger}
	c := cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)))
	s := &AbsenceSweeper{
		sweeper: sweeper,
		cron:    c,
		logger:  logger,
		now:     time.Now,
		timeout: 5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid absence sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// cronLogger sends the scheduler's own messages (recovered panics, skipped
// runs) to zerolog
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// RunOnce sweeps today
func (s *AbsenceSweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	day := helpers.Today(s.now())
	inserted, err := s.sweeper.SweepAbsences(ctx, day)
	if err != nil {
		s.logger.Error().Err(err).Str("date", day.Format("2006-01-02")).Int64("inserted", inserted).Msg("Absence sweep finished with errors")
		return
	}
	s.logger.Info().Str("date", day.Format("2006-01-02")).Int64("inserted", inserted).Msg("Absence sweep completed")
}

// Start begins the schedule in its own goroutine
func (s *AbsenceSweeper) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Absence sweeper started")
}

// Stop waits for a running sweep to finish or ctx to expire
func (s *AbsenceSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Absence sweeper did not stop in time")
	}
}
