package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs the sweeper on a fixed interval.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	log     zerolog.Logger
}

func NewScheduler(s *Sweeper, interval time.Duration, log zerolog.Logger) (*Scheduler, error) {
	sched := &Scheduler{
		cron:    cron.New(),
		sweeper: s,
		log:     log,
	}
	spec := fmt.Sprintf("@every %s", interval)
	_, err := sched.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := s.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule sweeper: %w", err)
	}
	return sched, nil
}

func (s *Scheduler) Start() {
	s.log.Info().Msg("sweeper scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("sweeper scheduler stopped")
}
