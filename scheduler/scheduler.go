package scheduler

import (
	"context"
	"time"

	"lotto/service"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler drives the draw lifecycle on the wall clock: a midnight job
// creates the day's draws and a per-minute tick opens and closes them.
// Every transition it triggers is a conditional update, so running more
// than one scheduler instance is safe.
type Scheduler struct {
	draws service.DrawService
	cron  *cron.Cron
	loc   *time.Location
}

// New creates a scheduler running in the given location
func New(draws service.DrawService, loc *time.Location) *Scheduler {
	return &Scheduler{
		draws: draws,
		cron:  cron.New(cron.WithLocation(loc)),
		loc:   loc,
	}
}

// Start registers the jobs and starts the cron loop. It also runs both
// jobs once immediately so a restart mid-day catches up.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("0 0 * * *", func() { s.scheduleToday(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("* * * * *", func() { s.tick(ctx) }); err != nil {
		return err
	}

	s.scheduleToday(ctx)
	s.tick(ctx)

	s.cron.Start()
	log.Info("Draw scheduler started")
	return nil
}

// Stop halts the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Draw scheduler stopped")
}

func (s *Scheduler) scheduleToday(ctx context.Context) {
	if _, err := s.draws.ScheduleDay(ctx, time.Now().In(s.loc)); err != nil {
		log.WithError(err).Error("Failed to schedule today's draws")
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, _, err := s.draws.AdvanceSchedule(ctx, time.Now()); err != nil {
		log.WithError(err).Error("Failed to advance draw schedule")
	}
}
