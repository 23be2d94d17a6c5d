// Package sched fires jobs at fixed wall-clock times in the report
// timezone. One job runs to completion before the next is considered;
// there is no concurrent execution.
package sched

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is a scheduled unit of work. Weekday restricts the job to one day
// of the week; Every additionally gates runs to at most once per
// interval (measured from the previous run).
type Job struct {
	Name    string
	Hour    int
	Minute  int
	Weekday *time.Weekday
	Every   time.Duration
	Run     func(ctx context.Context, now time.Time)
}

type Scheduler struct {
	location *time.Location
	tick     time.Duration
	nowTime  func() time.Time // nowTime function (injectable for testing)

	mu      sync.Mutex
	jobs    []Job
	lastRun map[string]time.Time
}

// SchedulerOption defines a function type to modify the Scheduler instance.
type SchedulerOption func(*Scheduler)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.nowTime = nowFunc
	}
}

// WithTick overrides the polling interval.
func WithTick(tick time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.tick = tick
	}
}

func New(location *time.Location, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		location: location,
		tick:     30 * time.Second,
		nowTime:  time.Now,
		lastRun:  make(map[string]time.Time),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Scheduler) Add(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// Start polls until ctx is done, running every due job synchronously.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.RunPending(ctx, s.nowTime())
		}
	}
}

// RunPending executes every job due at now, in registration order.
func (s *Scheduler) RunPending(ctx context.Context, now time.Time) {
	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		if !s.due(job, now) {
			continue
		}
		s.markRun(job.Name, now)
		log.Info().Str("job", job.Name).Msg("scheduled job firing")
		job.Run(ctx, now)
	}
}

func (s *Scheduler) due(job Job, now time.Time) bool {
	local := now.In(s.location)
	if local.Hour() != job.Hour || local.Minute() != job.Minute {
		return false
	}
	if job.Weekday != nil && local.Weekday() != *job.Weekday {
		return false
	}

	s.mu.Lock()
	last, ran := s.lastRun[job.Name]
	s.mu.Unlock()

	if ran && now.Sub(last) < time.Minute {
		return false // already fired this minute
	}
	if ran && job.Every > 0 && now.Sub(last) < job.Every-time.Minute {
		return false
	}
	return true
}

func (s *Scheduler) markRun(name string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun[name] = now
}
