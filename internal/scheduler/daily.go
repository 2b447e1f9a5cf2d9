package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is the unit of work a Daily runs.
type Task func(ctx context.Context) error

// Daily runs a task once per calendar day at a fixed wall-clock time in loc.
type Daily struct {
	name   string
	hour   int
	minute int
	loc    *time.Location
	task   Task
	logger *zap.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	lastRun time.Time
	runs    int
}

// NewDaily parses at as HH:MM.
func NewDaily(name, at string, loc *time.Location, task Task, logger *zap.Logger) (*Daily, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("scheduler %s: invalid time of day %q", name, at)
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daily{
		name:   name,
		hour:   hour,
		minute: minute,
		loc:    loc,
		task:   task,
		logger: logger.With(zap.String("scheduler", name)),
		now:    time.Now,
		after:  time.After,
	}, nil
}

// Next returns the first run time strictly after now.
func (d *Daily) Next(now time.Time) time.Time {
	local := now.In(d.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.hour, d.minute, 0, 0, d.loc)
	}
	return next
}

// Run blocks until ctx is done, firing the task at each scheduled time.
// A failed run is logged and retried at the next day's slot.
func (d *Daily) Run(ctx context.Context) {
	for {
		next := d.Next(d.now())
		d.logger.Info("next run scheduled", zap.Time("at", next))
		select {
		case <-ctx.Done():
			return
		case <-d.after(next.Sub(d.now())):
		}
		d.fire(ctx)
	}
}

// Start runs the loop in a goroutine.
func (d *Daily) Start(ctx context.Context) {
	go d.Run(ctx)
}

// Runs reports how many times the task has fired, and when last.
func (d *Daily) Runs() (int, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs, d.lastRun
}

func (d *Daily) fire(ctx context.Context) {
	start := d.now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("scheduled task panicked", zap.Any("panic", r))
		}
		d.mu.Lock()
		d.runs++
		d.lastRun = start
		d.mu.Unlock()
	}()
	if err := d.task(ctx); err != nil {
		d.logger.Error("scheduled task failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return
	}
	d.logger.Info("scheduled task finished", zap.Duration("took", time.Since(start)))
}
