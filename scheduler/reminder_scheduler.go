// Package scheduler maps each todo with an enabled reminder onto exactly one
// pending deferred job, keyed by todo id.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier delivers the user-visible notification when a reminder fires. A
// returned error is a permanent failure for that occurrence; the scheduler
// never retries.
type Notifier interface {
	Notify(todoID int64, title string) error
}

// JobKey names the unique job for a todo, mirrored into logs and the event
// mirror.
func JobKey(todoID int64) string {
	return fmt.Sprintf("reminder_%d", todoID)
}

type job struct {
	timer *time.Timer
	title string
	dueAt time.Time
}

// ReminderScheduler owns the pending reminder jobs. Scheduling twice for the
// same todo id replaces the earlier job; uniqueness is a property of the
// scheduler, not of caller discipline.
type ReminderScheduler struct {
	mu       sync.Mutex
	jobs     map[int64]*job
	notifier Notifier

	// now is swappable for tests.
	now func() time.Time
}

func NewReminderScheduler(notifier Notifier) *ReminderScheduler {
	return &ReminderScheduler{
		jobs:     make(map[int64]*job),
		notifier: notifier,
		now:      time.Now,
	}
}

// Schedule installs (or replaces) the pending job for todoID. A due time in
// the past fires immediately instead of being rejected.
func (s *ReminderScheduler) Schedule(todoID int64, title string, dueAt time.Time) {
	delay := dueAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[todoID]; ok {
		existing.timer.Stop()
	}

	j := &job{title: title, dueAt: dueAt}
	j.timer = time.AfterFunc(delay, func() {
		s.fire(todoID, j)
	})
	s.jobs[todoID] = j

	zap.L().Info("reminder scheduled",
		zap.String("job", JobKey(todoID)),
		zap.Duration("delay", delay))
}

// Cancel removes any pending job for todoID. It is a no-op when none exists.
func (s *ReminderScheduler) Cancel(todoID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[todoID]; ok {
		existing.timer.Stop()
		delete(s.jobs, todoID)
		zap.L().Info("reminder cancelled", zap.String("job", JobKey(todoID)))
	}
}

// Pending reports whether a job is currently installed for todoID.
func (s *ReminderScheduler) Pending(todoID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[todoID]
	return ok
}

// PendingCount reports the number of installed jobs.
func (s *ReminderScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// DueAt returns the due time of the pending job for todoID, if any.
func (s *ReminderScheduler) DueAt(todoID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[todoID]; ok {
		return j.dueAt, true
	}
	return time.Time{}, false
}

// Stop cancels every pending job. Fired notifications are not undone.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, j := range s.jobs {
		j.timer.Stop()
		delete(s.jobs, id)
	}
}

func (s *ReminderScheduler) fire(todoID int64, fired *job) {
	s.mu.Lock()
	// The job may have been replaced or cancelled between the timer firing
	// and this goroutine taking the lock; only the live job may consume the
	// firing.
	if live, ok := s.jobs[todoID]; !ok || live != fired {
		s.mu.Unlock()
		return
	}
	delete(s.jobs, todoID)
	s.mu.Unlock()

	if err := s.notifier.Notify(todoID, fired.title); err != nil {
		zap.L().Error("reminder notification failed",
			zap.String("job", JobKey(todoID)),
			zap.Error(err))
	}
}

// SetNowFunc overrides the clock. Tests only.
func (s *ReminderScheduler) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
