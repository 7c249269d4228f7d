// Package scheduler runs the periodic reminder job: every hour inside the
// configured window it finds users with due words and hands each one to the
// notifier.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/ruslan-korneev/lingooru-sub001/internal/review"
)

// Notifier delivers a due-words reminder to one user. The concrete transport
// (Telegram) lives in internal/notify.
type Notifier interface {
	SendReminder(userID int64, dueCount int) error
}

// DueLister is the slice of the learning store the job needs.
type DueLister interface {
	ListUsersWithDue(ctx context.Context, asOf time.Time) ([]review.UserDueCount, error)
}

// Config bounds the daily reminder window (hours, inclusive).
type Config struct {
	StartHour int
	EndHour   int
}

// Scheduler owns the gocron instance running the reminder job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	records   DueLister
	notifier  Notifier
	cfg       Config
	log       *logrus.Logger
	now       func() time.Time
}

// New creates a reminder scheduler. logger may be nil to use the logrus
// standard logger.
func New(records DueLister, notifier Notifier, cfg Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		records:   records,
		notifier:  notifier,
		cfg:       cfg,
		log:       logger,
		now:       time.Now,
	}
}

// Start schedules the hourly reminder check and runs it asynchronously.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies every user with at least one due word,
// unless the current hour falls outside the notification window.
func (s *Scheduler) checkAndSendReminders() {
	now := s.now()
	hour := now.Hour()
	if hour < s.cfg.StartHour || hour > s.cfg.EndHour {
		s.log.WithField("hour", hour).Debug("outside notification window, skipping reminders")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, err := s.records.ListUsersWithDue(ctx, now.UTC())
	if err != nil {
		s.log.WithError(err).Error("failed to list users with due words")
		return
	}

	for _, u := range users {
		if err := s.notifier.SendReminder(u.UserID, u.Count); err != nil {
			s.log.WithError(err).WithField("user_id", u.UserID).Error("failed to send reminder")
			continue
		}
		s.log.WithFields(logrus.Fields{
			"user_id":   u.UserID,
			"due_count": u.Count,
		}).Info("reminder sent")
	}
}
