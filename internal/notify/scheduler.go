// ABOUTME: Notification scheduler that alerts when a plan item's time arrives
// ABOUTME: Ticks on an interval and reads the latest plan on every tick
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/olympus/internal/logging"
	"github.com/harper/olympus/internal/models"
)

// AlertTitle is the title of every activity alert
const AlertTitle = "Olympus Command"

// Alert is one due activity
type Alert struct {
	Title  string
	Body   string
	Day    string
	ItemID string
}

// Notifier delivers alerts to the user
type Notifier interface {
	// RequestPermission reports whether alerts may be shown
	RequestPermission() bool
	Notify(alert Alert) error
}

// PlanSource supplies the current plan
type PlanSource interface {
	Get() (models.UserProfile, models.LongevityPlan)
}

// Scheduler checks the plan once per Interval. An item alerts at most once per minute
// however short the interval is.
type Scheduler struct {
	Store    PlanSource
	Notifier Notifier
	Clock    func() time.Time
	Interval time.Duration

	minute string
	sent   map[string]bool
}

// NewScheduler creates a scheduler with the one-minute default interval
func NewScheduler(store PlanSource, notifier Notifier) *Scheduler {
	return &Scheduler{Store: store, Notifier: notifier, Clock: time.Now, Interval: time.Minute}
}

// Check returns an alert for every incomplete item of today scheduled exactly at now's
// HH:MM. The plan is read fresh on each call.
func (s *Scheduler) Check(now time.Time) []Alert {
	_, plan := s.Store.Get()
	day, ok := plan.Day(models.WeekdayName(now))
	if !ok {
		return nil
	}

	clock := models.ClockTime(now)
	var alerts []Alert
	for _, it := range day.Items {
		if it.Completed || it.Time != clock {
			continue
		}
		alerts = append(alerts, Alert{
			Title:  AlertTitle,
			Body:   fmt.Sprintf("%s: Your biological synchrony is requested.", it.Activity),
			Day:    day.Day,
			ItemID: it.ID,
		})
	}
	return alerts
}

// Run ticks until ctx is cancelled. Permission is requested once; when denied the
// scheduler still runs but alerts are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}

	allowed := s.Notifier.RequestPermission()
	if !allowed {
		logging.Info("notification permission denied, alerts disabled")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(clock(), allowed)
		}
	}
}

func (s *Scheduler) tick(now time.Time, allowed bool) {
	alerts := s.Check(now)
	if !allowed {
		return
	}

	minute := now.Format("2006-01-02 15:04")
	if minute != s.minute {
		s.minute = minute
		s.sent = make(map[string]bool)
	}

	for _, a := range alerts {
		key := a.Day + "/" + a.ItemID
		if s.sent[key] {
			continue
		}
		s.sent[key] = true
		if err := s.Notifier.Notify(a); err != nil {
			logging.Warn("failed to deliver alert", "day", a.Day, "id", a.ItemID, "err", err)
		}
	}
}
