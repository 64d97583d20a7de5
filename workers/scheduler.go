package workers

import (
	"context"
	"log/slog"
	"time"

	admin "github.com/ceciliaMar/Virtual-Library/service/admin"
)

// Sender delivers one notification payload. The real transport lives
// outside this process; LogSender stands in for local runs.
type Sender interface {
	Send(ctx context.Context, n admin.Notification) error
}

// LogSender writes notifications to the structured log instead of
// sending them anywhere.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n admin.Notification) error {
	slog.Info("notification",
		"to", n.RecipientEmail,
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}

// Scheduler owns the cadence of the weekly report and the overdue
// alert sweep; the admin service itself has no timer logic.
type Scheduler struct {
	Admin    admin.Service
	Sender   Sender
	Interval time.Duration
	Log      *slog.Logger
}

func NewScheduler(svc admin.Service, sender Sender, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{Admin: svc, Sender: sender, Interval: interval, Log: log}
}

// Start runs the sweep on every tick until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Sweep sends the admin digest, then one notice per overdue rent.
func (s *Scheduler) Sweep(ctx context.Context) {
	report, err := s.Admin.RunWeeklyReport(ctx)
	if err != nil {
		s.Log.Error("weekly report failed", "err", err)
	} else if err := s.Sender.Send(ctx, report); err != nil {
		s.Log.Error("weekly report delivery failed", "err", err)
	}

	alerts, err := s.Admin.RunOverdueAlertSweep(ctx)
	if err != nil {
		s.Log.Error("overdue sweep failed", "err", err)
		return
	}
	for _, a := range alerts {
		if err := s.Sender.Send(ctx, a); err != nil {
			s.Log.Error("alert delivery failed", "to", a.RecipientEmail, "err", err)
		}
	}
	s.Log.Info("overdue sweep done", "alerts", len(alerts))
}
