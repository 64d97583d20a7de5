package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ceciliaMar/Virtual-Library/model"
	rentsvc "github.com/ceciliaMar/Virtual-Library/service/rent"
)

// OverdueEntry is one open rent as seen by the scan: elapsed days and
// the penalty the user would owe if they returned the book right now.
type OverdueEntry struct {
	RentID       int64     `json:"rent_id"`
	BookID       int64     `json:"book_id"`
	BookTitle    string    `json:"book_title"`
	UserID       int64     `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	CheckoutDate time.Time `json:"checkout_date"`
	DaysElapsed  int       `json:"days_elapsed"`
	Penalty      int64     `json:"penalty"`
	IsOverdue    bool      `json:"is_overdue"`
}

// Report is the weekly administrative digest: every open rent, late or
// not.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Entries     []OverdueEntry `json:"entries"`
}

// Alert is one overdue notice bound to the renting user.
type Alert struct {
	UserID       int64     `json:"user_id"`
	UserEmail    string    `json:"user_email"`
	BookTitle    string    `json:"book_title"`
	CheckoutDate time.Time `json:"checkout_date"`
	DaysElapsed  int       `json:"days_elapsed"`
	Penalty      int64     `json:"penalty"`
}

// Notification is the outbound payload; delivery belongs to whoever
// consumes it, this service never sends anything.
type Notification struct {
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// Ledger is the read this service needs: one consistent pass over all
// open rents with book and user joined.
type Ledger interface {
	ListOpenRents(ctx context.Context) ([]model.OpenRentRow, error)
}

type Service interface {
	// ScanOverdue classifies every open rent as of the given instant.
	ScanOverdue(ctx context.Context, asOf time.Time) ([]OverdueEntry, error)

	// RunWeeklyReport scans once and builds the admin digest payload.
	RunWeeklyReport(ctx context.Context) (Notification, error)

	// RunOverdueAlertSweep scans once and builds one notice per overdue
	// rent, addressed to the renting user.
	RunOverdueAlertSweep(ctx context.Context) ([]Notification, error)
}

type service struct {
	ledger     Ledger
	adminEmail string
	now        func() time.Time
}

func New(ledger Ledger, adminEmail string) Service {
	return &service{ledger: ledger, adminEmail: adminEmail, now: time.Now}
}

func (s *service) ScanOverdue(ctx context.Context, asOf time.Time) ([]OverdueEntry, error) {
	rows, err := s.ledger.ListOpenRents(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]OverdueEntry, 0, len(rows))
	for _, r := range rows {
		penalty, days := rentsvc.Penalty(r.CheckoutDate, asOf)
		entries = append(entries, OverdueEntry{
			RentID:       r.RentID,
			BookID:       r.BookID,
			BookTitle:    r.BookTitle,
			UserID:       r.UserID,
			UserName:     r.UserName,
			UserEmail:    r.UserEmail,
			CheckoutDate: r.CheckoutDate,
			DaysElapsed:  days,
			Penalty:      penalty,
			IsOverdue:    days > rentsvc.GracePeriodDays,
		})
	}
	return entries, nil
}

// BuildWeeklyReport keeps every entry; the administration wants the
// full picture of what is out, not just the late returns.
func BuildWeeklyReport(entries []OverdueEntry, asOf time.Time) Report {
	return Report{GeneratedAt: asOf, Entries: entries}
}

// BuildUserAlerts keeps only the overdue entries, one per open rent.
func BuildUserAlerts(entries []OverdueEntry) []Alert {
	var out []Alert
	for _, e := range entries {
		if !e.IsOverdue {
			continue
		}
		out = append(out, Alert{
			UserID:       e.UserID,
			UserEmail:    e.UserEmail,
			BookTitle:    e.BookTitle,
			CheckoutDate: e.CheckoutDate,
			DaysElapsed:  e.DaysElapsed,
			Penalty:      e.Penalty,
		})
	}
	return out
}

func (s *service) RunWeeklyReport(ctx context.Context) (Notification, error) {
	asOf := s.now().UTC()
	entries, err := s.ScanOverdue(ctx, asOf)
	if err != nil {
		return Notification{}, err
	}
	report := BuildWeeklyReport(entries, asOf)

	var b strings.Builder
	b.WriteString("RENTS REPORT")
	for _, e := range report.Entries {
		fmt.Fprintf(&b, " Title: %s. User: %s. Email: %s. Rental date: %s. Total days: %d.",
			e.BookTitle, e.UserName, e.UserEmail, e.CheckoutDate.Format("2006-01-02"), e.DaysElapsed)
		if e.Penalty > 0 {
			fmt.Fprintf(&b, " Penalty: %d.", e.Penalty)
		}
	}

	return Notification{
		RecipientEmail: s.adminEmail,
		Subject:        "Virtual Library - Administration - Weekly Report",
		Body:           b.String(),
	}, nil
}

func (s *service) RunOverdueAlertSweep(ctx context.Context) ([]Notification, error) {
	entries, err := s.ScanOverdue(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}

	alerts := BuildUserAlerts(entries)
	out := make([]Notification, 0, len(alerts))
	for _, a := range alerts {
		body := fmt.Sprintf(
			"EXPIRED RENTAL REPORT: Title: %s. Rental date: %s. Days out: %d. Penalty: %d pesos (%d pesos per extra day)",
			a.BookTitle, a.CheckoutDate.Format("2006-01-02"), a.DaysElapsed, a.Penalty, rentsvc.DailyPenaltyRate)
		out = append(out, Notification{
			RecipientEmail: a.UserEmail,
			Subject:        "Virtual Library - Rental expired - Book : " + a.BookTitle,
			Body:           body,
		})
	}
	return out, nil
}
