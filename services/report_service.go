package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExportDisabled = errors.New("export is not configured")
	ErrReportDisabled = errors.New("email reports are not configured")
)

// Mailer sends a plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type ReportService struct {
	analytics *AnalyticsService
	mailer    Mailer
}

func NewReportService(a *AnalyticsService, m Mailer) *ReportService {
	return &ReportService{analytics: a, mailer: m}
}

// Compose renders the daily report text for today.
func (s *ReportService) Compose(ctx context.Context, userID, today string) (string, string, error) {
	dash, err := s.analytics.Dashboard(ctx, userID, today)
	if err != nil {
		return "", "", err
	}
	sum, err := s.analytics.Summary(ctx, userID, today)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Study report for %s\n\n", today)
	fmt.Fprintf(&b, "Studied %.0f of %.0f planned minutes (%.0f%%).\n",
		dash.Totals.StudiedMinutes, dash.Totals.TargetMinutes, dash.Totals.Percent)
	fmt.Fprintf(&b, "Current streak: %d day(s).\n", dash.Streak)
	if sum.BestDay != nil {
		fmt.Fprintf(&b, "Best day: %s (%.1f h all time).\n", sum.BestDay.Name, sum.BestDay.Hours)
	}
	if sum.AverageConfidence != nil {
		fmt.Fprintf(&b, "Average confidence: %d%%.\n", *sum.AverageConfidence)
	}
	if len(dash.Goals) > 0 {
		b.WriteString("\nGoals:\n")
		for _, g := range dash.Goals {
			mark := " "
			if g.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "[%s] %s (%s): %.1f / %.1f h\n", mark, g.Title, g.Subject, g.ActualHours, g.TargetHours)
		}
	}
	return "Your study report for " + today, b.String(), nil
}

func (s *ReportService) Send(ctx context.Context, userID, to, today string) error {
	if s.mailer == nil {
		return ErrReportDisabled
	}
	if strings.TrimSpace(to) == "" {
		return invalid("no e-mail address is associated with this account")
	}
	subject, body, err := s.Compose(ctx, userID, today)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, to, subject, body)
}
