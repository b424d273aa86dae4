package timesheet

import (
	"fmt"
	"time"

	"time-tracker/backend/internal/models"
)

// Duration is the display form of an accumulated amount of worked time.
type Duration struct {
	TotalMinutes int    `json:"total_minutes"`
	Hours        int    `json:"hours"`
	Minutes      int    `json:"minutes"`
	Formatted    string `json:"formatted"`
}

// ElapsedMinutes sums the whole-minute lengths of the given logs. An open log
// contributes the time elapsed so far, measured against now. Fractions of a
// minute truncate toward zero, per interval.
func ElapsedMinutes(logs []models.TimeLog, now time.Time) int {
	total := 0
	for _, l := range logs {
		end := now
		if l.To != nil {
			end = *l.To
		}
		total += int(end.Sub(l.From) / time.Minute)
	}
	return total
}

// FormatDuration renders total minutes as "{H} hours {M} minutes", dropping
// the hours segment while it is zero. FormatDuration(0) is "0 minutes".
func FormatDuration(totalMinutes int) string {
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	if hours > 0 {
		return fmt.Sprintf("%d hours %d minutes", hours, minutes)
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// Elapsed combines ElapsedMinutes and FormatDuration into one annotation.
func Elapsed(logs []models.TimeLog, now time.Time) Duration {
	total := ElapsedMinutes(logs, now)
	return Duration{
		TotalMinutes: total,
		Hours:        total / 60,
		Minutes:      total % 60,
		Formatted:    FormatDuration(total),
	}
}

// StartOfWeek returns the local Sunday 00:00 preceding or equal to now.
func StartOfWeek(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -int(now.Weekday()))
}

// WeekMinutes sums minutes from logs attributed to the current week. With
// clip false (the historical behavior) a log counts in full when it started
// at or after StartOfWeek(now) or is still open, so an open log straddling
// the boundary is counted from its start rather than clipped; a closed log
// from last week is not counted at all. With clip true every log contributes
// only the portion of its interval after the boundary.
func WeekMinutes(logs []models.TimeLog, now time.Time, clip bool) int {
	weekStart := StartOfWeek(now)
	total := 0

	for _, l := range logs {
		end := now
		if l.To != nil {
			end = *l.To
		}

		if !clip {
			if !l.From.Before(weekStart) || l.To == nil {
				total += int(end.Sub(l.From) / time.Minute)
			}
			continue
		}

		from := l.From
		if from.Before(weekStart) {
			from = weekStart
		}
		if end.After(from) {
			total += int(end.Sub(from) / time.Minute)
		}
	}
	return total
}
