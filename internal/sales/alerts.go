package sales

import (
	"sort"
	"time"

	"floreria/internal/dto"
)

// DefaultAlertThreshold is the look-ahead window, in days, of the due scan.
const DefaultAlertThreshold = 2

// Urgency tags of a due alert.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
)

// Due-date CSS-style classes used by list views.
const (
	ClassOverdue  = "overdue"
	ClassDueToday = "due-today"
	ClassDueSoon  = "due-soon"
)

// DaysUntil is the calendar-day distance from now to due; negative when the
// due date has passed.
func DaysUntil(due, now time.Time) int {
	return int(Today(due).Sub(Today(now)).Hours() / 24)
}

// UrgencyFor maps days-until-due to an urgency tag.
func UrgencyFor(days int) string {
	switch days {
	case 0:
		return UrgencyCritical
	case 1:
		return UrgencyHigh
	}
	return UrgencyMedium
}

// DueAlerts selects open sales due within [0, threshold] days of now,
// sorted by days-until-due ascending. Sales without a due date, or with an
// unparseable one, are skipped. A negative threshold selects nothing.
func DueAlerts(list []dto.SaleResponse, threshold int, now time.Time) []dto.DueAlertResponse {
	alerts := make([]dto.DueAlertResponse, 0)
	for _, s := range list {
		if !Status(s.Status).Open() || s.DueDate == nil {
			continue
		}
		due, err := ParseDueDate(*s.DueDate)
		if err != nil {
			continue
		}
		days := DaysUntil(due, now)
		if days < 0 || days > threshold {
			continue
		}
		alerts = append(alerts, dto.DueAlertResponse{Sale: s, DaysUntilDue: days, Urgency: UrgencyFor(days)})
	}
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].DaysUntilDue < alerts[j].DaysUntilDue })
	return alerts
}

// DueDateClass classifies a due date for display. Closed sales and sales
// without a date get "".
func DueDateClass(s dto.SaleResponse, now time.Time) string {
	if !Status(s.Status).Open() || s.DueDate == nil {
		return ""
	}
	due, err := ParseDueDate(*s.DueDate)
	if err != nil {
		return ""
	}
	switch days := DaysUntil(due, now); {
	case days < 0:
		return ClassOverdue
	case days == 0:
		return ClassDueToday
	case days <= DefaultAlertThreshold:
		return ClassDueSoon
	}
	return ""
}
