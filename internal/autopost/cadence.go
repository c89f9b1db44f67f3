// Package autopost turns due schedules into new content pages and feeds them
// back into the publish pipeline. The cadence calculator is a pure function;
// the run engine is the state machine around it.
package autopost

import (
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

const (
	defaultEveryNDays  = 7
	defaultWeeklyDay   = 1 // Monday
	defaultWeeklyHour  = 10
	defaultCronMinutes = 60
	minCronMinutes     = 5
)

// NextRun computes the next run timestamp for a cadence. It is deterministic
// and side-effect-free; it is called when a schedule is created or edited and
// after every successful run.
func NextRun(now time.Time, cadenceType model.CadenceType, doc model.CadenceDoc) time.Time {
	switch cadenceType {
	case model.CadenceWeekly:
		return nextWeekly(now, doc)
	case model.CadenceCron:
		minutes := doc.Minutes
		if minutes == 0 {
			minutes = defaultCronMinutes
		}
		if minutes < minCronMinutes {
			minutes = minCronMinutes
		}
		return now.Add(time.Duration(minutes) * time.Minute)
	default: // every_n_days
		days := doc.Days
		if !doc.DaysSet() {
			days = defaultEveryNDays
		} else if days < 1 {
			days = 1
		}
		return now.AddDate(0, 0, days)
	}
}

// nextWeekly targets an ISO day of week at an exact time of day. A target
// that is today or already passed this week rolls to next week.
func nextWeekly(now time.Time, doc model.CadenceDoc) time.Time {
	target := doc.DayOfWeek
	if target < 1 || target > 7 {
		target = defaultWeeklyDay
	}
	hour := doc.Hour
	if !doc.HourSet() {
		hour = defaultWeeklyHour
	}
	minute := doc.Minute

	today := isoWeekday(now)
	daysAhead := (target - today + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}

	day := now.AddDate(0, 0, daysAhead)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
}

// isoWeekday maps Go's Sunday=0 weekday to ISO Monday=1..Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
