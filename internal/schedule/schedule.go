// Package schedule provides the two timing primitives the booking cycle
// needs: a daily wall-clock trigger restricted to a weekday set, and a
// one-shot delay. Both run plain timer loops; no cron expressions.
package schedule

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday resolves a lowercase English weekday name.
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return d, nil
}

// PrecedingDay returns the calendar day before the given weekday. Lunch on
// Tuesday is processed on Monday, Monday lunch on Sunday, and so on around
// the week.
func PrecedingDay(d time.Weekday) time.Weekday {
	return (d + 6) % 7
}

// ReminderDays maps a set of lunch-day names to the weekdays reminders fire
// on (the preceding day of each).
func ReminderDays(lunchDays []string) (map[time.Weekday]bool, error) {
	out := make(map[time.Weekday]bool, len(lunchDays))
	for _, name := range lunchDays {
		d, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		out[PrecedingDay(d)] = true
	}
	return out, nil
}

// ParseTimeOfDay parses a 24h "HH:MM" string.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err == nil {
		minute, err = strconv.Atoi(parts[1])
	}
	if err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time of day %q", s)
	}
	return hour, minute, nil
}

// Daily runs Task at Hour:Minute in Location on each weekday in Days.
type Daily struct {
	Hour     int
	Minute   int
	Days     map[time.Weekday]bool
	Location *time.Location
	Task     func(context.Context)
}

// Next returns the first instant strictly after now that matches the
// configured time-of-day and weekday set. A match, if any, is at most a week
// out; with no active weekdays the zero time is returned.
func (d *Daily) Next(now time.Time) time.Time {
	now = now.In(d.Location)
	fire := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, d.Minute, 0, 0, d.Location)
	for i := 0; i <= 7; i++ {
		if fire.After(now) && d.Days[fire.Weekday()] {
			return fire
		}
		fire = fire.AddDate(0, 0, 1)
		fire = time.Date(fire.Year(), fire.Month(), fire.Day(), d.Hour, d.Minute, 0, 0, d.Location)
	}
	return time.Time{}
}

// Run fires Task on schedule until the context is cancelled.
func (d *Daily) Run(ctx context.Context) {
	if len(d.Days) == 0 {
		log.Println("Daily trigger has no active weekdays. Not starting.")
		return
	}

	for {
		next := d.Next(time.Now())
		log.Printf("Next trigger scheduled for %s", next.Format(time.RFC1123))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Daily trigger shutting down.")
			return
		case <-timer.C:
			d.Task(ctx)
		}
	}
}

// After runs task once delay has elapsed, unless the context is cancelled
// first. It blocks; callers that need the current goroutine back run it in
// their own.
func After(ctx context.Context, delay time.Duration, task func(context.Context)) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
		task(ctx)
	}
}
