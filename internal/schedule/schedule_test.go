package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecedingDay(t *testing.T) {
	expected := map[time.Weekday]time.Weekday{
		time.Monday:    time.Sunday,
		time.Tuesday:   time.Monday,
		time.Wednesday: time.Tuesday,
		time.Thursday:  time.Wednesday,
		time.Friday:    time.Thursday,
		time.Saturday:  time.Friday,
		time.Sunday:    time.Saturday,
	}
	for lunchDay, processDay := range expected {
		assert.Equal(t, processDay, PrecedingDay(lunchDay))
	}
}

func TestReminderDays(t *testing.T) {
	days, err := ReminderDays([]string{"tuesday", "wednesday", "thursday"})
	require.NoError(t, err)
	assert.Equal(t, map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
	}, days)

	_, err = ReminderDays([]string{"someday"})
	assert.Error(t, err)
}

func TestParseTimeOfDay(t *testing.T) {
	h, m, err := ParseTimeOfDay("07:00")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 0, m)

	for _, bad := range []string{"", "7", "25:00", "07:61", "aa:bb"} {
		_, _, err := ParseTimeOfDay(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestDaily_Next(t *testing.T) {
	d := &Daily{
		Hour:     7,
		Minute:   0,
		Days:     map[time.Weekday]bool{time.Monday: true, time.Wednesday: true},
		Location: time.UTC,
	}

	// 2026-08-24 is a Monday.
	monday := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)

	// Before today's fire time on an active day: fires today.
	assert.Equal(t, time.Date(2026, 8, 24, 7, 0, 0, 0, time.UTC), d.Next(monday))

	// Exactly at the fire time: rolls to the next active day.
	atFire := time.Date(2026, 8, 24, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC), d.Next(atFire))

	// On an inactive day: skips ahead to the next active one.
	tuesday := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 26, 7, 0, 0, 0, time.UTC), d.Next(tuesday))

	// Late on the last active day of the week: wraps to next week.
	wednesdayNight := time.Date(2026, 8, 26, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 7, 0, 0, 0, time.UTC), d.Next(wednesdayNight))
}

func TestDaily_NextWithNoActiveDays(t *testing.T) {
	d := &Daily{Hour: 7, Location: time.UTC}

	assert.True(t, d.Next(time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)).IsZero())
}

func TestAfter_RunsTask(t *testing.T) {
	done := make(chan struct{})
	go After(context.Background(), 10*time.Millisecond, func(context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delayed task")
	}
}

func TestAfter_CancelledBeforeFiring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fired := false
	After(ctx, time.Hour, func(context.Context) { fired = true })
	assert.False(t, fired)
}
