// Package cycle orchestrates one lunch booking cycle: open the confirmation
// window and prompt every enrolled user, wait out the response period, then
// close the window and resolve each user to a booked or skipped lunch.
package cycle

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lunchbuddy-backend/internal/form"
	"lunchbuddy-backend/internal/messages"
	"lunchbuddy-backend/internal/model"
	"lunchbuddy-backend/internal/notify"
	"lunchbuddy-backend/internal/schedule"
	"lunchbuddy-backend/internal/window"
)

// Directory is the slice of the user store the driver reads each cycle.
type Directory interface {
	GetEnrolledUsers(ctx context.Context) ([]model.User, error)
}

// Driver runs the reminder fan-out and the deadline resolution against one
// shared confirmation window.
type Driver struct {
	store     Directory
	notifier  notify.Notifier
	submitter form.Submitter
	window    *window.Window
	timeout   time.Duration
	loc       *time.Location
	now       func() time.Time

	// cycleID is read by the inbound-response path while the scheduler
	// goroutine starts new cycles, so access goes through the mutex.
	mu      sync.Mutex
	cycleID string
}

// NewDriver wires a driver. The window is shared with whatever handles
// inbound responses.
func NewDriver(s Directory, n notify.Notifier, f form.Submitter, w *window.Window, timeout time.Duration, loc *time.Location) *Driver {
	return &Driver{
		store:     s,
		notifier:  n,
		submitter: f,
		window:    w,
		timeout:   timeout,
		loc:       loc,
		now:       time.Now,
	}
}

// Window returns the shared confirmation window.
func (d *Driver) Window() *window.Window {
	return d.window
}

func (d *Driver) setCycleID(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cycleID = id
}

func (d *Driver) currentCycleID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cycleID
}

// HandleResponse records an inbound yes/no from any recipient. Enrollment is
// not checked here; responses from non-enrolled ids are recorded and simply
// never resolved.
func (d *Driver) HandleResponse(userID int64, c window.Choice) window.Outcome {
	outcome := d.window.Record(userID, c)
	cycleID := d.currentCycleID()
	if outcome == window.OutcomeExpired {
		log.Printf("[cycle %s] Rejected expired response from %d", cycleID, userID)
	} else {
		log.Printf("[cycle %s] Recorded %s response from %d", cycleID, c, userID)
	}
	return outcome
}

// RunCycle is the scheduled daily task: send reminders, wait out the response
// window, then resolve bookings. It blocks for the whole cycle; the daily
// trigger does not re-fire until the next scheduled day.
func (d *Driver) RunCycle(ctx context.Context) {
	d.SendReminders(ctx)
	schedule.After(ctx, d.timeout, d.ResolveBookings)
}

// SendReminders opens the window and fans out the lunch prompt to every
// enrolled user. Individual delivery failures are logged and do not stop the
// fan-out.
func (d *Driver) SendReminders(ctx context.Context) {
	cycleID := uuid.NewString()
	d.setCycleID(cycleID)
	d.window.Open()
	log.Printf("[cycle %s] Confirmation window opened", cycleID)

	users, err := d.store.GetEnrolledUsers(ctx)
	if err != nil {
		log.Printf("[cycle %s] Error fetching enrolled users for reminders: %v", cycleID, err)
		return
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u model.User) {
			defer wg.Done()
			if err := d.notifier.SendPrompt(u.TelegramID, messages.LunchConfirmation); err != nil {
				log.Printf("[cycle %s] Failed to send reminder to %d: %v", cycleID, u.TelegramID, err)
			}
		}(u)
	}
	wg.Wait()

	log.Printf("[cycle %s] Sent reminders to %d users", cycleID, len(users))
}

// ResolveBookings closes the window and resolves every enrolled user to a
// final decision: explicit yes books, explicit no skips, silence falls back
// to whether tomorrow is one of the user's preferred days. Users run
// concurrently and independently; one user's failure never blocks another's.
func (d *Driver) ResolveBookings(ctx context.Context) {
	cycleID := d.currentCycleID()
	yes, no := d.window.Close()
	log.Printf("[cycle %s] Confirmation window closed (%d yes, %d no)", cycleID, len(yes), len(no))

	users, err := d.store.GetEnrolledUsers(ctx)
	if err != nil {
		log.Printf("[cycle %s] Error fetching enrolled users for resolution: %v", cycleID, err)
		return
	}

	tomorrow := strings.ToLower(d.now().In(d.loc).AddDate(0, 0, 1).Weekday().String())

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u model.User) {
			defer wg.Done()
			d.resolveUser(ctx, cycleID, u, yes, no, tomorrow)
		}(u)
	}
	wg.Wait()

	log.Printf("[cycle %s] Booking cycle finished for %d users", cycleID, len(users))
}

// resolveUser computes and applies one user's final decision.
func (d *Driver) resolveUser(ctx context.Context, cycleID string, u model.User, yes, no map[int64]struct{}, tomorrow string) {
	if _, ok := yes[u.TelegramID]; ok {
		d.bookLunch(ctx, cycleID, u, "explicit yes")
		return
	}
	if _, ok := no[u.TelegramID]; ok {
		log.Printf("[cycle %s] User %d (%s) has not opted for lunch tomorrow", cycleID, u.TelegramID, u.FullName)
		return
	}

	// No response: fall back to the user's preferred days. The timeout notice
	// goes out first; if it fails the decision is still applied.
	if u.PrefersDay(tomorrow) {
		if err := d.notifier.Send(u.TelegramID, messages.LunchTimeoutOptIn); err != nil {
			log.Printf("[cycle %s] Failed to send timeout notice to %d: %v", cycleID, u.TelegramID, err)
		}
		d.bookLunch(ctx, cycleID, u, "timeout default")
	} else {
		if err := d.notifier.Send(u.TelegramID, messages.LunchTimeoutOptOut); err != nil {
			log.Printf("[cycle %s] Failed to send timeout notice to %d: %v", cycleID, u.TelegramID, err)
		}
		log.Printf("[cycle %s] User %d (%s) defaulted to no lunch tomorrow", cycleID, u.TelegramID, u.FullName)
	}
}

// bookLunch drives the form submission for one user. Failures are logged and
// contained; there is no retry.
func (d *Driver) bookLunch(ctx context.Context, cycleID string, u model.User, reason string) {
	log.Printf("[cycle %s] Booking lunch for user %d (%s), reason: %s", cycleID, u.TelegramID, u.FullName, reason)
	if err := d.submitter.Submit(ctx, u.Email, u.DietaryPreference); err != nil {
		log.Printf("[cycle %s] Failed to book lunch for user %d (%s): %v", cycleID, u.TelegramID, u.FullName, err)
		return
	}
	log.Printf("[cycle %s] Lunch booked for user %d (%s)", cycleID, u.TelegramID, u.FullName)
}
