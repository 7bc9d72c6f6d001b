package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lunchbuddy-backend/config"
	"lunchbuddy-backend/internal/cycle"
	"lunchbuddy-backend/internal/form"
	"lunchbuddy-backend/internal/model"
	"lunchbuddy-backend/internal/store"
	"lunchbuddy-backend/internal/window"
)

// recordingNotifier stands in for the Telegram transport and keeps every
// outbound message per recipient.
type recordingNotifier struct {
	mu      sync.Mutex
	sent    map[int64][]string
	prompts map[int64]int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		sent:    make(map[int64][]string),
		prompts: make(map[int64]int),
	}
}

func (n *recordingNotifier) Send(chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent[chatID] = append(n.sent[chatID], text)
	return nil
}

func (n *recordingNotifier) SendPrompt(chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompts[chatID]++
	return nil
}

func (n *recordingNotifier) promptCount(chatID int64) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.prompts[chatID]
}

// formSubmission is one completed walk through the mock form endpoint.
type formSubmission struct {
	Email string
	Pref  string
}

// newMockFormServer implements the form's step protocol: every step answers
// application code 0 and sessions are handed out per "start" action. Completed
// sessions are collected into the returned slice.
func newMockFormServer(t *testing.T) (*httptest.Server, func() []formSubmission) {
	t.Helper()

	var mu sync.Mutex
	var nextSession int
	inFlight := make(map[string]*formSubmission)
	var done []formSubmission

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var step struct {
			Action  string `json:"action"`
			Session string `json:"session"`
			Field   string `json:"field"`
			Value   string `json:"value"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&step))

		mu.Lock()
		defer mu.Unlock()

		session := step.Session
		switch step.Action {
		case "start":
			nextSession++
			session = fmt.Sprintf("sess-%d", nextSession)
			inFlight[session] = &formSubmission{}
		case "input":
			if step.Field == "email" {
				inFlight[session].Email = step.Value
			}
		case "select":
			if step.Value != "yes" {
				sub := inFlight[session]
				sub.Pref = step.Value
				done = append(done, *sub)
				delete(inFlight, session)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]any{"code": 0, "session": session})
		assert.NoError(t, err)
	}))

	submissions := func() []formSubmission {
		mu.Lock()
		defer mu.Unlock()
		out := make([]formSubmission, len(done))
		copy(out, done)
		return out
	}
	return server, submissions
}

// TestBookingCycleLifecycle runs a full cycle against a real sqlite-backed
// store and the real form client: enroll and approve users, fan out the
// reminders, record responses, then resolve the window and verify which users
// ended up booked.
func TestBookingCycleLifecycle(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&model.User{}))

	server, submissions := newMockFormServer(t)
	defer server.Close()

	gormStore := store.NewGormStore(testDB)
	notifier := newRecordingNotifier()
	submitter := form.NewClient(&config.FormConfig{URL: server.URL, TimeoutSeconds: 5})
	win := window.New()
	driver := cycle.NewDriver(gormStore, notifier, submitter, win, time.Minute, time.UTC)

	ctx := context.Background()

	// Preferred days are chosen so the silent fall-back is deterministic on any
	// day the test runs: all seven days always books, none never does.
	allDays := model.JoinDays([]string{
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	})
	users := []model.User{
		{TelegramID: 1, FullName: "Yes Yuki", Email: "yuki@corp.test", DietaryPreference: model.DietVeg},
		{TelegramID: 2, FullName: "No Noor", Email: "noor@corp.test", DietaryPreference: model.DietNonVeg, PreferredDays: allDays},
		{TelegramID: 3, FullName: "Silent Sam", Email: "sam@corp.test", DietaryPreference: model.DietNonVeg, PreferredDays: allDays},
		{TelegramID: 4, FullName: "Silent Skip", Email: "skip@corp.test", DietaryPreference: model.DietVeg},
	}
	for _, u := range users {
		require.NoError(t, gormStore.UpsertUser(ctx, u))
		approved, err := gormStore.ApproveUser(ctx, u.TelegramID)
		require.NoError(t, err)
		require.True(t, approved)
	}

	// A fifth user enrolls but is never verified; the cycle must skip them.
	require.NoError(t, gormStore.UpsertUser(ctx, model.User{
		TelegramID: 5, FullName: "Pending Pat", Email: "pat@corp.test",
		DietaryPreference: model.DietVeg, PreferredDays: allDays,
	}))

	t.Run("Reminders Fan Out To Verified Users", func(t *testing.T) {
		driver.SendReminders(ctx)

		assert.True(t, win.IsOpen())
		for id := int64(1); id <= 4; id++ {
			assert.Equal(t, 1, notifier.promptCount(id), "user %d should get one prompt", id)
		}
		assert.Equal(t, 0, notifier.promptCount(5), "unverified user should get no prompt")
	})

	t.Run("Responses Land In The Open Window", func(t *testing.T) {
		assert.Equal(t, window.OutcomeRecorded, driver.HandleResponse(1, window.ChoiceYes))
		assert.Equal(t, window.OutcomeRecorded, driver.HandleResponse(2, window.ChoiceNo))

		yes, no := win.Counts()
		assert.Equal(t, 1, yes)
		assert.Equal(t, 1, no)
	})

	t.Run("Resolution Books The Right Users", func(t *testing.T) {
		driver.ResolveBookings(ctx)
		assert.False(t, win.IsOpen())

		got := submissions()
		booked := make(map[string]string, len(got))
		for _, s := range got {
			booked[s.Email] = s.Pref
		}

		assert.Len(t, got, 2, "explicit yes and the silent all-days user book")
		assert.Equal(t, "Veg", booked["yuki@corp.test"])
		assert.Equal(t, "Non Veg", booked["sam@corp.test"])
		assert.NotContains(t, booked, "noor@corp.test")
		assert.NotContains(t, booked, "skip@corp.test")
		assert.NotContains(t, booked, "pat@corp.test")
	})

	t.Run("Late Response Is Rejected", func(t *testing.T) {
		assert.Equal(t, window.OutcomeExpired, driver.HandleResponse(4, window.ChoiceYes))

		// Nothing new was booked.
		assert.Len(t, submissions(), 2)
	})
}
