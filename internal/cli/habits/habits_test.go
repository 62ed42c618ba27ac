package habits

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/config"
	"github.com/julianstephens/habitshare/internal/keyring"
	"github.com/julianstephens/habitshare/internal/models"
)

// habitAPI serves /habits from memory
type habitAPI struct {
	mu     sync.Mutex
	habits map[string]models.Habit
	writes int
}

func (a *habitAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := strings.TrimPrefix(r.URL.Path, "/habits/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/habits":
		out := []models.Habit{}
		for _, h := range a.habits {
			out = append(out, h)
		}
		_ = json.NewEncoder(w).Encode(out)
	case r.Method == http.MethodPost || r.Method == http.MethodPut:
		var h models.Habit
		_ = json.NewDecoder(r.Body).Decode(&h)
		a.habits[h.ID] = h
		a.writes++
		_ = json.NewEncoder(w).Encode(h)
	case r.Method == http.MethodDelete:
		delete(a.habits, id)
		a.writes++
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (a *habitAPI) writeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writes
}

func (a *habitAPI) has(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.habits[id]
	return ok
}

func setup(t *testing.T, seed ...models.Habit) (*cli.Context, *habitAPI, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()
	if err := keyring.SaveSession(models.Session{Token: "tok", UserID: "me", DisplayName: "Me"}); err != nil {
		t.Fatal(err)
	}

	api := &habitAPI{habits: make(map[string]models.Habit)}
	for _, h := range seed {
		api.habits[h.ID] = h
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ctx := cli.NewContext(context.Background(), config.Client{APIURL: srv.URL, AuthKey: "pk"})
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.In = strings.NewReader("")
	return ctx, api, out
}

func TestCommandsRequireSession(t *testing.T) {
	gokeyring.MockInit()
	ctx := cli.NewContext(context.Background(), config.Client{APIURL: "http://127.0.0.1:1", AuthKey: "pk"})
	if err := (&HabitListCmd{}).Run(ctx); err != cli.ErrNotSignedIn {
		t.Errorf("Run() error = %v, want ErrNotSignedIn", err)
	}
}

func TestAddBlankNameIsIgnored(t *testing.T) {
	ctx, api, _ := setup(t)
	if err := (&HabitAddCmd{Name: "  "}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if api.writeCount() != 0 {
		t.Errorf("writes = %d, want 0", api.writeCount())
	}
}

func TestAddListMark(t *testing.T) {
	ctx, _, out := setup(t)

	if err := (&HabitAddCmd{Name: "Read"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&HabitMarkCmd{Habit: "read"}).Run(ctx); err != nil {
		t.Fatalf("mark today error = %v", err)
	}
	if !strings.Contains(out.String(), "done  (14%)") {
		t.Errorf("mark output = %q", out.String())
	}

	out.Reset()
	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "✓······") {
		t.Errorf("list output = %q", out.String())
	}

	if err := (&HabitMarkCmd{Habit: "Read", Day: "2"}).Run(ctx); err == nil {
		t.Error("marking tomorrow should fail")
	}
}

func TestWeekNotFound(t *testing.T) {
	ctx, _, out := setup(t)
	if err := (&HabitWeekCmd{Habit: "nope"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Habit not found.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := models.NewHabit("Read", "me", time.Now())
	ctx, api, _ := setup(t, h)

	ctx.In = strings.NewReader("n\n")
	if err := (&HabitDeleteCmd{Habit: "Read"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if api.writeCount() != 0 {
		t.Error("declined delete reached the API")
	}

	if err := (&HabitDeleteCmd{Habit: "Read", Yes: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if api.has(h.ID) {
		t.Error("habit not deleted")
	}
}

func TestReport(t *testing.T) {
	h := models.NewHabit("Read", "me", time.Now()).WithStatus(0, models.StatusDone)
	other := models.NewHabit("Theirs", "someone-else", time.Now())
	ctx, _, out := setup(t, h, other)

	if err := (&HabitReportCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Overall: 1/7 days (14%)") {
		t.Errorf("report = %q", out.String())
	}
	if strings.Contains(out.String(), "Theirs") {
		t.Error("report includes another user's habit")
	}
}

func TestDayIndex(t *testing.T) {
	h := models.NewHabit("Read", "me", time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local))
	tests := []struct {
		day     string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{"7", 6, false},
		{"8", 0, true},
		{"2024-01-03", 2, false},
		{"2024-02-01", 0, true},
	}
	for _, tt := range tests {
		got, err := dayIndex(h, tt.day)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("dayIndex(%q) = %d, %v", tt.day, got, err)
		}
	}
}
