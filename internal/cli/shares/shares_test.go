package shares

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
	"github.com/julianstephens/habitshare/internal/tracker"
)

type shareAPI struct {
	mu      sync.Mutex
	habits  []models.Habit
	shares  map[string]models.Share
	deletes int
}

func (a *shareAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/habits":
		_ = json.NewEncoder(w).Encode(a.habits)
	case path == "/shares" && r.Method == http.MethodGet:
		out := []models.Share{}
		for _, s := range a.shares {
			out = append(out, s)
		}
		_ = json.NewEncoder(w).Encode(out)
	case path == "/shares" && r.Method == http.MethodPost:
		var s models.Share
		_ = json.NewDecoder(r.Body).Decode(&s)
		a.shares[s.ID] = s
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(s)
	case strings.HasSuffix(path, "/upvote"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/shares/"), "/upvote")
		s := a.shares[id]
		s.Upvotes++
		a.shares[id] = s
		_ = json.NewEncoder(w).Encode(s)
	case strings.HasPrefix(path, "/shares/"):
		id := strings.TrimPrefix(path, "/shares/")
		s, ok := a.shares[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"record not found"}`))
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(s)
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&s)
			a.shares[id] = s
			_ = json.NewEncoder(w).Encode(s)
		case http.MethodDelete:
			delete(a.shares, id)
			a.deletes++
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (a *shareAPI) get(id string) (models.Share, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.shares[id]
	return s, ok
}

func setup(t *testing.T, api *shareAPI) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()
	if err := keyring.SaveSession(models.Session{Token: "tok", UserID: "me", DisplayName: "Me"}); err != nil {
		t.Fatal(err)
	}
	if api.shares == nil {
		api.shares = make(map[string]models.Share)
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ctx := cli.NewContext(context.Background(), config.Client{APIURL: srv.URL, AuthKey: "pk"})
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.In = strings.NewReader("")
	return ctx, out
}

func TestCreateAndList(t *testing.T) {
	h := models.NewHabit("Read", "me", time.Now()).WithStatus(0, models.StatusDone)
	api := &shareAPI{habits: []models.Habit{h}}
	ctx, out := setup(t, api)

	if err := (&ShareCreateCmd{Habit: "Read", Comment: "day one"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Shared Read at 14%") {
		t.Errorf("create output = %q", out.String())
	}

	out.Reset()
	if err := (&ShareListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "All Habits") || !strings.Contains(out.String(), `"day one"`) {
		t.Errorf("list all = %q", out.String())
	}

	out.Reset()
	if err := (&ShareListCmd{Habit: "read"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "Read\n") {
		t.Errorf("list habit = %q", out.String())
	}
}

func TestUpvotePaths(t *testing.T) {
	api := &shareAPI{shares: map[string]models.Share{"s1": {ID: "s1", HabitName: "Read", Upvotes: 5}}}
	ctx, out := setup(t, api)

	if err := (&ShareUpvoteCmd{Share: "s1"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&ShareUpvoteCmd{Share: "s1", Legacy: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if s, _ := api.get("s1"); s.Upvotes != 7 {
		t.Errorf("upvotes = %d, want 7", s.Upvotes)
	}
	if !strings.Contains(out.String(), "▲ 7") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDeleteOthersShare(t *testing.T) {
	api := &shareAPI{shares: map[string]models.Share{"s1": {ID: "s1", UserID: "someone-else"}}}
	ctx, _ := setup(t, api)

	err := (&ShareDeleteCmd{Share: "s1", Yes: true}).Run(ctx)
	if err != tracker.ErrNotOwner {
		t.Errorf("Run() error = %v, want ErrNotOwner", err)
	}
	if _, ok := api.get("s1"); !ok {
		t.Error("share was deleted")
	}
}

func TestDeleteOwnShare(t *testing.T) {
	api := &shareAPI{shares: map[string]models.Share{"s1": {ID: "s1", UserID: "me", HabitName: "Read"}}}
	ctx, _ := setup(t, api)
	ctx.In = strings.NewReader("y\n")

	if err := (&ShareDeleteCmd{Share: "s1"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := api.get("s1"); ok {
		t.Error("share still present")
	}
}
