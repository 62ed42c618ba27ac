package account

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/config"
	"github.com/julianstephens/habitshare/internal/keyring"
	"github.com/julianstephens/habitshare/internal/models"
)

func newTestContext(t *testing.T, handler http.HandlerFunc) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ctx := cli.NewContext(context.Background(), config.Client{APIURL: srv.URL, AuthKey: "pk"})
	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}

func authHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login", "/auth/register":
			if r.Header.Get("X-Publishable-Key") != "pk" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(models.AuthResponse{
				Token: "tok",
				User:  models.User{ID: "u1", Email: "ana@example.com", DisplayName: "Ana"},
			})
		case "/habits":
			_ = json.NewEncoder(w).Encode([]models.Habit{})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}
}

func TestLoginStoresSession(t *testing.T) {
	ctx, out := newTestContext(t, authHandler(t))

	cmd := &LoginCmd{Email: "ana@example.com", Password: "correct horse"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s, err := keyring.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if s.Token != "tok" || s.UserID != "u1" {
		t.Errorf("stored session = %+v", s)
	}
	if !strings.Contains(out.String(), "Signed in as Ana") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRegisterValidatesLocally(t *testing.T) {
	ctx, _ := newTestContext(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s", r.URL.Path)
	})

	cmd := &RegisterCmd{Email: "not-an-email", Password: "correct horse"}
	if err := cmd.Run(ctx); err == nil {
		t.Error("Run() should reject an invalid email")
	}
}

func TestLogoutAndWhoami(t *testing.T) {
	ctx, out := newTestContext(t, authHandler(t))

	if err := (&WhoamiCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Not signed in") {
		t.Errorf("whoami before login = %q", out.String())
	}

	if err := (&LoginCmd{Email: "ana@example.com", Password: "pw123456"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&WhoamiCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Ana <ana@example.com>") {
		t.Errorf("whoami = %q", out.String())
	}

	if err := (&LogoutCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := keyring.LoadSession(); err != keyring.ErrNotFound {
		t.Errorf("LoadSession() after logout error = %v", err)
	}
}
