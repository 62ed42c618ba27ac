package chats

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitshare/internal/auth"
	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/config"
	"github.com/julianstephens/habitshare/internal/keyring"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/realtime"
)

// setup starts a realtime server and signs "me" in against it. The REST
// API is never reached by chat commands beyond the initial habit load.
func setup(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gokeyring.MockInit()

	store, err := realtime.OpenStore(realtime.StoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tokens := auth.NewTokenManager("chat-cli-test-secret-0123", time.Hour)
	r := gin.New()
	r.GET("/rt", realtime.NewServer(store, tokens, 200).Handle)
	r.GET("/habits", func(c *gin.Context) { c.JSON(200, []models.Habit{}) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	token, err := tokens.Generate(models.User{ID: "me", DisplayName: "Me"})
	if err != nil {
		t.Fatal(err)
	}
	if err := keyring.SaveSession(models.Session{Token: token, UserID: "me", DisplayName: "Me"}); err != nil {
		t.Fatal(err)
	}

	ctx := cli.NewContext(context.Background(), config.Client{
		APIURL:      srv.URL,
		RealtimeURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/rt",
		AuthKey:     "pk",
	})
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.In = strings.NewReader("")
	return ctx, out
}

func TestSendListDelete(t *testing.T) {
	ctx, out := setup(t)

	if err := (&ChatListCmd{Share: "s1"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No messages yet.") {
		t.Errorf("empty list = %q", out.String())
	}

	if err := (&ChatSendCmd{Share: "s1", Message: []string{"nice", "streak"}}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&ChatListCmd{Share: "s1"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Me (you): nice streak") {
		t.Fatalf("list = %q", out.String())
	}

	line := out.String()
	key := line[strings.Index(line, "[")+1 : strings.Index(line, "]")]
	if err := (&ChatDeleteCmd{Share: "s1", Key: key, Yes: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&ChatListCmd{Share: "s1"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No messages yet.") {
		t.Errorf("after delete = %q", out.String())
	}
}

func TestSendBlankDoesNotConnect(t *testing.T) {
	ctx := cli.NewContext(context.Background(), config.Client{RealtimeURL: "ws://127.0.0.1:1/rt"})
	if err := (&ChatSendCmd{Share: "s1", Message: []string{" "}}).Run(ctx); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestDeleteMissingMessage(t *testing.T) {
	ctx, _ := setup(t)
	err := (&ChatDeleteCmd{Share: "s1", Key: "nope", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Run() error = %v", err)
	}
}
