package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/habitshare/internal/api"
	"github.com/julianstephens/habitshare/internal/chat"
	"github.com/julianstephens/habitshare/internal/config"
	"github.com/julianstephens/habitshare/internal/keyring"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/state"
	"github.com/julianstephens/habitshare/internal/tracker"
)

// ErrNotSignedIn is returned by commands that need an account
var ErrNotSignedIn = errors.New("not signed in, run 'habitshare account login' first")

// Context is handed to every habitshare command
type Context struct {
	Ctx     context.Context
	Config  config.Client
	API     *api.Client
	State   *state.Controller
	Tracker *tracker.Tracker
	// Session is the zero value until RequireSession succeeds
	Session models.Session
	Out     io.Writer
	In      io.Reader
}

func NewContext(ctx context.Context, cfg config.Client) *Context {
	client := api.New(cfg.APIURL, api.WithAuthKey(cfg.AuthKey))
	ctrl := state.New(client)
	return &Context{
		Ctx:     ctx,
		Config:  cfg,
		API:     client,
		State:   ctrl,
		Tracker: tracker.New(client, client, ctrl),
		Out:     os.Stdout,
		In:      os.Stdin,
	}
}

// RequireSession loads the stored session, attaches its token to the API
// client and signs the controller in, which loads the user's habits
func (c *Context) RequireSession() error {
	if c.Session.Token != "" {
		return nil
	}
	s, err := keyring.LoadSession()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotSignedIn
		}
		return err
	}
	c.UseSession(s)
	return c.State.SignIn(c.Ctx, s.UserID)
}

// UseSession rebuilds the API client, controller and tracker around s's
// token without loading anything
func (c *Context) UseSession(s models.Session) {
	c.Session = s
	c.API = c.API.WithSession(s.Token)
	c.State = state.New(c.API)
	c.Tracker = tracker.New(c.API, c.API, c.State)
}

// DialChat opens the real-time connection for the signed-in user
func (c *Context) DialChat() (*chat.Client, error) {
	if err := c.RequireSession(); err != nil {
		return nil, err
	}
	return chat.Dial(c.Ctx, c.Config.RealtimeURL, c.Session.Token)
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Interactive reports whether stdin and stdout are both terminals
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// Confirm asks a yes/no question. assumeYes skips the prompt. On a terminal
// the question is a huh confirm; otherwise a y/N line is read from c.In.
func (c *Context) Confirm(question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}

	if Interactive() && c.In == os.Stdin {
		var ok bool
		err := huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&ok).
			Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return ok, err
	}

	c.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(c.In)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
