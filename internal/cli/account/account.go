package account

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/keyring"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/validation"
)

type AccountCmd struct {
	Register RegisterCmd `cmd:"" help:"Create an account."`
	Login    LoginCmd    `cmd:"" help:"Sign in and store the session in the OS keyring."`
	Logout   LogoutCmd   `cmd:"" help:"Sign out."`
	Whoami   WhoamiCmd   `cmd:"" help:"Show the signed-in account."`
}

// promptPassword asks for a hidden password when none was passed on the command line
func promptPassword(password *string) error {
	if *password != "" {
		return nil
	}
	if !cli.Interactive() {
		return errors.New("--password is required when not running in a terminal")
	}
	return huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(password).
		Run()
}

func storeSession(ctx *cli.Context, resp models.AuthResponse) error {
	s := models.SessionFrom(resp)
	if err := keyring.SaveSession(s); err != nil {
		return err
	}
	ctx.UseSession(s)
	logger.Info("Signed in", "user", s.UserID)
	return nil
}

type RegisterCmd struct {
	Email    string `arg:"" help:"Email address."`
	Name     string `help:"Display name shown on shares and chat." default:""`
	Password string `help:"Password (prompted when omitted)." default:""`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	if err := promptPassword(&c.Password); err != nil {
		return err
	}

	req := models.RegisterRequest{
		Email:       strings.TrimSpace(c.Email),
		DisplayName: strings.TrimSpace(c.Name),
		Password:    c.Password,
	}
	if err := validation.Struct(req); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}

	resp, err := ctx.API.Register(ctx.Ctx, req)
	if err != nil {
		return err
	}
	if err := storeSession(ctx, resp); err != nil {
		return err
	}

	ctx.Printf("✓ Registered and signed in as %s\n", ctx.Session.Name())
	return nil
}

type LoginCmd struct {
	Email    string `arg:"" help:"Email address."`
	Password string `help:"Password (prompted when omitted)." default:""`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if err := promptPassword(&c.Password); err != nil {
		return err
	}

	resp, err := ctx.API.Login(ctx.Ctx, models.LoginRequest{Email: strings.TrimSpace(c.Email), Password: c.Password})
	if err != nil {
		return err
	}
	if err := storeSession(ctx, resp); err != nil {
		return err
	}

	ctx.Printf("✓ Signed in as %s\n", ctx.Session.Name())
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteSession(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.Printf("Not signed in.\n")
			return nil
		}
		return err
	}
	ctx.State.SignOut()
	ctx.Printf("✓ Signed out\n")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	s, err := keyring.LoadSession()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.Printf("Not signed in.\n")
			return nil
		}
		return err
	}
	ctx.Printf("%s <%s>\nUser ID: %s\n", s.Name(), s.Email, s.UserID)
	return nil
}
