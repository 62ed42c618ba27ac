package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/cli/account"
	"github.com/julianstephens/habitshare/internal/cli/chats"
	"github.com/julianstephens/habitshare/internal/cli/habits"
	"github.com/julianstephens/habitshare/internal/cli/shares"
	"github.com/julianstephens/habitshare/internal/cli/system"
	"github.com/julianstephens/habitshare/internal/config"
	"github.com/julianstephens/habitshare/internal/constants"
	apperrors "github.com/julianstephens/habitshare/internal/errors"
	"github.com/julianstephens/habitshare/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag

	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Account  account.AccountCmd `cmd:"" help:"Register, sign in and sign out."`
	Habit    habits.HabitCmd    `cmd:"" help:"Track habits."`
	Share    shares.ShareCmd    `cmd:"" help:"Share progress and upvote others."`
	Chat     chats.ChatCmd      `cmd:"" help:"Talk about a shared post."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check your habits for problems."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track weekly habits and share progress"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.LoadClient()
	// doctor reports configuration problems itself
	if err != nil && ctx.Command() != "doctor" {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.ConfigDir,
		Name:      constants.AppName,
	}); err != nil {
		apperrors.Fatalf("failed to initialize logger: %v", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctx.Run(cli.NewContext(sigCtx, cfg)); err != nil {
		stop()
		apperrors.Fatal(err)
	}
}
