package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitshare/internal/cli/daemon"
	"github.com/julianstephens/habitshare/internal/config"
	"github.com/julianstephens/habitshare/internal/constants"
	apperrors "github.com/julianstephens/habitshare/internal/errors"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/storage/postgres"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"YAML config file; HABITSHARED_* environment variables override it." type:"string" default:""`

	Serve   daemon.ServeCmd   `cmd:"" help:"Serve the REST API and the real-time chat endpoint." default:"1"`
	Migrate daemon.MigrateCmd `cmd:"" help:"Create the database and apply migrations."`
	Doctor  daemon.DoctorCmd  `cmd:"" help:"Run server health checks."`
	Backup  struct {
		Create  daemon.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    daemon.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore daemon.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.ServerName),
		kong.Description("habitshare API and real-time server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.LoadServer(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	logDir := filepath.Dir(cfg.Database)
	if postgres.IsConnString(cfg.Database) {
		logDir = config.ExpandHome("~/.local/state/" + constants.ServerName)
	}
	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: logDir,
		Name:      constants.ServerName,
		Stderr:    true,
	}); err != nil {
		apperrors.Fatalf("failed to initialize logger: %v", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, err := daemon.NewContext(sigCtx, cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := ctx.Run(appCtx); err != nil {
		stop()
		apperrors.Fatal(err)
	}
}
