package daemon

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitshare/internal/auth"
	"github.com/julianstephens/habitshare/internal/backup"
	"github.com/julianstephens/habitshare/internal/lockfile"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/realtime"
	"github.com/julianstephens/habitshare/internal/server"
)

type ServeCmd struct {
	BackupEvery time.Duration `help:"Snapshot the SQLite database at this interval (0 disables)." default:"0"`
}

func (c *ServeCmd) Run(ctx *Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if ctx.IsSQLite() {
		release, err := lockfile.Acquire(lockfile.Path(ctx.Store.GetConfigPath()))
		if err != nil {
			return err
		}
		defer release()
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer ctx.Store.Close()

	chats, err := realtime.OpenStore(realtime.StoreOptions{
		Dir:    ctx.Config.RealtimeDir,
		Logger: logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open chat store: %w", err)
	}
	defer chats.Close()

	tokens := auth.NewTokenManager(ctx.Config.JWTSecret, ctx.Config.TokenTTL)
	srv := server.New(ctx.Config, ctx.Store, tokens,
		server.WithRealtime(realtime.NewServer(chats, tokens, ctx.Config.MaxChatSize)),
	)

	g, gctx := errgroup.WithContext(ctx.Ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	if c.BackupEvery > 0 {
		if !ctx.IsSQLite() {
			logger.Warn("Scheduled backups only apply to SQLite; skipping")
		} else {
			mgr := backup.NewManager(ctx.Store.GetConfigPath())
			g.Go(func() error {
				backupLoop(gctx, mgr, c.BackupEvery)
				return nil
			})
		}
	}
	return g.Wait()
}

// backupLoop snapshots until ctx is done; a failed snapshot is logged and retried next tick
func backupLoop(ctx context.Context, mgr *backup.Manager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			path, err := mgr.Create(ctx)
			if err != nil {
				logger.Error("Scheduled backup failed", "error", err)
				continue
			}
			logger.Info("Backup created", "path", path)
		}
	}
}
