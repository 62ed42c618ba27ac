package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitshare/internal/backup"
	"github.com/julianstephens/habitshare/internal/lockfile"
	"github.com/julianstephens/habitshare/internal/realtime"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.Printf("Running diagnostics...\n\n")
	hasError := false

	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}
	ok := func(name string) { ctx.Printf("✓ %s: OK\n", name) }

	// Check 1: configuration
	if err := ctx.Config.Validate(); err != nil {
		fail("Configuration", err)
	} else {
		ok("Configuration")
	}

	// Check 2: database reachable and schema current
	dbOK := false
	if err := ctx.Store.Load(ctx.Ctx); err != nil {
		fail("Database", err)
	} else {
		defer ctx.Store.Close()
		ok("Database")
		dbOK = true
	}

	if !dbOK {
		ctx.Printf("⊘ Schema version: SKIPPED (database unavailable)\n")
	} else if m, isMig := ctx.Store.(migrator); isMig {
		if err := checkSchema(ctx, m); err != nil {
			fail("Schema version", err)
		} else {
			ok("Schema version")
		}
	}

	// Check 3: chat store; a running server holds its directory lock
	running := 0
	if ctx.IsSQLite() {
		running, _ = lockfile.Holder(lockfile.Path(ctx.Store.GetConfigPath()))
	}
	if running != 0 {
		ctx.Printf("⊘ Chat store: SKIPPED (habitshared is running, pid %d)\n", running)
	} else if err := checkRealtime(ctx.Config.RealtimeDir); err != nil {
		fail("Chat store", err)
	} else {
		ok("Chat store")
	}

	// Check 4: backups
	if ctx.IsSQLite() && dbOK {
		mgr := backup.NewManager(ctx.Store.GetConfigPath())
		list, err := mgr.List()
		switch {
		case err != nil:
			fail("Backups", err)
		case len(list) == 0:
			ctx.Printf("⚠ Backups: WARNING\n   no backups in %s\n", mgr.Dir())
		default:
			ok("Backups")
		}
	}

	ctx.Printf("\n")
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	ctx.Printf("All checks passed.\n")
	return nil
}

func checkSchema(ctx *Context, m migrator) error {
	runner, err := m.Migrator()
	if err != nil {
		return err
	}
	current, err := runner.GetCurrentVersion(ctx.Ctx)
	if err != nil {
		return err
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema at version %d, latest is %d; run 'habitshared migrate'", current, latest)
	}
	return nil
}

// checkRealtime opens the chat store briefly. An empty dir is in-memory and
// always fine.
func checkRealtime(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(filepath.Clean(dir)); os.IsNotExist(err) {
		return nil
	}
	store, err := realtime.OpenStore(realtime.StoreOptions{Dir: dir})
	if err != nil {
		return fmt.Errorf("%w (is habitshared running?)", err)
	}
	return store.Close()
}
