package daemon

import "fmt"

type MigrateCmd struct{}

// Run creates the database if needed and applies pending migrations
func (c *MigrateCmd) Run(ctx *Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("this storage backend does not support migrations")
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer ctx.Store.Close()

	runner, err := m.Migrator()
	if err != nil {
		return err
	}
	current, err := runner.GetCurrentVersion(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	ctx.Printf("✓ Database is up to date (schema version %d).\n", current)
	return nil
}
