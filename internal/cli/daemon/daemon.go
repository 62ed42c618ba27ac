// Package daemon holds the habitshared commands: serving the API and the
// real-time endpoint, and maintaining the server database.
package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/habitshare/internal/config"
	"github.com/julianstephens/habitshare/internal/migration"
	"github.com/julianstephens/habitshare/internal/storage"
	"github.com/julianstephens/habitshare/internal/storage/postgres"
	"github.com/julianstephens/habitshare/internal/storage/sqlite"
)

// Context is handed to every habitshared command
type Context struct {
	Ctx    context.Context
	Config config.Server
	Store  storage.Provider
	Out    io.Writer
	In     io.Reader
}

func NewContext(ctx context.Context, cfg config.Server) (*Context, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	return &Context{Ctx: ctx, Config: cfg, Store: store, Out: os.Stdout, In: os.Stdin}, nil
}

// OpenStore picks the backend from the database setting: a postgres URI or
// DSN selects postgres, anything else is a SQLite file path
func OpenStore(cfg config.Server) (storage.Provider, error) {
	if postgres.IsConnString(cfg.Database) {
		if err := postgres.ValidateConnString(cfg.Database); err != nil {
			return nil, err
		}
		return postgres.New(cfg.Database), nil
	}
	return sqlite.NewStore(cfg.Database), nil
}

// migrator is implemented by both SQL backends
type migrator interface {
	Migrator() (*migration.Runner, error)
}

// IsSQLite reports whether the store is a local SQLite file
func (c *Context) IsSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Confirm reads a y/N answer from c.In; assumeYes skips the question
func (c *Context) Confirm(question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	c.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
