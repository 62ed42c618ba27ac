package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if !cli.Interactive() {
		return fmt.Errorf("the TUI needs a terminal; use the subcommands instead (habitshare --help)")
	}
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	deps := tui.Deps{
		Tracker: ctx.Tracker,
		State:   ctx.State,
		Session: ctx.Session,
	}
	// the TUI works without chat
	if conn, err := ctx.DialChat(); err != nil {
		logger.Warn("Chat unavailable", "error", err)
	} else {
		defer conn.Close()
		deps.Chat = conn
	}

	go ctx.State.Run(ctx.Ctx)

	p := tea.NewProgram(tui.NewModel(ctx.Ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
