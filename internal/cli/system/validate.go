package system

import (
	"fmt"

	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/validation"
)

type ValidateCmd struct {
	Strict bool `help:"Treat weeks that no longer cover today as errors."`
}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	res := validation.ValidateHabits(ctx.State.Habits(), ctx.Session.UserID, ctx.Tracker.Today())
	ctx.Printf("%s\n", res.FormatReport())

	for _, conflict := range res.Conflicts {
		if conflict.Type != validation.ConflictStaleWeek || c.Strict {
			return fmt.Errorf("validation failed with %d conflict(s)", len(res.Conflicts))
		}
	}
	return nil
}
