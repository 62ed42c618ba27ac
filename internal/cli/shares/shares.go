package shares

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/constants"
	apperrors "github.com/julianstephens/habitshare/internal/errors"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/tracker"
)

type ShareCmd struct {
	Create ShareCreateCmd `cmd:"" help:"Share a habit's current progress."`
	List   ShareListCmd   `cmd:"" help:"List shared progress."`
	Upvote ShareUpvoteCmd `cmd:"" help:"Upvote a share."`
	Record ShareRecordCmd `cmd:"" help:"Record an upvote in the legacy upvote collection."`
	Delete ShareDeleteCmd `cmd:"" help:"Delete one of your shares."`
}

type ShareCreateCmd struct {
	Habit   string `arg:"" help:"Habit name or ID."`
	Comment string `arg:"" help:"Comment shown with the share."`
}

func (c *ShareCreateCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	h, err := ctx.Tracker.Lookup(c.Habit)
	if err != nil {
		return err
	}
	s, err := ctx.Tracker.Share(ctx.Ctx, h, ctx.Session, c.Comment)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Shared %s at %d%% (%s)\n", s.HabitName, s.Completion, s.ID)
	return nil
}

type ShareListCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or ID; omit to list every share."`
}

func (c *ShareListCmd) Run(ctx *cli.Context) error {
	habitID := constants.AllShares
	if c.Habit != "" && c.Habit != constants.AllShares {
		habitID = c.Habit
		// resolve names when signed in; plain ids work without a session
		if err := ctx.RequireSession(); err == nil {
			if h, err := ctx.Tracker.Lookup(c.Habit); err == nil {
				habitID = h.ID
			}
		}
	}

	title, shares, err := ctx.Tracker.ListShares(ctx.Ctx, habitID)
	if err != nil {
		return err
	}
	if title != "" {
		ctx.Printf("%s\n\n", title)
	}
	if len(shares) == 0 {
		ctx.Printf("No shared progress yet.\n")
		return nil
	}
	for _, s := range shares {
		printShare(ctx, s)
	}
	return nil
}

func printShare(ctx *cli.Context, s models.Share) {
	when := s.CreatedAt
	if t, err := time.Parse(time.RFC3339, s.CreatedAt); err == nil {
		when = t.Local().Format("2006-01-02 15:04")
	}
	ctx.Printf("%s  %s · %s · %d%%  ▲ %d\n", s.ID, s.UserName, s.HabitName, s.Completion, s.Upvotes)
	ctx.Printf("    %q  %s\n", s.Comment, when)
}

type ShareUpvoteCmd struct {
	Share  string `arg:"" help:"Share ID."`
	Legacy bool   `help:"Use the read-modify-write path (can lose concurrent upvotes)."`
}

func (c *ShareUpvoteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	upvote := ctx.Tracker.Upvote
	if c.Legacy {
		upvote = ctx.Tracker.UpvoteReadModifyWrite
	}
	s, err := upvote(ctx.Ctx, c.Share)
	if err != nil {
		return err
	}
	ctx.Printf("▲ %d  %s\n", s.Upvotes, s.HabitName)
	return nil
}

type ShareRecordCmd struct {
	Share string `arg:"" help:"Share ID."`
}

func (c *ShareRecordCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	n, err := ctx.Tracker.RecordUpvote(ctx.Ctx, c.Share, ctx.Session.UserID)
	if err != nil {
		return err
	}
	ctx.Printf("Recorded upvote (%d on record)\n", n)
	return nil
}

type ShareDeleteCmd struct {
	Share string `arg:"" help:"Share ID."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ShareDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}

	s, err := ctx.API.GetShare(ctx.Ctx, c.Share)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return fmt.Errorf("share %s not found", c.Share)
		}
		return err
	}
	if s.UserID != ctx.Session.UserID {
		return tracker.ErrNotOwner
	}

	ok, err := ctx.Confirm(fmt.Sprintf("Delete your share of %q?", s.HabitName), c.Yes)
	if err != nil || !ok {
		return err
	}
	if err := ctx.Tracker.DeleteShare(ctx.Ctx, s, ctx.Session.UserID); err != nil {
		return err
	}
	ctx.Printf("Deleted share %s\n", s.ID)
	return nil
}
