package tracker

import (
	"context"
	"strings"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/models"
)

// Share publishes a snapshot of habit's current completion with comment.
// A blank comment is refused without a write.
func (t *Tracker) Share(ctx context.Context, habit models.Habit, user models.Session, comment string) (models.Share, error) {
	if strings.TrimSpace(comment) == "" {
		return models.Share{}, ErrEmptyComment
	}

	s := models.ShareFromHabit(habit, user.UserID, user.DisplayName, comment, t.now())
	stored, err := t.shares.AddShare(ctx, s)
	if err != nil {
		logger.Error("Failed to share progress", "habit", habit.ID, "error", err)
		return models.Share{}, alert("Failed to share progress.", err)
	}
	return stored, nil
}

// ListShares returns the shares of habitID, or all of them for "all", with a
// heading: "All Habits", or the habit name carried by the first share
func (t *Tracker) ListShares(ctx context.Context, habitID string) (string, []models.Share, error) {
	all, err := t.shares.FetchShares(ctx)
	if err != nil {
		logger.Error("Failed to load shares", "error", err)
		return "", nil, alert("Failed to load shared progress.", err)
	}

	shares := models.FilterShares(all, habitID)
	title := constants.AllSharesTitle
	if habitID != constants.AllShares {
		title = ""
		if len(shares) > 0 {
			title = shares[0].HabitName
		} else if h, ok := t.state.Find(habitID); ok {
			title = h.Name
		}
	}
	return title, shares, nil
}

// Upvote adds one upvote with a single atomic server-side increment
func (t *Tracker) Upvote(ctx context.Context, shareID string) (models.Share, error) {
	s, err := t.shares.IncrementUpvotes(ctx, shareID)
	if err != nil {
		logger.Error("Failed to upvote", "share", shareID, "error", err)
		return models.Share{}, alert("Failed to upvote.", err)
	}
	return s, nil
}

// UpvoteReadModifyWrite is the legacy upvote: read the share, add one, write
// the whole share back. It has no concurrency control; two clients upvoting
// at the same time can lose one of the increments.
func (t *Tracker) UpvoteReadModifyWrite(ctx context.Context, shareID string) (models.Share, error) {
	s, err := t.shares.GetShare(ctx, shareID)
	if err != nil {
		logger.Error("Failed to read share", "share", shareID, "error", err)
		return models.Share{}, alert("Failed to upvote.", err)
	}

	s.Upvotes++
	stored, err := t.shares.UpdateShare(ctx, s)
	if err != nil {
		logger.Error("Failed to upvote", "share", shareID, "error", err)
		return models.Share{}, alert("Failed to upvote.", err)
	}
	return stored, nil
}

// RecordUpvote appends a legacy upvote record and returns the share's record count
func (t *Tracker) RecordUpvote(ctx context.Context, shareID, userID string) (int, error) {
	_, err := t.shares.AddUpvote(ctx, models.Upvote{ID: models.NewID(), ShareID: shareID, UserID: userID})
	if err != nil {
		logger.Error("Failed to record upvote", "share", shareID, "error", err)
		return 0, alert("Failed to upvote.", err)
	}

	ups, err := t.shares.FetchUpvotes(ctx, shareID)
	if err != nil {
		return 0, alert("Failed to count upvotes.", err)
	}
	return len(ups), nil
}

// DeleteShare removes share when callerID created it. The server checks
// ownership again against the caller's token.
func (t *Tracker) DeleteShare(ctx context.Context, share models.Share, callerID string) error {
	if callerID == "" || share.UserID != callerID {
		return ErrNotOwner
	}
	if err := t.shares.DeleteShare(ctx, share.ID); err != nil {
		logger.Error("Failed to delete share", "share", share.ID, "error", err)
		return alert("Failed to delete post.", err)
	}
	return nil
}
