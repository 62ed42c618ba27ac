package sqlstore

import (
	"context"

	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/storage"
)

const shareColumns = `id, user_id, user_name, habit_id, habit_name, completion, comment, created_at, upvotes`

func (s *Store) AddShare(ctx context.Context, sh models.Share) error {
	_, err := s.exec(ctx, `
		INSERT INTO shares (`+shareColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.UserID, sh.UserName, sh.HabitID, sh.HabitName, sh.Completion, sh.Comment, sh.CreatedAt, sh.Upvotes)
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	return err
}

func (s *Store) GetShare(ctx context.Context, id string) (models.Share, error) {
	return scanShare(s.queryRow(ctx, `SELECT `+shareColumns+` FROM shares WHERE id = ?`, id))
}

func (s *Store) GetAllShares(ctx context.Context) ([]models.Share, error) {
	rows, err := s.query(ctx, `SELECT `+shareColumns+` FROM shares ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := []models.Share{}
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}

// UpdateShare is a full replace of the mutable fields. This is the legacy
// upvote path: concurrent writers overwrite each other.
func (s *Store) UpdateShare(ctx context.Context, sh models.Share) error {
	return mustAffect(s.exec(ctx, `
		UPDATE shares
		SET user_name = ?, habit_name = ?, completion = ?, comment = ?, upvotes = ?
		WHERE id = ?`,
		sh.UserName, sh.HabitName, sh.Completion, sh.Comment, sh.Upvotes, sh.ID))
}

func (s *Store) IncrementUpvotes(ctx context.Context, id string) (models.Share, error) {
	return scanShare(s.queryRow(ctx, `
		UPDATE shares SET upvotes = upvotes + 1
		WHERE id = ?
		RETURNING `+shareColumns, id))
}

func (s *Store) DeleteShare(ctx context.Context, id string) error {
	return mustAffect(s.exec(ctx, `DELETE FROM shares WHERE id = ?`, id))
}

func scanShare(row interface{ Scan(...any) error }) (models.Share, error) {
	var sh models.Share
	err := row.Scan(&sh.ID, &sh.UserID, &sh.UserName, &sh.HabitID, &sh.HabitName,
		&sh.Completion, &sh.Comment, &sh.CreatedAt, &sh.Upvotes)
	if err != nil {
		return models.Share{}, notFound(err)
	}
	return sh, nil
}
