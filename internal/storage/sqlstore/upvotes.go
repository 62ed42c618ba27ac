package sqlstore

import (
	"context"

	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/storage"
)

func (s *Store) AddUpvote(ctx context.Context, u models.Upvote) error {
	_, err := s.exec(ctx, `INSERT INTO upvotes (id, share_id, user_id) VALUES (?, ?, ?)`,
		u.ID, u.ShareID, u.UserID)
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	return err
}

// GetUpvotes lists upvote records, all of them when shareID is empty
func (s *Store) GetUpvotes(ctx context.Context, shareID string) ([]models.Upvote, error) {
	q := `SELECT id, share_id, user_id FROM upvotes`
	var args []any
	if shareID != "" {
		q += ` WHERE share_id = ?`
		args = append(args, shareID)
	}
	q += ` ORDER BY id`

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	upvotes := []models.Upvote{}
	for rows.Next() {
		var u models.Upvote
		if err := rows.Scan(&u.ID, &u.ShareID, &u.UserID); err != nil {
			return nil, err
		}
		upvotes = append(upvotes, u)
	}
	return upvotes, rows.Err()
}
