package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/storage"
)

const userColumns = `id, email, display_name, password_hash, created_at`

func (s *Store) AddUser(ctx context.Context, u models.User) error {
	_, err := s.exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, strings.ToLower(u.Email), u.DisplayName, u.PasswordHash, u.CreatedAt.UTC().Format(time.RFC3339))
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email)))
}

func (s *Store) scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &createdAt); err != nil {
		return models.User{}, notFound(err)
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	u.CreatedAt = t
	return u, nil
}
