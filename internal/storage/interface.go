package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/habitshare/internal/models"
)

var (
	// ErrNotFound is returned when the addressed record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique field is already taken
	ErrConflict = errors.New("record already exists")
)

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Users
	AddUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Habits
	AddHabit(ctx context.Context, h models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetAllHabits(ctx context.Context) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, h models.Habit) error
	DeleteHabit(ctx context.Context, id string) error

	// Shares
	AddShare(ctx context.Context, s models.Share) error
	GetShare(ctx context.Context, id string) (models.Share, error)
	GetAllShares(ctx context.Context) ([]models.Share, error)
	UpdateShare(ctx context.Context, s models.Share) error
	// IncrementUpvotes adds one to the share's counter in a single statement
	// and returns the share as stored afterwards.
	IncrementUpvotes(ctx context.Context, id string) (models.Share, error)
	DeleteShare(ctx context.Context, id string) error

	// Upvote records
	AddUpvote(ctx context.Context, u models.Upvote) error
	GetUpvotes(ctx context.Context, shareID string) ([]models.Upvote, error)

	// Utils
	GetConfigPath() string
}
