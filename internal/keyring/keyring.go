package keyring

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/models"
)

var (
	// ErrNotFound is returned when no session is stored in the keyring
	ErrNotFound = errors.New("no session found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// LoadSession retrieves the signed-in session from the OS keyring.
// Returns ErrNotFound if nobody is signed in.
func LoadSession() (models.Session, error) {
	raw, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return models.Session{}, fmt.Errorf("stored session is corrupt: %w", err)
	}
	return s, nil
}

// SaveSession stores the session token and identity in the OS keyring
func SaveSession(s models.Session) error {
	if s.Token == "" || s.UserID == "" {
		return errors.New("session must carry a token and user id")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, string(raw)); err != nil {
		return fmt.Errorf("failed to store session in keyring: %w", err)
	}
	return nil
}

// DeleteSession signs out by removing the stored session
func DeleteSession() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
