// Package lockfile records the running habitshared process so maintenance
// commands can refuse to touch a database that is being served.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitshare/internal/constants"
)

var findProcessFunc = ps.FindProcess

// ErrRunning is returned by Acquire and Check when a live server holds the lock
var ErrRunning = errors.New("habitshared is running")

// Path is the lockfile kept next to the SQLite database
func Path(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), constants.LockfileName)
}

// Holder returns the pid recorded in path if that process is still alive and
// is a habitshared binary. A missing, malformed or stale lockfile yields 0.
func Holder(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return 0, nil
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return 0, nil
	}
	if !strings.HasPrefix(process.Executable(), constants.ServerName) {
		return 0, nil
	}
	return pid, nil
}

// Check fails with ErrRunning while a server holds path
func Check(path string) error {
	pid, err := Holder(path)
	if err != nil {
		return err
	}
	if pid != 0 {
		return fmt.Errorf("%w (pid %d); stop it first", ErrRunning, pid)
	}
	return nil
}

// Acquire writes the current pid to path and returns a func that removes it
func Acquire(path string) (func(), error) {
	if err := Check(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return func() { _ = os.Remove(path) }, nil
}
