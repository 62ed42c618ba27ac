package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/keyring"
	"github.com/julianstephens/habitshare/internal/validation"
)

type DoctorCmd struct{}

const checkTimeout = 5 * time.Second

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Printf("Running diagnostics...\n\n")

	hasError := false
	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}
	ok := func(name string) { ctx.Printf("✓ %s: OK\n", name) }
	skip := func(name, why string) { ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, why) }

	// Check 1: configuration
	if err := ctx.Config.Validate(); err != nil {
		fail("Configuration", err)
	} else {
		ok("Configuration")
	}

	// Check 2: API reachable
	apiUp := false
	if err := checkAPI(ctx); err != nil {
		fail("API reachable", err)
	} else {
		ok("API reachable")
		apiUp = true
	}

	// Check 3: keyring and session
	signedIn := false
	if !keyring.IsAvailable() {
		fail("OS keyring", keyring.ErrKeyringUnavailable)
	} else if _, err := keyring.LoadSession(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.Printf("⚠ Session: WARNING\n   not signed in\n")
		} else {
			fail("Session", err)
		}
	} else {
		ok("Session")
		signedIn = true
	}

	// Check 4: real-time reachable
	switch {
	case !signedIn:
		skip("Real-time chat", "not signed in")
	default:
		if err := checkRealtime(ctx); err != nil {
			fail("Real-time chat", err)
		} else {
			ok("Real-time chat")
		}
	}

	// Check 5: habit data
	switch {
	case !signedIn || !apiUp:
		skip("Habit data", "not signed in or API unreachable")
	default:
		if err := checkHabits(ctx); err != nil {
			fail("Habit data", err)
		} else {
			ok("Habit data")
		}
	}

	// Check 6: clock sanity
	if err := checkClock(); err != nil {
		fail("Clock/timezone", err)
	} else {
		ok("Clock/timezone")
	}

	ctx.Printf("\n")
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	ctx.Printf("All checks passed.\n")
	return nil
}

func checkAPI(ctx *cli.Context) error {
	c, cancel := context.WithTimeout(ctx.Ctx, checkTimeout)
	defer cancel()
	return ctx.API.Health(c)
}

func checkRealtime(ctx *cli.Context) error {
	conn, err := ctx.DialChat()
	if err != nil {
		return err
	}
	return conn.Close()
}

// checkHabits fails on malformed or duplicate habits; a week that no longer
// covers today is only reported
func checkHabits(ctx *cli.Context) error {
	if err := ctx.RequireSession(); err != nil {
		return err
	}
	res := validation.ValidateHabits(ctx.State.Habits(), ctx.Session.UserID, ctx.Tracker.Today())

	var failures int
	for _, c := range res.Conflicts {
		if c.Type == validation.ConflictStaleWeek {
			ctx.Printf("   note: %s\n", c.Description)
			continue
		}
		failures++
	}
	if failures > 0 {
		return fmt.Errorf("%d problem(s), run 'habitshare validate' for details", failures)
	}
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
