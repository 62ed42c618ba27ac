package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitshare"
	ServerName         = "habitshared"
	DefaultKeyringUser = "session"
	Version            = "v0.1.0"

	// WeekLength is the number of days tracked per habit
	WeekLength = 7

	// RefreshInterval is how often the habit set is re-fetched while signed in
	RefreshInterval = 60 * time.Second

	// AllShares selects every share instead of those of a single habit
	AllShares       = "all"
	AllSharesTitle  = "All Habits"
	AnonymousName   = "Anonymous"
	ChatRootPath    = "chats"
	HeaderPubKey    = "X-Publishable-Key"
	BearerPrefix    = "Bearer "
	DefaultTokenTTL = 24 * time.Hour

	// Client defaults
	DefaultAPIURL      = "http://localhost:4000"
	DefaultRealtimeURL = "ws://localhost:4000/rt"
	DefaultConfigDir   = "~/.config/habitshare"

	// Server defaults
	DefaultListenAddr  = ":4000"
	DefaultDatabase    = "~/.local/share/habitshared/habitshared.db"
	DefaultWriteRate   = 5.0
	DefaultWriteBurst  = 10
	DefaultMaxChatSize = 2000

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitshared-"
	BackupFileSuffix = ".db"
	LockfileName     = "habitshared.pid"
)

// Session States
const (
	StateHabits SessionState = iota
	StateWeek
	StateReport
	StateShares
	StateAddHabit
	StateShareForm
	StateChatInput
	StateConfirmDelete
	StateConfirmDeleteShare
	StateConfirmDeleteMessage
)
