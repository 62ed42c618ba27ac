// Package realtime is the server side of the chat channel: a websocket
// endpoint that lets clients subscribe to, push to and delete from
// "chats/{shareId}" paths, backed by a badger store.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/habitshare/internal/constants"
)

// Client operations
const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"
	OpPush        = "push"
	OpDelete      = "delete"
)

// Server operations
const (
	OpSnapshot = "snapshot"
	OpPushed   = "pushed"
	OpError    = "error"
)

// Frame is one websocket message in either direction.
// A snapshot's Value is the full models.ChatLog under Path.
type Frame struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// ChatPath is the real-time path of a share's chat log
func ChatPath(shareID string) string {
	return constants.ChatRootPath + "/" + shareID
}

// ParseChatPath returns the share id of a "chats/{shareId}" path
func ParseChatPath(path string) (string, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] != constants.ChatRootPath || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("invalid path %q", path)
	}
	return parts[1], nil
}
