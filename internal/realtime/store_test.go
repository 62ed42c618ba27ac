package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitshare/internal/models"
)

func memStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(StoreOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorePushLogDelete(t *testing.T) {
	s := memStore(t)
	path := ChatPath("share-1")

	k1, err := s.Push(path, models.ChatMessage{UserID: "u1", Message: "hi", Timestamp: 2})
	require.NoError(t, err)
	k2, err := s.Push(path, models.ChatMessage{UserID: "u2", Message: "yo", Timestamp: 1})
	require.NoError(t, err)
	_, err = s.Push(ChatPath("share-10"), models.ChatMessage{UserID: "u1", Message: "other", Timestamp: 1})
	require.NoError(t, err)

	log, err := s.Log(path)
	require.NoError(t, err)
	require.Len(t, log, 2, "prefix scan must not leak into share-10")

	ordered := log.Ordered()
	assert.Equal(t, k2, ordered[0].Key)
	assert.Equal(t, k1, ordered[1].Key)

	m, err := s.Get(path, k1)
	require.NoError(t, err)
	assert.Equal(t, "hi", m.Message)

	require.NoError(t, s.Delete(path, k1))
	assert.ErrorIs(t, s.Delete(path, k1), ErrMessageNotFound)
	_, err = s.Get(path, k1)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestStorePersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore(StoreOptions{Dir: dir})
	require.NoError(t, err)
	key, err := s.Push(ChatPath("s"), models.ChatMessage{UserID: "u", Message: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenStore(StoreOptions{Dir: dir})
	require.NoError(t, err)
	defer s.Close()
	m, err := s.Get(ChatPath("s"), key)
	require.NoError(t, err)
	assert.Equal(t, "kept", m.Message)
}

func TestParseChatPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"chats/abc", "abc", false},
		{"chats/", "", true},
		{"chats", "", true},
		{"habits/abc", "", true},
		{"chats/abc/def", "", true},
	}
	for _, tt := range tests {
		got, err := ParseChatPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseChatPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseChatPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
