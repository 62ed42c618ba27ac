package models

import "sort"

// ChatMessage is stored under chats/{shareId}/{key}
type ChatMessage struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Message   string `json:"message" validate:"required"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// ChatLog is the full message map of one share keyed by store-generated key
type ChatLog map[string]ChatMessage

// KeyedMessage pairs a message with its store key
type KeyedMessage struct {
	Key string
	ChatMessage
}

// Ordered returns the messages sorted by timestamp, ties broken by key
func (l ChatLog) Ordered() []KeyedMessage {
	out := make([]KeyedMessage, 0, len(l))
	for k, m := range l {
		out = append(out, KeyedMessage{Key: k, ChatMessage: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].Key < out[j].Key
	})
	return out
}
