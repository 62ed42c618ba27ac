package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	"github.com/julianstephens/habitshare/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// Store persists chat logs in badger. A message lives under the key
// "chats/{shareId}/{key}" so one prefix scan yields a share's whole log.
type Store struct {
	db *badger.DB
}

// StoreOptions configures OpenStore. An empty Dir keeps everything in memory.
type StoreOptions struct {
	Dir    string
	Logger *log.Logger
}

// badgerLogger routes badger's own logging through charmbracelet/log
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{})   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...interface{}) { b.l.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...interface{})    { b.l.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...interface{})   { b.l.Debugf(format, args...) }

func OpenStore(opts StoreOptions) (*Store, error) {
	var bopts badger.Options
	if opts.Dir == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create realtime directory %s: %w", opts.Dir, err)
		}
		bopts = badger.DefaultOptions(opts.Dir).WithSyncWrites(true)
	}
	bopts = bopts.WithNumVersionsToKeep(1)
	if opts.Logger != nil {
		bopts = bopts.WithLogger(badgerLogger{l: opts.Logger})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open realtime store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func messageKey(path, key string) []byte {
	return []byte(path + "/" + key)
}

// Log returns every message stored under path
func (s *Store) Log(path string) (models.ChatLog, error) {
	out := make(models.ChatLog)
	prefix := []byte(path + "/")

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 50})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := strings.TrimPrefix(string(item.Key()), string(prefix))
			if strings.Contains(key, "/") {
				continue
			}
			var m models.ChatMessage
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &m) }); err != nil {
				return fmt.Errorf("failed to decode message %s: %w", key, err)
			}
			out[key] = m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single message
func (s *Store) Get(path, key string) (models.ChatMessage, error) {
	var m models.ChatMessage
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageKey(path, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error { return json.Unmarshal(v, &m) })
	})
	return m, err
}

// Push appends m under path with a fresh time-ordered key and returns the key
func (s *Store) Push(path string, m models.ChatMessage) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	key := models.NewID()
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(path, key), data)
	}); err != nil {
		return "", fmt.Errorf("failed to store message: %w", err)
	}
	return key, nil
}

// Delete removes one message; deleting a missing key is ErrMessageNotFound
func (s *Store) Delete(path, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		k := messageKey(path, key)
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrMessageNotFound
			}
			return err
		}
		return txn.Delete(k)
	})
}
