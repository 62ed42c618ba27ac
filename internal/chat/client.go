// Package chat is the client for the per-share real-time chat
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/julianstephens/habitshare/internal/constants"
	apperrors "github.com/julianstephens/habitshare/internal/errors"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/realtime"
)

var (
	ErrNotOwner = apperrors.New(apperrors.KindForbidden, "You can only delete your own messages.")
	ErrClosed   = apperrors.New(apperrors.KindTransport, "Chat connection closed.")
)

// Listener receives the full current chat log of a share on every change
type Listener func(models.ChatLog)

type subscription struct {
	id int
	fn Listener
}

// Client holds one websocket connection to the real-time store
type Client struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[string][]subscription
	nextID int
	onErr  func(error)
	done   chan struct{}
	closed bool
}

// Dial connects to the real-time endpoint at url authenticating with token
func Dial(ctx context.Context, url, token string) (*Client, error) {
	header := http.Header{}
	header.Set("Authorization", constants.BearerPrefix+token)

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, apperrors.Wrap(apperrors.KindForbidden, "Please sign in again.", err)
		}
		return nil, apperrors.Wrap(apperrors.KindTransport, "Failed to connect to chat.", err)
	}

	c := &Client{
		ws:   ws,
		subs: make(map[string][]subscription),
		done: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// OnError sets the handler for errors reported by the server, e.g. a refused delete
func (c *Client) OnError(fn func(error)) {
	c.mu.Lock()
	c.onErr = fn
	c.mu.Unlock()
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) write(ctx context.Context, f realtime.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	_ = c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteJSON(f); err != nil {
		return apperrors.Wrap(apperrors.KindTransport, "Failed to reach chat.", err)
	}
	return nil
}

// Subscribe registers fn for the chat of shareID. fn runs on the client's
// read goroutine. The returned func removes the listener.
func (c *Client) Subscribe(ctx context.Context, shareID string, fn Listener) (func(), error) {
	path := realtime.ChatPath(shareID)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	id := c.nextID
	c.subs[path] = append(c.subs[path], subscription{id: id, fn: fn})
	c.mu.Unlock()

	// every subscribe frame is answered with a fresh snapshot for all listeners
	if err := c.write(ctx, realtime.Frame{Op: realtime.OpSubscribe, Path: path}); err != nil {
		c.remove(path, id)
		return nil, err
	}

	return func() {
		if c.remove(path, id) {
			_ = c.write(context.Background(), realtime.Frame{Op: realtime.OpUnsubscribe, Path: path})
		}
	}, nil
}

// remove drops listener id and reports whether path has no listeners left
func (c *Client) remove(path string, id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	subs := c.subs[path]
	for i, s := range subs {
		if s.id == id {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(c.subs, path)
		return !c.closed
	}
	c.subs[path] = subs
	return false
}

// Send appends msg to the chat of shareID. A blank message is ignored.
func (c *Client) Send(ctx context.Context, shareID string, msg models.ChatMessage) error {
	if strings.TrimSpace(msg.Message) == "" {
		return nil
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	if msg.UserName == "" {
		msg.UserName = constants.AnonymousName
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return c.write(ctx, realtime.Frame{Op: realtime.OpPush, Path: realtime.ChatPath(shareID), Value: value})
}

// Delete removes msg from the chat of shareID when callerID sent it
func (c *Client) Delete(ctx context.Context, shareID string, msg models.KeyedMessage, callerID string) error {
	if msg.UserID != callerID {
		return ErrNotOwner
	}
	return c.write(ctx, realtime.Frame{Op: realtime.OpDelete, Path: realtime.ChatPath(shareID), Key: msg.Key})
}

func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var f realtime.Frame
		if err := c.ws.ReadJSON(&f); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.closed = true
			c.mu.Unlock()
			if !closed {
				logger.Warn("Chat connection lost", "error", err)
			}
			return
		}

		switch f.Op {
		case realtime.OpSnapshot:
			var log models.ChatLog
			if err := json.Unmarshal(f.Value, &log); err != nil {
				logger.Error("Failed to decode chat snapshot", "path", f.Path, "error", err)
				continue
			}
			if log == nil {
				log = models.ChatLog{}
			}
			c.deliver(f.Path, log)
		case realtime.OpError:
			logger.Warn("Chat request refused", "path", f.Path, "error", f.Error)
			c.mu.Lock()
			fn := c.onErr
			c.mu.Unlock()
			if fn != nil {
				fn(apperrors.New(apperrors.KindValidation, f.Error))
			}
		}
	}
}

func (c *Client) deliver(path string, log models.ChatLog) {
	c.mu.Lock()
	subs := append([]subscription(nil), c.subs[path]...)
	c.mu.Unlock()
	for _, s := range subs {
		s.fn(log)
	}
}
