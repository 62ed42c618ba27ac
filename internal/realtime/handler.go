package realtime

import (
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/julianstephens/habitshare/internal/auth"
	"github.com/julianstephens/habitshare/internal/constants"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/models"
	"github.com/julianstephens/habitshare/internal/validation"
)

const (
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
	readLimit    = 64 << 10
	sendBuffer   = 32
	pathStripes  = 64
)

var (
	errForbidden = errors.New("you can only send and delete your own messages")
	errUnknownOp = errors.New("unknown operation")
)

// Server serves the /rt websocket endpoint
type Server struct {
	store    *Store
	hub      *Hub
	tokens   *auth.TokenManager
	maxLen   int
	upgrader websocket.Upgrader
	now      func() time.Time

	// paths serializes store change, snapshot and fan-out per chat path so
	// subscribers never receive an older snapshot after a newer one
	paths [pathStripes]sync.Mutex
}

func NewServer(store *Store, tokens *auth.TokenManager, maxLen int) *Server {
	return &Server{
		store:  store,
		hub:    NewHub(),
		tokens: tokens,
		maxLen: maxLen,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) lockPath(path string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	mu := &s.paths[h.Sum32()%pathStripes]
	mu.Lock()
	return mu.Unlock
}

// conn is one client connection. Only its writer goroutine writes to ws.
type conn struct {
	ws       *websocket.Conn
	identity auth.Identity
	out      chan Frame
	done     chan struct{}
	once     sync.Once
}

func (c *conn) send(f Frame) {
	select {
	case c.out <- f:
	case <-c.done:
	default:
		// slow reader
		logger.Warn("Dropping realtime connection with a full send buffer", "user", c.identity.UserID)
		c.close()
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *conn) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case f := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(f); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func bearerToken(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, constants.BearerPrefix) {
		return strings.TrimPrefix(h, constants.BearerPrefix)
	}
	return ""
}

// Handle authenticates the caller, upgrades the connection and serves frames
// until the client goes away
func (s *Server) Handle(c *gin.Context) {
	identity, err := s.tokens.Validate(bearerToken(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	cl := &conn{
		ws:       ws,
		identity: identity,
		out:      make(chan Frame, sendBuffer),
		done:     make(chan struct{}),
	}
	defer func() {
		s.hub.drop(cl)
		cl.close()
	}()
	go cl.writeLoop()

	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(2 * pingInterval))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(2 * pingInterval))
	})

	logger.Debug("Realtime client connected", "user", identity.UserID)
	for {
		var f Frame
		if err := ws.ReadJSON(&f); err != nil {
			logger.Debug("Realtime client disconnected", "user", identity.UserID, "error", err)
			return
		}
		if err := s.dispatch(cl, f); err != nil {
			cl.send(Frame{Op: OpError, Path: f.Path, Key: f.Key, Error: err.Error()})
		}
	}
}

func (s *Server) dispatch(c *conn, f Frame) error {
	if _, err := ParseChatPath(f.Path); err != nil {
		return err
	}

	switch f.Op {
	case OpSubscribe:
		unlock := s.lockPath(f.Path)
		defer unlock()
		s.hub.subscribe(f.Path, c)
		snap, err := s.snapshot(f.Path)
		if err != nil {
			return err
		}
		c.send(snap)
		return nil
	case OpUnsubscribe:
		s.hub.unsubscribe(f.Path, c)
		return nil
	case OpPush:
		key, err := s.push(c.identity, f)
		if err != nil {
			return err
		}
		c.send(Frame{Op: OpPushed, Path: f.Path, Key: key})
		return nil
	case OpDelete:
		return s.delete(c.identity, f)
	default:
		return errUnknownOp
	}
}

func (s *Server) snapshot(path string) (Frame, error) {
	log, err := s.store.Log(path)
	if err != nil {
		return Frame{}, err
	}
	value, err := json.Marshal(log)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Op: OpSnapshot, Path: path, Value: value}, nil
}

func (s *Server) publish(path string) {
	snap, err := s.snapshot(path)
	if err != nil {
		logger.Error("Failed to build chat snapshot", "path", path, "error", err)
		return
	}
	s.hub.broadcast(path, snap)
}

// push stores a message whose sender must be the authenticated user
func (s *Server) push(id auth.Identity, f Frame) (string, error) {
	var m models.ChatMessage
	if err := json.Unmarshal(f.Value, &m); err != nil {
		return "", errors.New("invalid message")
	}
	if m.UserID != id.UserID {
		return "", errForbidden
	}
	if err := validation.ValidateChatMessage(m, s.maxLen); err != nil {
		return "", err
	}
	if m.Timestamp == 0 {
		m.Timestamp = s.now().UnixMilli()
	}
	if m.UserName == "" {
		m.UserName = constants.AnonymousName
	}

	unlock := s.lockPath(f.Path)
	defer unlock()
	key, err := s.store.Push(f.Path, m)
	if err != nil {
		logger.Error("Failed to push chat message", "path", f.Path, "error", err)
		return "", err
	}
	s.publish(f.Path)
	return key, nil
}

// delete removes a message only when its stored sender is the authenticated user
func (s *Server) delete(id auth.Identity, f Frame) error {
	unlock := s.lockPath(f.Path)
	defer unlock()
	stored, err := s.store.Get(f.Path, f.Key)
	if err != nil {
		return err
	}
	if stored.UserID != id.UserID {
		return errForbidden
	}
	if err := s.store.Delete(f.Path, f.Key); err != nil {
		return err
	}
	s.publish(f.Path)
	return nil
}
