package chats

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/julianstephens/habitshare/internal/chat"
	"github.com/julianstephens/habitshare/internal/cli"
	"github.com/julianstephens/habitshare/internal/models"
)

type ChatCmd struct {
	List   ChatListCmd   `cmd:"" help:"Print a share's chat."`
	Send   ChatSendCmd   `cmd:"" help:"Send a chat message on a share."`
	Delete ChatDeleteCmd `cmd:"" help:"Delete one of your chat messages."`
	Watch  ChatWatchCmd  `cmd:"" help:"Follow a share's chat live."`
}

const snapshotTimeout = 10 * time.Second

// snapshot subscribes long enough to receive the current chat log
func snapshot(ctx *cli.Context, conn *chat.Client, shareID string) (models.ChatLog, error) {
	got := make(chan models.ChatLog, 1)
	unsub, err := conn.Subscribe(ctx.Ctx, shareID, func(l models.ChatLog) {
		select {
		case got <- l:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	defer unsub()

	select {
	case l := <-got:
		return l, nil
	case <-conn.Done():
		return nil, chat.ErrClosed
	case <-time.After(snapshotTimeout):
		return nil, fmt.Errorf("timed out waiting for chat")
	case <-ctx.Ctx.Done():
		return nil, ctx.Ctx.Err()
	}
}

func printLog(ctx *cli.Context, log models.ChatLog, me string) {
	if len(log) == 0 {
		ctx.Printf("No messages yet.\n")
		return
	}
	for _, m := range log.Ordered() {
		who := m.UserName
		if m.UserID == me {
			who += " (you)"
		}
		at := time.UnixMilli(m.Timestamp).Local().Format("15:04")
		ctx.Printf("[%s] %s  %s: %s\n", m.Key, at, who, m.Message)
	}
}

type ChatListCmd struct {
	Share string `arg:"" help:"Share ID."`
}

func (c *ChatListCmd) Run(ctx *cli.Context) error {
	conn, err := ctx.DialChat()
	if err != nil {
		return err
	}
	defer conn.Close()

	log, err := snapshot(ctx, conn, c.Share)
	if err != nil {
		return err
	}
	printLog(ctx, log, ctx.Session.UserID)
	return nil
}

type ChatSendCmd struct {
	Share   string   `arg:"" help:"Share ID."`
	Message []string `arg:"" help:"Message text."`
}

func (c *ChatSendCmd) Run(ctx *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Message, " "))
	if text == "" {
		return nil
	}

	conn, err := ctx.DialChat()
	if err != nil {
		return err
	}
	defer conn.Close()

	refused := make(chan error, 1)
	conn.OnError(func(err error) { refused <- err })

	// wait for the snapshot that carries the new message
	sent := make(chan struct{}, 1)
	unsub, err := conn.Subscribe(ctx.Ctx, c.Share, func(l models.ChatLog) {
		for _, m := range l {
			if m.UserID == ctx.Session.UserID && m.Message == text {
				select {
				case sent <- struct{}{}:
				default:
				}
				return
			}
		}
	})
	if err != nil {
		return err
	}
	defer unsub()

	msg := models.ChatMessage{
		UserID:   ctx.Session.UserID,
		UserName: ctx.Session.Name(),
		Message:  text,
	}
	if err := conn.Send(ctx.Ctx, c.Share, msg); err != nil {
		return err
	}

	select {
	case <-sent:
		ctx.Printf("✓ Sent\n")
		return nil
	case err := <-refused:
		return err
	case <-time.After(snapshotTimeout):
		return fmt.Errorf("no confirmation from chat server")
	}
}

type ChatDeleteCmd struct {
	Share string `arg:"" help:"Share ID."`
	Key   string `arg:"" help:"Message key (shown by 'chat list')."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ChatDeleteCmd) Run(ctx *cli.Context) error {
	conn, err := ctx.DialChat()
	if err != nil {
		return err
	}
	defer conn.Close()

	refused := make(chan error, 1)
	conn.OnError(func(err error) { refused <- err })

	logs := make(chan models.ChatLog, 4)
	unsub, err := conn.Subscribe(ctx.Ctx, c.Share, func(l models.ChatLog) {
		select {
		case logs <- l:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer unsub()

	var log models.ChatLog
	select {
	case log = <-logs:
	case <-time.After(snapshotTimeout):
		return fmt.Errorf("timed out waiting for chat")
	}

	m, ok := log[c.Key]
	if !ok {
		return fmt.Errorf("message %s not found", c.Key)
	}
	msg := models.KeyedMessage{Key: c.Key, ChatMessage: m}
	if msg.UserID != ctx.Session.UserID {
		return chat.ErrNotOwner
	}

	ok, err = ctx.Confirm(fmt.Sprintf("Delete message %q?", m.Message), c.Yes)
	if err != nil || !ok {
		return err
	}
	if err := conn.Delete(ctx.Ctx, c.Share, msg, ctx.Session.UserID); err != nil {
		return err
	}

	for {
		select {
		case l := <-logs:
			if _, still := l[c.Key]; !still {
				ctx.Printf("Deleted message %s\n", c.Key)
				return nil
			}
		case err := <-refused:
			return err
		case <-time.After(snapshotTimeout):
			return fmt.Errorf("no confirmation from chat server")
		}
	}
}

type ChatWatchCmd struct {
	Share string `arg:"" help:"Share ID."`
}

func (c *ChatWatchCmd) Run(ctx *cli.Context) error {
	conn, err := ctx.DialChat()
	if err != nil {
		return err
	}
	defer conn.Close()

	watchCtx, stop := signal.NotifyContext(ctx.Ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	unsub, err := conn.Subscribe(watchCtx, c.Share, func(l models.ChatLog) {
		ctx.Printf("\n── %s ──\n", time.Now().Format("15:04:05"))
		printLog(ctx, l, ctx.Session.UserID)
	})
	if err != nil {
		return err
	}
	defer unsub()

	select {
	case <-watchCtx.Done():
	case <-conn.Done():
		return chat.ErrClosed
	}
	return nil
}
