// Package console serves the bot on standard input and output, for local
// experiments without a Discord account.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bernbot/internal/bot"
	"bernbot/internal/logger"
)

const (
	// ChannelID is the single conversation the console simulates.
	ChannelID = "console"
	// AuthorID is the user typing on the console.
	AuthorID = "console-user"
	// replyMarker starts a line that replies to the bot's previous message.
	replyMarker = "> "

	maxInFlight = 8
)

// Console reads one message per line and prints the bot's replies.
type Console struct {
	out io.Writer
	log *logger.Logger

	mu     sync.Mutex
	lastID string // last message the bot sent
}

func New(out io.Writer, log *logger.Logger) *Console {
	if log == nil {
		log = logger.Nop()
	}
	return &Console{out: out, log: log}
}

// Serve feeds every line of in to engine until in is exhausted or ctx is
// done, then waits for handlers still running.
func (c *Console) Serve(ctx context.Context, in io.Reader, engine *bot.Bot) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-gctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			c.log.Warn("failed to read input", "error", err)
		}
	}()

	for {
		select {
		case <-gctx.Done():
			return g.Wait()
		case line, ok := <-lines:
			if !ok {
				return g.Wait()
			}
			m := c.newMessage(line)
			g.Go(func() error {
				if err := engine.Process(gctx, m); err != nil {
					c.log.Warn("failed to process line", "error", err)
				}
				return nil
			})
		}
	}
}

func (c *Console) newMessage(line string) *message {
	m := &message{c: c, id: uuid.NewString(), content: line}
	if rest, ok := strings.CutPrefix(line, replyMarker); ok {
		m.content = rest
		c.mu.Lock()
		m.ref = c.lastID
		c.mu.Unlock()
	}
	return m
}

type message struct {
	c       *Console
	id      string
	content string
	ref     string
}

func (m *message) ID() string           { return m.id }
func (m *message) Author() string       { return AuthorID }
func (m *message) Content() string      { return m.content }
func (m *message) ChannelID() string    { return ChannelID }
func (m *message) GuildID() string      { return "" }
func (m *message) ReferencedID() string { return m.ref }

// HasManagePermission is always true: the console user owns the conversation.
func (m *message) HasManagePermission(context.Context) (bool, error) {
	return true, nil
}

func (m *message) Send(_ context.Context, r bot.Reply) (string, error) {
	id := uuid.NewString()

	var sb strings.Builder
	if r.Threaded {
		fmt.Fprintf(&sb, "[re: %s] ", shortID(m.id))
	}
	sb.WriteString(r.Text)
	if r.Attachment != nil {
		if r.Text != "" {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "[attachment %s, %d bytes]", r.Attachment.Name, len(r.Attachment.Data))
	}
	sb.WriteByte('\n')

	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	if _, err := io.WriteString(m.c.out, sb.String()); err != nil {
		return "", err
	}
	m.c.lastID = id
	return id, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
