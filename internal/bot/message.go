package bot

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransport wraps every failure of a transport call (permission query or
// send) surfaced by Process. Transports log it and keep serving.
var ErrTransport = errors.New("transport error")

// Attachment is a single binary file sent with a reply.
type Attachment struct {
	Name string
	Data []byte
}

// Reply is one outbound message.
type Reply struct {
	Text       string
	Attachment *Attachment
	// Threaded sends the reply as a reply to the triggering message.
	Threaded bool
}

// Message is the transport's view of one incoming chat message.
type Message interface {
	ID() string
	Author() string
	Content() string
	ChannelID() string
	// GuildID returns "" outside of a guild (direct messages).
	GuildID() string
	// ReferencedID returns the ID of the message this one replies to, or "".
	ReferencedID() string
	// HasManagePermission reports whether the author may reconfigure the bot
	// in this channel.
	HasManagePermission(ctx context.Context) (bool, error)
	// Send posts a reply in the message's channel and returns the new message ID.
	Send(ctx context.Context, r Reply) (string, error)
}

// scopeOf is the key for configuration commands: the guild when there is one,
// otherwise the channel.
func scopeOf(m Message) string {
	if g := m.GuildID(); g != "" {
		return g
	}
	return m.ChannelID()
}

func (b *Bot) send(ctx context.Context, m Message, r Reply) (string, error) {
	id, err := m.Send(ctx, r)
	if err != nil {
		return "", fmt.Errorf("%w: send to channel %s: %w", ErrTransport, m.ChannelID(), err)
	}
	return id, nil
}

// reply sends a threaded text reply, the form every command answer takes.
func (b *Bot) reply(ctx context.Context, m Message, text string) error {
	_, err := b.send(ctx, m, Reply{Text: text, Threaded: true})
	return err
}

func (b *Bot) replyFile(ctx context.Context, m Message, name string, data []byte) (string, error) {
	return b.send(ctx, m, Reply{Attachment: &Attachment{Name: name, Data: data}, Threaded: true})
}

// requireManage checks the author's capability with no state lock held and
// answers the denial itself. It reports whether the caller may proceed.
func (b *Bot) requireManage(ctx context.Context, m Message) (bool, error) {
	ok, err := m.HasManagePermission(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: permission check in channel %s: %w", ErrTransport, m.ChannelID(), err)
	}
	if !ok {
		return false, b.reply(ctx, m, msgNoPermission)
	}
	return true, nil
}
