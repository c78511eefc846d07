package discord

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/bwmarrin/discordgo"

	"bernbot/internal/bot"
	"bernbot/pkg/retrylimit"
)

const (
	typingMin    = 400 * time.Millisecond
	typingJitter = 400 * time.Millisecond
)

// message adapts a gateway event to bot.Message.
type message struct {
	b *Bot
	m *discordgo.MessageCreate
}

func (m *message) ID() string        { return m.m.ID }
func (m *message) Author() string    { return m.m.Author.ID }
func (m *message) Content() string   { return m.m.Content }
func (m *message) ChannelID() string { return m.m.ChannelID }
func (m *message) GuildID() string   { return m.m.GuildID }

func (m *message) ReferencedID() string {
	if ref := m.m.MessageReference; ref != nil {
		return ref.MessageID
	}
	return ""
}

// HasManagePermission reports whether the author may manage webhooks in the
// channel. Direct messages belong to their author.
func (m *message) HasManagePermission(ctx context.Context) (bool, error) {
	if m.m.GuildID == "" {
		return true, nil
	}
	var perms int64
	err := retrylimit.Do(ctx, m.b.lim, m.b.retry, func() error {
		var err error
		perms, err = m.b.dg.UserChannelPermissions(m.m.Author.ID, m.m.ChannelID, discordgo.WithContext(ctx))
		return classify(err)
	})
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionManageWebhooks != 0, nil
}

// Send shows the typing indicator for a moment, then posts the reply.
func (m *message) Send(ctx context.Context, r bot.Reply) (string, error) {
	if err := m.b.dg.ChannelTyping(m.m.ChannelID, discordgo.WithContext(ctx)); err != nil {
		m.b.log.Debug("typing indicator failed", "channel", m.m.ChannelID, "error", err)
	}
	t := time.NewTimer(typingMin + rand.N(typingJitter))
	select {
	case <-ctx.Done():
		t.Stop()
		return "", ctx.Err()
	case <-t.C:
	}

	var sent *discordgo.Message
	err := retrylimit.Do(ctx, m.b.lim, m.b.retry, func() error {
		// attachment readers are drained by each attempt
		data := buildMessageSend(r, m.m.Message)
		var err error
		sent, err = m.b.dg.ChannelMessageSendComplex(m.m.ChannelID, data, discordgo.WithContext(ctx))
		return classify(err)
	})
	if err != nil {
		return "", err
	}
	return sent.ID, nil
}

// buildMessageSend renders a reply. Mentions never ping anyone.
func buildMessageSend(r bot.Reply, to *discordgo.Message) *discordgo.MessageSend {
	data := &discordgo.MessageSend{
		Content:         r.Text,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}
	if r.Attachment != nil {
		data.Files = []*discordgo.File{{
			Name:   r.Attachment.Name,
			Reader: bytes.NewReader(r.Attachment.Data),
		}}
	}
	if r.Threaded && to != nil {
		data.Reference = &discordgo.MessageReference{
			MessageID: to.ID,
			ChannelID: to.ChannelID,
			GuildID:   to.GuildID,
		}
	}
	return data
}

// restError exposes a Discord REST failure's status code to retrylimit.
type restError struct {
	*discordgo.RESTError
}

func (e restError) Unwrap() error { return e.RESTError }

func (e restError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// classify marks 4xx responses other than 429 as fatal.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	wrapped := restError{rest}
	code := wrapped.StatusCode()
	if code >= 400 && code < 500 && code != 429 {
		return retrylimit.Fatal(wrapped)
	}
	return wrapped
}

func (b *Bot) logRetry(attempt int, err error, wait time.Duration) {
	b.log.Warn("discord call failed, retrying", "attempt", attempt, "wait", wait, "error", err)
}
