package bot

import (
	"context"
	"fmt"
	"strings"

	"bernbot/internal/assets"
	"bernbot/internal/chance"
	"bernbot/pkg/cmd"
)

const (
	// burstStopOneIn: before each continuation message the burst ends with
	// probability 1/burstStopOneIn.
	burstStopOneIn = 10
	maxBurst       = 10
)

// handleChat learns from a non-command message and decides how to answer it.
func (b *Bot) handleChat(ctx context.Context, m Message) error {
	channel := m.ChannelID()

	if b.HasRetaliation(channel, m.ReferencedID(), m.Content()) {
		_, err := b.replyFile(ctx, m, assets.UmadImageName, assets.UmadImage)
		return err
	}

	tokens := strings.Fields(m.Content())
	b.Feed(channel, m.Author(), tokens)

	if insult, ok := b.RollInsult(channel, scopeOf(m)); ok {
		return b.taunt(ctx, m, insult)
	}

	text, isReply, ok := b.TryGenerate(channel, tokens)
	if !ok {
		return nil
	}
	if _, err := b.send(ctx, m, Reply{Text: text, Threaded: isReply}); err != nil {
		return err
	}
	return b.continueBurst(ctx, m, tokens)
}

// continueBurst keeps talking after a generated reply until the stop roll
// hits, generation comes back empty, or ctx is done.
func (b *Bot) continueBurst(ctx context.Context, m Message, tokens []string) error {
	for range maxBurst {
		if chance.OneIn(b.rng, burstStopOneIn) {
			return nil
		}
		if err := b.sleep(ctx, b.continuationDelay); err != nil {
			return nil
		}
		text, isReply, ok := b.continueGenerate(m.ChannelID(), tokens)
		if !ok {
			return nil
		}
		if _, err := b.send(ctx, m, Reply{Text: text, Threaded: isReply}); err != nil {
			return err
		}
	}
	return nil
}

// taunt sends a threaded insult and remembers it as the channel's last taunt.
func (b *Bot) taunt(ctx context.Context, m Message, text string) error {
	id, err := b.send(ctx, m, Reply{Text: text, Threaded: true})
	if err != nil {
		return err
	}
	b.RecordTaunt(m.ChannelID(), id)
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, m Message, args []string) error {
	if len(args) == 0 {
		return b.say(ctx, m, msgWhatDoYouWant)
	}
	c, ok := b.commands.Get(args[0])
	if !ok {
		return b.unrecognised(ctx, m, args[0])
	}
	return c.Run(ctx, &cmd.Invocation{Name: args[0], Args: args[1:], Data: m})
}

func (b *Bot) unrecognised(ctx context.Context, m Message, name string) error {
	insult, _ := chance.Pick(b.rng, b.insultSet)
	text := strings.TrimSpace(fmt.Sprintf(msgUnknownCmd, insult, name))
	return b.taunt(ctx, m, text)
}
