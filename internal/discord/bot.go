package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"bernbot/internal/bot"
	"bernbot/internal/config"
	"bernbot/internal/logger"
	"bernbot/pkg/retrylimit"
)

// Bot connects the conversational engine to a Discord gateway session.
type Bot struct {
	dg    *discordgo.Session
	cfg   *config.Config
	log   *logger.Logger
	lim   *retrylimit.AdaptiveLimiter
	retry retrylimit.Config

	mu     sync.RWMutex
	engine *bot.Bot
	ctx    context.Context
}

// New creates the Discord session. Nothing is connected until Serve.
func New(cfg *config.Config, log *logger.Logger) (*Bot, error) {
	if err := cfg.RequireDiscord(); err != nil {
		return nil, err
	}
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		dg:    dg,
		cfg:   cfg,
		log:   log.With("transport", "discord"),
		lim:   retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		retry: retrylimit.DefaultConfig(),
	}
	b.retry.OnRetry = b.logRetry
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	return b, nil
}

// SelfID returns the bot's own user ID: BOT_ID when set, otherwise the
// token's user as reported by the REST API. The gateway stays closed.
func (b *Bot) SelfID(ctx context.Context) (string, error) {
	if b.cfg.BotID != "" {
		return b.cfg.BotID, nil
	}
	var me *discordgo.User
	err := retrylimit.Do(ctx, b.lim, b.retry, func() error {
		var err error
		me, err = b.dg.User("@me", discordgo.WithContext(ctx))
		return classify(err)
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve own user: %w", err)
	}
	return me.ID, nil
}

// Serve connects to the gateway and hands incoming messages to engine until
// ctx is done, then closes the session. The engine is installed before the
// connection opens, so no early message is dropped.
func (b *Bot) Serve(ctx context.Context, engine *bot.Bot) error {
	b.mu.Lock()
	b.engine, b.ctx = engine, ctx
	b.mu.Unlock()

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	if b.cfg.PresenceMessage != "" {
		if err := b.dg.UpdateGameStatus(0, b.cfg.PresenceMessage); err != nil {
			b.log.Warn("failed to set presence", "error", err)
		}
	}
	b.log.Info("serving")

	<-ctx.Done()
	b.log.Info("shutdown signal received, closing session")
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("connected", "user", r.User.Username, "guilds", len(r.Guilds))
}

// onMessageCreate runs on its own goroutine for every message.
func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	b.mu.RLock()
	engine, ctx := b.engine, b.ctx
	b.mu.RUnlock()
	if engine == nil {
		return
	}

	err := engine.Process(ctx, &message{b: b, m: m})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
	case errors.Is(err, bot.ErrTransport):
		b.log.Warn("failed to answer message", "channel", m.ChannelID, "message", m.ID, "error", err)
	default:
		b.log.Error("failed to process message", "channel", m.ChannelID, "message", m.ID, "error", err)
	}
}
