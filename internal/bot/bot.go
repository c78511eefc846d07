// Package bot is the conversational engine: per-channel Markov state, the
// insult cooldown machine, poem search and synthesis, and the prefix command
// router. Transports hand every incoming message to Bot.Process.
package bot

import (
	"context"
	"strings"
	"time"

	"bernbot/internal/assets"
	"bernbot/internal/chance"
	"bernbot/internal/logger"
	"bernbot/internal/markov"
	"bernbot/internal/state"
	"bernbot/pkg/cmd"
)

const defaultPrefix = "bern "

// Options configures a Bot. Zero values pick the defaults.
type Options struct {
	// SelfID is the bot's own account; its messages are never answered.
	SelfID        string
	DefaultPrefix string
	// ContinuationDelay separates the messages of a continuation burst.
	ContinuationDelay time.Duration
	Rand              chance.Source
	Logger            *logger.Logger
	// Sleep waits between burst messages; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
	// Poems and Insults override the embedded corpora.
	Poems   []string
	Insults []string
}

// Bot is the aggregate shared by every message handler. Safe for concurrent use.
type Bot struct {
	selfID            string
	defaultPrefix     string
	continuationDelay time.Duration
	rng               chance.Source
	log               *logger.Logger
	sleep             func(ctx context.Context, d time.Duration) error

	prefixes *state.Store[string]
	markov   *state.Store[MarkovState]
	insults  *state.Store[InsultState]

	poems     []string
	insultSet []string
	poemChain *markov.Chain // read-only after New

	commands *cmd.Registry
}

// New returns a Bot with empty state.
func New(opts Options) *Bot {
	b := &Bot{
		selfID:            opts.SelfID,
		defaultPrefix:     opts.DefaultPrefix,
		continuationDelay: opts.ContinuationDelay,
		rng:               opts.Rand,
		log:               opts.Logger,
		sleep:             opts.Sleep,
		prefixes:          state.New[string](),
		markov:            state.New[MarkovState](),
		insults:           state.New[InsultState](),
		poems:             opts.Poems,
		insultSet:         opts.Insults,
	}
	if b.defaultPrefix == "" {
		b.defaultPrefix = defaultPrefix
	}
	if b.rng == nil {
		b.rng = chance.Default()
	}
	if b.log == nil {
		b.log = logger.Nop()
	}
	if b.sleep == nil {
		b.sleep = sleepCtx
	}
	if b.poems == nil {
		b.poems = assets.Poems()
	}
	if b.insultSet == nil {
		b.insultSet = assets.Insults()
	}

	b.poemChain = markov.New()
	for _, p := range b.poems {
		b.poemChain.Feed(strings.Fields(p))
	}

	b.commands = b.registerCommands()
	return b
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Process handles one incoming message: it runs a command when the message
// starts with the scope's prefix, and otherwise learns from it and maybe
// answers. Errors are transport failures wrapped in ErrTransport.
func (b *Bot) Process(ctx context.Context, m Message) error {
	if m.Author() == b.selfID {
		return nil
	}

	rest, isCommand := stripPrefix(m.Content(), b.prefixFor(m))
	if !isCommand {
		return b.handleChat(ctx, m)
	}
	return b.handleCommand(ctx, m, strings.Fields(rest))
}

func (b *Bot) prefixFor(m Message) string {
	if p, ok := b.prefixes.Get(scopeOf(m)); ok && p != "" {
		return p
	}
	return b.defaultPrefix
}

// stripPrefix reports whether content invokes a command and returns what
// follows the prefix. A message that is just the prefix, minus its trailing
// space, counts as an invocation with nothing after it.
func stripPrefix(content, prefix string) (string, bool) {
	if strings.HasPrefix(content, prefix) {
		return content[len(prefix):], true
	}
	if bare := strings.TrimSpace(prefix); bare != "" && strings.TrimSpace(content) == bare {
		return "", true
	}
	return "", false
}

// say sends a threaded command answer, rendering {prefix} placeholders.
func (b *Bot) say(ctx context.Context, m Message, text string) error {
	return b.reply(ctx, m, b.render(m, text))
}

func (b *Bot) render(m Message, text string) string {
	return strings.ReplaceAll(text, "{prefix}", b.prefixFor(m))
}
