package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"bernbot/internal/assets"
	"bernbot/pkg/cmd"
)

// command adapts a bot handler to cmd.Command. The invocation's Data is the
// triggering Message.
type command struct {
	name        string
	description string
	help        string
	run         func(ctx context.Context, m Message, inv *cmd.Invocation) error
}

func (c *command) Name() string        { return c.name }
func (c *command) Description() string { return c.description }
func (c *command) Help() string        { return c.help }

func (c *command) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := inv.Data.(Message)
	if !ok {
		return fmt.Errorf("command %s: invocation carries %T, not a message", c.name, inv.Data)
	}
	return c.run(ctx, m, inv)
}

func (b *Bot) registerCommands() *cmd.Registry {
	logged := b.withCommandLog()
	r := cmd.NewRegistry()
	r.Register(
		cmd.Apply(&command{name: "help", description: "Shows help.", help: helpHelp, run: b.runHelp}, logged),
		cmd.Apply(&command{name: "set", description: "Configures the bot.", help: helpSet, run: b.runSet},
			b.withManagePermission(), logged),
		cmd.Apply(&command{name: "poem", description: "Finds or writes a poem.", help: helpPoem, run: b.runPoem}, logged),
		cmd.Apply(&command{name: "fuckyou", description: "No, fuck you.", help: helpFuckYou, run: b.runFuckYou}, logged),
		cmd.Apply(&command{name: "gen", description: "Generates text.", help: helpGen, run: b.runGen}, logged),
		cmd.Apply(&command{name: "listen", description: "Configures listening.", help: helpListen, run: b.runListen}, logged),
	)
	return r
}

func (b *Bot) runHelp(ctx context.Context, m Message, inv *cmd.Invocation) error {
	if name := inv.Arg(0); name != "" {
		if c, ok := b.commands.Get(name); ok {
			return b.say(ctx, m, cmd.HelpOf(c))
		}
	}
	return b.say(ctx, m, helpOverview)
}

func (b *Bot) runSet(ctx context.Context, m Message, inv *cmd.Invocation) error {
	scope := scopeOf(m)
	switch inv.Arg(0) {
	case "prefix":
		value := normalizePrefix(inv.Shift().Rest(0))
		if value == "" {
			return b.say(ctx, m, msgNoPrefix)
		}
		b.prefixes.Update(scope, nil, func(p *string) { *p = value })
		return b.reply(ctx, m, fmt.Sprintf(msgPrefixSet, value))
	case "insult":
		if b.ToggleInsults(scope) {
			return b.reply(ctx, m, msgInsultsOn)
		}
		return b.reply(ctx, m, msgInsultsOff)
	default:
		return b.say(ctx, m, helpSet)
	}
}

// normalizePrefix gives word prefixes a separating space, so "bern" matches
// "bern gen" rather than "berngen".
func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if r, _ := utf8.DecodeLastRuneInString(p); unicode.IsLetter(r) || unicode.IsDigit(r) {
		return p + " "
	}
	return p
}

func (b *Bot) runPoem(ctx context.Context, m Message, inv *cmd.Invocation) error {
	switch {
	case len(inv.Args) == 0:
		poem, ok := b.randomPoem()
		if !ok {
			return b.say(ctx, m, msgNoPoem)
		}
		return b.reply(ctx, m, poem)
	case len(inv.Args) == 1 && inv.Args[0] == "gen":
		poem := b.synthesizePoem(b.poemChain)
		if poem == "" {
			return b.say(ctx, m, msgNoData)
		}
		return b.reply(ctx, m, poem)
	default:
		poem, ok := b.searchPoem(inv.Args)
		if !ok {
			return b.say(ctx, m, msgNoPoem)
		}
		return b.reply(ctx, m, poem)
	}
}

func (b *Bot) runFuckYou(ctx context.Context, m Message, _ *cmd.Invocation) error {
	_, err := b.replyFile(ctx, m, assets.FuckYouImageName, assets.FuckYouImage)
	return err
}

func (b *Bot) runGen(ctx context.Context, m Message, inv *cmd.Invocation) error {
	channel := m.ChannelID()

	var (
		text string
		err  error
	)
	switch arg := inv.Arg(0); arg {
	case "":
		text, err = b.GenerateFree(channel)
	case "token":
		sub := inv.Shift()
		if sub.Arg(0) == "" {
			return b.say(ctx, m, msgNoToken)
		}
		text, err = b.GenerateFrom(channel, sub.Arg(0))
	case "poem":
		text, err = b.generatePoem(channel)
	default:
		text, err = b.GenerateFor(channel, mentionID(arg))
	}

	switch {
	case errors.Is(err, errNotListening):
		return b.say(ctx, m, msgNotListening)
	case errors.Is(err, errNoData):
		return b.say(ctx, m, msgNoData)
	case err != nil:
		return err
	}
	return b.reply(ctx, m, text)
}

// generatePoem synthesizes a poem out of the channel's own chain.
func (b *Bot) generatePoem(channel string) (string, error) {
	var poem string
	if !b.markov.With(channel, func(s *MarkovState) {
		poem = b.synthesizePoem(s.Global)
	}) {
		return "", errNotListening
	}
	if poem == "" {
		return "", errNoData
	}
	return poem, nil
}

// mentionID unwraps Discord's <@id> and <@!id> mention syntax.
func mentionID(s string) string {
	if !strings.HasPrefix(s, "<@") || !strings.HasSuffix(s, ">") {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">")
	return strings.TrimPrefix(s, "!")
}

func (b *Bot) runListen(ctx context.Context, m Message, inv *cmd.Invocation) error {
	channel := m.ChannelID()

	switch inv.Arg(0) {
	case "":
		if ok, err := b.requireManage(ctx, m); !ok {
			return err
		}
		var on bool
		b.markov.Update(channel, newMarkovState, func(s *MarkovState) {
			s.Enabled = !s.Enabled
			on = s.Enabled
		})
		if on {
			return b.reply(ctx, m, msgListenOn)
		}
		return b.reply(ctx, m, msgListenOff)

	case "prob":
		sub := inv.Shift()
		if sub.Arg(0) == "" {
			s, ok := b.markov.Get(channel)
			if !ok {
				return b.say(ctx, m, msgNotListening)
			}
			return b.reply(ctx, m, fmt.Sprintf(msgProbability, s.Probability))
		}
		if ok, err := b.requireManage(ctx, m); !ok {
			return err
		}
		p := parseProbability(sub.Arg(0))
		b.markov.Update(channel, newMarkovState, func(s *MarkovState) { s.Probability = p })
		return b.reply(ctx, m, fmt.Sprintf(msgProbabilitySet, p))

	case "clear":
		if ok, err := b.requireManage(ctx, m); !ok {
			return err
		}
		if !b.markov.Delete(channel) {
			return b.say(ctx, m, msgNotListening)
		}
		return b.reply(ctx, m, msgForgotten)

	default:
		return b.say(ctx, m, helpListen)
	}
}
