package bot

import (
	"errors"
	"strconv"
	"strings"

	"bernbot/internal/chance"
	"bernbot/internal/markov"
)

const (
	defaultProbability = 5

	// replySeedOneIn: one generated reply in this many is seeded from the
	// triggering message and threaded under it.
	replySeedOneIn = 5
	// typoOneIn: each generated character is swapped for a random
	// alphanumeric with probability 1/typoOneIn.
	typoOneIn = 200

	minReplyTokens = 16
	maxReplyTokens = 32 // exclusive
)

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	errNotListening = errors.New("channel is not configured for listening")
	errNoData       = errors.New("not enough data")
)

// MarkovState is what the bot has learned in one channel.
type MarkovState struct {
	// Probability is the percent chance of answering an observed message.
	Probability int `json:"probability"`
	// Enabled gates replies; disabled channels still learn.
	Enabled   bool                     `json:"enabled"`
	Global    *markov.Chain            `json:"global"`
	PerAuthor map[string]*markov.Chain `json:"per_author"`
}

func newMarkovState() MarkovState {
	return MarkovState{
		Probability: defaultProbability,
		Global:      markov.New(),
		PerAuthor:   make(map[string]*markov.Chain),
	}
}

func (s MarkovState) clone() MarkovState {
	out := MarkovState{
		Probability: s.Probability,
		Enabled:     s.Enabled,
		Global:      s.Global.Clone(),
		PerAuthor:   make(map[string]*markov.Chain, len(s.PerAuthor)),
	}
	for author, c := range s.PerAuthor {
		out.PerAuthor[author] = c.Clone()
	}
	return out
}

// share freezes the chains and returns a copy that references them. The
// live state thaws a chain before feeding it again, so the copy never changes.
func (s MarkovState) share() MarkovState {
	out := MarkovState{
		Probability: s.Probability,
		Enabled:     s.Enabled,
		Global:      s.Global,
		PerAuthor:   make(map[string]*markov.Chain, len(s.PerAuthor)),
	}
	s.Global.Freeze()
	for author, c := range s.PerAuthor {
		c.Freeze()
		out.PerAuthor[author] = c
	}
	return out
}

// clampProbability maps the argument of "listen prob" to a stored value:
// unparseable input falls back to the default, numbers are clamped to [0,100].
func clampProbability(n int, parsed bool) int {
	switch {
	case !parsed:
		return defaultProbability
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}

// parseProbability reads the argument of "listen prob". Numbers too large
// for an int still count as numbers: Atoi saturates them, so they clamp.
func parseProbability(arg string) int {
	n, err := strconv.Atoi(arg)
	return clampProbability(n, err == nil || errors.Is(err, strconv.ErrRange))
}

// Feed teaches the channel's global chain and the author's own chain. It is a
// no-op for channels that were never configured with listen.
func (b *Bot) Feed(channel, author string, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	b.markov.With(channel, func(s *MarkovState) {
		s.Global = s.Global.Thaw()
		s.Global.Feed(tokens)
		c := s.PerAuthor[author].Thaw()
		s.PerAuthor[author] = c
		c.Feed(tokens)
	})
}

// TryGenerate decides whether to answer the tokens just fed and builds the
// answer. isReply asks for the answer to be threaded under the message.
func (b *Bot) TryGenerate(channel string, fed []string) (text string, isReply bool, ok bool) {
	b.markov.With(channel, func(s *MarkovState) {
		if !s.Enabled || b.rng.IntN(100) >= s.Probability {
			return
		}
		text, isReply = b.compose(s.Global, fed)
	})
	return text, isReply, text != ""
}

// continueGenerate builds one more message of a continuation burst. It skips
// the probability gate but stops once the channel is disabled or cleared.
func (b *Bot) continueGenerate(channel string, fed []string) (text string, isReply bool, ok bool) {
	b.markov.With(channel, func(s *MarkovState) {
		if !s.Enabled {
			return
		}
		text, isReply = b.compose(s.Global, fed)
	})
	return text, isReply, text != ""
}

// compose seeds a walk either from the fed tokens (a threaded reply) or from
// the chain itself, and falls back to a free walk when the seeded walk is
// empty or only echoes the seed.
func (b *Bot) compose(c *markov.Chain, fed []string) (string, bool) {
	var seed string
	isReply := false
	if len(fed) > 0 && chance.OneIn(b.rng, replySeedOneIn) {
		seed, _ = chance.Pick(b.rng, fed)
		isReply = true
	} else {
		seed, _ = chance.Pick(b.rng, c.Generate(b.rng))
	}

	var tokens []string
	if seed != "" {
		tokens = c.GenerateFrom(b.rng, seed)
	}
	if len(tokens) == 0 || (len(tokens) == 1 && tokens[0] == seed) {
		tokens = c.Generate(b.rng)
		isReply = false
	}
	return b.finish(tokens), isReply
}

// finish applies typos, truncates to a random length in [16,32) and joins.
func (b *Bot) finish(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	limit := minReplyTokens + b.rng.IntN(maxReplyTokens-minReplyTokens)
	if len(tokens) > limit {
		tokens = tokens[:limit]
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = b.typo(t)
	}
	return strings.Join(out, " ")
}

func (b *Bot) typo(token string) string {
	if token == "" {
		return token
	}
	runes := []rune(token)
	changed := false
	for i := range runes {
		if chance.OneIn(b.rng, typoOneIn) {
			runes[i] = rune(alphanumerics[b.rng.IntN(len(alphanumerics))])
			changed = true
		}
	}
	if !changed {
		return token
	}
	return string(runes)
}

// GenerateFor imitates one author in a channel.
func (b *Bot) GenerateFor(channel, author string) (string, error) {
	var text string
	if !b.markov.With(channel, func(s *MarkovState) {
		if c, ok := s.PerAuthor[author]; ok {
			text = b.finish(c.Generate(b.rng))
		}
	}) {
		return "", errNotListening
	}
	if text == "" {
		return "", errNoData
	}
	return text, nil
}

// GenerateFrom walks the channel's chain starting at token.
func (b *Bot) GenerateFrom(channel, token string) (string, error) {
	var text string
	if !b.markov.With(channel, func(s *MarkovState) {
		text = b.finish(s.Global.GenerateFrom(b.rng, token))
	}) {
		return "", errNotListening
	}
	if text == "" {
		return "", errNoData
	}
	return text, nil
}

// GenerateFree walks the channel's chain from its start state.
func (b *Bot) GenerateFree(channel string) (string, error) {
	var text string
	if !b.markov.With(channel, func(s *MarkovState) {
		text = b.finish(s.Global.Generate(b.rng))
	}) {
		return "", errNotListening
	}
	if text == "" {
		return "", errNoData
	}
	return text, nil
}
