package bot

import (
	"math"
	"strings"

	"bernbot/internal/chance"
)

// InsultState is the taunt cooldown of one channel, plus the enable flag
// when stored under a configuration scope.
type InsultState struct {
	Enabled bool `json:"enabled"`
	// CountPassed counts messages since the last taunt. Never below 1.
	CountPassed uint32 `json:"count_passed"`
	LastTauntID string `json:"last_taunt_id,omitempty"`
}

func newInsultState() InsultState {
	return InsultState{CountPassed: 1}
}

// fireProbability returns the taunt chance in percent.
func (s InsultState) fireProbability() float64 {
	return 0.05 * float64(s.CountPassed)
}

func (b *Bot) insultsEnabled(scope string) bool {
	s, ok := b.insults.Get(scope)
	return ok && s.Enabled
}

// RollInsult advances the channel's cooldown and reports whether a taunt
// fires. It never fires while insults are disabled for scope.
func (b *Bot) RollInsult(channel, scope string) (string, bool) {
	if !b.insultsEnabled(scope) {
		return "", false
	}

	var fired bool
	b.insults.Update(channel, newInsultState, func(s *InsultState) {
		if s.CountPassed == 0 {
			s.CountPassed = 1
		}
		if b.rng.Float64()*100 < s.fireProbability() {
			fired = true
			s.CountPassed = 1
			return
		}
		if s.CountPassed < math.MaxUint32 {
			s.CountPassed++
		}
	})
	if !fired {
		return "", false
	}
	insult, ok := chance.Pick(b.rng, b.insultSet)
	return insult, ok
}

// RecordTaunt remembers id as the channel's latest taunt.
func (b *Bot) RecordTaunt(channel, id string) {
	b.insults.Update(channel, newInsultState, func(s *InsultState) {
		s.LastTauntID = id
	})
}

// HasRetaliation reports whether content answers the channel's latest taunt
// with the retaliation phrase. The phrase is matched literally, anywhere in
// content.
func (b *Bot) HasRetaliation(channel, repliedTo, content string) bool {
	if repliedTo == "" || !strings.Contains(content, retaliationPhrase) {
		return false
	}
	s, ok := b.insults.Get(channel)
	return ok && s.LastTauntID != "" && s.LastTauntID == repliedTo
}

// ToggleInsults flips proactive taunting for scope and returns the new flag.
func (b *Bot) ToggleInsults(scope string) bool {
	var enabled bool
	b.insults.Update(scope, newInsultState, func(s *InsultState) {
		s.Enabled = !s.Enabled
		enabled = s.Enabled
	})
	return enabled
}
