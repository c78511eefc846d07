package bot

import "fmt"

// SnapshotVersion is bumped whenever the persisted layout changes.
const SnapshotVersion = 1

// Snapshot is the persisted form of a Bot. The poem chain is rebuilt from
// the embedded corpus and is not part of it.
type Snapshot struct {
	Version  int                    `json:"version"`
	Prefixes map[string]string      `json:"prefixes"`
	Markov   map[string]MarkovState `json:"markov"`
	Insults  map[string]InsultState `json:"insults"`
}

// Snapshot copies the bot's state. Each key is locked only while its
// references are copied, so the result is consistent per key, not across
// keys. Chains are frozen and shared with the live state, not copied.
func (b *Bot) Snapshot() *Snapshot {
	snap := &Snapshot{
		Version:  SnapshotVersion,
		Prefixes: make(map[string]string, b.prefixes.Len()),
		Markov:   make(map[string]MarkovState, b.markov.Len()),
		Insults:  make(map[string]InsultState, b.insults.Len()),
	}
	b.prefixes.Range(func(k string, v *string) { snap.Prefixes[k] = *v })
	b.markov.Range(func(k string, v *MarkovState) { snap.Markov[k] = v.share() })
	b.insults.Range(func(k string, v *InsultState) { snap.Insults[k] = *v })
	return snap
}

// Restore builds a Bot from opts and loads snap into it.
func Restore(opts Options, snap *Snapshot) (*Bot, error) {
	b := New(opts)
	if snap == nil {
		return b, nil
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, SnapshotVersion)
	}

	for k, p := range snap.Prefixes {
		p := p
		b.prefixes.Update(k, nil, func(v *string) { *v = p })
	}
	for k, s := range snap.Markov {
		s := s.clone() // fills in chains missing from older files
		s.Probability = clampProbability(s.Probability, true)
		b.markov.Update(k, nil, func(v *MarkovState) { *v = s })
	}
	for k, s := range snap.Insults {
		s := s
		if s.CountPassed == 0 {
			s.CountPassed = 1
		}
		b.insults.Update(k, nil, func(v *InsultState) { *v = s })
	}
	return b, nil
}

// Stats summarizes the bot's state for status reports.
type Stats struct {
	Prefixes          int `json:"prefixes"`
	ListeningChannels int `json:"listening_channels"`
	EnabledChannels   int `json:"enabled_channels"`
	Authors           int `json:"authors"`
	States            int `json:"states"`
	InsultKeys        int `json:"insult_keys"`
	PoemChainStates   int `json:"poem_chain_states"`
}

// Stats counts what the bot has learned.
func (b *Bot) Stats() Stats {
	st := Stats{
		Prefixes:        b.prefixes.Len(),
		InsultKeys:      b.insults.Len(),
		PoemChainStates: b.poemChain.Len(),
	}
	b.markov.Range(func(_ string, s *MarkovState) {
		st.ListeningChannels++
		if s.Enabled {
			st.EnabledChannels++
		}
		st.Authors += len(s.PerAuthor)
		st.States += s.Global.Len()
	})
	return st
}
