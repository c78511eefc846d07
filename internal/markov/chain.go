// Package markov implements the incremental first-order text chain the bot
// learns from chat. A Chain is fed whitespace-separated tokens and walks its
// weighted successor table to produce new token sequences.
//
// A Chain is not safe for concurrent mutation; callers guard it with the lock
// of whatever owns it. Concurrent reads of a chain nobody feeds are safe.
//
// Freeze makes a chain read-only so it can be handed to a reader outside the
// owner's lock. The owner keeps feeding through Thaw, which shares the frozen
// successor tables and copies each one only when it first changes.
package markov

import (
	"encoding/json"
	"fmt"

	"bernbot/internal/chance"
)

// boundary marks both the start and the end of a fed sequence. Fed tokens
// are never empty, so it cannot collide with a real token.
const boundary = ""

// maxWalk bounds a single walk so a cyclic chain cannot spin forever.
const maxWalk = 512

// Link is one weighted successor edge.
type Link struct {
	Token  string `json:"t"`
	Weight uint32 `json:"w"`
}

type successors struct {
	links []Link
	total uint64
	pos   map[string]int
	gen   uint64 // chain generation that owns this table
}

func newSuccessors(gen uint64) *successors {
	return &successors{pos: make(map[string]int), gen: gen}
}

func (s *successors) clone(gen uint64) *successors {
	cp := &successors{
		links: make([]Link, len(s.links)),
		total: s.total,
		pos:   make(map[string]int, len(s.pos)),
		gen:   gen,
	}
	copy(cp.links, s.links)
	for k, v := range s.pos {
		cp.pos[k] = v
	}
	return cp
}

func (s *successors) add(token string) {
	if i, ok := s.pos[token]; ok {
		if s.links[i].Weight < ^uint32(0) {
			s.links[i].Weight++
			s.total++
		}
		return
	}
	s.pos[token] = len(s.links)
	s.links = append(s.links, Link{Token: token, Weight: 1})
	s.total++
}

func (s *successors) pick(r chance.Source) string {
	if s.total == 0 {
		return boundary
	}
	// total fits in an int for any chain that fits in memory
	n := uint64(r.IntN(int(s.total)))
	for _, l := range s.links {
		if n < uint64(l.Weight) {
			return l.Token
		}
		n -= uint64(l.Weight)
	}
	return s.links[len(s.links)-1].Token
}

// Chain is a first-order Markov chain over string tokens.
type Chain struct {
	states map[string]*successors
	gen    uint64
	frozen bool
}

// New returns an empty chain.
func New() *Chain {
	return &Chain{states: make(map[string]*successors)}
}

// IsEmpty reports whether the chain has never been fed.
func (c *Chain) IsEmpty() bool {
	return c == nil || len(c.states) == 0
}

// Len returns the number of distinct states, the start state included.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.states)
}

// Freeze marks c read-only. Feeding a frozen chain panics; use Thaw.
func (c *Chain) Freeze() {
	if c != nil {
		c.frozen = true
	}
}

// Frozen reports whether c was frozen.
func (c *Chain) Frozen() bool {
	return c != nil && c.frozen
}

// Thaw returns c itself when it is writable, and otherwise a writable chain
// with the same content. Only the state index is copied; successor tables
// stay shared until they are fed.
func (c *Chain) Thaw() *Chain {
	if c == nil {
		return New()
	}
	if !c.frozen {
		return c
	}
	out := &Chain{states: make(map[string]*successors, len(c.states)), gen: c.gen + 1}
	for from, s := range c.states {
		out.states[from] = s
	}
	return out
}

// Feed appends one sequence. Empty tokens are skipped; an empty sequence is a no-op.
func (c *Chain) Feed(tokens []string) {
	if c.frozen {
		panic("markov: Feed on a frozen chain")
	}
	prev := boundary
	fed := false
	for _, tok := range tokens {
		if tok == boundary {
			continue
		}
		c.link(prev, tok)
		prev = tok
		fed = true
	}
	if fed {
		c.link(prev, boundary)
	}
}

func (c *Chain) link(from, to string) {
	s, ok := c.states[from]
	switch {
	case !ok:
		s = newSuccessors(c.gen)
		c.states[from] = s
	case s.gen != c.gen:
		s = s.clone(c.gen)
		c.states[from] = s
	}
	s.add(to)
}

// Generate walks the chain from its start state. It returns nil for an empty chain.
func (c *Chain) Generate(r chance.Source) []string {
	if c.IsEmpty() {
		return nil
	}
	return c.walk(r, boundary, nil)
}

// GenerateFrom walks the chain from token, which is the first element of the
// result. It returns nil when the chain has never seen token.
func (c *Chain) GenerateFrom(r chance.Source, token string) []string {
	if c.IsEmpty() || token == boundary {
		return nil
	}
	if _, ok := c.states[token]; !ok {
		return nil
	}
	return c.walk(r, token, []string{token})
}

func (c *Chain) walk(r chance.Source, from string, out []string) []string {
	cur := from
	for len(out) < maxWalk {
		s, ok := c.states[cur]
		if !ok {
			break
		}
		next := s.pick(r)
		if next == boundary {
			break
		}
		out = append(out, next)
		cur = next
	}
	return out
}

// Clone returns a deep copy.
func (c *Chain) Clone() *Chain {
	out := New()
	if c == nil {
		return out
	}
	for from, s := range c.states {
		out.states[from] = s.clone(out.gen)
	}
	return out
}

type chainJSON struct {
	States map[string][]Link `json:"states"`
}

// MarshalJSON encodes the successor table with edge order preserved.
func (c *Chain) MarshalJSON() ([]byte, error) {
	out := chainJSON{States: make(map[string][]Link, c.Len())}
	if c != nil {
		for from, s := range c.states {
			out.States[from] = s.links
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the successor table.
func (c *Chain) UnmarshalJSON(data []byte) error {
	var in chainJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.states = make(map[string]*successors, len(in.States))
	c.gen, c.frozen = 0, false
	for from, links := range in.States {
		s := newSuccessors(0)
		for _, l := range links {
			if l.Weight == 0 {
				return fmt.Errorf("markov: zero weight edge %q -> %q", from, l.Token)
			}
			if _, dup := s.pos[l.Token]; dup {
				return fmt.Errorf("markov: duplicate edge %q -> %q", from, l.Token)
			}
			s.pos[l.Token] = len(s.links)
			s.links = append(s.links, l)
			s.total += uint64(l.Weight)
		}
		c.states[from] = s
	}
	return nil
}
