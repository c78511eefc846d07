package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"bernbot/internal/chance"
)

func TestFeedIgnoresUnconfiguredChannel(t *testing.T) {
	b := newTestBot(rigged{})
	b.Feed("c1", "u1", []string{"hello", "world"})
	if b.markov.Has("c1") {
		t.Fatal("Feed created state")
	}
}

func TestFeedLearnsGlobalAndPerAuthor(t *testing.T) {
	b := newTestBot(rigged{})
	b.markov.Update("c1", newMarkovState, nil)
	b.Feed("c1", "u1", []string{"hello", "world"})
	b.Feed("c1", "u2", []string{"bye"})
	b.Feed("c1", "u3", nil)

	s, _ := b.markov.Get("c1")
	if s.Global.IsEmpty() {
		t.Fatal("global chain is empty")
	}
	if len(s.PerAuthor) != 2 {
		t.Fatalf("per-author chains = %d, want 2", len(s.PerAuthor))
	}
}

func TestTryGenerateAfterFeed(t *testing.T) {
	b := newTestBot(chance.Seeded(7))
	b.markov.Update("c1", newMarkovState, func(s *MarkovState) {
		s.Enabled = true
		s.Probability = 100
	})
	fed := strings.Fields("hello world")
	b.Feed("c1", "u1", fed)

	for i := range 200 {
		text, _, ok := b.TryGenerate("c1", fed)
		if !ok || text == "" {
			t.Fatalf("attempt %d: no reply at probability 100", i)
		}
	}
}

func TestTryGenerateGates(t *testing.T) {
	b := newTestBot(chance.Seeded(1))
	fed := []string{"hello"}

	if _, _, ok := b.TryGenerate("c1", fed); ok {
		t.Fatal("generated in an unconfigured channel")
	}

	b.markov.Update("c1", newMarkovState, func(s *MarkovState) { s.Probability = 100 })
	b.Feed("c1", "u1", fed)
	if _, _, ok := b.TryGenerate("c1", fed); ok {
		t.Fatal("generated while disabled")
	}

	b.markov.With("c1", func(s *MarkovState) {
		s.Enabled = true
		s.Probability = 0
	})
	for range 100 {
		if _, _, ok := b.TryGenerate("c1", fed); ok {
			t.Fatal("generated at probability 0")
		}
	}
}

func TestGeneratedRepliesAreTruncated(t *testing.T) {
	b := newTestBot(chance.Seeded(42))
	b.markov.Update("c1", newMarkovState, func(s *MarkovState) {
		s.Enabled = true
		s.Probability = 100
	})
	fed := make([]string, 100)
	for i := range fed {
		fed[i] = fmt.Sprintf("w%d", i)
	}
	b.Feed("c1", "u1", fed)

	for i := range 500 {
		text, _, ok := b.TryGenerate("c1", fed)
		if !ok {
			t.Fatalf("attempt %d: no reply", i)
		}
		if n := len(strings.Fields(text)); n == 0 || n >= maxReplyTokens {
			t.Fatalf("attempt %d: %d tokens", i, n)
		}
	}
}

func TestReplySeedThreads(t *testing.T) {
	// Gate passes (0 < 100), the reply roll hits (0), the seed is fed[1].
	rng := &chance.Scripted{Ints: []int{0, 0, 1}}
	b := newTestBot(rng)
	b.markov.Update("c1", newMarkovState, func(s *MarkovState) {
		s.Enabled = true
		s.Probability = 100
	})
	fed := []string{"alpha", "beta", "gamma"}
	b.Feed("c1", "u1", fed)

	text, isReply, ok := b.TryGenerate("c1", fed)
	if !ok || !isReply {
		t.Fatalf("ok=%v isReply=%v", ok, isReply)
	}
	if text != "beta gamma" {
		t.Fatalf("text = %q", text)
	}
}

func TestEchoedSeedFallsBackToFreeWalk(t *testing.T) {
	// The seed is the last token, whose only successor is the end of the
	// message, so the seeded walk only echoes it.
	rng := &chance.Scripted{Ints: []int{0, 0, 2}}
	b := newTestBot(rng)
	b.markov.Update("c1", newMarkovState, func(s *MarkovState) {
		s.Enabled = true
		s.Probability = 100
	})
	fed := []string{"alpha", "beta", "gamma"}
	b.Feed("c1", "u1", fed)

	text, isReply, ok := b.TryGenerate("c1", fed)
	if !ok || isReply {
		t.Fatalf("ok=%v isReply=%v", ok, isReply)
	}
	if text != "alpha beta gamma" {
		t.Fatalf("text = %q", text)
	}
}

func TestTypoKeepsTokenShape(t *testing.T) {
	b := newTestBot(&chance.Scripted{Ints: []int{0, 0, 1, 0}})
	// Characters 0 and 2 are replaced, with 'a' then the fallback '9'.
	got := b.typo("xyz")
	if got != "ay9" {
		t.Fatalf("typo = %q", got)
	}
	if b.typo("") != "" {
		t.Fatal("empty token changed")
	}
}

func TestChatRepliesAndBurst(t *testing.T) {
	h := newHarness(t, rigged{})
	h.process(h.admin("c1", "bern listen"))
	h.process(h.admin("c1", "bern listen prob 100"))
	before := len(h.tr.replies())

	h.process(h.msg("c1", "hello world"))
	got := h.tr.replies()[before:]
	if len(got) != 1+maxBurst {
		t.Fatalf("sent %d messages, want first reply plus a capped burst of %d", len(got), maxBurst)
	}
	for _, r := range got {
		if r.Text != "hello world" || r.Threaded {
			t.Fatalf("generated %+v", r.Reply)
		}
	}
}

func TestBurstStopsOnRoll(t *testing.T) {
	h := newHarness(t, rigged{stopBurst: true})
	h.process(h.admin("c1", "bern listen"))
	h.process(h.admin("c1", "bern listen prob 100"))
	before := len(h.tr.replies())

	h.process(h.msg("c1", "hello world"))
	if got := len(h.tr.replies()) - before; got != 1 {
		t.Fatalf("sent %d messages, want 1", got)
	}
}

func TestBurstStopsOnCancel(t *testing.T) {
	h := newHarness(t, rigged{})
	h.b.sleep = func(ctx context.Context, d time.Duration) error {
		if d != 0 {
			t.Errorf("delay = %v, want the configured 0", d)
		}
		return context.Canceled
	}
	h.process(h.admin("c1", "bern listen"))
	h.process(h.admin("c1", "bern listen prob 100"))
	before := len(h.tr.replies())

	h.process(h.msg("c1", "hello world"))
	if got := len(h.tr.replies()) - before; got != 1 {
		t.Fatalf("sent %d messages, want 1", got)
	}
}

func TestBurstStopsWhenChannelCleared(t *testing.T) {
	h := newHarness(t, rigged{})
	h.process(h.admin("c1", "bern listen"))
	h.process(h.admin("c1", "bern listen prob 100"))
	h.b.sleep = func(context.Context, time.Duration) error {
		h.b.markov.Delete("c1")
		return nil
	}
	before := len(h.tr.replies())

	h.process(h.msg("c1", "hello world"))
	if got := len(h.tr.replies()) - before; got != 1 {
		t.Fatalf("sent %d messages, want 1", got)
	}
}

func TestClampProbability(t *testing.T) {
	tests := []struct {
		n      int
		parsed bool
		want   int
	}{
		{50, true, 50},
		{150, true, 100},
		{-1, true, 0},
		{0, false, 5},
	}
	for _, tt := range tests {
		if got := clampProbability(tt.n, tt.parsed); got != tt.want {
			t.Errorf("clampProbability(%d, %v) = %d, want %d", tt.n, tt.parsed, got, tt.want)
		}
	}
}

func TestParseProbability(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"42", 42},
		{"101", 100},
		{"-7", 0},
		{"99999999999999999999", 100},
		{"-99999999999999999999", 0},
		{"", 5},
		{"12.5", 5},
		{"lots", 5},
	}
	for _, tt := range tests {
		if got := parseProbability(tt.in); got != tt.want {
			t.Errorf("parseProbability(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
