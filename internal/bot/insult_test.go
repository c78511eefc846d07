package bot

import (
	"math"
	"testing"

	"bernbot/internal/chance"
)

func TestRollInsultDisabled(t *testing.T) {
	b := newTestBot(&chance.Scripted{Floats: []float64{0}})
	if _, fired := b.RollInsult("c1", "g1"); fired {
		t.Fatal("fired while disabled")
	}
	if b.insults.Len() != 0 {
		t.Fatal("disabled roll created state")
	}
}

func TestRollInsultFiresAndResets(t *testing.T) {
	rng := &chance.Scripted{Floats: []float64{0.999, 0}}
	b := newTestBot(rng)
	b.ToggleInsults("g1")
	b.insults.Update("c1", newInsultState, func(s *InsultState) { s.CountPassed = 40 })

	if _, fired := b.RollInsult("c1", "g1"); fired {
		t.Fatal("fired on a 99.9 roll at count 40")
	}
	if s, _ := b.insults.Get("c1"); s.CountPassed != 41 {
		t.Fatalf("count = %d, want 41", s.CountPassed)
	}

	insult, fired := b.RollInsult("c1", "g1")
	if !fired || insult != testInsults[len(testInsults)-1] {
		t.Fatalf("fired=%v insult=%q", fired, insult)
	}
	if s, _ := b.insults.Get("c1"); s.CountPassed != 1 {
		t.Fatalf("count after fire = %d, want 1", s.CountPassed)
	}
	if g, _ := b.insults.Get("g1"); g.CountPassed != 1 {
		t.Fatalf("scope counters moved: %+v", g)
	}
}

func TestInsultCountSaturates(t *testing.T) {
	never := math.Inf(1)
	b := newTestBot(&chance.Scripted{Floats: []float64{never, never, never}})
	b.ToggleInsults("c1")
	b.insults.Update("c1", newInsultState, func(s *InsultState) { s.CountPassed = math.MaxUint32 - 1 })

	for range 3 {
		if _, fired := b.RollInsult("c1", "c1"); fired {
			t.Fatal("fired on an impossible roll")
		}
	}
	if s, _ := b.insults.Get("c1"); s.CountPassed != math.MaxUint32 {
		t.Fatalf("count = %d, want saturation at MaxUint32", s.CountPassed)
	}
}

func TestFireProbabilityIsMonotonic(t *testing.T) {
	prev := -1.0
	for _, n := range []uint32{1, 2, 3, 10, 100, 1999, 2000, 1 << 20, math.MaxUint32} {
		p := InsultState{CountPassed: n}.fireProbability()
		if p < prev {
			t.Fatalf("probability dropped at count %d: %v < %v", n, p, prev)
		}
		prev = p
	}
	if p := (InsultState{CountPassed: 1}).fireProbability(); p != 0.05 {
		t.Fatalf("probability at count 1 = %v, want 0.05", p)
	}
}

func TestHasRetaliation(t *testing.T) {
	b := newTestBot(rigged{})
	b.RecordTaunt("c1", "t1")

	tests := []struct {
		name      string
		channel   string
		repliedTo string
		content   string
		want      bool
	}{
		{"phrase and target", "c1", "t1", "no u", true},
		{"inside a sentence", "c1", "t1", "well no u buddy", true},
		{"case sensitive", "c1", "t1", "well NO U buddy", false},
		{"wrong target", "c1", "t2", "no u", false},
		{"missing phrase", "c1", "t1", "nope", false},
		{"not a reply", "c1", "", "no u", false},
		{"other channel", "c2", "t1", "no u", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.HasRetaliation(tt.channel, tt.repliedTo, tt.content); got != tt.want {
				t.Fatalf("HasRetaliation = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTauntAndRetaliationFlow(t *testing.T) {
	h := newHarness(t, &chance.Scripted{Floats: []float64{0}})
	h.process(h.admin("c1", "bern set insult"))
	h.process(h.admin("c1", "bern listen"))

	h.process(h.msg("c1", "nice weather"))
	taunt := h.tr.last(t)
	if taunt.Text != testInsults[len(testInsults)-1] || !taunt.Threaded {
		t.Fatalf("taunt = %+v", taunt.Reply)
	}
	if s, _ := h.b.insults.Get("c1"); s.LastTauntID != taunt.id {
		t.Fatalf("LastTauntID = %q, want %q", s.LastTauntID, taunt.id)
	}

	// Insults off: retaliation still works.
	h.process(h.admin("c1", "bern set insult"))
	before, _ := h.b.markov.Get("c1")
	states := before.Global.Len()

	m := h.msg("c1", "no u")
	m.ref = taunt.id
	h.process(m)
	r := h.tr.last(t)
	if r.Attachment == nil || r.Attachment.Name != "umad.jpg" || !r.Threaded {
		t.Fatalf("retaliation answer = %+v", r.Reply)
	}
	if after, _ := h.b.markov.Get("c1"); after.Global.Len() != states {
		t.Fatal("retaliation message was learned")
	}
}
