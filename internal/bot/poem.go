package bot

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"bernbot/internal/chance"
	"bernbot/internal/markov"
)

const (
	poemMinScore     = 10
	poemMaxSentences = 8
)

// searchPoem returns the poem most relevant to keywords. A poem's relevance
// is the sum, over keywords, of the best fuzzy score among its words; only
// poems scoring above poemMinScore qualify and ties go to the later poem.
func (b *Bot) searchPoem(keywords []string) (string, bool) {
	best, bestScore := -1, 0
	for i, poem := range b.poems {
		words := strings.Fields(poem)
		score := 0
		for _, kw := range keywords {
			if matches := fuzzy.Find(kw, words); len(matches) > 0 {
				score += matches[0].Score
			}
		}
		if score > poemMinScore && (best < 0 || score >= bestScore) {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return "", false
	}
	return b.poems[best], true
}

func (b *Bot) randomPoem() (string, bool) {
	return chance.Pick(b.rng, b.poems)
}

// synthesizePoem writes up to poemMaxSentences sentences from c, one per
// line, with a blank line after every two or three sentences.
func (b *Bot) synthesizePoem(c *markov.Chain) string {
	walk := c.Generate(b.rng)
	if len(walk) == 0 {
		return ""
	}
	var capitalized []string
	for _, t := range walk {
		if r, _ := utf8.DecodeRuneInString(t); unicode.IsUpper(r) {
			capitalized = append(capitalized, t)
		}
	}
	start, ok := chance.Pick(b.rng, capitalized)
	if !ok {
		start = walk[0]
	}
	tokens := c.GenerateFrom(b.rng, start)
	stanza := 2 + b.rng.IntN(2)

	var sb strings.Builder
	sentences, open := 0, false
	for _, t := range tokens {
		sb.WriteString(t)
		sb.WriteByte(' ')
		open = true
		if !endsSentence(t) {
			continue
		}
		sb.WriteByte('\n')
		open = false
		sentences++
		if sentences == poemMaxSentences {
			break
		}
		if sentences%stanza == 0 {
			sb.WriteByte('\n')
		}
	}
	if open {
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

func endsSentence(token string) bool {
	return strings.HasSuffix(token, ".") || strings.HasSuffix(token, "!") || strings.HasSuffix(token, "?")
}
