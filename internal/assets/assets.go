// Package assets embeds the static corpora: poems, insults and the two images
// the bot sends as attachments.
package assets

import (
	_ "embed"
	"strings"
)

//go:embed poems.txt
var poemsText string

//go:embed insults.txt
var insultsText string

// UmadImage is sent when someone retaliates against a taunt.
//
//go:embed umad.jpg
var UmadImage []byte

// FuckYouImage is sent by the fuckyou command.
//
//go:embed fuckyou.jpg
var FuckYouImage []byte

const (
	UmadImageName    = "umad.jpg"
	FuckYouImageName = "fuckyou.jpg"
)

// Poems returns the poem corpus. Poems are separated by a line holding a
// single "-" in the source file.
func Poems() []string {
	return splitEntries(poemsText, "\n-\n")
}

// Insults returns the insult corpus, one entry per line.
func Insults() []string {
	return splitEntries(insultsText, "\n")
}

func splitEntries(text, sep string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, e := range strings.Split(text, sep) {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}
