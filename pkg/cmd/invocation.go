// Package cmd provides a transport-agnostic command core: a command is something
// with a name, a one-line description, and Run(ctx, invocation). How it is
// parsed and dispatched (chat prefix, CLI) is defined by the caller.
package cmd

import (
	"context"
	"strings"
)

// Invocation carries the parsed input of one command call. Data is the
// caller's opaque per-call context (for the bot, the triggering message).
type Invocation struct {
	Name string
	Args []string
	Data interface{}
}

// Arg returns the i-th argument, or "" when there are fewer arguments.
func (inv *Invocation) Arg(i int) string {
	if i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

// Rest joins the arguments from i onwards with single spaces.
func (inv *Invocation) Rest(i int) string {
	if i >= len(inv.Args) {
		return ""
	}
	return strings.Join(inv.Args[i:], " ")
}

// Shift returns a copy of inv for a subcommand: Name becomes the first
// argument and Args drops it.
func (inv *Invocation) Shift() *Invocation {
	out := &Invocation{Name: inv.Arg(0), Data: inv.Data}
	if len(inv.Args) > 1 {
		out.Args = inv.Args[1:]
	}
	return out
}

// Command is the universal contract: identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Helper is implemented by commands with usage text longer than Description.
type Helper interface {
	Help() string
}
