package cmd

import "context"

// Unwrappable is implemented by wrapped commands so callers can reach the
// underlying command (e.g. to type-assert to Helper).
type Unwrappable interface {
	Command
	Unwrap() Command
}

// Wrapped wraps a command with a custom Run.
type Wrapped struct {
	Inner   Command
	RunFunc func(ctx context.Context, inv *Invocation) error
}

func (w *Wrapped) Name() string        { return w.Inner.Name() }
func (w *Wrapped) Description() string { return w.Inner.Description() }

// Run runs the wrapper's RunFunc, or the inner command when RunFunc is nil.
func (w *Wrapped) Run(ctx context.Context, inv *Invocation) error {
	if w.RunFunc != nil {
		return w.RunFunc(ctx, inv)
	}
	return w.Inner.Run(ctx, inv)
}

// Unwrap returns the inner command.
func (w *Wrapped) Unwrap() Command { return w.Inner }

// Wrap returns a command that runs run instead of c.Run.
func Wrap(c Command, run func(ctx context.Context, inv *Invocation) error) Command {
	return &Wrapped{Inner: c, RunFunc: run}
}

// Root unwraps a command until the underlying command is not Unwrappable.
func Root(c Command) Command {
	for {
		u, ok := c.(Unwrappable)
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}

// HelpOf returns the command's Help text, falling back to its Description.
func HelpOf(c Command) string {
	if h, ok := Root(c).(Helper); ok {
		return h.Help()
	}
	return c.Description()
}
