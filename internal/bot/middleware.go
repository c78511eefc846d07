package bot

import (
	"context"
	"time"

	"bernbot/pkg/cmd"
)

// withManagePermission refuses to run the command for authors without the
// transport's manage capability.
func (b *Bot) withManagePermission() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			m, ok := inv.Data.(Message)
			if !ok {
				return nil
			}
			allowed, err := b.requireManage(ctx, m)
			if err != nil || !allowed {
				return err
			}
			return c.Run(ctx, inv)
		})
	}
}

// withCommandLog logs every command run.
func (b *Bot) withCommandLog() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			kv := []interface{}{"command", c.Name(), "args", inv.Args, "duration", time.Since(start)}
			if m, ok := inv.Data.(Message); ok {
				kv = append(kv, "author", m.Author(), "channel", m.ChannelID())
			}
			if err != nil {
				b.log.Warn("command failed", append(kv, "error", err)...)
			} else {
				b.log.Debug("command", kv...)
			}
			return err
		})
	}
}
