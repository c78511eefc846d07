package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bernbot/datastore"
	"bernbot/internal/bot"
	"bernbot/internal/config"
	"bernbot/internal/console"
	"bernbot/internal/logger"
	"bernbot/internal/service"
	"bernbot/internal/storage"
)

const consoleSelfID = "bernbot"

func consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Talk to the bot on standard input",
		Long: `Run the bot with standard input as a single channel. Every line is one
message; a line starting with "> " replies to the bot's previous message.
State is saved to STORAGE_PATH (default data_console) on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New("console")
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := storage.New(cfg.StoragePath, cfg.BackupCount, log)
			if err != nil {
				return fmt.Errorf("opening storage: %w", err)
			}
			engine := store.LoadBot(bot.Options{
				SelfID:            consoleSelfID,
				DefaultPrefix:     cfg.DefaultPrefix,
				ContinuationDelay: cfg.ContinuationDelay,
				Logger:            log,
			})

			con := console.New(cmd.OutOrStdout(), log)
			return service.Run(ctx, cfg, log, engine, store, func(ctx context.Context) error {
				return con.Serve(ctx, cmd.InOrStdin(), engine)
			})
		},
	}
}

func inspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a saved state file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summarize(snap))
			}
			return printSummary(cmd.OutOrStdout(), summarize(snap))
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func loadSnapshot(path string) (*bot.Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	ds, err := datastore.New(datastore.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	var snap bot.Snapshot
	if err := ds.Load(&snap); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &snap, nil
}

type channelSummary struct {
	Channel     string `json:"channel"`
	Enabled     bool   `json:"enabled"`
	Probability int    `json:"probability"`
	Authors     int    `json:"authors"`
	States      int    `json:"states"`
}

type insultSummary struct {
	Key         string `json:"key"`
	Enabled     bool   `json:"enabled"`
	CountPassed uint32 `json:"count_passed"`
	LastTaunt   string `json:"last_taunt,omitempty"`
}

type summary struct {
	Version  int               `json:"version"`
	Prefixes map[string]string `json:"prefixes"`
	Channels []channelSummary  `json:"channels"`
	Insults  []insultSummary   `json:"insults"`
}

func summarize(snap *bot.Snapshot) summary {
	out := summary{Version: snap.Version, Prefixes: snap.Prefixes}
	for k, s := range snap.Markov {
		out.Channels = append(out.Channels, channelSummary{
			Channel:     k,
			Enabled:     s.Enabled,
			Probability: s.Probability,
			Authors:     len(s.PerAuthor),
			States:      s.Global.Len(),
		})
	}
	for k, s := range snap.Insults {
		out.Insults = append(out.Insults, insultSummary{
			Key:         k,
			Enabled:     s.Enabled,
			CountPassed: s.CountPassed,
			LastTaunt:   s.LastTauntID,
		})
	}
	sort.Slice(out.Channels, func(i, j int) bool { return out.Channels[i].Channel < out.Channels[j].Channel })
	sort.Slice(out.Insults, func(i, j int) bool { return out.Insults[i].Key < out.Insults[j].Key })
	return out
}

func printSummary(w io.Writer, s summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "snapshot version %d\n\n", s.Version)

	fmt.Fprintln(tw, "CHANNEL\tENABLED\tPROB\tAUTHORS\tSTATES")
	for _, c := range s.Channels {
		fmt.Fprintf(tw, "%s\t%v\t%d%%\t%d\t%d\n", c.Channel, c.Enabled, c.Probability, c.Authors, c.States)
	}

	fmt.Fprintln(tw, "\nINSULTS\tENABLED\tCOUNT\tLAST TAUNT")
	for _, i := range s.Insults {
		fmt.Fprintf(tw, "%s\t%v\t%d\t%s\n", i.Key, i.Enabled, i.CountPassed, i.LastTaunt)
	}

	keys := make([]string, 0, len(s.Prefixes))
	for k := range s.Prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(tw, "\nSCOPE\tPREFIX")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%q\n", k, s.Prefixes[k])
	}
	return tw.Flush()
}
