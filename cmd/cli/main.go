// Package main is the bernbot command line: a console transport for local
// use and tools for looking at saved state.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	v "bernbot/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bernbot",
		Short: "A chat bot that learns how a channel talks",
		Long: `bernbot learns from every message in the channels it listens to and
answers with text generated from what it has seen. The console command runs
it on standard input; the inspect command summarizes a saved state file.`,
		Version:       v.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		consoleCmd(),
		inspectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
