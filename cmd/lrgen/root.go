package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lrgen",
	Short: "Generate an LR(1) or LALR(1) parsing table from a grammar",
	Long: `lrgen provides three features:
- Generates a portable parsing table from a grammar.
- Prints a report describing the automaton and its conflicts.
- Parses a text or a token sequence using a generated table.
  This feature is primarily aimed at debugging the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}
