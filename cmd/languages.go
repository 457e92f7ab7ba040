package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/session"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages and levels that can be practiced",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Languages:")
		for _, l := range session.Languages() {
			fmt.Fprintf(out, "  %-12s %s\n", l, l.Title())
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Levels:")
		for _, l := range session.Levels() {
			fmt.Fprintf(out, "  %-12s %s\n", l, l.Title())
		}
	},
}
