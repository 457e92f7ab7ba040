package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Practice in line mode on stdin/stdout",
	Long: "Start a plain line-oriented session. Lines beginning with / are commands\n" +
		"(type /help for the list); everything else is sent to the tutor.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, cleanup, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return repl.Run(ctx, ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}
