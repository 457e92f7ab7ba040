package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/app"
)

// runApp builds the session and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctrl, cleanup, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return app.Run(app.Options{Controller: ctrl})
}
