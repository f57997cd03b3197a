package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wilbur182/flagdeck/internal/hints"
	"github.com/wilbur182/flagdeck/internal/prefstore"
)

var hintsCmd = &cobra.Command{
	Use:   "hints",
	Short: "Manage the onboarding hints tour",
}

var hintsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restart the hints tour from the first hint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resetHints(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "hints tour reset")
		return nil
	},
}

func init() {
	hintsCmd.AddCommand(hintsResetCmd)
}

func resetHints() error {
	ps, err := prefstore.Open(configDir())
	if err != nil {
		return err
	}
	defer ps.Close()
	return hints.Reset(ps)
}
