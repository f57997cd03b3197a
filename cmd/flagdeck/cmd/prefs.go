package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wilbur182/flagdeck/internal/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "List or change named preferences",
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every preference with its value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := loadState()
		if err != nil {
			return err
		}
		t := newTable("PREFERENCE", "VALUE", "DESCRIPTION")
		for _, p := range prefs.All() {
			t.Row(string(p.Key), strconv.FormatBool(st.Preference(p.Key)), p.Description)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set KEY true|false",
	Short: "Commit a preference value to the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := prefs.Key(args[0])
		if !prefs.IsKnown(key) {
			return fmt.Errorf("unknown preference %q", args[0])
		}
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		st, _, err := loadState()
		if err != nil {
			return err
		}
		prev := st.Preference(key)
		if err := st.SetPreference(key, value); err != nil {
			return err
		}
		// Turning hints off restarts the tour, as the settings modal does.
		if key == prefs.ShowFeatureHints && prev && !value {
			if err := resetHints(); err != nil {
				logger.Warn("reset hint tour", "err", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n", key, value)
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsListCmd)
	prefsCmd.AddCommand(prefsSetCmd)
}
