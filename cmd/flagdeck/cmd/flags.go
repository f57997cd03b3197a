package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wilbur182/flagdeck/internal/prefs"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "List or change experimental feature flags",
}

var flagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every flag with its resolved value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printFlags(cmd.OutOrStdout())
	},
}

var flagsSetCmd = &cobra.Command{
	Use:   "set NAME true|false",
	Short: "Commit a flag value to the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		st, _, err := loadState()
		if err != nil {
			return err
		}
		if err := st.SetFlag(args[0], value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n", args[0], value)
		return nil
	},
}

func init() {
	flagsCmd.AddCommand(flagsListCmd)
	flagsCmd.AddCommand(flagsSetCmd)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderHeader(false).
		Headers(headers...)
}

// printFlags writes the preference and flag tables.
func printFlags(w io.Writer) error {
	st, _, err := loadState()
	if err != nil {
		return err
	}

	pt := newTable("PREFERENCE", "VALUE")
	for _, p := range prefs.All() {
		pt.Row(string(p.Key), strconv.FormatBool(st.Preference(p.Key)))
	}

	ft := newTable("FLAG", "VALUE", "DESCRIPTION")
	for _, f := range st.Features().ListFlags() {
		ft.Row(f.Key, strconv.FormatBool(f.Value), f.Description)
	}

	_, err = fmt.Fprintf(w, "%s\n\n%s\n", pt.Render(), ft.Render())
	return err
}
