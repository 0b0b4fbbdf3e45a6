package cmd

import (
	"fmt"

	"github.com/cwarden/termcal/internal/config"
	"github.com/spf13/cobra"
)

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "List known calendars",
	RunE:  runCalendars,
}

func init() {
	rootCmd.AddCommand(calendarsCmd)
}

func runCalendars(cmd *cobra.Command, args []string) error {
	stores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	cals, err := stores.store.ListCalendars(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list calendars: %w", err)
	}

	state, err := config.LoadState(cfg.State.File)
	if err != nil {
		return err
	}
	enabled := state.EnabledSet()

	out := cmd.OutOrStdout()
	for _, c := range cals {
		mark := "[x]"
		if enabled != nil && !enabled[c.ID] {
			mark = "[ ]"
		}
		access := ""
		if !c.Writable {
			access = " (read-only)"
		}
		fmt.Fprintf(out, "%s %s%s %s\n", mark, c.Title, styled(mutedStyle, access), styled(accentStyle, c.ID))
	}
	return nil
}
