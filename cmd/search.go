package cmd

import (
	"fmt"
	"strings"

	"github.com/cwarden/termcal/internal/calendar"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Search all events",
	Long:  `Search titles, notes and locations of every event, case-insensitively.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&showIDs, "ids", false, "Show event IDs")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	stores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	query := strings.Join(args, " ")
	events, err := stores.store.SearchEvents(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	calendar.SortEvents(events)

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintf(out, "No events match %q.\n", query)
		return nil
	}

	printer := eventPrinter{w: out, use24h: use24Hour(), showIDs: showIDs}
	printer.printDated(events)
	return nil
}
