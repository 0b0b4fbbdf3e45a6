package cmd

import (
	"fmt"

	"github.com/cwarden/termcal/internal/calendar"
	"github.com/cwarden/termcal/internal/config"
	"github.com/cwarden/termcal/internal/parser"
	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"
)

var (
	listCalendar string
	showIDs      bool
)

var listCmd = &cobra.Command{
	Use:   "list [START [END]]",
	Short: "List events and exit",
	Long: `List events in a date range and exit.

With no arguments, lists today. A single expression lists that whole day
("tomorrow", "next friday", "2025-01-15"). Two expressions give the start
and end of the range.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listCalendar, "calendar", "", "Only list events from this calendar ID")
	listCmd.Flags().BoolVar(&showIDs, "ids", false, "Show event IDs")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	start, end, err := parser.NewTimeParser().ParseRange(args)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end %s is before start %s",
			end.Format("2006-01-02 15:04"), start.Format("2006-01-02 15:04"))
	}

	stores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	events, err := stores.store.ListEvents(cmd.Context(), listCalendar, start, end)
	if err != nil {
		return fmt.Errorf("error getting events: %w", err)
	}
	calendar.SortEvents(events)

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "No events found.")
		return nil
	}

	printer := eventPrinter{w: out, use24h: use24Hour(), showIDs: showIDs}
	printer.printDays(events)
	return nil
}

// use24Hour follows the time format chosen in the TUI.
func use24Hour() bool {
	st, err := config.LoadState(cfg.State.File)
	if err != nil {
		log.Warnf("Ignoring state file: %v", err)
		return false
	}
	return st.Use24HourTime
}
