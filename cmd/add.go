package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cwarden/termcal/internal/calendar"
	"github.com/cwarden/termcal/internal/parser"
	"github.com/spf13/cobra"
)

var addOpts struct {
	start    string
	end      string
	duration string
	allDay   bool
	calendar string
	location string
	notes    string
	url      string
}

var addCmd = &cobra.Command{
	Use:   "add TITLE...",
	Short: "Add an event",
	Long: `Add an event to a writable calendar.

  termcal add Dentist --start "next tuesday 2:30pm" --duration 45min
  termcal add Offsite --start 2025-06-02 --all-day`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addOpts.start, "start", "", "Start date/time expression (required)")
	f.StringVar(&addOpts.end, "end", "", "End date/time expression")
	f.StringVar(&addOpts.duration, "duration", "", "Length such as 1h, 45min or 1:30 (default 1h)")
	f.BoolVar(&addOpts.allDay, "all-day", false, "Create an all-day event")
	f.StringVar(&addOpts.calendar, "calendar", "", "Calendar ID (default: first writable calendar)")
	f.StringVar(&addOpts.location, "location", "", "Event location")
	f.StringVar(&addOpts.notes, "notes", "", "Event notes")
	f.StringVar(&addOpts.url, "url", "", "Event URL")
	_ = addCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	p := parser.NewTimeParser()
	ev := calendar.NewEvent{
		Title:    strings.Join(args, " "),
		AllDay:   addOpts.allDay,
		Location: addOpts.location,
		Notes:    addOpts.notes,
		URL:      addOpts.url,
	}

	start, err := p.Parse(addOpts.start)
	if err != nil {
		return err
	}
	ev.Start, ev.End, err = eventSpan(p, start)
	if err != nil {
		return err
	}

	stores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	ctx := cmd.Context()
	ev.CalendarID = addOpts.calendar
	if ev.CalendarID == "" {
		if ev.CalendarID, err = firstWritable(ctx, stores.store); err != nil {
			return err
		}
	}

	created, err := stores.store.CreateEvent(ctx, ev)
	if err != nil {
		return fmt.Errorf("could not create event: %w", err)
	}

	printer := eventPrinter{w: cmd.OutOrStdout(), use24h: use24Hour(), showIDs: true}
	fmt.Fprintf(cmd.OutOrStdout(), "Created event on %s:\n", created.Start.Format("Monday, January 2 2006"))
	printer.printEvent(created)
	return nil
}

// eventSpan works out start and end from the --end, --duration and
// --all-day flags.
func eventSpan(p *parser.TimeParser, start time.Time) (time.Time, time.Time, error) {
	if addOpts.allDay {
		first := startOfDay(start)
		last := first
		if addOpts.end != "" {
			end, err := p.Parse(addOpts.end)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			last = startOfDay(end)
		}
		return first, last.AddDate(0, 0, 1), nil
	}

	if addOpts.end != "" {
		end, err := p.Parse(addOpts.end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}

	d := time.Hour
	if addOpts.duration != "" {
		parsed, ok := parser.ParseDuration(addOpts.duration)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid duration %q", addOpts.duration)
		}
		d = parsed
	}
	return start, start.Add(d), nil
}

func firstWritable(ctx context.Context, store calendar.Store) (string, error) {
	cals, err := store.ListCalendars(ctx)
	if err != nil {
		return "", fmt.Errorf("could not list calendars: %w", err)
	}
	for _, c := range cals {
		if c.Writable {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("no writable calendar available")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
