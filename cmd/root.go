package cmd

import (
	"fmt"
	"io"

	"github.com/cwarden/termcal/internal/calendar"
	"github.com/cwarden/termcal/internal/config"
	"github.com/cwarden/termcal/internal/logging"
	"github.com/cwarden/termcal/internal/ui"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

var (
	cfgFile   string
	useMemory bool
	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "termcal",
	Short: "A terminal calendar",
	Long: `termcal is a terminal calendar client. It shows a local calendar
database together with ICS files and a CalDAV server, and understands
natural date expressions like "next friday 3pm".`,
	SilenceUsage:       true,
	PersistentPreRunE:  initConfig,
	PersistentPostRunE: closeLog,
	RunE:               runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "Use a throwaway in-memory calendar")
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err = logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		log.Debugf("Loaded config from %s", cfg.Path)
	}
	return nil
}

func closeLog(cmd *cobra.Command, args []string) error {
	if logCloser == nil {
		return nil
	}
	return logCloser.Close()
}

func runTUI(cmd *cobra.Command, args []string) error {
	stores, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	state, err := config.LoadState(cfg.State.File)
	if err != nil {
		// a corrupt state file should not lock the user out
		log.Warnf("Ignoring state file: %v", err)
		state = config.State{}
	}

	var watch <-chan calendar.ChangeEvent
	if stores.ics != nil {
		watcher, err := calendar.NewFileWatcher()
		if err != nil {
			log.Warnf("File watching disabled: %v", err)
		} else {
			defer watcher.Close()
			for _, path := range stores.ics.Paths() {
				if err := watcher.AddFile(path); err != nil {
					log.Warnf("Cannot watch %s: %v", path, err)
				}
			}
			done := make(chan struct{})
			defer close(done)
			watch = invalidating(watcher.Events(), stores.ics, done)
		}
	}

	model := ui.New(ui.Options{
		Store: stores.store,
		State: state,
		SaveState: func(st config.State) error {
			return config.SaveState(cfg.State.File, st)
		},
		WindowDays:     cfg.UI.WindowDays,
		CalendarMonths: cfg.UI.Months,
		Watch:          watch,
		Colors:         cfg.Colors,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	return nil
}

// invalidating drops the ICS cache for each changed file before passing
// the notification on to the UI. It stops when in is closed or done is.
func invalidating(in <-chan calendar.ChangeEvent, ics *calendar.ICSStore, done <-chan struct{}) <-chan calendar.ChangeEvent {
	out := make(chan calendar.ChangeEvent)
	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-in:
				if !ok {
					return
				}
				ics.Invalidate(ev.Path)
				select {
				case out <- ev:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()
	return out
}
