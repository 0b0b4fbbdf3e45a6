package cmd

import (
	"fmt"

	"github.com/cwarden/termcal/internal/calendar"
	"github.com/cwarden/termcal/internal/config"

	log "github.com/sirupsen/logrus"
)

// stores is the calendar backend assembled from the config.
type stores struct {
	store  calendar.Store
	ics    *calendar.ICSStore
	sqlite *calendar.SQLiteStore
}

func (s *stores) Close() error {
	if s.sqlite != nil {
		return s.sqlite.Close()
	}
	return nil
}

// openStores builds the composite of the local database, ICS files and
// CalDAV server, or a scratch in-memory store with --memory.
func openStores(cfg *config.Config) (*stores, error) {
	if useMemory {
		log.Info("Using in-memory calendar")
		mem := calendar.NewMemoryStore(calendar.Calendar{
			ID:       "memory:scratch",
			Title:    "Scratch",
			Writable: true,
		})
		return &stores{store: mem}, nil
	}

	db, err := calendar.OpenSQLite(cfg.Database.Path, cfg.Database.Calendar)
	if err != nil {
		return nil, fmt.Errorf("open calendar database %s: %w", cfg.Database.Path, err)
	}
	s := &stores{sqlite: db}
	composite := calendar.NewCompositeStore(db)

	if len(cfg.ICS.Files) > 0 {
		s.ics = calendar.NewICSStore(cfg.ICS.Files...)
		composite.AddSource(s.ics)
	}

	if cfg.CalDAV.Enabled() {
		composite.AddSource(calendar.NewCalDAVStore(calendar.CalDAVConfig{
			URL:      cfg.CalDAV.URL,
			Username: cfg.CalDAV.Username,
			Password: cfg.CalDAV.Password,
		}))
	}

	s.store = composite
	return s, nil
}
