package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "TERMCAL_"

type Config struct {
	Database Database          `koanf:"database"`
	State    StateSection      `koanf:"state"`
	Log      Log               `koanf:"log"`
	UI       UI                `koanf:"ui"`
	ICS      ICS               `koanf:"ics"`
	CalDAV   CalDAV            `koanf:"caldav"`
	Colors   map[string]string `koanf:"colors"`

	// Path is the file the config was read from, empty when none was found
	Path string `koanf:"-"`
}

type Database struct {
	Path string `koanf:"path"`
	// Calendar names the calendar created in a new database
	Calendar string `koanf:"calendar"`
}

// StateSection locates the persisted session State.
type StateSection struct {
	File string `koanf:"file"`
}

type Log struct {
	File  string `koanf:"file"`
	Level string `koanf:"level"`
}

type UI struct {
	// WindowDays is how far ahead of the selected date the event list reaches
	WindowDays int `koanf:"windowdays"`
	// Months is how many months the calendar grid covers
	Months int `koanf:"months"`
}

type ICS struct {
	Files []string `koanf:"files"`
}

type CalDAV struct {
	URL      string `koanf:"url"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Enabled reports whether a CalDAV server is configured.
func (c CalDAV) Enabled() bool {
	return c.URL != ""
}

func DefaultConfig() *Config {
	return &Config{
		Database: Database{
			Path:     filepath.Join(dataDir(), "termcal", "termcal.db"),
			Calendar: "Personal",
		},
		State: StateSection{
			File: filepath.Join(stateDir(), "termcal", "state.yaml"),
		},
		Log: Log{
			File:  filepath.Join(stateDir(), "termcal", "termcal.log"),
			Level: "info",
		},
		UI: UI{
			WindowDays: 90,
			Months:     12,
		},
		Colors: map[string]string{
			"header":   "12",
			"selected": "4",
			"today":    "11",
			"event":    "10",
			"weekend":  "8",
			"muted":    "241",
			"error":    "9",
		},
	}
}

// ConfigPaths lists the locations searched when no path is given.
func ConfigPaths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{os.Getenv("TERMCAL_CONFIG")}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "termcal", "config.yaml"))
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "termcal", "config.yaml"))
	}
	return paths
}

// LoadConfig layers defaults, the YAML file and TERMCAL_* environment
// variables, in that order. An explicit path must be readable; without
// one the first existing file from ConfigPaths is used, if any.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if path == "" {
		path = findConfig()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		log.Debugf("Loaded configuration from file: %s", path)
	} else {
		log.Debugf("No config file found, using defaults and environment variables")
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			if k == "TERMCAL_CONFIG" {
				return "", nil
			}
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading config from environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.Path = path
	cfg.normalize()
	return &cfg, nil
}

func findConfig() string {
	for _, p := range ConfigPaths() {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) normalize() {
	defaults := DefaultConfig()

	c.Database.Path = ExpandPath(c.Database.Path)
	c.State.File = ExpandPath(c.State.File)
	c.Log.File = ExpandPath(c.Log.File)
	for i, f := range c.ICS.Files {
		c.ICS.Files[i] = ExpandPath(strings.TrimSpace(f))
	}

	if c.UI.WindowDays <= 0 {
		c.UI.WindowDays = defaults.UI.WindowDays
	}
	if c.UI.Months <= 0 {
		c.UI.Months = defaults.UI.Months
	}
	if c.Database.Calendar == "" {
		c.Database.Calendar = defaults.Database.Calendar
	}
}

// ExpandPath expands a leading ~/ to the home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

func stateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return xdg
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state")
}
