// Package config provides the YAML configuration model for the agenda
// calendar daemon, including first-run config creation and atomic saves.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
	// Color is the hex display color for appointments from this source.
	Color string `yaml:"color" json:"color"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// AgendaConfig holds the sizing and typography settings for the rendered
// agenda view. All lengths are in surface units (pixels on the panel).
type AgendaConfig struct {
	// Width / Height of the rendered surface.
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`

	// TimedItemHeight is the row height for timed appointments.
	TimedItemHeight float64 `yaml:"timed_item_height" json:"timed_item_height"`
	// AllDayItemHeight is the row height for all-day and spanning rows.
	AllDayItemHeight float64 `yaml:"all_day_item_height" json:"all_day_item_height"`
	// TimeLabelWidth is the width reserved for the time column.
	TimeLabelWidth float64 `yaml:"time_label_width" json:"time_label_width"`

	// TextScale multiplies both font sizes; 1.0 means no scaling.
	TextScale float64 `yaml:"text_scale" json:"text_scale"`
	// SubjectFontSize / TimeFontSize are base font sizes in surface units.
	SubjectFontSize float64 `yaml:"subject_font_size" json:"subject_font_size"`
	TimeFontSize    float64 `yaml:"time_font_size" json:"time_font_size"`

	// TimeFormat optionally overrides the default time pattern, e.g.
	// "HH:mm". Empty selects the locale defaults.
	TimeFormat string `yaml:"time_format" json:"time_format"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale selects the string table and formats, e.g. "en", "ko".
	Locale string `yaml:"locale" json:"locale"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// driving the fetch/render/display cycle.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ShowAllDay toggles all-day rows in the rendered agenda.
	ShowAllDay bool `yaml:"show_all_day" json:"show_all_day"`

	// HighlightRed lists keywords that force the highlight color.
	HighlightRed []string `yaml:"highlight_red" json:"highlight_red"`

	// Agenda holds the sizing/typography settings for the rendered view.
	Agenda AgendaConfig `yaml:"agenda" json:"agenda"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration sized for the
// 800x480 7.5" panel.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Asia/Seoul",
		Locale:      "en",
		RefreshCron: "*/15 * * * *",
		ShowAllDay:  true,
		HighlightRed: []string{
			"휴일", "휴가", "중요",
		},
		Agenda: AgendaConfig{
			Width:            480,
			Height:           800,
			TimedItemHeight:  60,
			AllDayItemHeight: 50,
			TimeLabelWidth:   0,
			TextScale:        1,
			SubjectFontSize:  16,
			TimeFontSize:     13,
		},
		ICS: []ICSConfig{},
	}
}

// Normalize fills in missing/zero values so partially-filled configs
// (e.g. from older versions) still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.HighlightRed == nil {
		c.HighlightRed = []string{"휴일", "휴가", "중요"}
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}

	def := DefaultConfig().Agenda
	a := &c.Agenda
	if a.Width <= 0 {
		a.Width = def.Width
	}
	if a.Height <= 0 {
		a.Height = def.Height
	}
	if a.TimedItemHeight <= 0 {
		a.TimedItemHeight = def.TimedItemHeight
	}
	if a.AllDayItemHeight <= 0 {
		a.AllDayItemHeight = def.AllDayItemHeight
	}
	if a.TextScale <= 0 {
		a.TextScale = 1
	}
	if a.SubjectFontSize <= 0 {
		a.SubjectFontSize = def.SubjectFontSize
	}
	if a.TimeFontSize <= 0 {
		a.TimeFontSize = def.TimeFontSize
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (parent
// directory created, 0600 permissions) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path: parent directory ensured (0700), atomic
// temp-file + rename, final permissions 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agendacal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
