package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"schtocal/internal/i18n"
	"schtocal/internal/model"
	"schtocal/internal/remap"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// SemesterConfig holds the inclusive semester dates as YYYY-MM-DD.
type SemesterConfig struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// CommuteConfig controls the synthetic driving events around each day.
type CommuteConfig struct {
	InboundMinutes  int    `yaml:"inbound_minutes" json:"inbound_minutes"`
	OutboundMinutes int    `yaml:"outbound_minutes" json:"outbound_minutes"`
	Glyph           string `yaml:"glyph,omitempty" json:"glyph,omitempty"`
}

// GoogleConfig selects the target calendar and where the access token
// comes from. The token itself is never written to the config file.
type GoogleConfig struct {
	// CalendarID targets an existing calendar. When empty a per-semester
	// calendar is looked up or created.
	CalendarID string `yaml:"calendar_id,omitempty" json:"calendar_id,omitempty"`
	// TokenEnv names the environment variable holding the OAuth access token.
	TokenEnv string `yaml:"token_env" json:"token_env"`
	// Colors maps a color group (course key or "driving") to a palette id.
	Colors map[string]string `yaml:"colors,omitempty" json:"colors,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	// File enables rotating file output in addition to stderr.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Semester SemesterConfig `yaml:"semester" json:"semester"`
	Commute  CommuteConfig  `yaml:"commute" json:"commute"`

	// RemapMode is one of "off", "engineering" or "firstYear".
	RemapMode string `yaml:"remap_mode" json:"remap_mode"`

	// Language is a BCP 47 tag; it selects the commute labels.
	Language string `yaml:"language" json:"language"`

	// CourseGlyphs maps a course key to the glyph shown in its summary.
	CourseGlyphs map[string]string `yaml:"course_glyphs,omitempty" json:"course_glyphs,omitempty"`

	// CoursesFile is the YAML or JSON course list used by sync and serve.
	CoursesFile string `yaml:"courses_file,omitempty" json:"courses_file,omitempty"`

	Google GoogleConfig `yaml:"google" json:"google"`

	// SyncCron, when set, runs a periodic sync of CoursesFile under serve.
	SyncCron string `yaml:"sync_cron,omitempty" json:"sync_cron,omitempty"`

	Log LogConfig `yaml:"log" json:"log"`
}

const defaultTokenEnv = "SCHTOCAL_GOOGLE_TOKEN"

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    "127.0.0.1:8080",
		RemapMode: string(remap.ModeOff),
		Language:  string(i18n.Arabic),
		Google:    GoogleConfig{TokenEnv: defaultTokenEnv},
		Log:       LogConfig{Level: "INFO"},
	}
}

// Normalize fills in missing values and canonicalizes enumerations so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	mode, ok := remap.ParseMode(c.RemapMode)
	if !ok {
		mode = remap.ModeOff
	}
	c.RemapMode = string(mode)
	c.Language = string(i18n.Parse(c.Language))
	if c.Google.TokenEnv == "" {
		c.Google.TokenEnv = defaultTokenEnv
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
	c.Semester.Start = strings.TrimSpace(c.Semester.Start)
	c.Semester.End = strings.TrimSpace(c.Semester.End)
}

// SemesterOptions converts the config into builder options. Both semester
// dates are required and End must not precede Start.
func (c *Config) SemesterOptions() (model.SemesterOptions, error) {
	var opts model.SemesterOptions

	start, err := model.ParseDate(c.Semester.Start)
	if err != nil {
		return opts, fmt.Errorf("semester.start: %w", err)
	}
	end, err := model.ParseDate(c.Semester.End)
	if err != nil {
		return opts, fmt.Errorf("semester.end: %w", err)
	}
	if end.Before(start) {
		return opts, fmt.Errorf("semester.end %s is before semester.start %s", c.Semester.End, c.Semester.Start)
	}

	mode, _ := remap.ParseMode(c.RemapMode)
	return model.SemesterOptions{
		Start:        start,
		End:          end,
		CommuteIn:    c.Commute.InboundMinutes,
		CommuteOut:   c.Commute.OutboundMinutes,
		Mode:         mode,
		CourseGlyphs: c.CourseGlyphs,
		CommuteGlyph: c.Commute.Glyph,
		Lang:         i18n.Parse(c.Language),
	}, nil
}

// Token reads the Google access token from the configured environment
// variable.
func (c *Config) Token() string {
	return strings.TrimSpace(os.Getenv(c.Google.TokenEnv))
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(fsys, path, cfg); err != nil {
				// Caller decides whether a read-only location is fatal.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path through a temp file in the same directory and a
// rename. The final file has 0600 permissions.
func Save(fsys afero.Fs, path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(fsys, dir, ".schtocal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer fsys.Remove(tmpName)

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

	if err := fsys.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return fsys.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(fsys afero.Fs, path string) error {
	return Save(fsys, path, c)
}
