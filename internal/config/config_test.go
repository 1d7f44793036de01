package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schtocal/internal/i18n"
	"schtocal/internal/remap"
)

func TestLoadCreatesDefault(t *testing.T) {
	fsys := afero.NewMemMapFs()

	cfg, err := Load(fsys, "/etc/schtocal/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "off", cfg.RemapMode)
	assert.Equal(t, defaultTokenEnv, cfg.Google.TokenEnv)

	info, err := fsys.Stat("/etc/schtocal/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	tmps, err := afero.Glob(fsys, "/etc/schtocal/.schtocal-config-*")
	require.NoError(t, err)
	assert.Empty(t, tmps)
}

func TestLoadNormalizes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/c.yaml", []byte(`
semester:
  start: " 2026-01-18 "
  end: 2026-08-23
commute:
  inbound_minutes: 30
  outbound_minutes: 0
remap_mode: "on"
language: en-GB
course_glyphs:
  CS101: "💻"
google:
  colors:
    CS101: "9"
`), 0o600))

	cfg, err := Load(fsys, "/c.yaml")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, string(remap.ModeEngineering), cfg.RemapMode)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "9", cfg.Google.Colors["CS101"])

	opts, err := cfg.SemesterOptions()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC), opts.Start)
	assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), opts.End)
	assert.Equal(t, 30, opts.CommuteIn)
	assert.Equal(t, 0, opts.CommuteOut)
	assert.Equal(t, remap.ModeEngineering, opts.Mode)
	assert.Equal(t, i18n.English, opts.Lang)
	assert.Equal(t, "💻", opts.CourseGlyphs["CS101"])
}

func TestLoadRejectsBadYAML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/c.yaml", []byte("listen: [unclosed"), 0o600))
	_, err := Load(fsys, "/c.yaml")
	assert.Error(t, err)
}

func TestSemesterOptionsValidates(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"missing start", "", "2026-08-23"},
		{"bad end", "2026-01-18", "23/08/2026"},
		{"inverted", "2026-08-23", "2026-01-18"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Semester = SemesterConfig{Start: tt.start, End: tt.end}
			_, err := cfg.SemesterOptions()
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Semester = SemesterConfig{Start: "2026-01-18", End: "2026-08-23"}
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	cfg.SyncCron = "0 6 * * *"
	require.NoError(t, cfg.Save(fsys, "/data/config.yaml"))

	got, err := Load(fsys, "/data/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestToken(t *testing.T) {
	t.Setenv("SCHTOCAL_TEST_TOKEN", " abc \n")
	cfg := DefaultConfig()
	cfg.Google.TokenEnv = "SCHTOCAL_TEST_TOKEN"
	assert.Equal(t, "abc", cfg.Token())
}
