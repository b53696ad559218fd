package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeConfig(t, `
window:
  title: Rochester
  width: 1024
render:
  format: png
  path_color: "#ff0000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Rochester", cfg.Window.Title)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 572, cfg.Window.Height)
	assert.Equal(t, "png", cfg.Render.Format)
	assert.Equal(t, "#ff0000", cfg.Render.PathColor)
	assert.Equal(t, "#66cc66", cfg.Render.Background)
	assert.Equal(t, 2, cfg.Render.Supersample)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"negative width": "window:\n  width: -1\n",
		"unknown format": "render:\n  format: gif\n",
		"bad color":      "render:\n  background: green\n",
		"supersample":    "render:\n  supersample: 9\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)

			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "window: [unterminated"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShippedConfigMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
