package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"160x90", 160, 90, false},
		{"64X48", 64, 48, false},
		{" 10 x 20 ", 10, 20, false},
		{"100", 0, 0, true},
		{"ax10", 0, 0, true},
		{"0x10", 0, 0, true},
		{"10x-1", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseSize(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelview.hcl")
	body := `
viewer {
  fps         = 30
  target_size = 4
}
lighting {
  environment = "studio"
}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--fps", "24"}))

	var f flags
	f.configPath = path
	f.fps = 24
	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Viewer.FPS, "explicit flag wins")
	assert.Equal(t, 4.0, cfg.Viewer.TargetSize, "file beats default")
	assert.Equal(t, "studio", cfg.Lighting.Environment, "unset flag keeps file value")
}

func TestLoadConfigRejectsBadFlag(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--environment", "moon"}))

	_, err := loadConfig(cmd, flags{environment: "moon"})
	require.Error(t, err)
}
