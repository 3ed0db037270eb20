package devmode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewrite(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content     string
		enabled     bool
		opts        Options
		want        string
		wantChanged int
	}{
		"disable": {
			content:     "local x = 1\ndevmode = true\nreturn x\n",
			enabled:     false,
			want:        "local x = 1\n--devmode = true\nreturn x\n",
			wantChanged: 1,
		},
		"enable": {
			content:     "--devmode = true\n",
			enabled:     true,
			want:        "devmode = true\n",
			wantChanged: 1,
		},
		"already disabled": {
			content: "--devmode = true\n",
			enabled: false,
			want:    "--devmode = true\n",
		},
		"indented line untouched": {
			content: "  devmode = true\n",
			enabled: false,
			want:    "  devmode = true\n",
		},
		"custom flag": {
			content:     "global.devmode = true -- dev only\r\n",
			enabled:     false,
			opts:        Options{Flag: "global.devmode = true"},
			want:        "--global.devmode = true -- dev only\r\n",
			wantChanged: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, changed := Rewrite(tt.content, tt.enabled, tt.opts)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StateEnabled, Detect("devmode = true\n", Options{}))
	assert.Equal(t, StateDisabled, Detect("x = 1\n--devmode = true\n", Options{}))
	assert.Equal(t, StateUnknown, Detect("x = 1\n", Options{}))
	assert.Equal(t, "disabled", StateDisabled.String())
}

func TestSet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "init.lua")
	require.NoError(t, os.WriteFile(path, []byte("devmode = true\n"), 0o644))

	changed, err := Set(path, false, Options{})
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "--devmode = true\n", string(data))

	changed, err = Set(path, false, Options{})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = Set(path, true, Options{})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestSet_FlagMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "init.lua")
	require.NoError(t, os.WriteFile(path, []byte("return {}\n"), 0o644))

	_, err := Set(path, false, Options{})
	assert.True(t, errors.Is(err, ErrFlagNotFound))
}
