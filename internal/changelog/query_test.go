package changelog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) *Changelog {
	t.Helper()
	log, err := Parse(strings.NewReader(sampleChangelog))
	require.NoError(t, err)
	return log
}

func TestGetVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		version string
		wantErr bool
		wantVer string
	}{
		"exact match":     {version: "0.17.21", wantVer: "0.17.21"},
		"with v prefix":   {version: "v0.17.22", wantVer: "0.17.22"},
		"unknown version": {version: "9.9.9", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			entry, err := loadSample(t).GetVersion(tt.version)
			if tt.wantErr {
				var notFound *VersionNotFoundError
				require.True(t, errors.As(err, &notFound))
				assert.Equal(t, []string{"0.17.22", "0.17.21"}, notFound.AvailableVersions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVer, entry.Version)
		})
	}
}

func TestGetLastN(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		n    int
		want int
	}{
		"zero":           {n: 0, want: 0},
		"negative":       {n: -1, want: 0},
		"one":            {n: 1, want: 1},
		"more than size": {n: 10, want: 2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Len(t, loadSample(t).GetLastN(tt.n), tt.want)
		})
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	log := loadSample(t)
	assert.Equal(t, 2, log.GetEntryCount())
	assert.Equal(t, 4, log.GetItemCount())
	assert.Equal(t, "0.17.22", log.Latest().Version)
	assert.Nil(t, (&Changelog{}).Latest())
}

func TestFormatTerminal_Plain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := FormatTerminal(loadSample(t).GetLastN(1), &buf, FormatOptions{Plain: true, MaxWidth: 120})
	require.NoError(t, err)

	want := "## v0.17.22 (03. 02. 2020)\n" +
		"\n### Features\n  - Added a fancy new view spanning two lines\n" +
		"\n### Bugfixes\n  - Fixed a crash when opening the UI\n  - Fixed another crash\n"
	assert.Equal(t, want, buf.String())
}

func TestExportYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, ExportYAML(loadSample(t), &buf))

	out := buf.String()
	assert.Contains(t, out, "version: 0.17.22")
	assert.Contains(t, out, "- Fixed another crash")
	assert.Contains(t, out, "name: Bugfixes")
}

func TestWrapText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", wrapText("short", 20, "  "))
	assert.Equal(t, "aaa bbb\n  ccc", wrapText("aaa bbb ccc", 8, "  "))
}
