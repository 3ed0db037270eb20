package changelog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChangelog = `---------------------------------------------------------------------------------------------------
Version: 0.17.22
Date: 03. 02. 2020
  Features:
    - Added a fancy new view
      spanning two lines
  Changes:
    -
  Bugfixes:
    - Fixed a crash when opening the UI
    - Fixed another crash
---------------------------------------------------------------------------------------------------
Version: 0.17.21
Date: 28. 01. 2020
  Bugfixes:
    - Fixed migration of old subfactories
`

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		expected *Changelog
	}{
		"two entries with continuation and blank bullet": {
			input: sampleChangelog,
			expected: &Changelog{Entries: []Entry{
				{
					Version: "0.17.22",
					Date:    "03. 02. 2020",
					Sections: []Section{
						{Name: "Features", Items: []string{"Added a fancy new view spanning two lines"}},
						{Name: "Changes"},
						{Name: "Bugfixes", Items: []string{"Fixed a crash when opening the UI", "Fixed another crash"}},
					},
				},
				{
					Version: "0.17.21",
					Date:    "28. 01. 2020",
					Sections: []Section{
						{Name: "Bugfixes", Items: []string{"Fixed migration of old subfactories"}},
					},
				},
			}},
		},
		"blank template entry": {
			input: DefaultTemplate().Render(),
			expected: &Changelog{Entries: []Entry{
				{
					Version:  "0.00.00",
					Date:     "00. 00. 0000",
					Sections: []Section{{Name: "Features"}, {Name: "Changes"}, {Name: "Bugfixes"}},
				},
			}},
		},
		"entry without leading separator": {
			input: "Version: 1.0.0\nDate: 01. 01. 2021\n  Info:\n    - Initial release\n",
			expected: &Changelog{Entries: []Entry{
				{
					Version:  "1.0.0",
					Date:     "01. 01. 2021",
					Sections: []Section{{Name: "Info", Items: []string{"Initial release"}}},
				},
			}},
		},
		"windows line endings": {
			input: "Version: 1.0.0\r\nDate: 01. 01. 2021\r\n  Features:\r\n    - A\r\n",
			expected: &Changelog{Entries: []Entry{
				{
					Version:  "1.0.0",
					Date:     "01. 01. 2021",
					Sections: []Section{{Name: "Features", Items: []string{"A"}}},
				},
			}},
		},
		"empty input": {
			input:    "",
			expected: &Changelog{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		wantLine int
	}{
		"bullet before category": {
			input:    "Version: 1.0.0\n    - orphan\n",
			wantLine: 2,
		},
		"date outside entry": {
			input:    "Date: 01. 01. 2021\n",
			wantLine: 1,
		},
		"unrecognized text": {
			input:    "Version: 1.0.0\nsomething odd\n",
			wantLine: 2,
		},
		"two versions without separator": {
			input:    "Version: 1.0.0\nVersion: 1.0.1\n",
			wantLine: 2,
		},
		"continuation without bullet": {
			input:    "Version: 1.0.0\n  Features:\n        dangling\n",
			wantLine: 3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			require.True(t, IsParseError(err))

			pe := err.(*ParseError)
			assert.Equal(t, tt.wantLine, pe.Line)
		})
	}
}

func TestEntry_IsPlaceholder(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		entry Entry
		want  bool
	}{
		"blank template":       {entry: Entry{Version: "0.00.00", Date: "00. 00. 0000"}, want: true},
		"legacy 0.17.00 blank": {entry: Entry{Version: "0.17.00", Date: "00. 00. 0000"}, want: true},
		"released":             {entry: Entry{Version: "0.17.22", Date: "03. 02. 2020"}, want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.entry.IsPlaceholder())
		})
	}
}

func TestEntry_Count(t *testing.T) {
	t.Parallel()

	e := Entry{
		Version: "1.0.0",
		Sections: []Section{
			{Name: "Features", Items: []string{"A", "B"}},
			{Name: "Bugfixes", Items: []string{"C"}},
			{Name: "Changes"},
		},
	}
	assert.Equal(t, 3, e.Count())
	assert.Zero(t, Entry{Version: "1.0.1"}.Count())
}
