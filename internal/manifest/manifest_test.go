package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/modkit/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInfo = `{
    "name": "factoryplanner",
    "version": "0.17.21",
    "title": "Factory Planner",
    "factorio_version": "0.17",
    "dependencies": [
        "base >= 0.17.50",
        "? informatron"
    ]
}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "info.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBumpVersion(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, sampleInfo)

	next, err := BumpVersion(path)
	require.NoError(t, err)
	assert.Equal(t, "0.17.22", next.String())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{
    "name": "factoryplanner",
    "version": "0.17.22",
    "title": "Factory Planner",
    "factorio_version": "0.17",
    "dependencies": [
        "base >= 0.17.50",
        "? informatron"
    ]
}
`
	assert.Equal(t, want, string(got))
}

func TestBumpVersion_Twice(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, sampleInfo)

	first, err := BumpVersion(path)
	require.NoError(t, err)
	second, err := BumpVersion(path)
	require.NoError(t, err)

	assert.Equal(t, "0.17.22", first.String())
	assert.Equal(t, "0.17.23", second.String())
}

func TestBumpVersion_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content     string
		wantParse   bool
		wantMissing bool
	}{
		"missing version field": {
			content:   `{"name": "mod"}`,
			wantParse: true,
		},
		"non-numeric version": {
			content:   `{"name": "mod", "version": "0.17.beta"}`,
			wantParse: true,
		},
		"version is a number": {
			content:   `{"name": "mod", "version": 17}`,
			wantParse: true,
		},
		"not an object": {
			content: `["0.17.21"]`,
		},
		"malformed JSON": {
			content: `{"version": `,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := writeManifest(t, tt.content)
			_, err := BumpVersion(path)
			require.Error(t, err)

			var pe *version.ParseError
			assert.Equal(t, tt.wantParse, errors.As(err, &pe))

			got, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, tt.content, string(got), "manifest must be untouched on failure")
		})
	}
}

func TestBumpVersion_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := BumpVersion(filepath.Join(t.TempDir(), "info.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParse_KeepsKeyOrder(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(sampleInfo))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "version", "title", "factorio_version", "dependencies"}, m.Keys())
	assert.Equal(t, "factoryplanner", m.Name())
}

func TestMarshal_RoundTripIsStable(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(sampleInfo))
	require.NoError(t, err)

	out, err := m.Marshal()
	require.NoError(t, err)
	assert.Equal(t, sampleInfo, string(out))
}

func TestSetVersion_AppendsWhenAbsent(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{"name": "mod"}`))
	require.NoError(t, err)

	m.SetVersion(version.MustParse("1.0.0"))
	v, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.String())
	assert.Equal(t, []string{"name", "version"}, m.Keys())
}
