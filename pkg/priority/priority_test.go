package priority

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "equivalency document keeps key order",
			doc: `{
  "Europe/Paris": ["Europe/Monaco"],
  "America/New_York": ["America/Detroit", "America/Nassau"],
  "Asia/Kolkata": ["Asia/Calcutta"]
}`,
			want: []string{"Europe/Paris", "America/New_York", "Asia/Kolkata"},
		},
		{
			name: "array",
			doc:  `["Europe/London", "Africa/Abidjan"]`,
			want: []string{"Europe/London", "Africa/Abidjan"},
		},
		{
			name: "comments and trailing commas",
			doc: `[
  // the canonical zone for the UK
  "Europe/London",
  /* west africa */ "Africa/Lagos",
]`,
			want: []string{"Europe/London", "Africa/Lagos"},
		},
		{
			name: "empty object",
			doc:  `{}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, doc := range []string{`"Europe/Paris"`, `[1, 2]`, `{"a": [] `, ``, `["a"] ["b"]`} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, "Parse(%q)", doc)
	}
	_, err := Parse([]byte(`42`))
	require.ErrorIs(t, err, ErrFormat)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	zones, found, err := Load(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, zones)

	path := filepath.Join(dir, "equivalencies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"B": ["A"], "A": ["C"]}`), 0o600))
	zones, found, err = Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"B", "A"}, zones)

	require.NoError(t, os.WriteFile(path, []byte(`{nope`), 0o600))
	_, _, err = Load(path)
	require.ErrorContains(t, err, path)
}
