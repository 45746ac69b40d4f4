package output

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWriteAndCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "js")
	w := NewWriter(dir, quiet())
	docs := []Document{
		{Name: "tz-tree.json", Data: []byte("{\n  \"a\": 1\n}\n")},
		{Name: "tz-tree.min.json", Data: []byte(`{"a":1}`)},
	}

	err := w.Check(docs...)
	require.ErrorIs(t, err, ErrStale)

	require.NoError(t, w.Write(docs...))
	for _, doc := range docs {
		got, err := os.ReadFile(filepath.Join(dir, doc.Name))
		require.NoError(t, err)
		assert.Equal(t, doc.Data, got)
	}
	require.NoError(t, w.Check(docs...))

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	changed := Document{Name: "tz-tree.min.json", Data: []byte(`{"a":2}`)}
	err = w.Check(changed)
	require.ErrorIs(t, err, ErrStale)
	assert.Contains(t, err.Error(), Digest(changed.Data))
}

func TestDigest(t *testing.T) {
	assert.Len(t, Digest(nil), 64)
	assert.Equal(t, Digest([]byte("abc")), Digest([]byte("abc")))
	assert.NotEqual(t, Digest([]byte("abc")), Digest([]byte("abd")))
}

func TestCompressRoundTrip(t *testing.T) {
	data := []byte(`{"testPoint":"2000-01-01T00:27:00","children":{"0":"Europe/London","60":"Europe/Paris"}}`)
	compressed, err := Compress(data)
	require.NoError(t, err)

	again, err := Compress(data)
	require.NoError(t, err)
	assert.Equal(t, compressed, again, "compression must be deterministic")

	back, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, back)

	_, err = Decompress([]byte("not zstd"))
	require.Error(t, err)
}
