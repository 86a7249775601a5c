package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"a.pdf":   "%PDF-1.4 a",
		"b.PDF":   "%PDF-1.4 b",
		"c.txt":   "plain",
		"sub.pdf": "%PDF-1.4 sub",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	uploads, skipped, err := ReadFiles(filepath.Join(dir, "*"), filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)

	names := make([]string, len(uploads))
	for i, u := range uploads {
		names[i] = u.Name
	}
	assert.Equal(t, []string{"a.pdf", "b.PDF", "sub.pdf"}, names)
	assert.Equal(t, "%PDF-1.4 a", string(uploads[0].Data))
	assert.Equal(t, []string{filepath.Join(dir, "c.txt")}, skipped)
}

func TestReadFilesMissing(t *testing.T) {
	_, _, err := ReadFiles(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
