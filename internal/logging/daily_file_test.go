package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyFileRotates(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDailyFile(dir)
	require.NoError(t, err)
	defer d.Close()

	day := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	d.now = func() time.Time { return day }
	_, err = d.Write([]byte("first\n"))
	require.NoError(t, err)

	day = day.Add(2 * time.Minute)
	_, err = d.Write([]byte("second\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pdfchat-2024-03-02.log"), d.Path())

	first, err := os.ReadFile(filepath.Join(dir, "pdfchat-2024-03-01.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(first))
	second, err := os.ReadFile(filepath.Join(dir, "pdfchat-2024-03-02.log"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(second))
}

func TestNewTeesAndFilters(t *testing.T) {
	dir := t.TempDir()
	var tee bytes.Buffer
	logger, closer, err := New(dir, "warn", &tee)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("Indexing slow", slog.Int("segments", 12))
	require.NoError(t, closer.Close())

	assert.NotContains(t, tee.String(), "hidden")
	assert.Contains(t, tee.String(), "msg=\"Indexing slow\" segments=12")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, tee.String(), string(data))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
