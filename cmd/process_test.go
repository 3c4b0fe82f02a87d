package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lease.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocument_PageMarkers(t *testing.T) {
	path := writeTemp(t, `first page text
--- page 2 ---
second page text
--- PAGE 3 ---
third page text`)

	doc, err := loadDocument(path)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Contains(t, doc.Pages[0].Text, "first page")
	assert.Contains(t, doc.Pages[2].Text, "third page")
	assert.Equal(t, "lease.txt", doc.Name)
	assert.NotEmpty(t, doc.ID)
}

func TestLoadDocument_NoMarkers(t *testing.T) {
	path := writeTemp(t, "a single page lease")

	doc, err := loadDocument(path)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "a single page lease", doc.Pages[0].Text)
}

func TestLoadDocument_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01.txt"), []byte("first page"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02.txt"), []byte("second page"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "03.txt"), []byte("  \n"), 0o644))

	doc, err := loadDocument(dir)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, "first page", doc.Pages[0].Text)
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Equal(t, filepath.Base(dir), doc.Name)
}

func TestLoadDocument_EmptyDirectory(t *testing.T) {
	_, err := loadDocument(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadDocument_Empty(t *testing.T) {
	path := writeTemp(t, "   \n  ")

	_, err := loadDocument(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadDocument_Missing(t *testing.T) {
	_, err := loadDocument(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "very lo...", truncate("very long value here", 10))
}
