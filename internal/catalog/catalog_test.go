// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinscribe/report-engine/pkg/types"
)

type fakeOpener struct {
	opened []string
}

func (f *fakeOpener) Open(path string) error {
	f.opened = append(f.opened, path)
	return nil
}

func writeArtifact(t *testing.T, dir, name string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestListRecent(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		ext := ".pdf"
		if i%2 == 0 {
			ext = ".docx"
		}
		writeArtifact(t, dir, fmt.Sprintf("report_P1_%02d%s", i, ext), base.Add(time.Duration(i)*time.Minute))
	}
	// Non-artifact files never show up.
	writeArtifact(t, dir, "notes.txt", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	cat := New(types.CatalogConfig{OutputDir: dir}, &fakeOpener{})

	got, err := cat.ListRecent(5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	// Newest first.
	assert.Equal(t, "report_P1_11.pdf", got[0].Name)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].ModifiedAt.After(got[i-1].ModifiedAt))
	}
	for _, a := range got {
		assert.NotEqual(t, "notes.txt", a.Name)
		assert.Greater(t, a.Size, int64(0))
		assert.Equal(t, filepath.Join(dir, a.Name), a.Path)
	}
}

func TestListRecent_DefaultLimit(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		writeArtifact(t, dir, fmt.Sprintf("report_%02d.pdf", i), base.Add(time.Duration(i)*time.Second))
	}

	cat := New(types.CatalogConfig{OutputDir: dir}, &fakeOpener{})
	got, err := cat.ListRecent(0)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestListRecent_UnconfiguredOutputDir(t *testing.T) {
	// With no output directory configured the catalog scans the same
	// default location the renderer writes to.
	t.Chdir(t.TempDir())
	dir := filepath.Join("output", "reports")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	writeArtifact(t, dir, "report_P1_default.pdf", time.Now())

	cat := New(types.CatalogConfig{}, &fakeOpener{})
	got, err := cat.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "report_P1_default.pdf", got[0].Name)
}

func TestListRecent_MissingDirectory(t *testing.T) {
	cat := New(types.CatalogConfig{OutputDir: filepath.Join(t.TempDir(), "nope")}, &fakeOpener{})
	got, err := cat.ListRecent(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListRecent_AlwaysRescans(t *testing.T) {
	dir := t.TempDir()
	cat := New(types.CatalogConfig{OutputDir: dir}, &fakeOpener{})

	got, err := cat.ListRecent(10)
	require.NoError(t, err)
	assert.Empty(t, got)

	// A file dropped in from outside shows up on the next call.
	writeArtifact(t, dir, "report_external.pdf", time.Now())
	got, err = cat.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "report_external.pdf", got[0].Name)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "report_P1.pdf", time.Now())

	opener := &fakeOpener{}
	cat := New(types.CatalogConfig{OutputDir: dir}, opener)

	// Bare names resolve against the output directory.
	require.NoError(t, cat.Open("report_P1.pdf"))
	require.Len(t, opener.opened, 1)
	assert.Equal(t, filepath.Join(dir, "report_P1.pdf"), opener.opened[0])

	// Full paths work too.
	require.NoError(t, cat.Open(filepath.Join(dir, "report_P1.pdf")))
}

func TestOpen_RejectsOutsidePaths(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "elsewhere.pdf")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	opener := &fakeOpener{}
	cat := New(types.CatalogConfig{OutputDir: dir}, opener)

	err := cat.Open(outside)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the output directory")
	assert.Empty(t, opener.opened)
}

func TestOpen_MissingArtifact(t *testing.T) {
	cat := New(types.CatalogConfig{OutputDir: t.TempDir()}, &fakeOpener{})
	err := cat.Open("does-not-exist.pdf")
	require.Error(t, err)
}
