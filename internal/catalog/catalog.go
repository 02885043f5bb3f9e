// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog lists rendered artifacts for recency browsing and hands
// finished files to the operating system for viewing. It is read-only over
// the output directory and performs no caching: artifacts are created
// outside its control, so every call re-scans the current listing.
package catalog

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/clinscribe/report-engine/pkg/types"
)

const defaultMaxResults = 20

// FileOpener hands an artifact path to an external viewer. The OS handoff
// is outside the pipeline; tests substitute a fake.
type FileOpener interface {
	Open(path string) error
}

// Catalog scans the artifact output directory.
type Catalog struct {
	outputDir  string
	maxResults int
	opener     FileOpener
}

// New builds a Catalog over the configured output directory. An empty
// directory falls back to the renderer's default output location, so the
// catalog and the renderer agree without configuration. A nil opener uses
// the platform default.
func New(cfg types.CatalogConfig, opener FileOpener) *Catalog {
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join("output", "reports")
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if opener == nil {
		opener = execOpener{}
	}
	return &Catalog{
		outputDir:  outputDir,
		maxResults: maxResults,
		opener:     opener,
	}
}

// ListRecent returns artifact metadata sorted by modification time
// descending, capped at limit (the configured default when limit <= 0).
// A missing output directory is an empty listing, not an error.
func (c *Catalog) ListRecent(limit int) ([]types.ArtifactMetadata, error) {
	if limit <= 0 {
		limit = c.maxResults
	}

	entries, err := os.ReadDir(c.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading output directory %s: %w", c.outputDir, err)
	}

	var artifacts []types.ArtifactMetadata
	for _, entry := range entries {
		if entry.IsDir() || !isArtifact(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, types.ArtifactMetadata{
			Name:       entry.Name(),
			Path:       filepath.Join(c.outputDir, entry.Name()),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.SliceStable(artifacts, func(i, j int) bool {
		if !artifacts[i].ModifiedAt.Equal(artifacts[j].ModifiedAt) {
			return artifacts[i].ModifiedAt.After(artifacts[j].ModifiedAt)
		}
		return artifacts[i].Name < artifacts[j].Name
	})

	if len(artifacts) > limit {
		artifacts = artifacts[:limit]
	}
	return artifacts, nil
}

// Open hands an artifact to the configured opener. The path must live
// inside the output directory.
func (c *Catalog) Open(path string) error {
	// A bare document name refers to the output directory.
	if filepath.Dir(path) == "." {
		path = filepath.Join(c.outputDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	absDir, err := filepath.Abs(c.outputDir)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}
	if !strings.HasPrefix(abs, absDir+string(filepath.Separator)) {
		return fmt.Errorf("artifact %s is outside the output directory", path)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("artifact %s: %w", path, err)
	}
	return c.opener.Open(abs)
}

// isArtifact filters the listing to rendered report documents.
func isArtifact(name string) bool {
	switch filepath.Ext(name) {
	case ".docx", ".pdf":
		return true
	}
	return false
}

// execOpener shells out to the platform's file-opening command.
type execOpener struct{}

func (execOpener) Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return nil
}
