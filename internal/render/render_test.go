// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinscribe/report-engine/pkg/types"
)

const renderedText = `PSYCHOLOGICAL ASSESSMENT REPORT

IDENTIFYING INFORMATION:
Patient ID: P1

TEST RESULTS AND INTERPRETATION:
Cognitive testing revealed average intellectual functioning.

RECOMMENDATIONS:
1. Follow-up in six months
• Classroom accommodations`

func renderPatient() *types.PatientRecord {
	return &types.PatientRecord{
		ID: "P1",
		Tests: []types.TestResult{
			{Name: "WISC-V", Score: 104, HasScore: true, Reference: &types.NormativeReference{Mean: 100, SD: 15}},
			{Name: "Projective Drawing"},
		},
	}
}

func TestRender_BothFormats(t *testing.T) {
	dir := t.TempDir()
	r := New(types.RenderConfig{OutputDir: dir, ChartWidth: 200, ChartHeight: 150}, zerolog.Nop())

	rt := types.ReportType{Audience: types.AudienceSpecialist, Length: types.LengthFull}
	result, err := r.Render(renderedText, renderPatient(), rt, []types.OutputFormat{types.FormatWord, types.FormatPDF})
	require.NoError(t, err)

	require.Len(t, result.Artifacts, 2)
	for format, path := range result.Artifacts {
		info, err := os.Stat(path)
		require.NoError(t, err, "artifact for %s", format)
		assert.Greater(t, info.Size(), int64(0))
		assert.Contains(t, filepath.Base(path), "P1")
		assert.Contains(t, filepath.Base(path), "specialist-full")
	}
	assert.True(t, strings.HasSuffix(result.Artifacts[types.FormatWord], ".docx"))
	assert.True(t, strings.HasSuffix(result.Artifacts[types.FormatPDF], ".pdf"))

	// One spec per test result, the unchartable one marked omitted.
	require.Len(t, result.Charts, 2)
	assert.False(t, result.Charts[0].Omitted)
	assert.True(t, result.Charts[1].Omitted)
}

func TestRender_UniqueFilenames(t *testing.T) {
	dir := t.TempDir()
	r := New(types.RenderConfig{OutputDir: dir}, zerolog.Nop())
	rt := types.ReportType{Audience: types.AudienceParent, Length: types.LengthShort}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		result, err := r.Render(renderedText, renderPatient(), rt, []types.OutputFormat{types.FormatPDF})
		require.NoError(t, err)
		path := result.Artifacts[types.FormatPDF]
		assert.False(t, seen[path], "repeat render must not overwrite %s", path)
		seen[path] = true
	}
}

func TestRender_FailureRemovesWrittenArtifacts(t *testing.T) {
	dir := t.TempDir()
	r := New(types.RenderConfig{OutputDir: dir}, zerolog.Nop())
	rt := types.ReportType{Audience: types.AudienceSpecialist, Length: types.LengthFull}

	// The Word document writes first; the bogus second format fails, and the
	// already-written file must be cleaned up.
	_, err := r.Render(renderedText, renderPatient(), rt, []types.OutputFormat{types.FormatWord, types.OutputFormat("html")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed render must leave nothing on disk")
}

func TestRender_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	r := New(types.RenderConfig{OutputDir: dir}, zerolog.Nop())
	rt := types.ReportType{Audience: types.AudienceOther, Length: types.LengthFull}

	_, err := r.Render(renderedText, renderPatient(), rt, []types.OutputFormat{types.FormatWord})
	require.NoError(t, err)
	_, err = os.Stat(dir)
	require.NoError(t, err)
}

func TestArtifactBase(t *testing.T) {
	rt := types.ReportType{Audience: types.AudienceParent, Length: types.LengthFull}
	ts := time.Date(2026, 3, 15, 10, 30, 0, 123456789, time.UTC)

	base := artifactBase("P1", rt, ts)
	assert.Equal(t, "report_P1_parent-full_20260315_103000_123456789", base)
}
