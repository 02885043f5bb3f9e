// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinscribe/report-engine/pkg/types"
)

// Renderer writes generated reports to the output directory in the
// requested formats.
type Renderer struct {
	outputDir   string
	chartWidth  int
	chartHeight int
	log         zerolog.Logger
}

// New builds a Renderer from the render config.
func New(cfg types.RenderConfig, logger zerolog.Logger) *Renderer {
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join("output", "reports")
	}
	return &Renderer{
		outputDir:   outputDir,
		chartWidth:  cfg.ChartWidth,
		chartHeight: cfg.ChartHeight,
		log:         logger,
	}
}

// Result holds the artifacts written for one render call and the chart
// specs the documents embed (including omitted ones and their reasons).
type Result struct {
	Artifacts map[types.OutputFormat]string
	Charts    []types.ChartSpec
}

// Render parses the generated text, renders one chart per chartable test
// result, and writes each requested format independently. Both formats
// reflect the same text and chart data. A single chart failure degrades to
// an inline notice; only a failure to write an artifact is fatal, and any
// files already written for this call are removed before the error returns.
func (r *Renderer) Render(text string, patient *types.PatientRecord, reportType types.ReportType, formats []types.OutputFormat) (*Result, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", r.outputDir, err)
	}

	doc := ParseDocument(text)
	specs := BuildChartSpecs(patient.Tests)
	charts := RenderCharts(specs, r.chartWidth, r.chartHeight)
	for _, img := range charts {
		if img.Err != nil {
			r.log.Warn().
				Str("chart", img.Spec.Label).
				Err(img.Err).
				Msg("chart rendering failed, substituting notice")
		}
	}

	base := artifactBase(patient.ID, reportType, time.Now())
	result := &Result{
		Artifacts: make(map[types.OutputFormat]string, len(formats)),
		Charts:    specs,
	}

	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case types.FormatWord:
			path = filepath.Join(r.outputDir, base+".docx")
			err = writeWord(doc, charts, path)
		case types.FormatPDF:
			path = filepath.Join(r.outputDir, base+".pdf")
			err = writePDF(doc, charts, path)
		default:
			err = fmt.Errorf("unknown output format %q", format)
		}
		if err != nil {
			r.removeArtifacts(result.Artifacts, path)
			return nil, err
		}
		result.Artifacts[format] = path
	}

	return result, nil
}

// removeArtifacts deletes files written for a failed render call so a
// failure leaves no partial state behind.
func (r *Renderer) removeArtifacts(written map[types.OutputFormat]string, partial string) {
	if partial != "" {
		os.Remove(partial)
	}
	for _, path := range written {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.log.Warn().Str("path", path).Err(err).Msg("could not remove artifact after failed render")
		}
	}
}

// artifactBase constructs a collision-resistant filename stem from the
// patient ID, report type, and a nanosecond-resolution timestamp, so
// concurrent requests for different patients or rapid repeats for the same
// patient cannot overwrite one another.
func artifactBase(patientID string, reportType types.ReportType, t time.Time) string {
	return fmt.Sprintf("report_%s_%s_%s_%09d",
		patientID, reportType, t.Format("20060102_150405"), t.Nanosecond())
}
