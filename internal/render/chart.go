// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/clinscribe/report-engine/pkg/types"
)

const (
	defaultChartWidth  = 512
	defaultChartHeight = 320
)

// BuildChartSpecs derives one chart spec per test result. A result that
// lacks a recorded score or a normative reference cannot be charted; its
// spec carries Omitted and a reason so the renderer can substitute an
// inline note instead of aborting.
func BuildChartSpecs(results []types.TestResult) []types.ChartSpec {
	specs := make([]types.ChartSpec, 0, len(results))
	for _, t := range results {
		label := t.Name
		if t.Code != "" {
			label = t.Code
		}
		switch {
		case !t.HasScore:
			specs = append(specs, types.ChartSpec{
				Label:      label,
				Omitted:    true,
				OmitReason: "no score recorded",
			})
		case t.Reference == nil:
			specs = append(specs, types.ChartSpec{
				Label:      label,
				Score:      t.Score,
				Omitted:    true,
				OmitReason: "no normative reference on file",
			})
		default:
			specs = append(specs, types.ChartSpec{
				Label:   label,
				Score:   t.Score,
				RefMean: t.Reference.Mean,
				RefSD:   t.Reference.SD,
			})
		}
	}
	return specs
}

// ChartImage pairs a chart spec with its rendered PNG, or the error that
// prevented rendering.
type ChartImage struct {
	Spec types.ChartSpec
	PNG  []byte
	Err  error
}

// renderChart is swappable so tests can force rendering failures.
var renderChart = renderBarChart

// RenderCharts renders every chartable spec. Omitted specs pass through
// with no image; render failures are recorded per chart, never fatal.
func RenderCharts(specs []types.ChartSpec, width, height int) []ChartImage {
	if width <= 0 {
		width = defaultChartWidth
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	images := make([]ChartImage, 0, len(specs))
	for _, spec := range specs {
		img := ChartImage{Spec: spec}
		if !spec.Omitted {
			img.PNG, img.Err = renderChart(spec, width, height)
		}
		images = append(images, img)
	}
	return images
}

// renderBarChart draws the patient's score against the normative band:
// one bar for the obtained score, one for the normative mean, one for one
// standard deviation above the mean.
func renderBarChart(spec types.ChartSpec, width, height int) ([]byte, error) {
	maxVal := spec.Score
	if m := spec.RefMean + spec.RefSD; m > maxVal {
		maxVal = m
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	bc := chart.BarChart{
		Title:    spec.Label,
		Width:    width,
		Height:   height,
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxVal * 1.2},
		},
		Bars: []chart.Value{
			{Value: spec.Score, Label: "Patient"},
			{Value: spec.RefMean, Label: "Norm Mean"},
			{Value: spec.RefMean + spec.RefSD, Label: "Mean +1 SD"},
		},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart %q: %w", spec.Label, err)
	}
	return buf.Bytes(), nil
}

// chartNotice is the inline text substituted for a chart that could not be
// produced.
func chartNotice(img ChartImage) string {
	if img.Spec.Omitted {
		return fmt.Sprintf("[Chart omitted for %s: %s]", img.Spec.Label, img.Spec.OmitReason)
	}
	return fmt.Sprintf("[Chart unavailable for %s: rendering failed]", img.Spec.Label)
}
