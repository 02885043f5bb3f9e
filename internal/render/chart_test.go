// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinscribe/report-engine/pkg/types"
)

// pngMagic is the PNG file signature.
var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestBuildChartSpecs(t *testing.T) {
	results := []types.TestResult{
		{
			Name:      "WISC-V Full Scale IQ",
			Code:      "WISC-V",
			Score:     104,
			HasScore:  true,
			Reference: &types.NormativeReference{Mean: 100, SD: 15},
		},
		{
			Name: "Projective Drawing",
			// No score recorded.
		},
		{
			Name:     "Custom Classroom Scale",
			Score:    7,
			HasScore: true,
			// No normative reference.
		},
	}

	specs := BuildChartSpecs(results)
	require.Len(t, specs, 3)

	assert.False(t, specs[0].Omitted)
	assert.Equal(t, "WISC-V", specs[0].Label, "code preferred over full name")
	assert.Equal(t, 104.0, specs[0].Score)
	assert.Equal(t, 100.0, specs[0].RefMean)

	assert.True(t, specs[1].Omitted)
	assert.Equal(t, "no score recorded", specs[1].OmitReason)

	assert.True(t, specs[2].Omitted)
	assert.Equal(t, "no normative reference on file", specs[2].OmitReason)
}

func TestRenderCharts(t *testing.T) {
	specs := []types.ChartSpec{
		{Label: "WISC-V", Score: 104, RefMean: 100, RefSD: 15},
		{Label: "Projective", Omitted: true, OmitReason: "no score recorded"},
	}

	images := RenderCharts(specs, 0, 0)
	require.Len(t, images, 2)

	require.NoError(t, images[0].Err)
	require.NotEmpty(t, images[0].PNG)
	assert.True(t, bytes.HasPrefix(images[0].PNG, pngMagic), "rendered chart must be a PNG")

	assert.Nil(t, images[1].PNG, "omitted specs are not rendered")
	assert.NoError(t, images[1].Err)
}

func TestRenderCharts_FailureIsPerChart(t *testing.T) {
	old := renderChart
	renderChart = func(spec types.ChartSpec, w, h int) ([]byte, error) {
		if spec.Label == "broken" {
			return nil, errors.New("boom")
		}
		return old(spec, w, h)
	}
	defer func() { renderChart = old }()

	specs := []types.ChartSpec{
		{Label: "broken", Score: 1, RefMean: 1, RefSD: 1},
		{Label: "fine", Score: 104, RefMean: 100, RefSD: 15},
	}
	images := RenderCharts(specs, 0, 0)
	require.Len(t, images, 2)
	assert.Error(t, images[0].Err)
	assert.NoError(t, images[1].Err)
	assert.NotEmpty(t, images[1].PNG)
}

func TestChartNotice(t *testing.T) {
	omitted := ChartImage{Spec: types.ChartSpec{Label: "Scale", Omitted: true, OmitReason: "no score recorded"}}
	assert.Equal(t, "[Chart omitted for Scale: no score recorded]", chartNotice(omitted))

	failed := ChartImage{Spec: types.ChartSpec{Label: "Scale"}, Err: errors.New("boom")}
	assert.Equal(t, "[Chart unavailable for Scale: rendering failed]", chartNotice(failed))
}
