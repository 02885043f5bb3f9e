// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the report-engine pipeline:
// report classification (Audience, LengthVariant, ReportType), patient
// assessment data, style profiles, and per-stage configuration.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Audience is the target reader category for a report.
type Audience string

const (
	AudienceParent     Audience = "parent"
	AudienceSpecialist Audience = "specialist"
	AudienceOther      Audience = "other"
)

// ParseAudience converts a string to an Audience, case-insensitively.
func ParseAudience(s string) (Audience, error) {
	switch Audience(strings.ToLower(strings.TrimSpace(s))) {
	case AudienceParent:
		return AudienceParent, nil
	case AudienceSpecialist:
		return AudienceSpecialist, nil
	case AudienceOther:
		return AudienceOther, nil
	}
	return "", fmt.Errorf("unknown audience %q: use parent, specialist, or other", s)
}

// LengthVariant is the target output size for a report.
type LengthVariant string

const (
	LengthFull  LengthVariant = "full"
	LengthShort LengthVariant = "short"
)

// ParseLengthVariant converts a string to a LengthVariant, case-insensitively.
func ParseLengthVariant(s string) (LengthVariant, error) {
	switch LengthVariant(strings.ToLower(strings.TrimSpace(s))) {
	case LengthFull:
		return LengthFull, nil
	case LengthShort:
		return LengthShort, nil
	}
	return "", fmt.Errorf("unknown length variant %q: use full or short", s)
}

// ReportType pairs an audience with a length variant. The six combinations
// form a closed set; every switch over report types handles all of them.
type ReportType struct {
	Audience Audience      `json:"audience" yaml:"audience"`
	Length   LengthVariant `json:"length" yaml:"length"`
}

// String returns the canonical form, e.g. "parent-full".
func (t ReportType) String() string {
	return string(t.Audience) + "-" + string(t.Length)
}

// ParseReportType parses the canonical "audience-length" form.
func ParseReportType(s string) (ReportType, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return ReportType{}, fmt.Errorf("invalid report type %q: expected audience-length, e.g. parent-full", s)
	}
	aud, err := ParseAudience(parts[0])
	if err != nil {
		return ReportType{}, err
	}
	length, err := ParseLengthVariant(parts[1])
	if err != nil {
		return ReportType{}, err
	}
	return ReportType{Audience: aud, Length: length}, nil
}

// AllReportTypes enumerates every audience/length combination in a fixed order.
func AllReportTypes() []ReportType {
	audiences := []Audience{AudienceParent, AudienceSpecialist, AudienceOther}
	lengths := []LengthVariant{LengthFull, LengthShort}
	var all []ReportType
	for _, l := range lengths {
		for _, a := range audiences {
			all = append(all, ReportType{Audience: a, Length: l})
		}
	}
	return all
}

// OutputFormat selects a rendered artifact format.
type OutputFormat string

const (
	FormatWord OutputFormat = "word"
	FormatPDF  OutputFormat = "pdf"
)

// ParseFormats converts a format argument ("word", "pdf", or "both") into the
// set of formats to render.
func ParseFormats(s string) ([]OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word":
		return []OutputFormat{FormatWord}, nil
	case "pdf":
		return []OutputFormat{FormatPDF}, nil
	case "both", "":
		return []OutputFormat{FormatWord, FormatPDF}, nil
	}
	return nil, fmt.Errorf("unknown format %q: use word, pdf, or both", s)
}

// ExampleReport is one previously authored report in the style corpus.
// Immutable once ingested.
type ExampleReport struct {
	// ID is a slug derived from the source filename or import row.
	ID string `json:"id" yaml:"id"`

	// Text is the raw report text.
	Text string `json:"text" yaml:"text"`

	// Type tags the example with its audience and length variant.
	Type ReportType `json:"type" yaml:"type"`

	// Authored is the date the report was written, used for recency weighting.
	Authored time.Time `json:"authored" yaml:"authored"`
}

// ReportRequest describes one generation request.
type ReportRequest struct {
	PatientID string         `json:"patient_id" yaml:"patient_id"`
	Type      ReportType     `json:"type" yaml:"type"`
	Formats   []OutputFormat `json:"formats" yaml:"formats"`
}

// Prompt is an assembled generation request: the full prompt text, the output
// budget, and the IDs of the style exemplars it embeds (kept for audit).
type Prompt struct {
	Text            string   `json:"text"`
	MaxOutputTokens int      `json:"max_output_tokens"`
	ExemplarIDs     []string `json:"exemplar_ids,omitempty"`
}

// ChartSpec describes one test-result visualization. Results that cannot be
// charted carry Omitted with a reason; the renderer substitutes a notice.
type ChartSpec struct {
	// Label identifies the test, e.g. "WISC-V FSIQ".
	Label string `json:"label" yaml:"label"`

	// Score is the patient's value.
	Score float64 `json:"score" yaml:"score"`

	// RefMean and RefSD describe the normative reference the score is
	// compared against.
	RefMean float64 `json:"ref_mean" yaml:"ref_mean"`
	RefSD   float64 `json:"ref_sd" yaml:"ref_sd"`

	// Omitted marks a result that lacks the data needed to chart it.
	Omitted    bool   `json:"omitted,omitempty" yaml:"omitted,omitempty"`
	OmitReason string `json:"omit_reason,omitempty" yaml:"omit_reason,omitempty"`
}

// GeneratedReport is the outcome of one successful generation: the raw text,
// the derived chart specs, and the rendered artifact paths. Written once;
// never mutated.
type GeneratedReport struct {
	RequestID string                  `json:"request_id" yaml:"request_id"`
	PatientID string                  `json:"patient_id" yaml:"patient_id"`
	Type      ReportType              `json:"type" yaml:"type"`
	Text      string                  `json:"text" yaml:"text"`
	Charts    []ChartSpec             `json:"charts" yaml:"charts"`
	Artifacts map[OutputFormat]string `json:"artifacts" yaml:"artifacts"`
	CreatedAt time.Time               `json:"created_at" yaml:"created_at"`
}

// ArtifactMetadata describes one rendered artifact on disk. Derived from the
// output directory listing; never persisted separately.
type ArtifactMetadata struct {
	Name       string    `json:"name" yaml:"name"`
	Path       string    `json:"path" yaml:"path"`
	Size       int64     `json:"size" yaml:"size"`
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`
}
