// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// NormativeReference is the population norm a test score is compared against.
type NormativeReference struct {
	// Mean is the normative mean for the score scale.
	Mean float64 `json:"mean" yaml:"mean"`

	// SD is the normative standard deviation.
	SD float64 `json:"sd" yaml:"sd"`
}

// TestResult is one administered assessment instrument and its outcome.
type TestResult struct {
	// Name is the instrument's display name, e.g. "WISC-V Full Scale IQ".
	Name string `json:"name" yaml:"name"`

	// Code is the short instrument code, e.g. "WISC-V".
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	// Score is the patient's obtained score.
	Score float64 `json:"score" yaml:"score"`

	// HasScore distinguishes a genuine zero score from a missing one.
	HasScore bool `json:"has_score" yaml:"has_score"`

	// Reference is the normative comparison, nil when the instrument has
	// no published norm on file.
	Reference *NormativeReference `json:"reference,omitempty" yaml:"reference,omitempty"`

	// Interpretation is the examiner's note for this result.
	Interpretation string `json:"interpretation,omitempty" yaml:"interpretation,omitempty"`
}

// Attachment is free text extracted from a file uploaded alongside the
// assessment (teacher questionnaires, prior reports, referral letters).
type Attachment struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// PatientRecord holds one patient's assessment data. The record is owned by
// an external repository and read-only to the pipeline.
type PatientRecord struct {
	ID             string       `json:"patient_id" yaml:"patient_id"`
	Name           string       `json:"name" yaml:"name"`
	Age            int          `json:"age" yaml:"age"`
	Gender         string       `json:"gender,omitempty" yaml:"gender,omitempty"`
	AssessmentDate time.Time    `json:"date_of_assessment" yaml:"date_of_assessment"`
	Tests          []TestResult `json:"tests" yaml:"tests"`
	ClinicalNotes  string       `json:"clinical_notes,omitempty" yaml:"clinical_notes,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}
