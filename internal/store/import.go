// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/clinscribe/report-engine/pkg/types"
)

// importPatient mirrors types.PatientRecord but accepts the date as a plain
// string so both "2024-01-15" and RFC 3339 inputs load.
type importPatient struct {
	ID               string              `json:"patient_id"`
	Name             string              `json:"name"`
	Age              int                 `json:"age"`
	Gender           string              `json:"gender"`
	DateOfAssessment string              `json:"date_of_assessment"`
	Tests            []importTestResult  `json:"tests"`
	ClinicalNotes    string              `json:"clinical_notes"`
	Attachments      []types.Attachment  `json:"attachments"`
}

type importTestResult struct {
	Name           string                    `json:"name"`
	Code           string                    `json:"code"`
	Score          *float64                  `json:"score"`
	Reference      *types.NormativeReference `json:"reference"`
	Interpretation string                    `json:"interpretation"`
}

// ImportPatientsJSON loads a JSON array of patient records from path and
// upserts each one. Returns the number of records imported.
func (p *PatientStore) ImportPatientsJSON(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading patients file: %w", err)
	}

	var raw []importPatient
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parsing patients file %s: %w", path, err)
	}

	for _, in := range raw {
		if in.ID == "" {
			return 0, fmt.Errorf("patients file %s: record missing patient_id", path)
		}
		rec := types.PatientRecord{
			ID:            in.ID,
			Name:          in.Name,
			Age:           in.Age,
			Gender:        in.Gender,
			ClinicalNotes: in.ClinicalNotes,
			Attachments:   in.Attachments,
		}
		if in.DateOfAssessment != "" {
			t, err := parseDate(in.DateOfAssessment)
			if err != nil {
				return 0, fmt.Errorf("patient %s: %w", in.ID, err)
			}
			rec.AssessmentDate = t
		}
		for _, tr := range in.Tests {
			out := types.TestResult{
				Name:           tr.Name,
				Code:           tr.Code,
				Reference:      tr.Reference,
				Interpretation: tr.Interpretation,
			}
			if tr.Score != nil {
				out.Score = *tr.Score
				out.HasScore = true
			}
			rec.Tests = append(rec.Tests, out)
		}
		if err := p.Put(ctx, &rec); err != nil {
			return 0, err
		}
	}
	return len(raw), nil
}

// ImportDir ingests every .txt file under dir as one example report. The
// report type is inferred from audience and length tokens in the filename
// (e.g. "parent_short_2024.txt"); files with no recognizable tokens default
// to specialist-full. The authored date comes from the file's modification
// time unless a YYYY-MM-DD token appears in the name.
func (c *CorpusStore) ImportDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading corpus directory: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return imported, fmt.Errorf("reading %s: %w", path, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return imported, fmt.Errorf("stat %s: %w", path, err)
		}

		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		ex := types.ExampleReport{
			ID:       base,
			Text:     text,
			Type:     typeFromName(base),
			Authored: authoredFromName(base, info.ModTime()),
		}
		if err := c.Put(ctx, ex); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// typeFromName scans filename tokens for audience and length markers.
func typeFromName(base string) types.ReportType {
	t := types.ReportType{Audience: types.AudienceSpecialist, Length: types.LengthFull}
	for _, token := range splitNameTokens(base) {
		switch token {
		case "parent":
			t.Audience = types.AudienceParent
		case "specialist", "clinician":
			t.Audience = types.AudienceSpecialist
		case "other", "school":
			t.Audience = types.AudienceOther
		case "full":
			t.Length = types.LengthFull
		case "short", "brief", "summary":
			t.Length = types.LengthShort
		}
	}
	return t
}

var nameDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// authoredFromName prefers a YYYY-MM-DD token over the file timestamp.
func authoredFromName(base string, fallback time.Time) time.Time {
	if m := nameDatePattern.FindString(base); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t
		}
	}
	return fallback
}

func splitNameTokens(base string) []string {
	return strings.FieldsFunc(strings.ToLower(base), func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
