// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"fmt"
	"strings"

	"github.com/clinscribe/report-engine/pkg/types"
)

// defaultSections is the report structure used when the style profile has
// no section ordering to offer.
var defaultSections = []string{
	"IDENTIFYING INFORMATION",
	"REASON FOR REFERRAL",
	"TESTS ADMINISTERED",
	"BEHAVIORAL OBSERVATIONS",
	"TEST RESULTS AND INTERPRETATION",
	"SUMMARY",
	"RECOMMENDATIONS",
}

// Template renders a deterministic report from the patient's structured data
// and the bucket's section ordering. It is the offline fallback used when no
// API key is configured; it is never substituted after a service failure,
// since that would mask the failure as a completed report.
func Template(patient *types.PatientRecord, bucket *types.BucketProfile) string {
	sections := defaultSections
	if bucket != nil && len(bucket.Sections) >= 3 {
		sections = bucket.Sections
	}

	var b strings.Builder
	b.WriteString("PSYCHOLOGICAL ASSESSMENT REPORT\n\n")

	for _, sec := range sections {
		heading := strings.ToUpper(sec)
		b.WriteString(heading + ":\n")

		switch {
		case strings.Contains(heading, "IDENTIFYING"):
			fmt.Fprintf(&b, "Patient ID: %s\n", patient.ID)
			fmt.Fprintf(&b, "Age: %d years\n", patient.Age)
			if patient.Gender != "" {
				fmt.Fprintf(&b, "Gender: %s\n", patient.Gender)
			}
			if !patient.AssessmentDate.IsZero() {
				fmt.Fprintf(&b, "Date of Assessment: %s\n", patient.AssessmentDate.Format("2006-01-02"))
			}

		case strings.Contains(heading, "TESTS ADMINISTERED"):
			if len(patient.Tests) == 0 {
				b.WriteString("No assessment instruments on file.\n")
				break
			}
			for _, t := range patient.Tests {
				if t.Code != "" {
					fmt.Fprintf(&b, "- %s (%s)\n", t.Name, t.Code)
				} else {
					fmt.Fprintf(&b, "- %s\n", t.Name)
				}
			}

		case strings.Contains(heading, "RESULT"):
			if len(patient.Tests) == 0 {
				b.WriteString("The available data was insufficient for interpretation.\n")
				break
			}
			for _, t := range patient.Tests {
				fmt.Fprintf(&b, "%s:\n", t.Name)
				if t.HasScore {
					fmt.Fprintf(&b, "  Score: %g\n", t.Score)
				}
				if t.Reference != nil {
					fmt.Fprintf(&b, "  Normative Mean: %g (SD %g)\n", t.Reference.Mean, t.Reference.SD)
				}
				if t.Interpretation != "" {
					fmt.Fprintf(&b, "  Interpretation: %s\n", t.Interpretation)
				}
				b.WriteString("\n")
			}

		case strings.Contains(heading, "SUMMARY"):
			if patient.ClinicalNotes != "" {
				b.WriteString(patient.ClinicalNotes + "\n")
			} else {
				b.WriteString("See individual test interpretations above.\n")
			}

		case strings.Contains(heading, "RECOMMENDATION"):
			b.WriteString("1. Follow-up assessment as clinically indicated\n")
			b.WriteString("2. Consider appropriate interventions based on findings\n")
			b.WriteString("3. Monitor progress over time\n")

		default:
			b.WriteString("See attached materials.\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("_______________________\n")
	b.WriteString("[REDACTED], Psy.D.\n")
	b.WriteString("Licensed Clinical Psychologist\n")
	return b.String()
}
