// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt assembles generation requests from patient data, report
// request parameters, and the active style profile. Assembly is
// deterministic: identical inputs yield an identical prompt.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/clinscribe/report-engine/internal/style"
	"github.com/clinscribe/report-engine/pkg/types"
)

const (
	defaultMaxOutputTokens = 4000
	defaultShortRatio      = 0.6
	defaultMaxInputChars   = 24000

	// maxExemplars caps the style exemplars embedded in a prompt.
	maxExemplars = 3
)

// reportPromptTmpl teaches the model the author's style through exemplars,
// then supplies the patient's structured data and writing instructions.
var reportPromptTmpl = template.Must(template.New("report").Parse(`You are a clinical psychologist writing a psychological assessment report.

Write for this audience: {{.AudienceRegister}}
{{.LengthInstruction}}
{{- if .LowConfidence}}
Note: few or no prior reports of this exact type exist; the examples below are the closest available style references.
{{- end}}
{{- if .Sections}}
Organize the report using section headings like these, in this order: {{.SectionList}}.
{{- end}}
{{- if .Exemplars}}

EXAMPLE REPORTS (showing the author's writing style, structure, tone, and format):
{{range .Exemplars}}
---EXAMPLE REPORT---

{{.}}
{{end}}
---END EXAMPLES---
{{- end}}

Now write a NEW report for this patient, in the same style, structure, tone, and formatting as the examples:

PATIENT DATA:
{{.PatientData}}
{{- if .Attachments}}

SUPPLEMENTARY MATERIALS (extracted from uploaded files, may be truncated):
{{.Attachments}}
{{- end}}

IMPORTANT INSTRUCTIONS:
1. Match the writing style, tone, and formality of the example reports
2. Use similar section headers and organization
3. Use similar language patterns and clinical terminology
4. Include all test data given above and interpret each result
5. Make appropriate recommendations
6. Use [REDACTED] for the examiner name and license information at the end
{{- if .NoTestResults}}
7. The patient record contains NO test results: state clearly that the available data was insufficient for interpretation. Do not invent scores or findings.
{{- end}}

Write the complete report now:`))

type promptData struct {
	AudienceRegister  string
	LengthInstruction string
	LowConfidence     bool
	Sections          []string
	SectionList       string
	Exemplars         []string
	PatientData       string
	Attachments       string
	NoTestResults     bool
}

// Assemble builds the generation prompt for one request. The corpus supplies
// exemplar candidates; the profile's target bucket supplies the lexicon used
// to rank them. Structured test data is always serialized in full; attachment
// text is truncated to whatever input budget remains.
func Assemble(patient *types.PatientRecord, req types.ReportRequest, profile *types.StyleProfile, corpus []types.ExampleReport, cfg types.GenerationConfig) (types.Prompt, error) {
	bucket := profile.Bucket(req.Type)
	if bucket == nil {
		return types.Prompt{}, fmt.Errorf("style profile has no bucket for %s", req.Type)
	}

	maxOutput := cfg.MaxOutputTokens
	if maxOutput <= 0 {
		maxOutput = defaultMaxOutputTokens
	}
	ratio := cfg.ShortRatio
	if ratio <= 0 || ratio > 1 {
		ratio = defaultShortRatio
	}
	maxInput := cfg.MaxInputChars
	if maxInput <= 0 {
		maxInput = defaultMaxInputChars
	}

	budget := maxOutput
	lengthInstruction := fmt.Sprintf("Write the FULL-length report, up to %d tokens. Be thorough.", budget)
	if req.Type.Length == types.LengthShort {
		budget = int(float64(maxOutput) * ratio)
		lengthInstruction = fmt.Sprintf("Write the SHORT variant, up to %d tokens. Cover every section briefly; omit elaboration.", budget)
	}

	patientJSON, err := json.MarshalIndent(patient, "", "  ")
	if err != nil {
		return types.Prompt{}, fmt.Errorf("serializing patient data: %w", err)
	}

	data := promptData{
		AudienceRegister:  audienceRegister(req.Type.Audience),
		LengthInstruction: lengthInstruction,
		LowConfidence:     bucket.Confidence == types.ConfidenceLow,
		Sections:          bucket.Sections,
		SectionList:       strings.Join(bucket.Sections, "; "),
		PatientData:       string(patientJSON),
		NoTestResults:     len(patient.Tests) == 0,
	}

	// The instructions and structured data are non-negotiable; exemplars
	// and attachments share whatever input budget is left, in that order.
	fixed, err := renderPrompt(data)
	if err != nil {
		return types.Prompt{}, err
	}
	remaining := maxInput - len(fixed)

	exemplars := selectExemplars(bucket, corpus)
	var exemplarIDs []string
	perExemplar := 0
	if len(exemplars) > 0 && remaining > 0 {
		perExemplar = remaining / (len(exemplars) + 1)
	}
	for _, ex := range exemplars {
		text := truncate(ex.Text, perExemplar)
		if strings.TrimSpace(text) == "" {
			continue
		}
		data.Exemplars = append(data.Exemplars, text)
		exemplarIDs = append(exemplarIDs, ex.ID)
		remaining -= len(text)
	}

	if remaining > 0 {
		data.Attachments = attachmentText(patient.Attachments, remaining)
	}

	text, err := renderPrompt(data)
	if err != nil {
		return types.Prompt{}, err
	}

	return types.Prompt{
		Text:            text,
		MaxOutputTokens: budget,
		ExemplarIDs:     exemplarIDs,
	}, nil
}

func renderPrompt(data promptData) (string, error) {
	var buf bytes.Buffer
	if err := reportPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// audienceRegister describes the writing register for each audience.
func audienceRegister(a types.Audience) string {
	switch a {
	case types.AudienceParent:
		return "the patient's parents. Use plain, warm language; explain every clinical term in everyday words."
	case types.AudienceSpecialist:
		return "a fellow specialist. Use precise clinical terminology, standard scores, and normative framing."
	case types.AudienceOther:
		return "a general professional reader (teachers, case workers). Use professional but non-technical language."
	}
	return "a general professional reader."
}

// selectExemplars ranks corpus examples by overlap between the target
// bucket's lexicon and each example's tokens, highest first, capped at
// maxExemplars. Ordering is fully deterministic: overlap score, then
// authored date (newest first), then ID.
func selectExemplars(bucket *types.BucketProfile, corpus []types.ExampleReport) []types.ExampleReport {
	type scored struct {
		ex    types.ExampleReport
		score float64
	}
	candidates := make([]scored, 0, len(corpus))
	for _, ex := range corpus {
		candidates = append(candidates, scored{ex: ex, score: lexiconOverlap(bucket.Lexicon, ex.Text)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if !candidates[i].ex.Authored.Equal(candidates[j].ex.Authored) {
			return candidates[i].ex.Authored.After(candidates[j].ex.Authored)
		}
		return candidates[i].ex.ID < candidates[j].ex.ID
	})

	n := len(candidates)
	if n > maxExemplars {
		n = maxExemplars
	}
	out := make([]types.ExampleReport, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, c.ex)
	}
	return out
}

// lexiconOverlap scores a candidate text against a bucket lexicon: the sum
// of lexicon weights over the candidate's tokens, normalized by token count
// so long examples gain no advantage.
func lexiconOverlap(lexicon map[string]float64, text string) float64 {
	tokens := style.Tokens(text)
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tokens {
		sum += lexicon[t]
	}
	return sum / float64(len(tokens))
}

// attachmentText concatenates attachment texts, truncating to at most limit
// characters. Structured test data has already claimed its budget; free text
// only ever fills what remains.
func attachmentText(attachments []types.Attachment, limit int) string {
	var b strings.Builder
	for _, a := range attachments {
		if b.Len() >= limit {
			break
		}
		entry := fmt.Sprintf("--- %s ---\n%s\n", a.Name, a.Text)
		if b.Len()+len(entry) > limit {
			entry = truncate(entry, limit-b.Len())
		}
		b.WriteString(entry)
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune,
// backing up to the nearest rune boundary.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
