// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package style

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinscribe/report-engine/pkg/types"
)

func TestSegmentSections(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		headings []string
	}{
		{
			name: "all caps headings",
			text: "IDENTIFYING INFORMATION:\nJane, age 9.\n\nTEST RESULTS AND INTERPRETATION:\nScores follow.",
			headings: []string{"IDENTIFYING INFORMATION", "TEST RESULTS AND INTERPRETATION"},
		},
		{
			name:     "markdown headings",
			text:     "# Clinical Summary\nBody.\n## Recommendations\nMore body.",
			headings: []string{"Clinical Summary", "Recommendations"},
		},
		{
			name:     "title case colon headings",
			text:     "Reason for Referral:\nReferred by the school.",
			headings: []string{"Reason for Referral"},
		},
		{
			name:     "preamble before first heading",
			text:     "Confidential document.\n\nSUMMARY:\nAll within normal limits.",
			headings: []string{"", "SUMMARY"},
		},
		{
			name:     "no headings at all",
			text:     "Just a paragraph of narrative text with no structure.",
			headings: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := SegmentSections(tt.text)
			require.Len(t, sections, len(tt.headings))
			for i, h := range tt.headings {
				assert.Equal(t, h, sections[i].Heading)
			}
		})
	}
}

func TestHeadingText(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"SUMMARY AND RECOMMENDATIONS:", "SUMMARY AND RECOMMENDATIONS", true},
		{"BEHAVIORAL OBSERVATIONS", "BEHAVIORAL OBSERVATIONS", true},
		{"## Test Results", "Test Results", true},
		{"Reason for Referral:", "Reason for Referral", true},
		{"IQ", "", false}, // too few letters
		{"He scored well on the test.", "", false},
		{"a lowercase line:", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := headingText(tt.line)
		assert.Equal(t, tt.ok, ok, "line %q", tt.line)
		assert.Equal(t, tt.want, got, "line %q", tt.line)
	}
}

func TestRecencyWeight(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	halfLife := 180 * 24 * time.Hour

	assert.Equal(t, 1.0, recencyWeight(now, now, halfLife))
	assert.Equal(t, 1.0, recencyWeight(now.Add(time.Hour), now, halfLife), "future dates weigh 1")
	assert.InDelta(t, 0.5, recencyWeight(now.Add(-halfLife), now, halfLife), 1e-9)
	assert.InDelta(t, 0.25, recencyWeight(now.Add(-2*halfLife), now, halfLife), 1e-9)
}

const sampleReport = `IDENTIFYING INFORMATION:
The client is a nine year old student referred for evaluation.

TEST RESULTS AND INTERPRETATION:
Cognitive testing revealed average performance across most domains. Working memory emerged as a relative weakness.

SUMMARY AND RECOMMENDATIONS:
Continued classroom accommodations are recommended.`

func TestBuild_PopulatedBucket(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rt := types.ReportType{Audience: types.AudienceSpecialist, Length: types.LengthFull}

	corpus := []types.ExampleReport{
		{ID: "ex1", Text: sampleReport, Type: rt, Authored: now.AddDate(0, -1, 0)},
		{ID: "ex2", Text: sampleReport, Type: rt, Authored: now.AddDate(-2, 0, 0)},
	}

	profile := Build(corpus, now, types.StyleConfig{})
	require.NotNil(t, profile)
	assert.Equal(t, 2, profile.CorpusSize)

	b := profile.Bucket(rt)
	require.NotNil(t, b)
	assert.Equal(t, 2, b.Examples)
	assert.Equal(t, types.ConfidenceHigh, b.Confidence)
	assert.Equal(t, []string{
		"IDENTIFYING INFORMATION",
		"TEST RESULTS AND INTERPRETATION",
		"SUMMARY AND RECOMMENDATIONS",
	}, b.Sections)
	assert.Greater(t, b.AvgSentenceLen, 0.0)
	assert.Greater(t, b.AvgParagraphLen, 0.0)
	assert.Contains(t, b.Lexicon, "cognitive")
	assert.NotContains(t, b.Lexicon, "the", "stopwords are excluded")
}

func TestBuild_RepeatedBuildIsStable(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rt := types.ReportType{Audience: types.AudienceSpecialist, Length: types.LengthFull}
	corpus := []types.ExampleReport{
		{ID: "ex1", Text: sampleReport, Type: rt, Authored: now.AddDate(0, -1, 0)},
		{ID: "ex2", Text: sampleReport, Type: rt, Authored: now.AddDate(-2, 0, 0)},
	}

	first := Build(corpus, now, types.StyleConfig{})
	second := Build(corpus, now, types.StyleConfig{})

	for _, bt := range types.AllReportTypes() {
		a, b := first.Bucket(bt), second.Bucket(bt)
		require.NotNil(t, a)
		require.NotNil(t, b)
		assert.InDelta(t, a.AvgSentenceLen, b.AvgSentenceLen, 1e-9)
		assert.InDelta(t, a.AvgParagraphLen, b.AvgParagraphLen, 1e-9)
		assert.Equal(t, a.Sections, b.Sections)
		require.Len(t, b.Lexicon, len(a.Lexicon))
		for term, weight := range a.Lexicon {
			assert.InDelta(t, weight, b.Lexicon[term], 1e-9, "term %q", term)
		}
	}
}

func TestBuild_FallbackPrefersSameLength(t *testing.T) {
	now := time.Now()
	specialistFull := types.ReportType{Audience: types.AudienceSpecialist, Length: types.LengthFull}
	parentShort := types.ReportType{Audience: types.AudienceParent, Length: types.LengthShort}

	corpus := []types.ExampleReport{
		{ID: "full1", Text: sampleReport, Type: specialistFull, Authored: now},
		{ID: "short1", Text: "SUMMARY:\nBrief note for the family.", Type: parentShort, Authored: now},
	}

	profile := Build(corpus, now, types.StyleConfig{})

	// Every combination has a bucket even though only two had examples.
	for _, rt := range types.AllReportTypes() {
		require.NotNil(t, profile.Bucket(rt), "bucket %s", rt)
	}

	// An empty short bucket borrows from the populated short one, not the
	// larger full one.
	otherShort := profile.Bucket(types.ReportType{Audience: types.AudienceOther, Length: types.LengthShort})
	assert.Equal(t, types.ConfidenceLow, otherShort.Confidence)
	assert.Equal(t, 0, otherShort.Examples)
	assert.Equal(t, []string{"SUMMARY"}, otherShort.Sections)

	// An empty full bucket borrows from the populated full one.
	parentFull := profile.Bucket(types.ReportType{Audience: types.AudienceParent, Length: types.LengthFull})
	assert.Equal(t, types.ConfidenceLow, parentFull.Confidence)
	assert.Contains(t, parentFull.Sections, "TEST RESULTS AND INTERPRETATION")
}

func TestBuild_FallbackCopyIsIndependent(t *testing.T) {
	now := time.Now()
	rt := types.ReportType{Audience: types.AudienceParent, Length: types.LengthFull}
	corpus := []types.ExampleReport{{ID: "ex", Text: sampleReport, Type: rt, Authored: now}}

	profile := Build(corpus, now, types.StyleConfig{})
	src := profile.Bucket(rt)
	copied := profile.Bucket(types.ReportType{Audience: types.AudienceOther, Length: types.LengthFull})

	copied.Lexicon["mutation"] = 99
	assert.NotContains(t, src.Lexicon, "mutation")
}

func TestBuild_EmptyCorpus(t *testing.T) {
	profile := Build(nil, time.Now(), types.StyleConfig{})
	require.NotNil(t, profile)
	assert.Equal(t, 0, profile.CorpusSize)

	for _, rt := range types.AllReportTypes() {
		b := profile.Bucket(rt)
		require.NotNil(t, b, "bucket %s", rt)
		assert.Equal(t, types.ConfidenceLow, b.Confidence)
		assert.Empty(t, b.Sections)
	}
}

func TestBuild_RecentExampleDrivesSectionOrder(t *testing.T) {
	now := time.Now()
	rt := types.ReportType{Audience: types.AudienceSpecialist, Length: types.LengthFull}

	oldStyle := "BACKGROUND:\nOld structure.\n\nFINDINGS:\nOld findings."
	newStyle := "REASON FOR REFERRAL:\nNew structure.\n\nASSESSMENT RESULTS:\nNew results."

	corpus := []types.ExampleReport{
		{ID: "old", Text: oldStyle, Type: rt, Authored: now.AddDate(-5, 0, 0)},
		{ID: "new", Text: newStyle, Type: rt, Authored: now.AddDate(0, 0, -7)},
	}

	profile := Build(corpus, now, types.StyleConfig{})
	b := profile.Bucket(rt)
	assert.Equal(t, []string{"REASON FOR REFERRAL", "ASSESSMENT RESULTS"}, b.Sections)
}

func TestTokens(t *testing.T) {
	got := Tokens("The patient's Working Memory was assessed, and it is low.")
	assert.Equal(t, []string{"patient", "working", "memory", "assessed", "low"}, got)
}

func TestTopKeys(t *testing.T) {
	weights := map[string]float64{"banana": 2, "apple": 2, "cherry": 5, "date": 1}
	assert.Equal(t, []string{"cherry", "apple", "banana"}, topKeys(weights, 3))
}
