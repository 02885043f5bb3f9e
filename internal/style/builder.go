// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package style extracts a structural and stylistic signature from a corpus
// of previously authored reports, bucketed by audience and length variant,
// and holds the active profile behind an atomically swappable store.
package style

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/clinscribe/report-engine/pkg/types"
)

const defaultHalfLife = 180 * 24 * time.Hour

// maxLexiconTerms caps the per-bucket lexicon at the most frequent terms.
const maxLexiconTerms = 200

// maxHeadings caps the per-bucket heading vocabulary.
const maxHeadings = 15

// stopwords are excluded from lexicon counting.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"with": true, "his": true, "her": true, "has": true, "had": true,
	"this": true, "that": true, "from": true, "were": true, "which": true,
	"not": true, "but": true, "all": true, "can": true, "have": true,
	"been": true, "their": true, "they": true, "she": true, "him": true,
	"will": true, "would": true, "there": true, "these": true, "than": true,
	"when": true, "who": true, "also": true, "may": true, "into": true,
	"upon": true, "within": true, "during": true, "such": true, "its": true,
}

// Build constructs a StyleProfile from the corpus. Examples are grouped by
// report type; each example's contribution decays exponentially with its age
// relative to now. Empty buckets are backfilled from the nearest available
// bucket (same length, any audience; else any bucket) and marked Low
// confidence. An empty corpus yields a profile with all buckets Low and
// empty lexicons; it is never an error.
func Build(corpus []types.ExampleReport, now time.Time, cfg types.StyleConfig) *types.StyleProfile {
	halfLife := cfg.RecencyHalfLife
	if halfLife <= 0 {
		halfLife = defaultHalfLife
	}

	grouped := make(map[types.ReportType][]types.ExampleReport)
	for _, ex := range corpus {
		grouped[ex.Type] = append(grouped[ex.Type], ex)
	}

	profile := &types.StyleProfile{
		Buckets:    make(map[types.ReportType]*types.BucketProfile),
		CorpusSize: len(corpus),
		BuiltAt:    now,
	}

	for _, rt := range types.AllReportTypes() {
		if examples := grouped[rt]; len(examples) > 0 {
			profile.Buckets[rt] = buildBucket(examples, now, halfLife)
		}
	}

	// Backfill empty buckets, preferring a sibling with the same length.
	for _, rt := range types.AllReportTypes() {
		if profile.Buckets[rt] != nil {
			continue
		}
		profile.Buckets[rt] = fallbackBucket(profile, rt)
	}

	return profile
}

// buildBucket aggregates the profile for one group of same-type examples.
func buildBucket(examples []types.ExampleReport, now time.Time, halfLife time.Duration) *types.BucketProfile {
	bucket := &types.BucketProfile{
		Lexicon:    make(map[string]float64),
		Examples:   len(examples),
		Confidence: types.ConfidenceHigh,
	}

	headingWeight := make(map[string]float64)
	var (
		weightSum      float64
		sentenceSum    float64
		paragraphSum   float64
		bestWeight     float64
		bestSections   []string
	)

	for _, ex := range examples {
		w := recencyWeight(ex.Authored, now, halfLife)
		weightSum += w

		sections := SegmentSections(ex.Text)
		var headings []string
		for _, sec := range sections {
			if sec.Heading == "" {
				continue
			}
			headings = append(headings, sec.Heading)
			headingWeight[sec.Heading] += w
		}
		if w > bestWeight {
			bestWeight = w
			bestSections = headings
		}

		sentenceSum += w * avgSentenceLength(ex.Text)
		paragraphSum += w * avgParagraphLength(ex.Text)

		for _, term := range tokenize(ex.Text) {
			bucket.Lexicon[term] += w
		}
	}

	if weightSum > 0 {
		bucket.AvgSentenceLen = sentenceSum / weightSum
		bucket.AvgParagraphLen = paragraphSum / weightSum
	}
	bucket.Sections = bestSections
	bucket.Headings = topKeys(headingWeight, maxHeadings)
	trimLexicon(bucket.Lexicon, maxLexiconTerms)

	return bucket
}

// fallbackBucket copies the nearest available bucket for an empty one:
// same length any audience first, then any bucket, preferring the one built
// from the most examples. The copy carries Low confidence.
func fallbackBucket(profile *types.StyleProfile, rt types.ReportType) *types.BucketProfile {
	pick := func(sameLengthOnly bool) *types.BucketProfile {
		var best *types.BucketProfile
		for _, cand := range types.AllReportTypes() {
			b := profile.Buckets[cand]
			if b == nil || b.Examples == 0 {
				continue
			}
			if sameLengthOnly && cand.Length != rt.Length {
				continue
			}
			if best == nil || b.Examples > best.Examples {
				best = b
			}
		}
		return best
	}

	src := pick(true)
	if src == nil {
		src = pick(false)
	}
	if src == nil {
		// Entire corpus is empty: a degraded bucket callers can still use.
		return &types.BucketProfile{
			Lexicon:    map[string]float64{},
			Confidence: types.ConfidenceLow,
		}
	}

	copied := *src
	copied.Examples = 0
	copied.Confidence = types.ConfidenceLow
	copied.Sections = append([]string(nil), src.Sections...)
	copied.Headings = append([]string(nil), src.Headings...)
	copied.Lexicon = make(map[string]float64, len(src.Lexicon))
	for k, v := range src.Lexicon {
		copied.Lexicon[k] = v
	}
	return &copied
}

// recencyWeight computes the exponential decay weight for an example authored
// at t, halving every halfLife. Future-dated examples weigh 1.
func recencyWeight(t, now time.Time, halfLife time.Duration) float64 {
	age := now.Sub(t)
	if age <= 0 {
		return 1
	}
	return math.Exp2(-float64(age) / float64(halfLife))
}

// Section is a chunk of report text under one heading.
type Section struct {
	Heading string
	Body    string
}

// SegmentSections splits report text into sections on heading boundaries.
// A heading is an ALL-CAPS line, a "Title Case:" line, or a Markdown #/##
// heading; the grammar matches both the authored corpus and generated text.
func SegmentSections(text string) []Section {
	lines := strings.Split(text, "\n")
	var sections []Section
	currentHeading := ""
	var bodyLines []string

	flush := func() {
		body := strings.Join(bodyLines, "\n")
		if currentHeading != "" || strings.TrimSpace(body) != "" {
			sections = append(sections, Section{Heading: currentHeading, Body: body})
		}
		bodyLines = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if h, ok := headingText(trimmed); ok {
			flush()
			currentHeading = h
			continue
		}
		bodyLines = append(bodyLines, line)
	}

	flush()
	return sections
}

// headingText reports whether a line is a section heading and returns the
// normalized heading text.
func headingText(line string) (string, bool) {
	if line == "" {
		return "", false
	}

	if strings.HasPrefix(line, "#") {
		h := strings.TrimSpace(strings.TrimLeft(line, "#"))
		if h == "" {
			return "", false
		}
		return strings.TrimSuffix(h, ":"), true
	}

	if isAllCapsHeading(line) {
		return strings.TrimSuffix(line, ":"), true
	}

	// "Reason for Referral:" style subheadings.
	if strings.HasSuffix(line, ":") && len(line) <= 60 {
		first := []rune(line)[0]
		if unicode.IsUpper(first) && !strings.Contains(strings.TrimSuffix(line, ":"), ":") {
			return strings.TrimSuffix(line, ":"), true
		}
	}

	return "", false
}

// isAllCapsHeading reports whether a line is an ALL-CAPS heading such as
// "TEST RESULTS AND INTERPRETATION:". It requires at least three letters
// and no lowercase.
func isAllCapsHeading(line string) bool {
	letters := 0
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

// avgSentenceLength returns the mean number of words per sentence.
func avgSentenceLength(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0
	}
	words := 0
	for _, s := range sentences {
		words += len(strings.Fields(s))
	}
	return float64(words) / float64(len(sentences))
}

// avgParagraphLength returns the mean number of sentences per paragraph.
func avgParagraphLength(text string) float64 {
	paragraphs := 0
	sentences := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		paragraphs++
		sentences += len(splitSentences(p))
	}
	if paragraphs == 0 {
		return 0
	}
	return float64(sentences) / float64(paragraphs)
}

// splitSentences splits text on sentence-ending punctuation.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); len(strings.Fields(s)) > 0 {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); len(strings.Fields(s)) > 1 {
		sentences = append(sentences, s)
	}
	return sentences
}

// Tokens returns the lexicon tokens of text: lowercased words of three or
// more letters, stopwords excluded. The prompt assembler uses the same
// tokenization when scoring exemplar overlap.
func Tokens(text string) []string {
	return tokenize(text)
}

// tokenize lowercases the text and returns words of three or more letters
// that are not stopwords.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		word := b.String()
		b.Reset()
		if len(word) >= 3 && !stopwords[word] {
			tokens = append(tokens, word)
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// topKeys returns up to n keys sorted by descending weight, ties broken
// alphabetically for determinism.
func topKeys(weights map[string]float64, n int) []string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if weights[keys[i]] != weights[keys[j]] {
			return weights[keys[i]] > weights[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// trimLexicon drops all but the n most frequent terms in place.
func trimLexicon(lexicon map[string]float64, n int) {
	if len(lexicon) <= n {
		return
	}
	keep := topKeys(lexicon, n)
	kept := make(map[string]bool, n)
	for _, k := range keep {
		kept[k] = true
	}
	for k := range lexicon {
		if !kept[k] {
			delete(lexicon, k)
		}
	}
}
