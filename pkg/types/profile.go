// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Confidence indicates how well a profile bucket is supported by examples.
type Confidence string

const (
	// ConfidenceHigh means the bucket was built from at least one example
	// of its own report type.
	ConfidenceHigh Confidence = "high"

	// ConfidenceLow means the bucket was backfilled from a fallback bucket
	// or an empty corpus.
	ConfidenceLow Confidence = "low"
)

// BucketProfile is the stylistic signature extracted for one report type.
type BucketProfile struct {
	// Sections is the section ordering observed in the bucket's examples,
	// taken from the most heavily weighted example.
	Sections []string `json:"sections" yaml:"sections"`

	// Headings is the bucket's heading vocabulary, most frequent first.
	Headings []string `json:"headings" yaml:"headings"`

	// AvgSentenceLen is the recency-weighted mean sentence length in words.
	AvgSentenceLen float64 `json:"avg_sentence_len" yaml:"avg_sentence_len"`

	// AvgParagraphLen is the recency-weighted mean paragraph length in sentences.
	AvgParagraphLen float64 `json:"avg_paragraph_len" yaml:"avg_paragraph_len"`

	// Lexicon maps terms to recency-weighted frequencies, stopwords excluded.
	Lexicon map[string]float64 `json:"lexicon" yaml:"lexicon"`

	// Examples is the number of corpus examples that contributed directly.
	// Zero for backfilled buckets.
	Examples int `json:"examples" yaml:"examples"`

	// Confidence is High when Examples > 0, Low otherwise.
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// StyleProfile is the full per-bucket stylistic signature of the corpus.
// A profile is built wholesale and installed atomically; it is never
// mutated after construction.
type StyleProfile struct {
	// Buckets maps every report type to its profile. All six keys are
	// always present after a build.
	Buckets map[ReportType]*BucketProfile `json:"-" yaml:"-"`

	// CorpusSize is the number of examples the profile was built from.
	CorpusSize int `json:"corpus_size" yaml:"corpus_size"`

	// BuiltAt records when the profile was built.
	BuiltAt time.Time `json:"built_at" yaml:"built_at"`
}

// Bucket returns the profile for a report type. Buckets always contains an
// entry for every type after a build; the nil check guards a zero-value profile.
func (p *StyleProfile) Bucket(t ReportType) *BucketProfile {
	if p == nil || p.Buckets == nil {
		return nil
	}
	return p.Buckets[t]
}
