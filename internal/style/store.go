// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package style

import (
	"sort"
	"sync/atomic"

	"github.com/clinscribe/report-engine/pkg/types"
)

// Store holds the currently active style profile. A retrain builds a new
// profile off to the side and installs it with a single atomic swap, so
// readers never observe a partially rebuilt profile and the read path takes
// no lock. A generation request keeps the snapshot it read for its whole
// lifetime, even if a retrain completes mid-flight.
type Store struct {
	current atomic.Pointer[types.StyleProfile]
}

// NewStore returns an empty profile store. Current returns nil until the
// first Install.
func NewStore() *Store {
	return &Store{}
}

// Current returns the active profile snapshot, or nil if none is installed.
func (s *Store) Current() *types.StyleProfile {
	return s.current.Load()
}

// Install atomically replaces the active profile. The previous snapshot
// stays valid for requests already holding it.
func (s *Store) Install(p *types.StyleProfile) {
	s.current.Store(p)
}

// BucketSummary describes one bucket in a training summary.
type BucketSummary struct {
	Type       string           `json:"type" yaml:"type"`
	Examples   int              `json:"examples" yaml:"examples"`
	Confidence types.Confidence `json:"confidence" yaml:"confidence"`
	Sections   int              `json:"sections" yaml:"sections"`
	Terms      int              `json:"terms" yaml:"terms"`
}

// Summary reports the outcome of a training run.
type Summary struct {
	CorpusSize int             `json:"corpus_size" yaml:"corpus_size"`
	Buckets    []BucketSummary `json:"buckets" yaml:"buckets"`
}

// Summarize builds a training summary in a stable bucket order.
func Summarize(p *types.StyleProfile) *Summary {
	s := &Summary{CorpusSize: p.CorpusSize}
	for _, rt := range types.AllReportTypes() {
		b := p.Bucket(rt)
		if b == nil {
			continue
		}
		s.Buckets = append(s.Buckets, BucketSummary{
			Type:       rt.String(),
			Examples:   b.Examples,
			Confidence: b.Confidence,
			Sections:   len(b.Sections),
			Terms:      len(b.Lexicon),
		})
	}
	sort.SliceStable(s.Buckets, func(i, j int) bool {
		return s.Buckets[i].Type < s.Buckets[j].Type
	})
	return s
}
