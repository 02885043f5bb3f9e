package types

import "time"

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxAttempts is the total number of call attempts for transient
	// failures, first try included (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// StyleConfig holds settings for the style profile builder.
type StyleConfig struct {
	// CorpusDir is the directory of example report text files used when
	// importing a corpus from disk.
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// RecencyHalfLife is the age at which an example's weight halves
	// (default 180 days). Older examples contribute less so the profile
	// drifts with the author's recent work.
	RecencyHalfLife time.Duration `json:"recency_half_life" yaml:"recency_half_life"`
}

// GenerationConfig holds settings for the generation stage.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// Timeout bounds a single generation API call (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxOutputTokens is the output budget for the Full variant
	// (default 4000). Short targets at most ShortRatio of it.
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`

	// ShortRatio is the Short-variant fraction of the Full budget
	// (default 0.6).
	ShortRatio float64 `json:"short_ratio" yaml:"short_ratio"`

	// MaxInputChars caps the assembled prompt size (default 24000).
	// Structured test data always fits; attachments are truncated.
	MaxInputChars int `json:"max_input_chars" yaml:"max_input_chars"`

	// RequestsPerMinute rate-limits calls to the generation service
	// (default 10).
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`
}

// RenderConfig holds settings for the document renderer.
type RenderConfig struct {
	// OutputDir is the directory for rendered artifacts (default "output/reports").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ChartWidth and ChartHeight size the rendered chart images in pixels.
	ChartWidth  int `json:"chart_width" yaml:"chart_width"`
	ChartHeight int `json:"chart_height" yaml:"chart_height"`
}

// StoreConfig holds settings for the patient and corpus store.
type StoreConfig struct {
	// DataDir is the directory containing report-engine.db (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// CatalogConfig holds settings for the report catalog.
type CatalogConfig struct {
	// OutputDir is the artifact directory the catalog scans.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxResults is the default listing cap (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Style      StyleConfig      `json:"style" yaml:"style"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Render     RenderConfig     `json:"render" yaml:"render"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
}
