// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/clinscribe/report-engine/internal/catalog"
	"github.com/clinscribe/report-engine/internal/engine"
	"github.com/clinscribe/report-engine/internal/genclient"
	"github.com/clinscribe/report-engine/internal/render"
	"github.com/clinscribe/report-engine/internal/store"
	"github.com/clinscribe/report-engine/internal/style"
	"github.com/clinscribe/report-engine/pkg/types"
)

// loadConfig assembles the pipeline configuration from the config file,
// environment, and secrets. Zero values fall through to the per-stage
// defaults inside each package.
func loadConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Style: types.StyleConfig{
			CorpusDir:       viper.GetString("style.corpus_dir"),
			RecencyHalfLife: viper.GetDuration("style.recency_half_life"),
		},
		Generation: types.GenerationConfig{
			Timeout:           viper.GetDuration("generation.timeout"),
			MaxOutputTokens:   viper.GetInt("generation.max_output_tokens"),
			ShortRatio:        viper.GetFloat64("generation.short_ratio"),
			MaxInputChars:     viper.GetInt("generation.max_input_chars"),
			RequestsPerMinute: viper.GetInt("generation.requests_per_minute"),
		},
		Render: types.RenderConfig{
			OutputDir:   viper.GetString("render.output_dir"),
			ChartWidth:  viper.GetInt("render.chart_width"),
			ChartHeight: viper.GetInt("render.chart_height"),
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		Catalog: types.CatalogConfig{
			OutputDir:  viper.GetString("catalog.output_dir"),
			MaxResults: viper.GetInt("catalog.max_results"),
		},
	}

	cfg.Generation.Model = viper.GetString("generation.model")
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "claude-sonnet-4-5-20250929"
	}
	cfg.Generation.APIKey = secretDefault("anthropic-api-key", viper.GetString("generation.api_key"))
	cfg.Generation.MaxAttempts = viper.GetInt("generation.max_attempts")

	// The catalog scans whatever directory the renderer writes to unless
	// pointed elsewhere.
	if cfg.Catalog.OutputDir == "" {
		cfg.Catalog.OutputDir = cfg.Render.OutputDir
	}
	return cfg
}

// buildEngine constructs the full pipeline. The caller owns the store and
// must Close it. Without an API key the engine falls back to deterministic
// template generation.
func buildEngine(cfg types.PipelineConfig, logger zerolog.Logger) (*engine.Engine, *store.Store, error) {
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	var gen genclient.Generator
	if cfg.Generation.APIKey != "" {
		gen = genclient.NewClaudeBackend(cfg.Generation, logger)
	} else {
		logger.Warn().Msg("no anthropic-api-key configured, using offline template generation")
	}

	eng := engine.New(
		st.Patients(),
		st.Corpus(),
		style.NewStore(),
		gen,
		render.New(cfg.Render, logger),
		catalog.New(cfg.Catalog, nil),
		cfg,
		logger,
	)
	return eng, st, nil
}
