package prompt

import (
	"context"

	"github.com/aleister1102/sitecheck/internal/config"
	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
)

// Stats summarizes one generation run.
type Stats struct {
	CacheHits      int
	CacheMisses    int
	UsedFallback   bool
	FallbackReason string
}

// Generator fills defect fix prompts through three tiers: the persistent
// cache, the external LLM in per-page batches, and deterministic templates.
// Every newly generated hint, external or template, is written through to
// the cache.
type Generator struct {
	config config.PromptConfig
	logger zerolog.Logger
	cache  *Cache
	llm    HintSource
}

// GeneratorBuilder constructs a Generator.
type GeneratorBuilder struct {
	config config.PromptConfig
	logger zerolog.Logger
	cache  *Cache
	llm    HintSource
	hasLLM bool
}

// NewGeneratorBuilder creates a new generator builder
func NewGeneratorBuilder(logger zerolog.Logger) *GeneratorBuilder {
	return &GeneratorBuilder{logger: logger}
}

// WithConfig sets the prompt configuration.
func (b *GeneratorBuilder) WithConfig(cfg config.PromptConfig) *GeneratorBuilder {
	b.config = cfg
	return b
}

// WithCache overrides the cache. Used by tests to point at a temp file.
func (b *GeneratorBuilder) WithCache(cache *Cache) *GeneratorBuilder {
	b.cache = cache
	return b
}

// WithHintSource overrides the external tier. Passing nil disables it.
func (b *GeneratorBuilder) WithHintSource(source HintSource) *GeneratorBuilder {
	b.llm = source
	b.hasLLM = true
	return b
}

// Build assembles the generator. Without an explicit hint source, the
// external tier is enabled only when an API key is configured.
func (b *GeneratorBuilder) Build() *Generator {
	cache := b.cache
	if cache == nil {
		cache = NewCache(b.config.CacheFilePath, b.logger)
	}

	llm := b.llm
	if !b.hasLLM && b.config.APIKey != "" {
		llm = NewLLMClient(b.config, b.logger)
	}

	return &Generator{
		config: b.config,
		logger: b.logger.With().Str("component", "PromptGenerator").Logger(),
		cache:  cache,
		llm:    llm,
	}
}

// pendingDefect locates one uncached defect inside the page list.
type pendingDefect struct {
	pageIndex   int
	defectIndex int
	key         string
}

// PopulateFixPrompts fills FixPrompt on every defect across the pages and
// returns the tier counters. Batches are per page; a failed batch falls back
// to templates silently, and the fallback flag is raised only when the
// external tier is unavailable or every batch failed.
func (g *Generator) PopulateFixPrompts(ctx context.Context, pages []models.PageRecord) Stats {
	var stats Stats
	var batches [][]pendingDefect

	for pageIndex := range pages {
		var misses []pendingDefect
		for defectIndex := range pages[pageIndex].Defects {
			defect := &pages[pageIndex].Defects[defectIndex]
			key := CacheKey(*defect)
			if hint, found := g.cache.Get(key); found {
				defect.FixPrompt = hint
				stats.CacheHits++
				continue
			}
			stats.CacheMisses++
			misses = append(misses, pendingDefect{pageIndex, defectIndex, key})
		}
		if len(misses) > 0 {
			batches = append(batches, misses)
		}
	}

	if len(batches) == 0 {
		g.logger.Debug().Int("cache_hits", stats.CacheHits).Msg("All hints served from cache")
		return stats
	}

	if g.llm == nil {
		for _, batch := range batches {
			g.fillTemplates(pages, batch)
		}
		stats.UsedFallback = true
		stats.FallbackReason = "external generator unavailable: no API key configured"
		g.logger.Info().Int("defects", stats.CacheMisses).Msg("Using template hints, external tier disabled")
		return stats
	}

	failedBatches := 0
	for _, batch := range batches {
		if err := g.fillFromLLM(ctx, pages, batch); err != nil {
			g.logger.Warn().Err(err).Int("batch_size", len(batch)).Msg("Hint batch failed, using templates")
			g.fillTemplates(pages, batch)
			failedBatches++
		}
	}

	if failedBatches == len(batches) {
		stats.UsedFallback = true
		stats.FallbackReason = "every external hint batch failed"
	}
	return stats
}

// fillFromLLM resolves one page batch through the external tier and writes
// the hints through to the cache.
func (g *Generator) fillFromLLM(ctx context.Context, pages []models.PageRecord, batch []pendingDefect) error {
	defects := make([]models.Defect, len(batch))
	for i, pending := range batch {
		defects[i] = pages[pending.pageIndex].Defects[pending.defectIndex]
	}

	hints, err := g.llm.GenerateHints(ctx, defects)
	if err != nil {
		return err
	}

	for i, pending := range batch {
		pages[pending.pageIndex].Defects[pending.defectIndex].FixPrompt = hints[i]
		g.cache.Put(pending.key, hints[i])
	}
	return nil
}

// fillTemplates resolves one batch with deterministic templates, also
// written through to the cache.
func (g *Generator) fillTemplates(pages []models.PageRecord, batch []pendingDefect) {
	for _, pending := range batch {
		defect := &pages[pending.pageIndex].Defects[pending.defectIndex]
		hint := TemplateHint(*defect)
		defect.FixPrompt = hint
		g.cache.Put(pending.key, hint)
	}
}
