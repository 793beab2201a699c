// Readergraph - Reading Affinity and Book Recommendation Engine
// Copyright 2026 Readergraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/readergraph/readergraph

package affinity

import (
	"fmt"
	"time"
)

// Config contains all configuration for the affinity engine. Every scoring
// constant is explicit here; none of the score math reads hidden literals.
type Config struct {
	// StatusWeights is the per-status weight table for tag aggregation.
	StatusWeights StatusWeights `json:"status_weights" koanf:"status_weights"`

	// Scoring contains the compatibility and ranking constants.
	Scoring ScoringConfig `json:"scoring" koanf:"scoring"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains the opt-in tag-weight memoization parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// ScoringConfig contains the scoring constants.
type ScoringConfig struct {
	// TagScoreMax is the maximum contribution of tag overlap to the
	// compatibility score. Default: 80.
	TagScoreMax int `json:"tag_score_max" koanf:"tag_score_max"`

	// SharedBookPoints is the per-book contribution of catalog overlap.
	// Default: 5.
	SharedBookPoints int `json:"shared_book_points" koanf:"shared_book_points"`

	// SharedBookMax caps the catalog-overlap contribution. Default: 20.
	SharedBookMax int `json:"shared_book_max" koanf:"shared_book_max"`

	// BookBlendWeight is the weight of the normalized per-book affinity in
	// the combined score. Default: 0.6.
	BookBlendWeight float64 `json:"book_blend_weight" koanf:"book_blend_weight"`

	// CompatBlendWeight is the weight of reader compatibility in the
	// combined score. Default: 0.4.
	CompatBlendWeight float64 `json:"compat_blend_weight" koanf:"compat_blend_weight"`

	// RatingBonus is added when the source reader rated the candidate at or
	// above RatingBonusMin. Default: 10.
	RatingBonus int `json:"rating_bonus" koanf:"rating_bonus"`

	// RatingBonusMin is the minimum source rating that earns the bonus.
	// Default: 4.
	RatingBonusMin float64 `json:"rating_bonus_min" koanf:"rating_bonus_min"`

	// ReasonTagLimit caps how many matching tag names appear in a
	// recommendation reason. Default: 3.
	ReasonTagLimit int `json:"reason_tag_limit" koanf:"reason_tag_limit"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the default number of recommendations to return.
	// Default: 6.
	DefaultK int `json:"default_k" koanf:"default_k"`

	// MaxK is the maximum allowed K value. Default: 50.
	MaxK int `json:"max_k" koanf:"max_k"`

	// SimilarLimit is the default length of a similar-books ranking.
	// Default: 6.
	SimilarLimit int `json:"similar_limit" koanf:"similar_limit"`
}

// CacheConfig contains the tag-weight memoization parameters. The cache is
// an explicit architectural addition for high call volumes; with it disabled
// every request redoes the full aggregation from the current snapshot.
type CacheConfig struct {
	// Enabled controls whether per-reader weight maps are memoized.
	// Default: false.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is how long a memoized weight map stays valid. Default: 30s.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// MaxEntries caps the number of memoized readers. Default: 1024.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`
}

// DefaultConfig returns a Config with the standard scoring constants.
func DefaultConfig() *Config {
	return &Config{
		StatusWeights: DefaultStatusWeights(),
		Scoring: ScoringConfig{
			TagScoreMax:       80,
			SharedBookPoints:  5,
			SharedBookMax:     20,
			BookBlendWeight:   0.6,
			CompatBlendWeight: 0.4,
			RatingBonus:       10,
			RatingBonusMin:    4,
			ReasonTagLimit:    3,
		},
		Limits: LimitsConfig{
			DefaultK:     6,
			MaxK:         50,
			SimilarLimit: 6,
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTL:        30 * time.Second,
			MaxEntries: 1024,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.StatusWeights) == 0 {
		return fmt.Errorf("status_weights must not be empty")
	}
	for status, w := range c.StatusWeights {
		if w < 0 {
			return fmt.Errorf("status_weights[%s] must be non-negative, got %d", status, w)
		}
	}

	if c.Scoring.TagScoreMax < 0 || c.Scoring.TagScoreMax > 100 {
		return fmt.Errorf("scoring.tag_score_max must be in [0, 100], got %d", c.Scoring.TagScoreMax)
	}
	if c.Scoring.SharedBookPoints < 0 {
		return fmt.Errorf("scoring.shared_book_points must be non-negative, got %d", c.Scoring.SharedBookPoints)
	}
	if c.Scoring.SharedBookMax < 0 || c.Scoring.SharedBookMax > 100 {
		return fmt.Errorf("scoring.shared_book_max must be in [0, 100], got %d", c.Scoring.SharedBookMax)
	}
	if c.Scoring.BookBlendWeight < 0 || c.Scoring.BookBlendWeight > 1 {
		return fmt.Errorf("scoring.book_blend_weight must be in [0, 1], got %f", c.Scoring.BookBlendWeight)
	}
	if c.Scoring.CompatBlendWeight < 0 || c.Scoring.CompatBlendWeight > 1 {
		return fmt.Errorf("scoring.compat_blend_weight must be in [0, 1], got %f", c.Scoring.CompatBlendWeight)
	}
	if c.Scoring.RatingBonus < 0 {
		return fmt.Errorf("scoring.rating_bonus must be non-negative, got %d", c.Scoring.RatingBonus)
	}
	if c.Scoring.ReasonTagLimit < 1 {
		return fmt.Errorf("scoring.reason_tag_limit must be positive, got %d", c.Scoring.ReasonTagLimit)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.SimilarLimit < 1 {
		return fmt.Errorf("limits.similar_limit must be positive, got %d", c.Limits.SimilarLimit)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive when cache is enabled, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	weights := make(StatusWeights, len(c.StatusWeights))
	for k, v := range c.StatusWeights {
		weights[k] = v
	}

	return &Config{
		StatusWeights: weights,
		Scoring:       c.Scoring,
		Limits:        c.Limits,
		Cache:         c.Cache,
	}
}
