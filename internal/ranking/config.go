package ranking

// RankingConfig holds weights and limits for chunk ranking.
type RankingConfig struct {
	ContentWeight     float64 `yaml:"content_weight"`      // default: 1.0
	TitleWeight       float64 `yaml:"title_weight"`        // default: 2.0
	MinWordLength     int     `yaml:"min_word_length"`     // default: 3
	DefaultMaxResults int     `yaml:"default_max_results"` // default: 3
}

// DefaultRankingConfig returns the default configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		ContentWeight:     1.0,
		TitleWeight:       2.0,
		MinWordLength:     3,
		DefaultMaxResults: 3,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	d := DefaultRankingConfig()
	if c.ContentWeight == 0 {
		c.ContentWeight = d.ContentWeight
	}
	if c.TitleWeight == 0 {
		c.TitleWeight = d.TitleWeight
	}
	if c.MinWordLength == 0 {
		c.MinWordLength = d.MinWordLength
	}
	if c.DefaultMaxResults == 0 {
		c.DefaultMaxResults = d.DefaultMaxResults
	}
}
