package scoring

import "study-service/internal/models"

// TierConfig defines scoring behavior for one difficulty tier
type TierConfig struct {
	Multiplier      float64 `json:"multiplier"`
	AllottedSeconds int     `json:"allotted_seconds"`
}

// Config holds the scoring policy shared by answer feedback and final grading
type Config struct {
	BasePoints    float64                          `json:"base_points"`
	PassingRatio  float64                          `json:"passing_ratio"`
	MinTimeFactor float64                          `json:"min_time_factor"`
	Tiers         map[models.Difficulty]TierConfig `json:"tiers"`
}

// DefaultConfig returns the standard policy: 10 base points, 70% to pass.
func DefaultConfig() *Config {
	return &Config{
		BasePoints:    10,
		PassingRatio:  0.7,
		MinTimeFactor: 0.5,
		Tiers: map[models.Difficulty]TierConfig{
			models.DifficultyEasy: {
				Multiplier:      1.0,
				AllottedSeconds: 45,
			},
			models.DifficultyMedium: {
				Multiplier:      1.2,
				AllottedSeconds: 60,
			},
			models.DifficultyHard: {
				Multiplier:      1.5,
				AllottedSeconds: 90,
			},
		},
	}
}
