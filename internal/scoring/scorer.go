package scoring

import (
	"math"
	"sort"
	"strings"

	"study-service/internal/models"
)

// Scorer computes per-answer points and final grades
type Scorer struct {
	config *Config
}

// NewScorer creates a new scorer
func NewScorer(config *Config) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Scorer{config: config}
}

func (s *Scorer) Config() *Config {
	return s.config
}

func (s *Scorer) tier(d models.Difficulty) TierConfig {
	if tc, ok := s.config.Tiers[d]; ok {
		return tc
	}
	return s.config.Tiers[models.DifficultyMedium]
}

// AllottedTime returns the time window in seconds for a difficulty
func (s *Scorer) AllottedTime(d models.Difficulty) int {
	return s.tier(d).AllottedSeconds
}

// MaxPoints is what a correct answer within the allotted time earns
func (s *Scorer) MaxPoints(d models.Difficulty) float64 {
	return Round2(s.config.BasePoints * s.tier(d).Multiplier)
}

// TimeFactor is 1.0 inside the allotted window and decays linearly to the
// configured floor at three times the window.
func (s *Scorer) TimeFactor(d models.Difficulty, timeSpent int) float64 {
	allotted := s.AllottedTime(d)
	if allotted <= 0 || timeSpent <= allotted {
		return 1.0
	}
	over := float64(timeSpent-allotted) / float64(2*allotted)
	factor := 1.0 - (1.0-s.config.MinTimeFactor)*over
	if factor < s.config.MinTimeFactor {
		return s.config.MinTimeFactor
	}
	return factor
}

// Points calculates points for one answer. Skipped or incorrect answers earn 0.
func (s *Scorer) Points(d models.Difficulty, timeSpent int, isCorrect, skipped bool) float64 {
	if skipped || !isCorrect {
		return 0
	}
	return Round2(s.config.BasePoints * s.tier(d).Multiplier * s.TimeFactor(d, timeSpent))
}

// FinalScore sums earned and attainable points over a session's questions.
func (s *Scorer) FinalScore(questions []models.SessionQuestion) (score, maxScore float64) {
	for _, q := range questions {
		score += q.PointsEarned
		maxScore += s.MaxPoints(q.Difficulty)
	}
	return Round2(score), Round2(maxScore)
}

// MaxScore sums attainable points for a question set.
func (s *Scorer) MaxScore(questions []models.SessionQuestion) float64 {
	_, max := s.FinalScore(questions)
	return max
}

// PassingScore is the policy threshold for a given attainable total
func (s *Scorer) PassingScore(maxScore float64) float64 {
	return Round2(maxScore * s.config.PassingRatio)
}

// NormalizeAnswer trims, upper-cases, de-duplicates and sorts answer letters.
func NormalizeAnswer(answer []string) []string {
	seen := make(map[string]bool, len(answer))
	out := make([]string, 0, len(answer))
	for _, a := range answer {
		a = strings.ToUpper(strings.TrimSpace(a))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// IsCorrect reports set equality of the normalized answers. An empty answer
// or an empty key is never correct.
func IsCorrect(answer, correct []string) bool {
	a := NormalizeAnswer(answer)
	c := NormalizeAnswer(correct)
	if len(a) == 0 || len(c) == 0 || len(a) != len(c) {
		return false
	}
	for i := range a {
		if a[i] != c[i] {
			return false
		}
	}
	return true
}

// SafePercent returns num/den*100, or 0 when den is not positive.
func SafePercent(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	v := num / den * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Round2(v)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
