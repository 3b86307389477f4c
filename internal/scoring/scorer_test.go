package scoring

import (
	"math"
	"testing"

	"study-service/internal/models"
)

func TestIsCorrect(t *testing.T) {
	testCases := []struct {
		name     string
		answer   []string
		correct  []string
		expected bool
	}{
		{"single match", []string{"A"}, []string{"A"}, true},
		{"order insensitive", []string{"D", "B"}, []string{"B", "D"}, true},
		{"duplicate insensitive", []string{"B", "B", "D"}, []string{"D", "B"}, true},
		{"case and space insensitive", []string{" b ", "d"}, []string{"B", "D"}, true},
		{"subset", []string{"B"}, []string{"B", "D"}, false},
		{"superset", []string{"A", "B", "D"}, []string{"B", "D"}, false},
		{"wrong letter", []string{"C"}, []string{"A"}, false},
		{"empty answer", []string{}, []string{"A"}, false},
		{"empty key", []string{"A"}, nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCorrect(tc.answer, tc.correct); got != tc.expected {
				t.Errorf("IsCorrect(%v, %v) = %v, expected %v", tc.answer, tc.correct, got, tc.expected)
			}
		})
	}
}

func TestPointsCalculation(t *testing.T) {
	scorer := NewScorer(nil)

	testCases := []struct {
		name           string
		difficulty     models.Difficulty
		timeSpent      int
		isCorrect      bool
		skipped        bool
		expectedPoints float64
	}{
		{"easy correct in time", models.DifficultyEasy, 30, true, false, 10.0},
		{"medium correct in time", models.DifficultyMedium, 30, true, false, 12.0},
		{"hard correct in time", models.DifficultyHard, 30, true, false, 15.0},
		{"easy at double window", models.DifficultyEasy, 90, true, false, 7.5},
		{"easy far over window", models.DifficultyEasy, 1000, true, false, 5.0},
		{"hard incorrect", models.DifficultyHard, 10, false, false, 0.0},
		{"medium skipped", models.DifficultyMedium, 10, true, true, 0.0},
		{"unknown tier scores as medium", models.Difficulty("expert"), 10, true, false, 12.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			points := scorer.Points(tc.difficulty, tc.timeSpent, tc.isCorrect, tc.skipped)
			if math.Abs(points-tc.expectedPoints) > 0.01 {
				t.Errorf("Expected points %.2f, got %.2f", tc.expectedPoints, points)
			}
		})
	}
}

func TestScoreMonotonicAcrossDifficulty(t *testing.T) {
	scorer := NewScorer(nil)

	for _, timeSpent := range []int{0, 30, 45, 60, 75, 90, 120, 200, 500} {
		easy := scorer.Points(models.DifficultyEasy, timeSpent, true, false)
		medium := scorer.Points(models.DifficultyMedium, timeSpent, true, false)
		hard := scorer.Points(models.DifficultyHard, timeSpent, true, false)

		if medium < easy {
			t.Errorf("t=%d: medium %.2f scored less than easy %.2f", timeSpent, medium, easy)
		}
		if hard < medium {
			t.Errorf("t=%d: hard %.2f scored less than medium %.2f", timeSpent, hard, medium)
		}
	}
}

func TestFinalScoreMatchesAnswerPoints(t *testing.T) {
	scorer := NewScorer(nil)

	questions := []models.SessionQuestion{
		{Difficulty: models.DifficultyEasy, PointsEarned: scorer.Points(models.DifficultyEasy, 30, true, false)},
		{Difficulty: models.DifficultyMedium, PointsEarned: scorer.Points(models.DifficultyMedium, 30, true, false)},
		{Difficulty: models.DifficultyHard},
	}

	score, maxScore := scorer.FinalScore(questions)
	if score != 22.0 {
		t.Errorf("Expected score 22.00, got %.2f", score)
	}
	if maxScore != 37.0 {
		t.Errorf("Expected max score 37.00, got %.2f", maxScore)
	}
	if passing := scorer.PassingScore(maxScore); passing != 25.9 {
		t.Errorf("Expected passing score 25.90, got %.2f", passing)
	}
}

func TestSafePercent(t *testing.T) {
	if got := SafePercent(3, 0); got != 0 {
		t.Errorf("Expected 0 for zero denominator, got %f", got)
	}
	if got := SafePercent(1, 3); got != 33.33 {
		t.Errorf("Expected 33.33, got %f", got)
	}
	if got := SafePercent(0, 0); math.IsNaN(got) {
		t.Error("Expected no NaN")
	}
}
