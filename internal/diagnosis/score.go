package diagnosis

import (
	"math"

	"github.com/Skufu/GoSymptom/internal/bmi"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

// Risk score weights. The aggregate is clamped to [0, RiskCeiling].
const (
	RiskCeiling = 100.0

	weightPerSymptom     = 5.0
	weightPerYear        = 0.5
	weightPerHistoryFlag = 5.0
	weightSmoking        = 5.0
	weightAlcohol        = 3.0
	weightLowExercise    = 3.0
	weightElevatedBMI    = 5.0

	// The tuberculosis sub-score runs on its own 0..100 scale and is folded
	// into the aggregate at tbFoldWeight.
	tbPerSymptom = 10.0
	tbContact    = 20.0
	tbTravel     = 10.0
	tbFoldWeight = 0.25

	highRiskFrom   = 60.0
	mediumRiskFrom = 30.0
)

// riskBreakdown computes each weighted term. With an empty selection only the
// age term contributes.
func riskBreakdown(view symptoms.Selection, profile Profile, bmiResult bmi.Result) ScoreBreakdown {
	var b ScoreBreakdown
	if profile.AgeValid() {
		b.Age = float64(profile.Age) * weightPerYear
	}
	if view.IsEmpty() {
		return b
	}

	b.Symptoms = float64(view.Count()) * weightPerSymptom
	b.History = float64(profile.History.Count()) * weightPerHistoryFlag

	if profile.Lifestyle.Smoking {
		b.Lifestyle += weightSmoking
	}
	if profile.Lifestyle.Alcohol {
		b.Lifestyle += weightAlcohol
	}
	if profile.Lifestyle.Exercise.Low() {
		b.Lifestyle += weightLowExercise
	}

	if bmiResult.Computable && bmiResult.Category.IsElevated() {
		b.BMI = weightElevatedBMI
	}

	b.Tuberculosis = TuberculosisScore(view.CountIn(symptoms.Tuberculosis), profile.Lifestyle) * tbFoldWeight
	return b
}

// TuberculosisScore is the condition-specific sub-score on a 0..100 scale.
func TuberculosisScore(tbSymptoms int, lifestyle Lifestyle) float64 {
	score := float64(tbSymptoms) * tbPerSymptom
	if lifestyle.TBContact {
		score += tbContact
	}
	if lifestyle.RecentTravel {
		score += tbTravel
	}
	return math.Min(score, 100)
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(RiskCeiling, v))
}

func riskLevel(score float64) Severity {
	switch {
	case score >= highRiskFrom:
		return SeverityHigh
	case score >= mediumRiskFrom:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
