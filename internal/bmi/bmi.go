// Package bmi computes body-mass index and its weight category.
package bmi

import "math"

// Category is the weight class a BMI value falls into.
type Category string

const (
	Underweight Category = "Underweight"
	Normal      Category = "Normal"
	Overweight  Category = "Overweight"
	Obese       Category = "Obese"

	// NotComputable marks a result whose inputs could not produce a BMI.
	NotComputable Category = "Not computable"
)

// Category thresholds. Each interval is closed on the left and open on the right.
const (
	normalFrom     = 18.5
	overweightFrom = 25.0
	obeseFrom      = 30.0
)

// Result is a derived BMI value. When Computable is false, Value is zero and
// Category is NotComputable.
type Result struct {
	Value      float64  `json:"value"`
	Category   Category `json:"category"`
	Computable bool     `json:"computable"`
}

// Compute returns the BMI for a weight in kilograms and a height in centimeters.
// Non-positive or non-finite inputs produce a not-computable result.
func Compute(weightKg, heightCm float64) Result {
	if !valid(weightKg) || !valid(heightCm) {
		return Result{Category: NotComputable}
	}

	heightM := heightCm / 100
	value := weightKg / (heightM * heightM)
	if !valid(value) {
		return Result{Category: NotComputable}
	}

	return Result{
		Value:      value,
		Category:   Categorize(value),
		Computable: true,
	}
}

// Categorize maps a BMI value to its category.
func Categorize(value float64) Category {
	switch {
	case value < normalFrom:
		return Underweight
	case value < overweightFrom:
		return Normal
	case value < obeseFrom:
		return Overweight
	default:
		return Obese
	}
}

// IsElevated reports whether the category is Overweight or Obese.
func (c Category) IsElevated() bool {
	return c == Overweight || c == Obese
}

func valid(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
