// Package diagnosis evaluates a symptom selection and user profile against a
// declarative rule table and produces candidate conditions, a risk score and
// recommendations.
package diagnosis

import (
	"strings"

	"github.com/Skufu/GoSymptom/internal/bmi"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

// Severity is the tier attached to a fired condition and to the overall risk.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

func (s Severity) valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// ExerciseFrequency is an ordered lifestyle category.
type ExerciseFrequency string

const (
	ExerciseNone   ExerciseFrequency = "none"
	ExerciseRarely ExerciseFrequency = "rarely"
	ExerciseWeekly ExerciseFrequency = "weekly"
	ExerciseDaily  ExerciseFrequency = "daily"
)

var exerciseRank = map[ExerciseFrequency]int{
	ExerciseNone:   0,
	ExerciseRarely: 1,
	ExerciseWeekly: 2,
	ExerciseDaily:  3,
}

// ParseExercise normalizes an exercise frequency. Unknown values are treated as weekly.
func ParseExercise(s string) ExerciseFrequency {
	f := ExerciseFrequency(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := exerciseRank[f]; ok {
		return f
	}
	return ExerciseWeekly
}

// Low reports whether the frequency counts as an unfavorable lifestyle flag.
func (f ExerciseFrequency) Low() bool {
	rank, ok := exerciseRank[f]
	return ok && rank <= exerciseRank[ExerciseRarely]
}

// History flag names, as used by rule guards and stored records.
const (
	FlagHypertension = "hypertension"
	FlagDiabetes     = "diabetes"
	FlagHeartDisease = "heart_disease"
	FlagThyroid      = "thyroid"
	FlagAsthma       = "asthma"
)

var historyFlagNames = []string{FlagHypertension, FlagDiabetes, FlagHeartDisease, FlagThyroid, FlagAsthma}

// History holds the medical-history checkboxes of a submission.
type History struct {
	Hypertension bool `json:"hypertension"`
	Diabetes     bool `json:"diabetes"`
	HeartDisease bool `json:"heartDisease"`
	Thyroid      bool `json:"thyroid"`
	Asthma       bool `json:"asthma"`
}

// Has reports whether the named flag is set.
func (h History) Has(flag string) bool {
	switch flag {
	case FlagHypertension:
		return h.Hypertension
	case FlagDiabetes:
		return h.Diabetes
	case FlagHeartDisease:
		return h.HeartDisease
	case FlagThyroid:
		return h.Thyroid
	case FlagAsthma:
		return h.Asthma
	default:
		return false
	}
}

// Count returns the number of true flags.
func (h History) Count() int {
	n := 0
	for _, f := range historyFlagNames {
		if h.Has(f) {
			n++
		}
	}
	return n
}

// Lifestyle holds the lifestyle attributes of a submission.
type Lifestyle struct {
	Smoking      bool              `json:"smoking"`
	Alcohol      bool              `json:"alcohol"`
	Exercise     ExerciseFrequency `json:"exercise"`
	RecentTravel bool              `json:"recentTravel"`
	TBContact    bool              `json:"tbContact"`
}

// FeverPattern is the optional description of how a fever behaves.
type FeverPattern string

const (
	FeverNone         FeverPattern = ""
	FeverContinuous   FeverPattern = "continuous"
	FeverIntermittent FeverPattern = "intermittent"
	FeverEvening      FeverPattern = "evening"
)

// Context is optional free-form detail about the complaint.
type Context struct {
	FeverPattern FeverPattern `json:"feverPattern,omitempty"`
	DurationDays int          `json:"durationDays,omitempty"`
}

// Age bounds accepted by the evaluator. Ages outside them are not computable.
const (
	MinAge = 0
	MaxAge = 120
)

// Profile is the demographic and medical-history part of a submission.
type Profile struct {
	Age       int             `json:"age"`
	Gender    symptoms.Gender `json:"gender"`
	WeightKg  float64         `json:"weightKg"`
	HeightCm  float64         `json:"heightCm"`
	History   History         `json:"history"`
	Lifestyle Lifestyle       `json:"lifestyle"`
	Context   Context         `json:"context"`
}

// AgeValid reports whether Age can contribute to scoring and guards.
func (p Profile) AgeValid() bool {
	return p.Age >= MinAge && p.Age <= MaxAge
}

// Sub-metric names reported in Result.Unavailable.
const (
	MetricAge = "age"
	MetricBMI = "bmi"
)

// Condition is one fired rule outcome.
type Condition struct {
	RuleID    string   `json:"ruleId"`
	Condition string   `json:"condition"`
	System    string   `json:"system"`
	Severity  Severity `json:"severity"`
}

// ScoreBreakdown lists each weighted term of the risk score before clamping.
type ScoreBreakdown struct {
	Symptoms     float64 `json:"symptoms"`
	Age          float64 `json:"age"`
	History      float64 `json:"history"`
	Lifestyle    float64 `json:"lifestyle"`
	BMI          float64 `json:"bmi"`
	Tuberculosis float64 `json:"tuberculosis"`
}

// Total returns the unclamped sum.
func (b ScoreBreakdown) Total() float64 {
	return b.Symptoms + b.Age + b.History + b.Lifestyle + b.BMI + b.Tuberculosis
}

// Result is the output of one evaluation.
type Result struct {
	Conditions      []Condition        `json:"conditions"`
	RiskScore       float64            `json:"riskScore"`
	RiskLevel       Severity           `json:"riskLevel"`
	Breakdown       ScoreBreakdown     `json:"breakdown"`
	Recommendations []string           `json:"recommendations"`
	SymptomCount    int                `json:"symptomCount"`
	Unavailable     []string           `json:"unavailable,omitempty"`
	Warnings        []symptoms.Warning `json:"warnings,omitempty"`
	BMI             bmi.Result         `json:"bmi"`
}

// ConditionLabels returns the condition names in output order.
func (r Result) ConditionLabels() []string {
	out := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		out[i] = c.Condition
	}
	return out
}

// SystemLabels returns the affected-system names in output order.
func (r Result) SystemLabels() []string {
	out := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		out[i] = c.System
	}
	return out
}
