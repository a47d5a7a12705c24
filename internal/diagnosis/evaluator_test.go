package diagnosis

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/GoSymptom/internal/bmi"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	table, err := DefaultRules()
	require.NoError(t, err)
	return NewEvaluator(table, quietLogger())
}

func adultProfile(g symptoms.Gender, age int) Profile {
	return Profile{
		Age:       age,
		Gender:    g,
		WeightKg:  70,
		HeightCm:  175,
		Lifestyle: Lifestyle{Exercise: ExerciseWeekly},
	}
}

func diagnose(e *Evaluator, p Profile, raw map[symptoms.Category][]string) Result {
	sel := symptoms.NewSelection(raw, p.Gender)
	return e.Diagnose(sel, p, bmi.Compute(p.WeightKg, p.HeightCm))
}

func conditionNames(r Result) []string {
	return r.ConditionLabels()
}

func TestDiagnose_EmptySelection(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Male, 30)

	result := diagnose(e, p, nil)

	assert.Empty(t, result.Conditions)
	assert.NotNil(t, result.Conditions)
	assert.Equal(t, 15.0, result.RiskScore)
	assert.Equal(t, ScoreBreakdown{Age: 15}, result.Breakdown)
	assert.Equal(t, []string{AdviceNoIndicators}, result.Recommendations)
	assert.Equal(t, SeverityLow, result.RiskLevel)
}

func TestDiagnose_EmptySelectionIgnoresProfileFlags(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Female, 30)
	p.History = History{Hypertension: true, Diabetes: true}
	p.Lifestyle = Lifestyle{Smoking: true, Exercise: ExerciseNone, TBContact: true}
	p.WeightKg = 120

	result := diagnose(e, p, map[symptoms.Category][]string{})

	assert.Equal(t, 15.0, result.RiskScore)
	assert.Equal(t, []string{AdviceNoIndicators}, result.Recommendations)
}

func TestDiagnose_BranchPriority(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Male, 30)

	t.Run("rash wins over diarrhea", func(t *testing.T) {
		result := diagnose(e, p, map[symptoms.Category][]string{
			symptoms.Basic:    {"Fever"},
			symptoms.Advanced: {"Rash", "Diarrhea"},
		})
		names := conditionNames(result)
		assert.Contains(t, names, "Dengue / Viral Infection")
		assert.NotContains(t, names, "Typhoid / Bacterial Infection")
		assert.NotContains(t, names, "Viral Fever")
	})

	t.Run("eye pain takes the first branch", func(t *testing.T) {
		result := diagnose(e, p, map[symptoms.Category][]string{
			symptoms.Basic:    {"Fever"},
			symptoms.Advanced: {"Pain behind eyes"},
		})
		assert.Contains(t, conditionNames(result), "Dengue / Viral Infection")
	})

	t.Run("diarrhea branch", func(t *testing.T) {
		result := diagnose(e, p, map[symptoms.Category][]string{
			symptoms.Basic:    {"Fever"},
			symptoms.Advanced: {"Diarrhea"},
		})
		names := conditionNames(result)
		assert.Contains(t, names, "Typhoid / Bacterial Infection")
		assert.NotContains(t, names, "Dengue / Viral Infection")
		assert.NotContains(t, names, "Viral Fever")
	})

	t.Run("default branch", func(t *testing.T) {
		result := diagnose(e, p, map[symptoms.Category][]string{
			symptoms.Basic: {"Fever"},
		})
		require.Len(t, result.Conditions, 1)
		assert.Equal(t, Condition{
			RuleID:    "fever-branch",
			Condition: "Viral Fever",
			System:    "Immune System",
			Severity:  SeverityLow,
		}, result.Conditions[0])
	})

	t.Run("no trigger", func(t *testing.T) {
		result := diagnose(e, p, map[symptoms.Category][]string{
			symptoms.Advanced: {"Rash"},
		})
		assert.Empty(t, result.Conditions)
	})
}

const thresholdTableYAML = `
rules:
  - id: dengue-reference
    kind: threshold
    reference: [Fever, Headache, Pain behind eyes, Muscle / Joint Pain, Rash, Nausea / Vomiting]
    min_match: 4
    condition: Dengue Fever
    system: Blood / Immune System
    severity: Medium
`

func TestDiagnose_ThresholdRule(t *testing.T) {
	table, err := ParseRules([]byte(thresholdTableYAML))
	require.NoError(t, err)
	e := NewEvaluator(table, quietLogger())
	p := adultProfile(symptoms.Other, 30)

	three := map[symptoms.Category][]string{
		symptoms.Basic:    {"Fever", "Headache"},
		symptoms.Advanced: {"Rash"},
	}
	four := map[symptoms.Category][]string{
		symptoms.Basic:    {"Fever", "Headache", "Muscle / Joint Pain"},
		symptoms.Advanced: {"Rash"},
	}
	six := map[symptoms.Category][]string{
		symptoms.Basic:    {"Fever", "Headache", "Muscle / Joint Pain", "Nausea / Vomiting"},
		symptoms.Advanced: {"Rash", "Pain behind eyes"},
	}

	assert.Empty(t, diagnose(e, p, three).Conditions)
	assert.Len(t, diagnose(e, p, four).Conditions, 1)
	assert.Equal(t, []string{"Dengue Fever"}, conditionNames(diagnose(e, p, six)))
}

func TestDiagnose_ConjunctiveRule(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Male, 30)

	partial := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Basic:    {"Fatigue"},
		symptoms.Advanced: {"Diarrhea"},
	})
	assert.NotContains(t, conditionNames(partial), "Malaria")

	full := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Basic:    {"Fatigue"},
		symptoms.Advanced: {"Diarrhea", "Abdominal Pain"},
	})
	assert.Contains(t, conditionNames(full), "Malaria")
}

func TestDiagnose_PresenceRules(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Female, 30)

	result := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.CancerFemale: {"Vision or hearing problems"},
		symptoms.Heart:        {"Swelling of belly"},
	})

	assert.Equal(t, []string{"Heart / Cardiovascular Risk", "Possible Cancer Detected"}, conditionNames(result))
	assert.Equal(t, []string{"Heart / Circulatory System", "Affected Organs"}, result.SystemLabels())
}

func TestDiagnose_DeduplicatesConditionSystemPairs(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Male, 30)
	p.Context.FeverPattern = FeverIntermittent

	result := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Basic:    {"Fever", "Chills", "Fatigue", "Headache"},
		symptoms.Advanced: {"Diarrhea", "Abdominal Pain"},
	})

	malaria := 0
	for _, c := range result.Conditions {
		if c.Condition == "Malaria" {
			malaria++
			assert.Equal(t, "malaria", c.RuleID, "first declared rule wins")
		}
	}
	assert.Equal(t, 1, malaria)
}

func TestDiagnose_DeclarationOrder(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Other, 55)

	result := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Heart:        {"Chest pain / Pressure", "Cold sweats"},
		symptoms.Basic:        {"Fever"},
		symptoms.CancerMale:   {"Prostate issues", "Difficulty urinating"},
		symptoms.Neurological: {"Slurred speech", "Confusion"},
	})

	index := map[string]int{}
	for i, r := range e.Rules().Rules {
		index[r.ID] = i
	}
	require.NotEmpty(t, result.Conditions)
	for i := 1; i < len(result.Conditions); i++ {
		assert.Less(t, index[result.Conditions[i-1].RuleID], index[result.Conditions[i].RuleID])
	}
}

func TestDiagnose_GenderGating(t *testing.T) {
	e := newTestEvaluator(t)

	t.Run("female-only category ignored for male profile", func(t *testing.T) {
		p := adultProfile(symptoms.Male, 40)
		sel := symptoms.NewSelection(map[symptoms.Category][]string{
			symptoms.CancerFemale: {"Breast lump / Thickening", "Unusual nipple discharge"},
		}, symptoms.Other)

		result := e.Diagnose(sel, p, bmi.Compute(p.WeightKg, p.HeightCm))

		assert.NotContains(t, conditionNames(result), "Possible Breast Cancer")
		assert.NotContains(t, conditionNames(result), "Possible Cancer Detected")
		assert.Zero(t, result.SymptomCount)
		require.Len(t, result.Warnings, 2)
		assert.Equal(t, symptoms.ReasonNotApplicable, result.Warnings[0].Reason)
	})

	t.Run("female rule does not fire on shared labels for male profile", func(t *testing.T) {
		p := adultProfile(symptoms.Male, 40)
		result := diagnose(e, p, map[symptoms.Category][]string{
			symptoms.CancerMale: {"Swelling or lumps", "Skin changes / Jaundice / new moles"},
		})

		assert.NotContains(t, conditionNames(result), "Possible Breast Cancer")
		assert.Contains(t, conditionNames(result), "Possible Cancer Detected")
	})

	t.Run("female rule fires for female profile", func(t *testing.T) {
		p := adultProfile(symptoms.Female, 40)
		result := diagnose(e, p, map[symptoms.Category][]string{
			symptoms.CancerFemale: {"Breast lump / Thickening", "Unusual nipple discharge"},
		})

		assert.Contains(t, conditionNames(result), "Possible Breast Cancer")
		assert.NotContains(t, conditionNames(result), "Possible Prostate Cancer")
	})

	t.Run("male rule fires for male profile", func(t *testing.T) {
		p := adultProfile(symptoms.Male, 60)
		result := diagnose(e, p, map[symptoms.Category][]string{
			symptoms.CancerMale: {"Prostate issues", "Blood in urine"},
		})

		assert.Contains(t, conditionNames(result), "Possible Prostate Cancer")
		assert.NotContains(t, conditionNames(result), "Possible Ovarian / Cervical Cancer")
	})
}

func TestDiagnose_SeverityEscalation(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Male, 30)

	mild := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Heart: {"Swelling of belly"},
	})
	require.Len(t, mild.Conditions, 1)
	assert.Equal(t, SeverityMedium, mild.Conditions[0].Severity)
	assert.NotContains(t, mild.Recommendations, "Seek immediate care for chest pain or pressure.")

	severe := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Heart: {"Chest pain / Pressure", "Cold sweats"},
	})
	require.NotEmpty(t, severe.Conditions)
	assert.Equal(t, "Heart / Cardiovascular Risk", severe.Conditions[0].Condition)
	assert.Equal(t, SeverityHigh, severe.Conditions[0].Severity)
	assert.Contains(t, severe.Recommendations, "Seek immediate care for chest pain or pressure.")
}

func TestDiagnose_Guards(t *testing.T) {
	e := newTestEvaluator(t)
	heart := map[symptoms.Category][]string{
		symptoms.Heart: {"Chest pain / Pressure", "Shortness of breath"},
	}

	assert.NotContains(t, conditionNames(diagnose(e, adultProfile(symptoms.Male, 30), heart)), "Coronary Artery Disease Risk")
	assert.Contains(t, conditionNames(diagnose(e, adultProfile(symptoms.Male, 50), heart)), "Coronary Artery Disease Risk")

	neuro := map[symptoms.Category][]string{
		symptoms.Neurological: {"Blurred vision", "Numbness / Tingling"},
	}
	plain := adultProfile(symptoms.Female, 50)
	assert.NotContains(t, conditionNames(diagnose(e, plain, neuro)), "Diabetic Complications")
	diabetic := plain
	diabetic.History.Diabetes = true
	assert.Contains(t, conditionNames(diagnose(e, diabetic, neuro)), "Diabetic Complications")

	metabolic := map[symptoms.Category][]string{
		symptoms.Basic: {"Fatigue"},
		symptoms.Heart: {"Reduced exercise ability"},
	}
	obese := adultProfile(symptoms.Other, 35)
	obese.WeightKg = 100
	assert.Contains(t, conditionNames(diagnose(e, obese, metabolic)), "Obesity-related Metabolic Risk")
	assert.NotContains(t, conditionNames(diagnose(e, adultProfile(symptoms.Other, 35), metabolic)), "Obesity-related Metabolic Risk")

	cough := map[symptoms.Category][]string{symptoms.Advanced: {"Cough"}}
	short := adultProfile(symptoms.Male, 30)
	assert.NotContains(t, conditionNames(diagnose(e, short, cough)), "Chronic Cough")
	long := short
	long.Context.DurationDays = 21
	assert.Contains(t, conditionNames(diagnose(e, long, cough)), "Chronic Cough")
}

func TestDiagnose_ScoreBreakdown(t *testing.T) {
	e := newTestEvaluator(t)
	p := Profile{
		Age:       40,
		Gender:    symptoms.Male,
		WeightKg:  95,
		HeightCm:  170,
		History:   History{Hypertension: true, Diabetes: true},
		Lifestyle: Lifestyle{Smoking: true, Exercise: ExerciseNone},
	}

	result := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Basic: {"Chills", "Headache", "Fatigue"},
	})

	assert.Equal(t, ScoreBreakdown{
		Symptoms:  15,
		Age:       20,
		History:   10,
		Lifestyle: 8,
		BMI:       5,
	}, result.Breakdown)
	assert.Equal(t, 58.0, result.RiskScore)
	assert.Equal(t, SeverityMedium, result.RiskLevel)
	assert.Contains(t, result.Recommendations, AdviceWeight)
	assert.Contains(t, result.Recommendations, AdviceSmoking)
}

func TestDiagnose_TuberculosisSubScore(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Male, 20)
	p.Lifestyle.TBContact = true

	result := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Tuberculosis: {"Coughing up blood", "Cough for more than 2 weeks"},
	})

	assert.Equal(t, 10.0, result.Breakdown.Tuberculosis)
	assert.Equal(t, 10.0+10.0+10.0, result.RiskScore)
	assert.Contains(t, result.Recommendations, AdviceTBContact)
}

func TestTuberculosisScore_Capped(t *testing.T) {
	assert.Equal(t, 100.0, TuberculosisScore(9, Lifestyle{TBContact: true, RecentTravel: true}))
	assert.Equal(t, 30.0, TuberculosisScore(2, Lifestyle{RecentTravel: true}))
}

func allSymptoms() map[symptoms.Category][]string {
	raw := map[symptoms.Category][]string{}
	for _, c := range symptoms.CategoriesFor(symptoms.Other) {
		raw[c] = symptoms.Vocabulary(c)
	}
	return raw
}

func TestDiagnose_ClampedAtCeiling(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Other, 120)
	p.History = History{Hypertension: true, Diabetes: true, HeartDisease: true, Thyroid: true, Asthma: true}
	p.Lifestyle = Lifestyle{Smoking: true, Alcohol: true, Exercise: ExerciseNone, TBContact: true, RecentTravel: true}

	result := diagnose(e, p, allSymptoms())

	assert.Equal(t, RiskCeiling, result.RiskScore)
	assert.Greater(t, result.Breakdown.Total(), RiskCeiling)
	assert.Equal(t, SeverityHigh, result.RiskLevel)
	assert.Contains(t, result.Recommendations, AdviceHighRisk)
	assert.Contains(t, result.Recommendations, AdviceManySymptoms)
}

func TestDiagnose_Deterministic(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Female, 47)
	p.History.Thyroid = true
	raw := map[symptoms.Category][]string{
		symptoms.Basic:        {"Fever", "Fatigue", "Headache"},
		symptoms.Advanced:     {"Rash", "Weakness"},
		symptoms.CancerFemale: {"Pelvic pain / Bloating", "Unexplained weight loss / gain"},
		symptoms.Tuberculosis: {"Night sweats"},
	}

	first := diagnose(e, p, raw)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, diagnose(e, p, raw))
	}
}

func TestDiagnose_MonotonicInSymptoms(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Other, 35)
	p.Lifestyle = Lifestyle{Smoking: true, Exercise: ExerciseRarely, TBContact: true}

	raw := map[symptoms.Category][]string{symptoms.Basic: {"Fever"}}
	previous := diagnose(e, p, raw).RiskScore

	for _, c := range symptoms.CategoriesFor(symptoms.Other) {
		for _, label := range symptoms.Vocabulary(c) {
			raw[c] = append(raw[c], label)
			score := diagnose(e, p, raw).RiskScore
			assert.GreaterOrEqual(t, score, previous, "adding %s/%s lowered the score", c, label)
			previous = score
		}
	}
}

func TestDiagnose_NotComputableMetrics(t *testing.T) {
	e := newTestEvaluator(t)
	p := Profile{Age: -3, Gender: symptoms.Male, WeightKg: 70, HeightCm: 0}
	sel := symptoms.NewSelection(map[symptoms.Category][]string{
		symptoms.Basic: {"Fever"},
	}, p.Gender)

	result := e.Diagnose(sel, p, bmi.Compute(p.WeightKg, p.HeightCm))

	assert.Equal(t, []string{MetricAge, MetricBMI}, result.Unavailable)
	assert.Zero(t, result.Breakdown.Age)
	assert.Zero(t, result.Breakdown.BMI)
	assert.Equal(t, 5.0, result.RiskScore)
	assert.Equal(t, []string{"Viral Fever"}, conditionNames(result))
}

func TestDiagnose_AgeAboveBoundIsNotComputable(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Male, 130)

	result := diagnose(e, p, nil)

	assert.Equal(t, []string{MetricAge}, result.Unavailable)
	assert.Zero(t, result.RiskScore)
}

func TestDiagnose_CarriesSelectionWarnings(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile(symptoms.Male, 30)

	result := diagnose(e, p, map[symptoms.Category][]string{
		symptoms.Basic: {"Fever", "Sneezing"},
	})

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "Sneezing", result.Warnings[0].Label)
	assert.Equal(t, 1, result.SymptomCount)
}

func TestExerciseFrequency(t *testing.T) {
	assert.True(t, ExerciseNone.Low())
	assert.True(t, ParseExercise("Rarely").Low())
	assert.False(t, ExerciseDaily.Low())
	assert.Equal(t, ExerciseWeekly, ParseExercise("sometimes"))
}

func TestDiagnose_UnsetGenderFiresNoGenderedRules(t *testing.T) {
	e := newTestEvaluator(t)
	p := adultProfile("", 45)
	sel := symptoms.NewSelection(map[symptoms.Category][]string{
		symptoms.CancerMale:   {"Prostate issues", "Difficulty urinating"},
		symptoms.CancerFemale: {"Breast lump / Thickening", "Unusual nipple discharge"},
		symptoms.Basic:        {"Fever"},
	}, symptoms.Other)

	result := e.Diagnose(sel, p, bmi.Compute(p.WeightKg, p.HeightCm))

	names := conditionNames(result)
	assert.NotContains(t, names, "Possible Cancer Detected")
	assert.NotContains(t, names, "Possible Breast Cancer")
	assert.NotContains(t, names, "Possible Prostate Cancer")
	assert.Equal(t, 1, result.SymptomCount)
	assert.Len(t, result.Warnings, 4)
}
