package diagnosis

import (
	"github.com/Skufu/GoSymptom/internal/bmi"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

// Generic advisories.
const (
	AdviceNoIndicators = "No significant disease indicators found based on selected symptoms."
	AdviceHighRisk     = "Overall risk is high: consult a doctor as soon as possible."
	AdviceManySymptoms = "Several symptoms were reported together: book a general check-up."
	AdviceWeight       = "BMI is above the normal range: consider a weight-management plan."
	AdviceSmoking      = "Quitting smoking lowers heart and lung risk."
	AdviceTBContact    = "Recent contact with a tuberculosis patient: ask for a TB screening."

	manySymptomsFrom = 6
)

// recommendations collects advice from fired rules in firing order, followed by
// generic advisories. Advice never affects the score.
func recommendations(fired []firedRule, view symptoms.Selection, profile Profile, bmiResult bmi.Result, result Result) []string {
	out := []string{}
	seen := make(map[string]struct{})
	add := func(text string) {
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}

	for _, f := range fired {
		for _, a := range f.outcome.Advice {
			if len(a.WhenAny) > 0 && countOf(view, a.WhenAny) == 0 {
				continue
			}
			add(a.Text)
		}
	}

	if len(result.Conditions) == 0 {
		add(AdviceNoIndicators)
	}
	if view.IsEmpty() {
		return out
	}

	if result.RiskScore >= highRiskFrom {
		add(AdviceHighRisk)
	}
	if view.Count() >= manySymptomsFrom {
		add(AdviceManySymptoms)
	}
	if bmiResult.Computable && bmiResult.Category.IsElevated() {
		add(AdviceWeight)
	}
	if profile.Lifestyle.Smoking {
		add(AdviceSmoking)
	}
	if profile.Lifestyle.TBContact {
		add(AdviceTBContact)
	}
	return out
}
