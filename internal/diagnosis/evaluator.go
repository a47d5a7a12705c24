package diagnosis

import (
	"github.com/sirupsen/logrus"

	"github.com/Skufu/GoSymptom/internal/bmi"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

// Evaluator applies a rule table to submissions. It holds no per-call state and
// is safe for concurrent use.
type Evaluator struct {
	table  *RuleTable
	logger *logrus.Logger
}

// NewEvaluator creates an evaluator over a validated rule table.
func NewEvaluator(table *RuleTable, logger *logrus.Logger) *Evaluator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Evaluator{table: table, logger: logger}
}

// Rules returns the table the evaluator was built with.
func (e *Evaluator) Rules() *RuleTable {
	return e.table
}

// Diagnose evaluates one submission. It never fails: invalid profile values are
// reported in Result.Unavailable and the remaining metrics are still computed.
func (e *Evaluator) Diagnose(selection symptoms.Selection, profile Profile, bmiResult bmi.Result) Result {
	view, _ := selection.Restrict(profile.Gender)

	result := Result{
		Conditions:   []Condition{},
		SymptomCount: view.Count(),
		Warnings:     view.Warnings(),
		BMI:          bmiResult,
	}
	if !profile.AgeValid() {
		result.Unavailable = append(result.Unavailable, MetricAge)
	}
	if !bmiResult.Computable {
		result.Unavailable = append(result.Unavailable, MetricBMI)
	}

	var fired []firedRule
	if !view.IsEmpty() {
		fired = e.evaluateRules(view, profile, bmiResult)
		result.Conditions = dedupeConditions(fired)
	}

	result.Breakdown = riskBreakdown(view, profile, bmiResult)
	result.RiskScore = clampScore(result.Breakdown.Total())
	result.RiskLevel = riskLevel(result.RiskScore)
	result.Recommendations = recommendations(fired, view, profile, bmiResult, result)

	e.logger.WithFields(logrus.Fields{
		"symptoms":    result.SymptomCount,
		"conditions":  len(result.Conditions),
		"risk_score":  result.RiskScore,
		"risk_level":  result.RiskLevel,
		"unavailable": result.Unavailable,
		"warnings":    len(result.Warnings),
	}).Debug("Completed symptom evaluation")

	return result
}

type firedRule struct {
	rule    *Rule
	outcome Outcome
	emit    Condition
}

func (e *Evaluator) evaluateRules(view symptoms.Selection, profile Profile, bmiResult bmi.Result) []firedRule {
	var fired []firedRule
	for i := range e.table.Rules {
		rule := &e.table.Rules[i]
		if !profile.Gender.Matches(rule.Gender) {
			continue
		}
		if !rule.Requires.allows(profile, bmiResult) {
			continue
		}

		outcome, ok := rule.match(view)
		if !ok {
			continue
		}

		severity := outcome.Severity
		if esc := rule.Escalate; esc != nil && countOf(view, esc.Labels) >= esc.Min {
			severity = esc.Severity
		}

		e.logger.WithFields(logrus.Fields{
			"rule":      rule.ID,
			"condition": outcome.Condition,
			"severity":  severity,
		}).Debug("Rule fired")

		fired = append(fired, firedRule{
			rule:    rule,
			outcome: outcome,
			emit: Condition{
				RuleID:    rule.ID,
				Condition: outcome.Condition,
				System:    outcome.System,
				Severity:  severity,
			},
		})
	}
	return fired
}

// match returns the outcome to emit when the rule's predicate holds.
func (r *Rule) match(view symptoms.Selection) (Outcome, bool) {
	switch r.Kind {
	case KindPresence:
		for _, c := range r.Categories {
			if view.CountIn(c) > 0 {
				return r.Outcome, true
			}
		}
	case KindAll:
		if countOf(view, r.Labels) == len(r.Labels) {
			return r.Outcome, true
		}
	case KindThreshold:
		if countOf(view, r.Reference) >= r.MinMatch {
			return r.Outcome, true
		}
	case KindBranch:
		if countOf(view, r.Labels) != len(r.Labels) {
			return Outcome{}, false
		}
		for _, b := range r.Branches {
			if countOf(view, b.Any) > 0 {
				return b.Outcome, true
			}
		}
		if r.Default != nil {
			return *r.Default, true
		}
	}
	return Outcome{}, false
}

func (g Guard) allows(profile Profile, bmiResult bmi.Result) bool {
	if g.MinAge > 0 && (!profile.AgeValid() || profile.Age < g.MinAge) {
		return false
	}
	if len(g.BMI) > 0 {
		if !bmiResult.Computable || !containsCategory(g.BMI, bmiResult.Category) {
			return false
		}
	}
	if len(g.History) > 0 {
		matched := false
		for _, f := range g.History {
			if profile.History.Has(f) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(g.FeverPattern) > 0 {
		matched := false
		for _, p := range g.FeverPattern {
			if profile.Context.FeverPattern == p {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if g.MinDurationDays > 0 && profile.Context.DurationDays < g.MinDurationDays {
		return false
	}
	return true
}

func dedupeConditions(fired []firedRule) []Condition {
	type key struct{ condition, system string }
	seen := make(map[key]struct{}, len(fired))
	out := make([]Condition, 0, len(fired))
	for _, f := range fired {
		k := key{f.emit.Condition, f.emit.System}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f.emit)
	}
	return out
}

func containsCategory(list []bmi.Category, c bmi.Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

// countOf returns how many of labels are selected. Rule tables keep these
// lists free of repeats.
func countOf(s symptoms.Selection, labels []string) int {
	n := 0
	for _, l := range labels {
		if s.Has(l) {
			n++
		}
	}
	return n
}
