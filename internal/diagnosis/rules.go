package diagnosis

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Skufu/GoSymptom/internal/bmi"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// RuleKind selects the predicate shape of a rule.
type RuleKind string

const (
	// KindPresence fires when any listed category has a selection.
	KindPresence RuleKind = "presence"
	// KindAll fires when every listed label is selected.
	KindAll RuleKind = "all"
	// KindThreshold fires when at least MinMatch reference labels are selected.
	KindThreshold RuleKind = "threshold"
	// KindBranch evaluates Branches in order after the trigger labels match and
	// emits the first matching branch, or Default when none match.
	KindBranch RuleKind = "branch"
)

// Advice is a recommendation emitted by a fired rule. When WhenAny is set the
// advice is only emitted if one of those labels is selected.
type Advice struct {
	Text    string   `yaml:"text" json:"text"`
	WhenAny []string `yaml:"when_any,omitempty" json:"whenAny,omitempty"`
}

// Outcome is what a rule, or a branch of one, emits when it fires.
type Outcome struct {
	Condition string   `yaml:"condition" json:"condition"`
	System    string   `yaml:"system" json:"system"`
	Severity  Severity `yaml:"severity" json:"severity"`
	Advice    []Advice `yaml:"advice,omitempty" json:"advice,omitempty"`
}

// Branch is one refinement of a branch rule.
type Branch struct {
	Any     []string `yaml:"any" json:"any"`
	Outcome `yaml:",inline"`
}

// Escalation raises the severity when enough of Labels are selected.
type Escalation struct {
	Labels   []string `yaml:"labels" json:"labels"`
	Min      int      `yaml:"min" json:"min"`
	Severity Severity `yaml:"severity" json:"severity"`
}

// Guard restricts a rule by profile, BMI or context. Every set field must pass;
// list fields pass when any entry matches.
type Guard struct {
	MinAge          int            `yaml:"min_age,omitempty" json:"minAge,omitempty"`
	BMI             []bmi.Category `yaml:"bmi,omitempty" json:"bmi,omitempty"`
	History         []string       `yaml:"history,omitempty" json:"history,omitempty"`
	FeverPattern    []FeverPattern `yaml:"fever_pattern,omitempty" json:"feverPattern,omitempty"`
	MinDurationDays int            `yaml:"min_duration_days,omitempty" json:"minDurationDays,omitempty"`
}

// Rule is one declarative entry of the rule table.
type Rule struct {
	ID     string          `yaml:"id" json:"id"`
	Kind   RuleKind        `yaml:"kind" json:"kind"`
	Gender symptoms.Gender `yaml:"gender,omitempty" json:"gender,omitempty"`

	Categories []symptoms.Category `yaml:"categories,omitempty" json:"categories,omitempty"`
	Labels     []string            `yaml:"labels,omitempty" json:"labels,omitempty"`
	Reference  []string            `yaml:"reference,omitempty" json:"reference,omitempty"`
	MinMatch   int                 `yaml:"min_match,omitempty" json:"minMatch,omitempty"`
	Branches   []Branch            `yaml:"branches,omitempty" json:"branches,omitempty"`
	Default    *Outcome            `yaml:"default,omitempty" json:"default,omitempty"`

	Escalate *Escalation `yaml:"escalate,omitempty" json:"escalate,omitempty"`
	Requires Guard       `yaml:"requires,omitempty" json:"requires,omitempty"`

	Outcome `yaml:",inline"`
}

// RuleTable is the ordered, read-only rule configuration.
type RuleTable struct {
	Version string `yaml:"version" json:"version"`
	Rules   []Rule `yaml:"rules" json:"rules"`
}

// DefaultRules parses the rule table compiled into the binary.
func DefaultRules() (*RuleTable, error) {
	return ParseRules(defaultRulesYAML)
}

// MustDefaultRules is DefaultRules for process start-up and tests.
func MustDefaultRules() *RuleTable {
	table, err := DefaultRules()
	if err != nil {
		panic(fmt.Sprintf("embedded rule table is invalid: %v", err))
	}
	return table
}

// LoadRules reads a rule table from a YAML file.
func LoadRules(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule table.
func ParseRules(data []byte) (*RuleTable, error) {
	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks every rule. The returned error joins all problems found.
func (t *RuleTable) Validate() error {
	if len(t.Rules) == 0 {
		return errors.New("rule table is empty")
	}

	var errs []error
	seen := make(map[string]struct{}, len(t.Rules))
	for i := range t.Rules {
		r := &t.Rules[i]
		if r.ID == "" {
			errs = append(errs, fmt.Errorf("rule %d: id is required", i))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("rule %s: duplicate id", r.ID))
		}
		seen[r.ID] = struct{}{}

		if err := r.validate(); err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", r.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Rule) validate() error {
	var errs []error

	switch r.Gender {
	case "", symptoms.Male, symptoms.Female:
	default:
		errs = append(errs, fmt.Errorf("gender %q must be Male, Female or empty", r.Gender))
	}

	switch r.Kind {
	case KindPresence:
		if len(r.Categories) == 0 {
			errs = append(errs, errors.New("presence rule needs categories"))
		}
		for _, c := range r.Categories {
			if !c.Known() {
				errs = append(errs, fmt.Errorf("unknown category %q", c))
			}
		}
		errs = append(errs, r.Outcome.validate())
	case KindAll:
		if len(r.Labels) == 0 {
			errs = append(errs, errors.New("all rule needs labels"))
		}
		errs = append(errs, validateDistinct(r.Labels), validateLabels(r.Labels), r.Outcome.validate())
	case KindThreshold:
		if len(r.Reference) == 0 {
			errs = append(errs, errors.New("threshold rule needs a reference set"))
		}
		if r.MinMatch < 1 || r.MinMatch > len(r.Reference) {
			errs = append(errs, fmt.Errorf("min_match %d outside 1..%d", r.MinMatch, len(r.Reference)))
		}
		errs = append(errs, validateDistinct(r.Reference), validateLabels(r.Reference), r.Outcome.validate())
	case KindBranch:
		if len(r.Labels) == 0 {
			errs = append(errs, errors.New("branch rule needs trigger labels"))
		}
		if len(r.Branches) == 0 {
			errs = append(errs, errors.New("branch rule needs branches"))
		}
		errs = append(errs, validateDistinct(r.Labels), validateLabels(r.Labels))
		for i, b := range r.Branches {
			if len(b.Any) == 0 {
				errs = append(errs, fmt.Errorf("branch %d needs labels", i))
			}
			errs = append(errs, validateDistinct(b.Any), validateLabels(b.Any), b.Outcome.validate())
		}
		if r.Default != nil {
			errs = append(errs, r.Default.validate())
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", r.Kind))
	}

	if e := r.Escalate; e != nil {
		if e.Min < 1 || e.Min > len(e.Labels) {
			errs = append(errs, fmt.Errorf("escalate min %d outside 1..%d", e.Min, len(e.Labels)))
		}
		if !e.Severity.valid() {
			errs = append(errs, fmt.Errorf("escalate severity %q is invalid", e.Severity))
		}
		errs = append(errs, validateDistinct(e.Labels), validateLabels(e.Labels))
	}

	for _, f := range r.Requires.History {
		if !isHistoryFlag(f) {
			errs = append(errs, fmt.Errorf("unknown history flag %q", f))
		}
	}
	for _, c := range r.Requires.BMI {
		switch c {
		case bmi.Underweight, bmi.Normal, bmi.Overweight, bmi.Obese:
		default:
			errs = append(errs, fmt.Errorf("unknown BMI category %q", c))
		}
	}

	return errors.Join(errs...)
}

func (o Outcome) validate() error {
	var errs []error
	if o.Condition == "" {
		errs = append(errs, errors.New("condition is required"))
	}
	if o.System == "" {
		errs = append(errs, errors.New("system is required"))
	}
	if !o.Severity.valid() {
		errs = append(errs, fmt.Errorf("severity %q is invalid", o.Severity))
	}
	for _, a := range o.Advice {
		if a.Text == "" {
			errs = append(errs, errors.New("advice text is required"))
		}
		errs = append(errs, validateLabels(a.WhenAny))
	}
	return errors.Join(errs...)
}

func validateLabels(labels []string) error {
	var errs []error
	for _, l := range labels {
		if !symptoms.Declared(l) {
			errs = append(errs, fmt.Errorf("label %q is not in any vocabulary", l))
		}
	}
	return errors.Join(errs...)
}

func validateDistinct(labels []string) error {
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			return fmt.Errorf("label %q repeated", l)
		}
		seen[l] = struct{}{}
	}
	return nil
}

func isHistoryFlag(flag string) bool {
	for _, f := range historyFlagNames {
		if f == flag {
			return true
		}
	}
	return false
}
