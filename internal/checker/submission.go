// Package checker runs one form submission end to end: display-layer checks,
// BMI, symptom selection, rule evaluation and storage.
package checker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Skufu/GoSymptom/internal/diagnosis"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

// Submission is the form payload.
type Submission struct {
	Name     string  `json:"name"`
	Mobile   string  `json:"mobile"`
	Location string  `json:"location"`
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	WeightKg float64 `json:"weightKg"`
	HeightCm float64 `json:"heightCm"`

	History   diagnosis.History   `json:"history"`
	Lifestyle diagnosis.Lifestyle `json:"lifestyle"`
	Context   diagnosis.Context   `json:"context"`

	// Symptoms maps a category name to the labels ticked in it.
	Symptoms map[string][]string `json:"symptoms"`
}

// FieldError is one failed display-layer check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned when a submission fails display-layer checks.
// Clinical values are never rejected here; the evaluator marks them instead.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

const (
	maxNameLength = 100
	minMobile     = 7
	maxMobile     = 15
)

// Validate checks the fields the form requires before diagnosing.
func (s Submission) Validate() error {
	var errs ValidationErrors

	name := strings.TrimSpace(s.Name)
	switch {
	case name == "":
		errs = append(errs, FieldError{"name", "is required"})
	case len([]rune(name)) > maxNameLength:
		errs = append(errs, FieldError{"name", fmt.Sprintf("must be at most %d characters", maxNameLength)})
	}

	mobile := strings.TrimSpace(s.Mobile)
	if mobile == "" {
		errs = append(errs, FieldError{"mobile", "is required"})
	} else if n, ok := countDigits(mobile); !ok || n < minMobile || n > maxMobile {
		errs = append(errs, FieldError{"mobile", fmt.Sprintf("must be %d to %d digits", minMobile, maxMobile)})
	}

	if _, ok := symptoms.ParseGender(s.Gender); !ok {
		errs = append(errs, FieldError{"gender", "must be Male, Female or Other"})
	}

	switch s.Context.FeverPattern {
	case diagnosis.FeverNone, diagnosis.FeverContinuous, diagnosis.FeverIntermittent, diagnosis.FeverEvening:
	default:
		errs = append(errs, FieldError{"context.feverPattern", fmt.Sprintf("unknown pattern %q", s.Context.FeverPattern)})
	}
	if s.Context.DurationDays < 0 {
		errs = append(errs, FieldError{"context.durationDays", "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// countDigits accepts digits with optional separators and a leading plus.
func countDigits(s string) (int, bool) {
	n := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			n++
		case r == ' ' || r == '-':
		case r == '+' && i == 0:
		default:
			return 0, false
		}
	}
	return n, true
}

// Profile returns the evaluator's view of the submission. An unrecognised
// gender is left unset, which gates out every gender-restricted rule.
func (s Submission) Profile() diagnosis.Profile {
	gender, _ := symptoms.ParseGender(s.Gender)
	lifestyle := s.Lifestyle
	lifestyle.Exercise = diagnosis.ParseExercise(string(lifestyle.Exercise))
	return diagnosis.Profile{
		Age:       s.Age,
		Gender:    gender,
		WeightKg:  s.WeightKg,
		HeightCm:  s.HeightCm,
		History:   s.History,
		Lifestyle: lifestyle,
		Context:   s.Context,
	}
}

// RawSymptoms returns the symptom map keyed by category.
func (s Submission) RawSymptoms() map[symptoms.Category][]string {
	out := make(map[symptoms.Category][]string, len(s.Symptoms))
	for k, labels := range s.Symptoms {
		c := symptoms.Category(strings.ToLower(strings.TrimSpace(k)))
		out[c] = append(out[c], labels...)
	}
	return out
}
