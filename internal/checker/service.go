package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/GoSymptom/internal/bmi"
	"github.com/Skufu/GoSymptom/internal/diagnosis"
	"github.com/Skufu/GoSymptom/internal/storage"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

// Outcome is what a submission returns to the form layer.
type Outcome struct {
	ID           string             `json:"id,omitempty"`
	BMI          bmi.Result         `json:"bmi"`
	Diagnosis    diagnosis.Result   `json:"diagnosis"`
	Warnings     []symptoms.Warning `json:"warnings"`
	Saved        bool               `json:"saved"`
	StorageError string             `json:"storageError,omitempty"`
}

// Options tunes a Service.
type Options struct {
	// CacheSize bounds the evaluation memo. Zero disables it.
	CacheSize int
}

// Service orchestrates submissions. It is safe for concurrent use.
type Service struct {
	evaluator *diagnosis.Evaluator
	store     storage.Appender
	cache     *lru.Cache[string, diagnosis.Result]
	logger    *logrus.Logger

	now   func() time.Time
	newID func() string
}

func NewService(evaluator *diagnosis.Evaluator, store storage.Appender, opts Options, logger *logrus.Logger) (*Service, error) {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Service{
		evaluator: evaluator,
		store:     store,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, diagnosis.Result](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create evaluation cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Preview evaluates a submission without storing it.
func (s *Service) Preview(sub Submission) (Outcome, error) {
	if err := sub.Validate(); err != nil {
		return Outcome{}, err
	}
	result, _ := s.evaluate(sub)
	return outcomeFor(result), nil
}

// Diagnose evaluates a submission and appends it to the store. A storage
// failure does not discard the result; it is reported in the outcome.
func (s *Service) Diagnose(ctx context.Context, sub Submission) (Outcome, error) {
	if err := sub.Validate(); err != nil {
		return Outcome{}, err
	}
	result, selection := s.evaluate(sub)
	out := outcomeFor(result)
	out.ID = s.newID()

	if s.store == nil {
		return out, nil
	}

	rec := buildRecord(out.ID, s.now(), sub, selection, result)
	log := s.logger.WithFields(logrus.Fields{
		"id":         out.ID,
		"conditions": len(result.Conditions),
		"risk_score": result.RiskScore,
	})
	if err := s.store.Append(ctx, rec); err != nil {
		log.WithError(err).Warn("Failed to store submission")
		out.StorageError = err.Error()
		return out, nil
	}
	out.Saved = true
	log.Info("Submission stored")
	return out, nil
}

// evaluate returns the (possibly memoized) result and the selection it was built from.
// Cached results are shared and must not be modified.
func (s *Service) evaluate(sub Submission) (diagnosis.Result, symptoms.Selection) {
	profile := sub.Profile()
	raw := sub.RawSymptoms()
	selection := symptoms.NewSelection(raw, profile.Gender)

	key, cacheable := cacheKey(profile, raw)
	if cacheable && s.cache != nil {
		if result, ok := s.cache.Get(key); ok {
			s.logger.WithField("symptoms", result.SymptomCount).Debug("Evaluation cache hit")
			return result, selection
		}
	}

	result := s.evaluator.Diagnose(selection, profile, bmi.Compute(profile.WeightKg, profile.HeightCm))
	if cacheable && s.cache != nil {
		s.cache.Add(key, result)
	}
	return result, selection
}

// cacheKey canonicalizes the evaluator inputs. Map keys marshal sorted.
func cacheKey(profile diagnosis.Profile, raw map[symptoms.Category][]string) (string, bool) {
	data, err := json.Marshal(struct {
		Profile  diagnosis.Profile               `json:"p"`
		Symptoms map[symptoms.Category][]string `json:"s"`
	}{profile, raw})
	if err != nil {
		// NaN or Inf measurements do not marshal; evaluate those uncached.
		return "", false
	}
	return string(data), true
}

func outcomeFor(result diagnosis.Result) Outcome {
	warnings := result.Warnings
	if warnings == nil {
		warnings = []symptoms.Warning{}
	}
	return Outcome{
		BMI:       result.BMI,
		Diagnosis: result,
		Warnings:  warnings,
	}
}

func buildRecord(id string, at time.Time, sub Submission, selection symptoms.Selection, result diagnosis.Result) storage.Record {
	profile := sub.Profile()
	return storage.Record{
		ID:            id,
		Timestamp:     at,
		Name:          strings.TrimSpace(sub.Name),
		Mobile:        strings.TrimSpace(sub.Mobile),
		Location:      strings.TrimSpace(sub.Location),
		Age:           profile.Age,
		Gender:        string(profile.Gender),
		WeightKg:      profile.WeightKg,
		HeightCm:      profile.HeightCm,
		Hypertension:  profile.History.Hypertension,
		Diabetes:      profile.History.Diabetes,
		HeartDisease:  profile.History.HeartDisease,
		Thyroid:       profile.History.Thyroid,
		Asthma:        profile.History.Asthma,
		Symptoms:      selection.Flatten(),
		Conditions:    result.ConditionLabels(),
		Systems:       result.SystemLabels(),
		RiskScore:     result.RiskScore,
		RiskLevel:     string(result.RiskLevel),
		BMIValue:      result.BMI.Value,
		BMICategory:   string(result.BMI.Category),
		BMIComputable: result.BMI.Computable,
	}
}
