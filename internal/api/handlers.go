package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/GoSymptom/internal/checker"
	"github.com/Skufu/GoSymptom/internal/diagnosis"
	"github.com/Skufu/GoSymptom/internal/symptoms"
)

type handlers struct {
	service *checker.Service
	health  HealthChecker
}

func (h *handlers) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) readyz(c *gin.Context) {
	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"db":     fmt.Sprintf("unhealthy: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

type categoryView struct {
	ID     symptoms.Category `json:"id"`
	Title  string            `json:"title"`
	Labels []string          `json:"labels"`
}

// vocabulary lists the symptom groups the form should show for a gender.
// Without a gender every group is listed.
func (h *handlers) vocabulary(c *gin.Context) {
	gender := symptoms.Other
	if q := c.Query("gender"); q != "" {
		g, ok := symptoms.ParseGender(q)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gender"})
			return
		}
		gender = g
	}

	categories := symptoms.CategoriesFor(gender)
	views := make([]categoryView, 0, len(categories))
	for _, cat := range categories {
		views = append(views, categoryView{
			ID:     cat,
			Title:  cat.Title(),
			Labels: symptoms.Vocabulary(cat),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"gender":     gender,
		"categories": views,
		"exercise": []diagnosis.ExerciseFrequency{
			diagnosis.ExerciseNone, diagnosis.ExerciseRarely, diagnosis.ExerciseWeekly, diagnosis.ExerciseDaily,
		},
		"feverPatterns": []diagnosis.FeverPattern{
			diagnosis.FeverContinuous, diagnosis.FeverIntermittent, diagnosis.FeverEvening,
		},
	})
}

func (h *handlers) diagnose(c *gin.Context) {
	sub, ok := bindSubmission(c)
	if !ok {
		return
	}
	out, err := h.service.Diagnose(c.Request.Context(), sub)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) preview(c *gin.Context) {
	sub, ok := bindSubmission(c)
	if !ok {
		return
	}
	out, err := h.service.Preview(sub)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func bindSubmission(c *gin.Context) (checker.Submission, bool) {
	var sub checker.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload_too_large"})
			return sub, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return sub, false
	}
	return sub, true
}

func writeServiceError(c *gin.Context, err error) {
	var verrs checker.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_failed",
			"details": verrs,
		})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}
