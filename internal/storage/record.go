// Package storage persists flattened submission records. The evaluator never
// depends on it; records are appended strictly after evaluation completes.
package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the layout of the stored submission time.
const TimestampLayout = "2006-01-02 15:04:05"

const listSeparator = ", "

// Record is one stored submission. Field order matches Columns and Row.
type Record struct {
	ID        string
	Timestamp time.Time

	Name     string
	Mobile   string
	Location string
	Age      int
	Gender   string
	WeightKg float64
	HeightCm float64

	Hypertension bool
	Diabetes     bool
	HeartDisease bool
	Thyroid      bool
	Asthma       bool

	Symptoms   []string
	Conditions []string
	Systems    []string

	RiskScore     float64
	RiskLevel     string
	BMIValue      float64
	BMICategory   string
	BMIComputable bool
}

var columns = []string{
	"Timestamp", "Name", "Mobile", "Location", "Age", "Gender", "Weight (kg)", "Height (cm)",
	"High Blood Pressure", "Diabetes", "Heart Issues", "Thyroid", "Asthma",
	"Symptoms", "Possible Conditions", "Affected Systems", "Risk Score", "BMI", "BMI Category",
}

// Columns returns the header row for tabular stores.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Row flattens the record into the fixed tabular order.
func (r Record) Row() []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		r.Name,
		r.Mobile,
		r.Location,
		strconv.Itoa(r.Age),
		r.Gender,
		formatNumber(r.WeightKg),
		formatNumber(r.HeightCm),
		yesNo(r.Hypertension),
		yesNo(r.Diabetes),
		yesNo(r.HeartDisease),
		yesNo(r.Thyroid),
		yesNo(r.Asthma),
		JoinList(r.Symptoms),
		JoinList(r.Conditions),
		JoinList(r.Systems),
		FormatRisk(r.RiskScore),
		r.bmiText(),
		r.BMICategory,
	}
}

// JoinList renders a list column.
func JoinList(items []string) string {
	return strings.Join(items, listSeparator)
}

// FormatRisk renders a risk score the way it is stored, e.g. "42.5%".
func FormatRisk(score float64) string {
	return fmt.Sprintf("%.1f%%", score)
}

func (r Record) bmiText() string {
	if !r.BMIComputable {
		return ""
	}
	return fmt.Sprintf("%.1f", r.BMIValue)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
