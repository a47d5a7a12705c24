// Package symptoms holds the fixed symptom vocabularies shown by the form layer
// and the per-submission selection built from them.
package symptoms

import "strings"

// Category names a fixed group of symptom labels.
type Category string

const (
	Basic        Category = "basic"
	Advanced     Category = "advanced"
	Respiratory  Category = "respiratory"
	Digestive    Category = "digestive"
	Neurological Category = "neurological"
	Skin         Category = "skin"
	Heart        Category = "heart"
	CancerMale   Category = "cancer_male"
	CancerFemale Category = "cancer_female"
	Fever        Category = "fever"
	Tuberculosis Category = "tuberculosis"
)

// Gender gates which gender-specific vocabularies apply to a submission.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
	Other  Gender = "Other"
)

// ParseGender normalizes a gender string. It accepts male, female and other
// and their one-letter forms, case-insensitively; anything else is rejected.
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, true
	case "female", "f":
		return Female, true
	case "other", "o":
		return Other, true
	default:
		return "", false
	}
}

// Matches reports whether a rule restricted to g applies to this gender.
// An empty restriction matches everyone; Other matches any restriction.
// The zero Gender matches only unrestricted rules.
func (g Gender) Matches(restriction Gender) bool {
	return restriction == "" || g == Other || g == restriction
}

var categoryOrder = []Category{
	Basic, Advanced, Respiratory, Digestive, Neurological, Skin,
	Heart, CancerMale, CancerFemale, Fever, Tuberculosis,
}

var categoryTitles = map[Category]string{
	Basic:        "Basic Symptoms",
	Advanced:     "Advanced Symptoms",
	Respiratory:  "Respiratory Symptoms",
	Digestive:    "Digestive Symptoms",
	Neurological: "Neurological Symptoms",
	Skin:         "Skin Symptoms",
	Heart:        "Heart / Cardiovascular Symptoms",
	CancerMale:   "Cancer Symptoms",
	CancerFemale: "Cancer Symptoms",
	Fever:        "Fever Pattern",
	Tuberculosis: "Tuberculosis Symptoms",
}

// cancerCommon is shared by both gender-keyed cancer vocabularies.
var cancerCommon = []string{
	"Abdominal pain / Bloating", "Unusual bleeding / bruising", "Pain that doesn't go away",
	"Mouth sores / bleeding / numbness", "Persistent cough / Hoarseness",
	"Unexplained weight loss / gain", "Swelling or lumps", "Skin changes / Jaundice / new moles",
	"Headaches / Seizures", "Fatigue / Extreme tiredness", "Vision or hearing problems",
}

var cancerByGender = map[Gender][]string{
	Male: {
		"Prostate issues", "Testicular lumps / swelling", "Difficulty urinating", "Blood in urine",
	},
	Female: {
		"Breast lump / Thickening", "Unusual nipple discharge", "Pelvic pain / Bloating",
		"Abnormal vaginal bleeding",
	},
}

var vocabularies = map[Category][]string{
	Basic: {
		"Fever", "Chills", "Fatigue", "Headache", "Nausea / Vomiting", "Muscle / Joint Pain",
	},
	Advanced: {
		"Diarrhea", "Abdominal Pain", "Loss of Appetite", "Rash", "Cough",
		"Pain behind eyes", "Swollen glands", "Yellow skin / Eyes", "Weakness",
	},
	Respiratory: {
		"Sore throat", "Runny nose", "Sneezing", "Wheezing", "Chest congestion",
		"Difficulty breathing", "Loss of smell / taste",
	},
	Digestive: {
		"Heartburn", "Bloating", "Constipation", "Blood in stool", "Indigestion", "Vomiting blood",
	},
	Neurological: {
		"Dizziness", "Numbness / Tingling", "Confusion", "Memory problems", "Seizures",
		"Blurred vision", "Slurred speech", "Tremors",
	},
	Skin: {
		"Itching", "Hives", "Dry / flaky skin", "Skin lesions", "Blisters", "Discoloration",
	},
	Heart: {
		"Chest pain / Pressure", "Pain radiating to arm/jaw/back/neck/throat",
		"Shortness of breath", "Rapid / Irregular heartbeat", "Swelling in legs/ankles/feet",
		"Reduced exercise ability", "Wheezing / Persistent cough", "Swelling of belly",
		"Rapid weight gain", "Nausea / Lack of appetite", "Difficulty concentrating",
		"Dizziness / Fainting", "Cold sweats",
	},
	CancerMale:   concat(cancerCommon, cancerByGender[Male]),
	CancerFemale: concat(cancerCommon, cancerByGender[Female]),
	Fever: {
		"Low-grade fever", "High fever (above 102°F)", "Fever with chills",
		"Fever lasting more than 3 days", "Evening fever", "Night sweats",
	},
	Tuberculosis: {
		"Cough for more than 2 weeks", "Coughing up blood", "Chest pain while breathing",
		"Night sweats", "Unexplained weight loss", "Evening fever", "Loss of appetite",
	},
}

var vocabularyIndex = buildIndex()

// categoryGender restricts gender-keyed categories.
var categoryGender = map[Category]Gender{
	CancerMale:   Male,
	CancerFemale: Female,
}

// CategoriesFor returns the categories that apply to a gender, in display order.
func CategoriesFor(g Gender) []Category {
	out := make([]Category, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		if Applies(c, g) {
			out = append(out, c)
		}
	}
	return out
}

// Applies reports whether category c is shown to, and matched for, gender g.
func Applies(c Category, g Gender) bool {
	return g.Matches(categoryGender[c])
}

// Title returns the form heading for the category.
func (c Category) Title() string {
	return categoryTitles[c]
}

// Known reports whether c is a declared category.
func (c Category) Known() bool {
	_, ok := vocabularies[c]
	return ok
}

// Vocabulary returns a copy of the labels declared for a category.
func Vocabulary(c Category) []string {
	labels := vocabularies[c]
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Contains reports whether label is declared in category c. Matching is exact.
func Contains(c Category, label string) bool {
	_, ok := vocabularyIndex[c][label]
	return ok
}

func buildIndex() map[Category]map[string]int {
	index := make(map[Category]map[string]int, len(vocabularies))
	for c, labels := range vocabularies {
		positions := make(map[string]int, len(labels))
		for i, l := range labels {
			positions[l] = i
		}
		index[c] = positions
	}
	return index
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Declared reports whether label belongs to at least one category vocabulary.
func Declared(label string) bool {
	for _, positions := range vocabularyIndex {
		if _, ok := positions[label]; ok {
			return true
		}
	}
	return false
}
