package symptoms

import (
	"fmt"
	"sort"
)

// WarningReason explains why a submitted label was left out of matching.
type WarningReason string

const (
	ReasonUnknownCategory WarningReason = "unknown_category"
	ReasonUnknownLabel    WarningReason = "unknown_label"
	ReasonNotApplicable   WarningReason = "not_applicable_for_gender"
)

// Warning describes a submitted label that was ignored.
type Warning struct {
	Category Category      `json:"category"`
	Label    string        `json:"label"`
	Reason   WarningReason `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s/%q: %s", w.Category, w.Label, w.Reason)
}

// Selection is the validated set of symptoms chosen in one submission.
// It is immutable once built.
type Selection struct {
	byCategory map[Category][]string
	distinct   map[string]struct{}
	warnings   []Warning
}

// NewSelection validates raw form input against the declared vocabularies.
// Labels outside their category's vocabulary, categories that do not apply to
// the gender, and unknown categories are dropped and reported as warnings.
// Labels are kept in vocabulary order and deduplicated per category.
func NewSelection(raw map[Category][]string, g Gender) Selection {
	s := Selection{
		byCategory: make(map[Category][]string),
		distinct:   make(map[string]struct{}),
	}

	for _, c := range sortedKeys(raw) {
		labels := raw[c]
		switch {
		case !c.Known():
			for _, l := range labels {
				s.warnings = append(s.warnings, Warning{Category: c, Label: l, Reason: ReasonUnknownCategory})
			}
			continue
		case !Applies(c, g):
			for _, l := range labels {
				s.warnings = append(s.warnings, Warning{Category: c, Label: l, Reason: ReasonNotApplicable})
			}
			continue
		}

		seen := make(map[string]struct{}, len(labels))
		kept := make([]string, 0, len(labels))
		for _, l := range labels {
			if !Contains(c, l) {
				s.warnings = append(s.warnings, Warning{Category: c, Label: l, Reason: ReasonUnknownLabel})
				continue
			}
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			kept = append(kept, l)
		}
		if len(kept) == 0 {
			continue
		}

		positions := vocabularyIndex[c]
		sort.SliceStable(kept, func(i, j int) bool { return positions[kept[i]] < positions[kept[j]] })
		s.byCategory[c] = kept
		for _, l := range kept {
			s.distinct[l] = struct{}{}
		}
	}

	return s
}

// labels returns a copy of the selected labels of one category.
func (s Selection) labels(c Category) []string {
	labels := s.byCategory[c]
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Has reports whether label was selected in any category.
func (s Selection) Has(label string) bool {
	_, ok := s.distinct[label]
	return ok
}

// CountIn returns how many labels were selected in category c.
func (s Selection) CountIn(c Category) int {
	return len(s.byCategory[c])
}

// Count returns the number of distinct labels selected across all categories.
func (s Selection) Count() int {
	return len(s.distinct)
}

// IsEmpty reports whether nothing was selected.
func (s Selection) IsEmpty() bool {
	return len(s.distinct) == 0
}

// Flatten returns every distinct selected label, categories in display order.
func (s Selection) Flatten() []string {
	out := make([]string, 0, len(s.distinct))
	seen := make(map[string]struct{}, len(s.distinct))
	for _, c := range categoryOrder {
		for _, l := range s.byCategory[c] {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}

// Restrict returns the part of the selection whose categories apply to gender
// g, plus a warning for every label it leaves out. Warnings recorded while
// building the selection are carried over.
func (s Selection) Restrict(g Gender) (Selection, []Warning) {
	out := Selection{
		byCategory: make(map[Category][]string, len(s.byCategory)),
		distinct:   make(map[string]struct{}, len(s.distinct)),
		warnings:   s.Warnings(),
	}
	var dropped []Warning
	for _, c := range categoryOrder {
		labels := s.byCategory[c]
		if len(labels) == 0 {
			continue
		}
		if !Applies(c, g) {
			for _, l := range labels {
				dropped = append(dropped, Warning{Category: c, Label: l, Reason: ReasonNotApplicable})
			}
			continue
		}
		out.byCategory[c] = labels
		for _, l := range labels {
			out.distinct[l] = struct{}{}
		}
	}
	out.warnings = append(out.warnings, dropped...)
	return out, dropped
}

// Warnings returns the labels that were dropped while building the selection.
func (s Selection) Warnings() []Warning {
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func sortedKeys(raw map[Category][]string) []Category {
	rank := make(map[Category]int, len(categoryOrder))
	for i, c := range categoryOrder {
		rank[c] = i
	}

	keys := make([]Category, 0, len(raw))
	for c := range raw {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
