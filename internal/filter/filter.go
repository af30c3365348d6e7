// Package filter builds views over a dataset by set membership.
package filter

import (
	"sort"
	"strings"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

// Selection is a set of diet types chosen by the user.
type Selection struct {
	order  []string
	values map[string]struct{}
}

// NewSelection builds a selection, dropping blanks and duplicates.
func NewSelection(values ...string) Selection {
	sel := Selection{values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := sel.values[v]; ok {
			continue
		}
		sel.values[v] = struct{}{}
		sel.order = append(sel.order, v)
	}
	return sel
}

// All selects every diet type observed in t, in order of first appearance.
func All(t dataset.Table) Selection {
	levels, err := dataset.Levels(t, dataset.ColDiet)
	if err != nil {
		return NewSelection()
	}
	return NewSelection(levels...)
}

// Contains reports whether v is selected.
func (s Selection) Contains(v string) bool {
	_, ok := s.values[v]
	return ok
}

// Len returns the number of selected values.
func (s Selection) Len() int { return len(s.order) }

// Values returns the selected values in insertion order.
func (s Selection) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Toggle returns a copy with v added or removed.
func (s Selection) Toggle(v string) Selection {
	if s.Contains(v) {
		out := make([]string, 0, len(s.order))
		for _, item := range s.order {
			if item != v {
				out = append(out, item)
			}
		}
		return NewSelection(out...)
	}
	return NewSelection(append(s.Values(), v)...)
}

// Restrict keeps only values present in options, in the order of options.
func (s Selection) Restrict(options []string) Selection {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if s.Contains(opt) {
			out = append(out, opt)
		}
	}
	return NewSelection(out...)
}

// String renders the selection for headers and logs.
func (s Selection) String() string {
	if len(s.order) == 0 {
		return "none"
	}
	return strings.Join(s.order, ", ")
}

// Apply returns the rows of t whose diet type is selected. Row order is kept.
// Values absent from t are ignored and an empty selection yields an empty view.
func Apply(t dataset.Table, sel Selection) *dataset.View {
	indices := make([]int, 0, t.Len())
	if sel.Len() > 0 {
		for i := 0; i < t.Len(); i++ {
			if sel.Contains(t.Record(i).DietType) {
				indices = append(indices, i)
			}
		}
	}
	return dataset.NewView(t, indices)
}

// Match returns the rows of t whose label in column key is one of values.
func Match(t dataset.Table, key string, values ...string) (*dataset.View, error) {
	if err := dataset.RequireColumns(t, key); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	indices := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if _, ok := set[t.Label(i, key)]; ok {
			indices = append(indices, i)
		}
	}
	return dataset.NewView(t, indices), nil
}

// Healthy returns the rows of t whose is_healthy flag equals healthy.
func Healthy(t dataset.Table, healthy bool) (*dataset.View, error) {
	label := "0"
	if healthy {
		label = "1"
	}
	return Match(t, dataset.ColHealthy, label)
}

// Observed returns the selected values that actually occur in t, sorted.
func Observed(t dataset.Table, sel Selection) []string {
	seen := map[string]struct{}{}
	for i := 0; i < t.Len(); i++ {
		d := t.Record(i).DietType
		if sel.Contains(d) {
			seen[d] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
