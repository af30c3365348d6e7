// Package dataset holds the normalized meal table and the views taken over it.
package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Canonical column keys.
const (
	ColDiet        = "diet_type"
	ColCalories    = "calories"
	ColProtein     = "protein"
	ColFat         = "fat"
	ColCarbs       = "carbs"
	ColPrepTime    = "prep_time"
	ColIngredients = "num_ingredients"
	ColHealthy     = "is_healthy"
	ColVegan       = "vegan"

	// ColCalPerMin is the derived calories-per-minute column appended at load time.
	ColCalPerMin = "cal_per_min"
)

// Kind describes how a column's cells are interpreted.
type Kind int

// Column kinds.
const (
	KindCategory Kind = iota
	KindNumber
	KindFlag
)

func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindNumber:
		return "number"
	case KindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// BaseColumns lists the canonical source columns in display order.
var BaseColumns = []string{
	ColDiet,
	ColCalories,
	ColProtein,
	ColFat,
	ColCarbs,
	ColPrepTime,
	ColIngredients,
	ColHealthy,
	ColVegan,
}

var baseKinds = map[string]Kind{
	ColDiet:        KindCategory,
	ColCalories:    KindNumber,
	ColProtein:     KindNumber,
	ColFat:         KindNumber,
	ColCarbs:       KindNumber,
	ColPrepTime:    KindNumber,
	ColIngredients: KindNumber,
	ColHealthy:     KindFlag,
	ColVegan:       KindFlag,
}

var numericAccessors = map[string]func(MealRecord) float64{
	ColCalories:    func(r MealRecord) float64 { return r.Calories },
	ColProtein:     func(r MealRecord) float64 { return r.Protein },
	ColFat:         func(r MealRecord) float64 { return r.Fat },
	ColCarbs:       func(r MealRecord) float64 { return r.Carbs },
	ColPrepTime:    func(r MealRecord) float64 { return r.PrepTime },
	ColIngredients: func(r MealRecord) float64 { return float64(r.NumIngredients) },
	ColHealthy:     func(r MealRecord) float64 { return flagValue(r.IsHealthy) },
	ColVegan:       func(r MealRecord) float64 { return flagValue(r.Vegan) },
}

// MealRecord is one normalized row.
type MealRecord struct {
	DietType       string
	Calories       float64
	Protein        float64
	Fat            float64
	Carbs          float64
	PrepTime       float64
	NumIngredients int
	IsHealthy      bool
	Vegan          bool
}

// Table is read access shared by a Dataset and the views taken over it.
type Table interface {
	Len() int
	Kind(key string) (Kind, bool)
	Record(i int) MealRecord
	Value(i int, key string) float64
	Label(i int, key string) string
}

// Summary reports what happened while a dataset was loaded.
type Summary struct {
	Source  string
	Read    int
	Kept    int
	Dropped int
	Clipped int
}

// Dataset is the normalized table. It is read-only once derived columns are appended.
type Dataset struct {
	records      []MealRecord
	present      map[string]bool
	derived      map[string][]float64
	derivedOrder []string
	summary      Summary
}

// New builds a Dataset from already-normalized records. columns names the base columns
// that exist in the source; unknown names are rejected.
func New(records []MealRecord, columns []string) (*Dataset, error) {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		if _, ok := baseKinds[col]; !ok {
			return nil, &KeyError{Key: col, Reason: "not a base column"}
		}
		present[col] = true
	}
	if !present[ColDiet] {
		return nil, &SchemaError{Missing: []string{ColDiet}}
	}
	return &Dataset{
		records: records,
		present: present,
		derived: map[string][]float64{},
		summary: Summary{Read: len(records), Kept: len(records)},
	}, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Record returns the i-th record.
func (d *Dataset) Record(i int) MealRecord { return d.records[i] }

// Records returns a copy of all records.
func (d *Dataset) Records() []MealRecord {
	out := make([]MealRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Summary returns load statistics.
func (d *Dataset) Summary() Summary { return d.summary }

// SetSource records where the dataset came from. Call it before the dataset is shared.
func (d *Dataset) SetSource(source string) { d.summary.Source = source }

// SetSummary replaces the load statistics, for datasets rebuilt from storage.
func (d *Dataset) SetSummary(s Summary) { d.summary = s }

// Columns returns present base columns followed by derived columns.
func (d *Dataset) Columns() []string {
	out := make([]string, 0, len(d.present)+len(d.derivedOrder))
	for _, col := range BaseColumns {
		if d.present[col] {
			out = append(out, col)
		}
	}
	return append(out, d.derivedOrder...)
}

// HasColumn reports whether key is a present base column or a derived column.
func (d *Dataset) HasColumn(key string) bool {
	_, ok := d.Kind(key)
	return ok
}

// Kind returns the kind of a present column.
func (d *Dataset) Kind(key string) (Kind, bool) {
	if d.present[key] {
		return baseKinds[key], true
	}
	if _, ok := d.derived[key]; ok {
		return KindNumber, true
	}
	return 0, false
}

// Value returns the numeric value of a cell, or NaN for categorical and unknown columns.
func (d *Dataset) Value(i int, key string) float64 {
	if d.present[key] {
		if fn, ok := numericAccessors[key]; ok {
			return fn(d.records[i])
		}
		return math.NaN()
	}
	if col, ok := d.derived[key]; ok {
		return col[i]
	}
	return math.NaN()
}

// Label returns the display form of a cell.
func (d *Dataset) Label(i int, key string) string {
	if key == ColDiet {
		return d.records[i].DietType
	}
	return FormatValue(d.Value(i, key))
}

// AppendDerived stores a computed column. Each name may be appended only once.
func (d *Dataset) AppendDerived(name string, values []float64) error {
	if name == "" {
		return fmt.Errorf("derived column name is empty")
	}
	if _, ok := baseKinds[name]; ok {
		return fmt.Errorf("derived column %q shadows a base column", name)
	}
	if _, ok := d.derived[name]; ok {
		return fmt.Errorf("derived column %q already exists", name)
	}
	if len(values) != len(d.records) {
		return fmt.Errorf("derived column %q has %d values, want %d", name, len(values), len(d.records))
	}
	col := make([]float64, len(values))
	copy(col, values)
	d.derived[name] = col
	d.derivedOrder = append(d.derivedOrder, name)
	return nil
}

// FormatValue renders a numeric cell without trailing zeros.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Levels returns the distinct labels of key in order of first appearance.
func Levels(t Table, key string) ([]string, error) {
	if _, ok := t.Kind(key); !ok {
		return nil, &KeyError{Key: key}
	}
	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < t.Len(); i++ {
		label := t.Label(i, key)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out, nil
}

// RequireNumeric returns a KeyError unless every key is a numeric or flag column of t.
func RequireNumeric(t Table, keys ...string) error {
	for _, key := range keys {
		kind, ok := t.Kind(key)
		if !ok {
			return &KeyError{Key: key}
		}
		if kind == KindCategory {
			return &KeyError{Key: key, Reason: "not numeric"}
		}
	}
	return nil
}

// RequireColumns returns a KeyError for the first key t does not have.
func RequireColumns(t Table, keys ...string) error {
	for _, key := range keys {
		if _, ok := t.Kind(key); !ok {
			return &KeyError{Key: key}
		}
	}
	return nil
}

func flagValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
