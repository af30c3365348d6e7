package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Policy decides what happens to a record with a bad cell.
type Policy string

// Policies. PolicyClip only applies to negative numbers.
const (
	PolicyReject Policy = "reject"
	PolicyDrop   Policy = "drop"
	PolicyClip   Policy = "clip"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyReject, PolicyDrop, PolicyClip:
		return p, nil
	default:
		return "", fmt.Errorf("unknown policy %q (use reject, drop or clip)", s)
	}
}

// Options control header resolution and cell coercion.
type Options struct {
	// Aliases maps a trimmed source header to a canonical column key.
	// Canonical keys always resolve to themselves.
	Aliases map[string]string
	// FoldCase makes alias lookup case-insensitive.
	FoldCase bool
	// Required lists canonical columns that must be present.
	Required []string
	// OnInvalid applies to cells that cannot be coerced. Reject or drop.
	OnInvalid Policy
	// OnNegative applies to negative numeric cells. Reject, drop or clip.
	OnNegative Policy
}

// DefaultAliases covers both observed header conventions.
func DefaultAliases() map[string]string {
	return map[string]string{
		"Diet":            ColDiet,
		"diet":            ColDiet,
		"diet type":       ColDiet,
		"Diet Type":       ColDiet,
		"Calories":        ColCalories,
		"Protein":         ColProtein,
		"Fat":             ColFat,
		"Carbs":           ColCarbs,
		"prep time":       ColPrepTime,
		"Prep Time":       ColPrepTime,
		"num ingredients": ColIngredients,
		"healthy":         ColHealthy,
		"Vegan":           ColVegan,
	}
}

// DefaultOptions requires every base column and rejects the whole load on bad cells.
func DefaultOptions() Options {
	return Options{
		Aliases:    DefaultAliases(),
		Required:   append([]string(nil), BaseColumns...),
		OnInvalid:  PolicyReject,
		OnNegative: PolicyReject,
	}
}

func (o Options) validate() error {
	switch o.OnInvalid {
	case PolicyReject, PolicyDrop:
	default:
		return fmt.Errorf("invalid-cell policy must be reject or drop, got %q", o.OnInvalid)
	}
	switch o.OnNegative {
	case PolicyReject, PolicyDrop, PolicyClip:
	default:
		return fmt.Errorf("negative-value policy must be reject, drop or clip, got %q", o.OnNegative)
	}
	for _, col := range o.Required {
		if _, ok := baseKinds[col]; !ok {
			return &KeyError{Key: col, Reason: "not a base column"}
		}
	}
	for alias, col := range o.Aliases {
		if _, ok := baseKinds[col]; !ok {
			return &KeyError{Key: col, Reason: fmt.Sprintf("alias %q targets an unknown column", alias)}
		}
	}
	return nil
}

// ResolveHeader maps source header cells to canonical keys. Unknown headers map to "".
func ResolveHeader(header []string, opts Options) ([]string, error) {
	keys := make([]string, len(header))
	seen := map[string]int{}
	var dup []string
	for i, raw := range header {
		key := resolveName(strings.TrimSpace(raw), opts)
		if key == "" {
			continue
		}
		seen[key]++
		if seen[key] == 2 {
			dup = append(dup, key)
		}
		keys[i] = key
	}
	var missing []string
	for _, col := range opts.Required {
		if seen[col] == 0 {
			missing = append(missing, col)
		}
	}
	if seen[ColDiet] == 0 && !contains(missing, ColDiet) {
		missing = append([]string{ColDiet}, missing...)
	}
	if len(missing) > 0 || len(dup) > 0 {
		sort.Strings(dup)
		return nil, &SchemaError{Missing: missing, Duplicate: dup}
	}
	return keys, nil
}

func resolveName(name string, opts Options) string {
	if name == "" {
		return ""
	}
	if _, ok := baseKinds[name]; ok {
		return name
	}
	if key, ok := opts.Aliases[name]; ok {
		return key
	}
	if !opts.FoldCase {
		return ""
	}
	for col := range baseKinds {
		if strings.EqualFold(col, name) {
			return col
		}
	}
	// Sorted so a case collision between aliases resolves the same way every run.
	aliases := make([]string, 0, len(opts.Aliases))
	for alias := range opts.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if strings.EqualFold(alias, name) {
			return opts.Aliases[alias]
		}
	}
	return ""
}

// Normalize builds a Dataset from a header row and raw data rows.
func Normalize(header []string, rows [][]string, opts Options) (*Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	keys, err := ResolveHeader(header, opts)
	if err != nil {
		return nil, err
	}

	var columns []string
	for _, key := range keys {
		if key != "" {
			columns = append(columns, key)
		}
	}

	records := make([]MealRecord, 0, len(rows))
	var dropped, clipped int
	for r, row := range rows {
		rec, clips, policy, rowErr := coerceRow(r+1, keys, row, opts)
		if rowErr != nil {
			if policy == PolicyDrop {
				dropped++
				continue
			}
			return nil, rowErr
		}
		clipped += clips
		records = append(records, rec)
	}

	ds, err := New(records, columns)
	if err != nil {
		return nil, err
	}
	ds.summary = Summary{
		Read:    len(rows),
		Kept:    len(records),
		Dropped: dropped,
		Clipped: clipped,
	}
	return ds, nil
}

// policyRank orders policies by strictness. A row with several bad cells is handled by the
// strictest policy among them.
func policyRank(p Policy) int {
	switch p {
	case PolicyReject:
		return 2
	case PolicyDrop:
		return 1
	default:
		return 0
	}
}

// coerceRow checks every cell of a row. On failure it returns the strictest policy among
// the bad cells and the first error that carries that policy.
func coerceRow(rowNum int, keys []string, row []string, opts Options) (MealRecord, int, Policy, *TypeError) {
	var (
		rec     MealRecord
		clipped int
		policy  Policy
		rowErr  *TypeError
	)
	fail := func(err *TypeError, p Policy) {
		if rowErr == nil || policyRank(p) > policyRank(policy) {
			rowErr, policy = err, p
		}
	}
	for i, key := range keys {
		if key == "" {
			continue
		}
		cell := ""
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}
		typeErr := func(reason string) *TypeError {
			return &TypeError{Row: rowNum, Column: key, Value: cell, Reason: reason}
		}

		switch baseKinds[key] {
		case KindCategory:
			if cell == "" {
				fail(typeErr("empty category"), opts.OnInvalid)
				continue
			}
			rec.DietType = cell
		case KindFlag:
			b, ok := parseFlag(cell)
			if !ok {
				fail(typeErr("expected a 0/1 flag"), opts.OnInvalid)
				continue
			}
			setFlag(&rec, key, b)
		case KindNumber:
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				fail(typeErr("expected a number"), opts.OnInvalid)
				continue
			}
			if v == 0 {
				// Drops the sign of -0.
				v = 0
			}
			if v < 0 {
				if opts.OnNegative != PolicyClip {
					fail(typeErr("negative value"), opts.OnNegative)
					continue
				}
				v = 0
				clipped++
			}
			if key == ColIngredients && v != math.Trunc(v) {
				fail(typeErr("expected a whole number"), opts.OnInvalid)
				continue
			}
			setNumber(&rec, key, v)
		}
	}
	if rowErr != nil {
		return rec, 0, policy, rowErr
	}
	return rec, clipped, "", nil
}

func parseFlag(cell string) (bool, bool) {
	switch strings.ToLower(cell) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return false, false
	}
	switch v {
	case 0:
		return false, true
	case 1:
		return true, true
	default:
		return false, false
	}
}

func setFlag(rec *MealRecord, key string, b bool) {
	switch key {
	case ColHealthy:
		rec.IsHealthy = b
	case ColVegan:
		rec.Vegan = b
	}
}

func setNumber(rec *MealRecord, key string, v float64) {
	switch key {
	case ColCalories:
		rec.Calories = v
	case ColProtein:
		rec.Protein = v
	case ColFat:
		rec.Fat = v
	case ColCarbs:
		rec.Carbs = v
	case ColPrepTime:
		rec.PrepTime = v
	case ColIngredients:
		rec.NumIngredients = int(v)
	}
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
