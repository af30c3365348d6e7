package stats

import (
	"math"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

// ZeroPolicy decides what a zero denominator becomes in DerivedRatio.
// The zero value yields NaN for such rows.
type ZeroPolicy struct {
	replace bool
	with    float64
}

// ReplaceZeroWith divides by v wherever the denominator is zero.
func ReplaceZeroWith(v float64) ZeroPolicy {
	return ZeroPolicy{replace: true, with: v}
}

// CalPerMinPolicy treats a zero prep time as one minute.
var CalPerMinPolicy = ReplaceZeroWith(1)

// DerivedRatio divides numerator by denominator row by row. The denominator values are
// copied before zero substitution so t is never changed.
func DerivedRatio(t dataset.Table, numerator, denominator string, policy ZeroPolicy) ([]float64, error) {
	if err := dataset.RequireNumeric(t, numerator, denominator); err != nil {
		return nil, err
	}
	den := make([]float64, t.Len())
	for i := range den {
		den[i] = t.Value(i, denominator)
	}
	out := make([]float64, t.Len())
	for i := range out {
		d := den[i]
		if d == 0 {
			if !policy.replace || policy.with == 0 {
				out[i] = math.NaN()
				continue
			}
			d = policy.with
		}
		out[i] = t.Value(i, numerator) / d
	}
	return out, nil
}

// AppendCalPerMin computes calories per minute of prep and stores it on ds as
// dataset.ColCalPerMin. Call it once, before ds is shared.
func AppendCalPerMin(ds *dataset.Dataset) error {
	values, err := DerivedRatio(ds, dataset.ColCalories, dataset.ColPrepTime, CalPerMinPolicy)
	if err != nil {
		return err
	}
	return ds.AppendDerived(dataset.ColCalPerMin, values)
}
