package stats

import (
	"math"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

// Matrix is a symmetric Pearson correlation matrix indexed by Keys.
type Matrix struct {
	Keys   []string
	Values [][]float64
}

// At returns the correlation between two keys.
func (m Matrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m Matrix) index(key string) int {
	for i, k := range m.Keys {
		if k == key {
			return i
		}
	}
	return -1
}

// CorrelationMatrix computes Pearson correlations between numeric columns of t.
// The diagonal is 1 for columns with nonzero variance. A zero-variance column (or fewer
// than two rows) yields NaN across its row and column, diagonal included.
func CorrelationMatrix(t dataset.Table, keys []string) (Matrix, error) {
	if err := dataset.RequireNumeric(t, keys...); err != nil {
		return Matrix{}, err
	}
	n := t.Len()
	k := len(keys)

	cols := make([][]float64, k)
	means := make([]float64, k)
	for c, key := range keys {
		col := make([]float64, n)
		var sum float64
		for i := 0; i < n; i++ {
			col[i] = t.Value(i, key)
			sum += col[i]
		}
		cols[c] = col
		if n > 0 {
			means[c] = sum / float64(n)
		}
	}

	// Centered sums of squares; zero means no variance.
	ss := make([]float64, k)
	for c := range cols {
		for _, v := range cols[c] {
			d := v - means[c]
			ss[c] += d * d
		}
	}

	values := make([][]float64, k)
	for a := range values {
		values[a] = make([]float64, k)
	}
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			r := pearson(cols[a], cols[b], means[a], means[b], ss[a], ss[b])
			if a == b && !math.IsNaN(r) {
				r = 1
			}
			values[a][b] = r
			values[b][a] = r
		}
	}
	return Matrix{Keys: append([]string(nil), keys...), Values: values}, nil
}

func pearson(x, y []float64, mx, my, ssx, ssy float64) float64 {
	if len(x) < 2 || ssx == 0 || ssy == 0 {
		return math.NaN()
	}
	var sxy float64
	for i := range x {
		sxy += (x[i] - mx) * (y[i] - my)
	}
	r := sxy / math.Sqrt(ssx*ssy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
