package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

func TestCorrelationMatrixSymmetricUnitDiagonal(t *testing.T) {
	ds := scenario(t)
	m, err := CorrelationMatrix(ds, MacroKeys)
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	for i := range m.Keys {
		if m.Values[i][i] != 1 {
			t.Fatalf("expected unit diagonal at %s, got %v", m.Keys[i], m.Values[i][i])
		}
		for j := range m.Keys {
			if m.Values[i][j] != m.Values[j][i] {
				t.Fatalf("matrix not symmetric at %d,%d", i, j)
			}
			if v := m.Values[i][j]; v < -1 || v > 1 {
				t.Fatalf("correlation out of range: %v", v)
			}
		}
	}
}

func TestCorrelationMatrixPerfectRelations(t *testing.T) {
	ds := loadMeals(t,
		[]string{"diet_type", "calories", "fat", "carbs"},
		[][]string{{"A", "10", "1", "9"}, {"A", "20", "2", "8"}, {"B", "30", "3", "7"}, {"B", "40", "4", "6"}},
	)
	m, err := CorrelationMatrix(ds, []string{dataset.ColCalories, dataset.ColFat, dataset.ColCarbs})
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	if r, _ := m.At(dataset.ColCalories, dataset.ColFat); math.Abs(r-1) > 1e-12 {
		t.Fatalf("expected r=1, got %v", r)
	}
	if r, _ := m.At(dataset.ColFat, dataset.ColCarbs); math.Abs(r+1) > 1e-12 {
		t.Fatalf("expected r=-1, got %v", r)
	}
	if _, ok := m.At(dataset.ColCalories, "sodium"); ok {
		t.Fatalf("expected lookup miss for unknown key")
	}
}

func TestCorrelationMatrixZeroVariance(t *testing.T) {
	ds := loadMeals(t,
		[]string{"diet_type", "calories", "protein"},
		[][]string{{"A", "10", "5"}, {"A", "20", "5"}, {"B", "30", "5"}},
	)
	m, err := CorrelationMatrix(ds, []string{dataset.ColCalories, dataset.ColProtein})
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	if m.Values[0][0] != 1 {
		t.Fatalf("expected unit diagonal for varying column, got %v", m.Values[0][0])
	}
	for _, v := range []float64{m.Values[0][1], m.Values[1][0], m.Values[1][1]} {
		if !math.IsNaN(v) {
			t.Fatalf("expected NaN for constant column, got %v", m.Values)
		}
	}
}

func TestCorrelationMatrixSingleRow(t *testing.T) {
	ds := loadMeals(t, []string{"diet_type", "calories", "fat"}, [][]string{{"A", "10", "1"}})
	m, err := CorrelationMatrix(ds, []string{dataset.ColCalories, dataset.ColFat})
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	if !math.IsNaN(m.Values[0][0]) || !math.IsNaN(m.Values[0][1]) {
		t.Fatalf("expected NaN with a single row, got %v", m.Values)
	}
}

func TestCorrelationMatrixRejectsCategoricalColumn(t *testing.T) {
	ds := scenario(t)
	var keyErr *dataset.KeyError
	if _, err := CorrelationMatrix(ds, []string{dataset.ColCalories, dataset.ColDiet}); !errors.As(err, &keyErr) {
		t.Fatalf("expected KeyError, got %v", err)
	}
}
