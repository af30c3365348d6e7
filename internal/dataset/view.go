package dataset

// View is an ordered subset of a parent table. It holds indices, not copies.
type View struct {
	parent  Table
	indices []int
}

// NewView returns a view over parent restricted to indices, in the given order.
// Indices must be valid for parent.
func NewView(parent Table, indices []int) *View {
	idx := make([]int, len(indices))
	copy(idx, indices)
	return &View{parent: parent, indices: idx}
}

// Full returns a view covering every row of t.
func Full(t Table) *View {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	return &View{parent: t, indices: idx}
}

// Len returns the number of rows in the view.
func (v *View) Len() int { return len(v.indices) }

// Kind delegates to the parent table.
func (v *View) Kind(key string) (Kind, bool) { return v.parent.Kind(key) }

// Record returns the i-th row of the view.
func (v *View) Record(i int) MealRecord { return v.parent.Record(v.indices[i]) }

// Value returns the i-th row's numeric cell.
func (v *View) Value(i int, key string) float64 { return v.parent.Value(v.indices[i], key) }

// Label returns the i-th row's display cell.
func (v *View) Label(i int, key string) string { return v.parent.Label(v.indices[i], key) }

// Indices returns the parent row positions covered by the view.
func (v *View) Indices() []int {
	out := make([]int, len(v.indices))
	copy(out, v.indices)
	return out
}

// Records materializes the rows of the view.
func (v *View) Records() []MealRecord {
	out := make([]MealRecord, len(v.indices))
	for i := range v.indices {
		out[i] = v.Record(i)
	}
	return out
}
