package stats

import (
	"encoding/json"
	"math"
)

// jsonNumber encodes NaN as null, which encoding/json cannot represent otherwise.
type jsonNumber float64

func (n jsonNumber) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}

// MarshalJSON encodes a missing group mean as null.
func (m Mean) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Group   string     `json:"group"`
		Value   jsonNumber `json:"value"`
		N       int        `json:"n"`
		Missing bool       `json:"missing"`
	}{m.Group, jsonNumber(m.Value), m.N, m.Missing()})
}

// MarshalJSON encodes undefined correlations as null.
func (m Matrix) MarshalJSON() ([]byte, error) {
	values := make([][]jsonNumber, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]jsonNumber, len(row))
		for j, v := range row {
			values[i][j] = jsonNumber(v)
		}
	}
	return json.Marshal(struct {
		Keys   []string       `json:"keys"`
		Values [][]jsonNumber `json:"values"`
	}{m.Keys, values})
}

// MarshalJSON encodes means over an empty view as null.
func (c Cards) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Meals        int        `json:"meals"`
		MeanCalories jsonNumber `json:"mean_calories"`
		MeanPrepTime jsonNumber `json:"mean_prep_time"`
		HealthyShare jsonNumber `json:"healthy_share"`
	}{c.Meals, jsonNumber(c.MeanCalories), jsonNumber(c.MeanPrepTime), jsonNumber(c.HealthyShare)})
}

// MarshalJSON encodes a panel with a status of ok, empty or error.
func (p Panel) MarshalJSON() ([]byte, error) {
	status, msg := "ok", ""
	switch {
	case p.Empty():
		status = "empty"
	case p.Failed():
		status, msg = "error", p.Err.Error()
	}
	return json.Marshal(struct {
		ID          string `json:"id"`
		Tab         string `json:"tab"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Unfiltered  bool   `json:"unfiltered"`
		Rows        int    `json:"rows"`
		Status      string `json:"status"`
		Error       string `json:"error,omitempty"`
		Data        any    `json:"data,omitempty"`
	}{p.ID, p.Tab.String(), p.Title, p.Description, p.Unfiltered, p.Rows, status, msg, p.Data})
}

// MarshalJSON encodes the report with its selection as a plain list.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Selection []string `json:"selection"`
		Diets     []string `json:"diets"`
		Rows      int      `json:"rows"`
		Total     int      `json:"total"`
		Cards     Cards    `json:"cards"`
		Panels    []Panel  `json:"panels"`
	}{r.Selection.Values(), r.Diets, r.Rows, r.Total, r.Cards, r.Panels})
}
