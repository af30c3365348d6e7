package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/mealboard/internal/dataset"
	"github.com/verte-zerg/mealboard/internal/filter"
	"github.com/verte-zerg/mealboard/internal/stats"
)

const maxBins = 200

// Handler serves dashboard data for one loaded dataset.
type Handler struct {
	ds       dataset.Table
	opts     stats.Options
	defaults filter.Selection
	summary  dataset.Summary
}

// NewHandler creates a Handler. defaults is the selection used when a request names no
// diets; empty means every diet.
func NewHandler(ds *dataset.Dataset, opts stats.Options, defaults []string) *Handler {
	sel := filter.NewSelection(defaults...)
	if sel.Len() == 0 {
		sel = filter.All(ds)
	}
	return &Handler{ds: ds, opts: opts, defaults: sel, summary: ds.Summary()}
}

type dietEntry struct {
	Diet     string `json:"diet"`
	Meals    int    `json:"meals"`
	Selected bool   `json:"selected"`
}

type dietsResponse struct {
	Diets []dietEntry `json:"diets"`
	Total int         `json:"total"`
}

// ListDiets handles GET /api/diets.
func (h *Handler) ListDiets(w http.ResponseWriter, _ *http.Request) {
	levels, err := dataset.Levels(h.ds, dataset.ColDiet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	counts, err := stats.ValueCounts(h.ds, dataset.ColDiet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byDiet := make(map[string]int, len(counts))
	for _, c := range counts {
		byDiet[c.Key] = c.N
	}
	resp := dietsResponse{Diets: make([]dietEntry, 0, len(levels)), Total: h.ds.Len()}
	for _, diet := range levels {
		resp.Diets = append(resp.Diets, dietEntry{Diet: diet, Meals: byDiet[diet], Selected: h.defaults.Contains(diet)})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Report handles GET /api/panels.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.build(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type panelResponse struct {
	Selection []string    `json:"selection"`
	Panel     stats.Panel `json:"panel"`
}

// GetPanel handles GET /api/panels/{id}.
func (h *Handler) GetPanel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := h.build(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, ok := report.Panel(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown panel %q", id))
		return
	}
	writeJSON(w, http.StatusOK, panelResponse{Selection: report.Selection.Values(), Panel: p})
}

type summaryResponse struct {
	Source  string   `json:"source"`
	Read    int      `json:"read"`
	Kept    int      `json:"kept"`
	Dropped int      `json:"dropped"`
	Clipped int      `json:"clipped"`
	Panels  []string `json:"panels"`
}

// Summary handles GET /api/summary.
func (h *Handler) Summary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, summaryResponse{
		Source:  h.summary.Source,
		Read:    h.summary.Read,
		Kept:    h.summary.Kept,
		Dropped: h.summary.Dropped,
		Clipped: h.summary.Clipped,
		Panels:  stats.PanelIDs(),
	})
}

func (h *Handler) build(r *http.Request) (stats.Report, error) {
	q := r.URL.Query()
	opts := h.opts
	if raw := q.Get("bins"); raw != "" {
		bins, err := strconv.Atoi(raw)
		if err != nil || bins < 1 || bins > maxBins {
			return stats.Report{}, fmt.Errorf("bins must be an integer between 1 and %d", maxBins)
		}
		opts.Bins = bins
	}
	src := h.ds
	if raw := q.Get("healthy"); raw != "" {
		healthy, err := strconv.ParseBool(raw)
		if err != nil {
			return stats.Report{}, fmt.Errorf("healthy must be true or false")
		}
		view, err := filter.Healthy(h.ds, healthy)
		if err != nil {
			return stats.Report{}, err
		}
		src = view
	}
	return stats.BuildReport(src, h.selection(q["diet"]), opts), nil
}

// selection reads repeated or comma-separated diet params. A present but blank param
// selects nothing.
func (h *Handler) selection(params []string) filter.Selection {
	if params == nil {
		return h.defaults
	}
	var values []string
	for _, p := range params {
		values = append(values, strings.Split(p, ",")...)
	}
	return filter.NewSelection(values...)
}
