package stats

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/mealboard/internal/dataset"
	"github.com/verte-zerg/mealboard/internal/filter"
)

// Tab groups panels on the dashboard.
type Tab int

// Dashboard tabs.
const (
	TabOverview Tab = iota
	TabNutrition
	TabPrep
)

// TabNames are the display names of the tabs, indexed by Tab.
var TabNames = []string{"Overview", "Nutritional Analysis", "Prep Insights"}

func (t Tab) String() string {
	if int(t) < 0 || int(t) >= len(TabNames) {
		return "unknown"
	}
	return TabNames[t]
}

// Panel identifiers.
const (
	PanelHealthyShare   = "healthy-share"
	PanelDietCounts     = "diet-counts"
	PanelCaloriesBox    = "calories-by-health"
	PanelCorrelation    = "macro-correlation"
	PanelPrepScatter    = "prep-vs-calories"
	PanelIngredientHist = "ingredients-histogram"
	PanelDietMeans      = "diet-means"
)

// DefaultBins is the ingredient histogram resolution.
const DefaultBins = 20

// MacroKeys are the columns of the correlation panel.
var MacroKeys = []string{dataset.ColCalories, dataset.ColFat, dataset.ColProtein, dataset.ColCarbs}

// Options tune panel construction.
type Options struct {
	Bins int
}

// Panel is one computed chart. Err holds ErrNoData for an empty input or the failure
// that stopped this panel; other panels are unaffected.
type Panel struct {
	ID          string
	Tab         Tab
	Title       string
	Description string
	Unfiltered  bool
	Rows        int
	Data        any
	Err         error
}

// Empty reports whether the panel had no rows to aggregate.
func (p Panel) Empty() bool { return errors.Is(p.Err, ErrNoData) }

// Failed reports whether the panel hit an error other than missing data.
func (p Panel) Failed() bool { return p.Err != nil && !p.Empty() }

// ShareData backs the healthy-share panel.
type ShareData struct {
	Counts []Count   `json:"counts"`
	Shares []float64 `json:"shares"`
}

// DietMeans backs the diet-means panel.
type DietMeans struct {
	Calories  []Mean `json:"calories"`
	CalPerMin []Mean `json:"cal_per_min"`
}

// Report is the full dashboard state for one selection.
type Report struct {
	Selection filter.Selection
	Diets     []string
	Rows      int
	Total     int
	Cards     Cards
	Panels    []Panel
}

// Panel returns the panel with the given id.
func (r Report) Panel(id string) (Panel, bool) {
	for _, p := range r.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}

// PanelsFor returns the panels of one tab in display order.
func (r Report) PanelsFor(tab Tab) []Panel {
	var out []Panel
	for _, p := range r.Panels {
		if p.Tab == tab {
			out = append(out, p)
		}
	}
	return out
}

type panelSpec struct {
	id          string
	tab         Tab
	title       string
	description string
	unfiltered  bool
	build       func(t dataset.Table, env panelEnv) (any, error)
}

type panelEnv struct {
	opts  Options
	diets []string
}

// PanelIDs lists every panel in display order.
func PanelIDs() []string {
	out := make([]string, len(panelSpecs))
	for i, spec := range panelSpecs {
		out[i] = spec.id
	}
	return out
}

var panelSpecs = []panelSpec{
	{
		id:          PanelHealthyShare,
		tab:         TabOverview,
		title:       "Healthy vs Non-Healthy Meals",
		description: "Share of meals flagged healthy across the whole dataset.",
		unfiltered:  true,
		build: func(t dataset.Table, _ panelEnv) (any, error) {
			counts, err := ValueCounts(t, dataset.ColHealthy)
			if err != nil {
				return nil, err
			}
			return ShareData{Counts: counts, Shares: Shares(counts)}, nil
		},
	},
	{
		id:          PanelDietCounts,
		tab:         TabOverview,
		title:       "Diet Type Count",
		description: "Meals per diet, split by healthiness.",
		build: func(t dataset.Table, _ panelEnv) (any, error) {
			return CrossCounts(t, dataset.ColDiet, dataset.ColHealthy)
		},
	},
	{
		id:          PanelCaloriesBox,
		tab:         TabNutrition,
		title:       "Calories Distribution by Health",
		description: "Calorie quartiles for healthy and non-healthy meals.",
		build: func(t dataset.Table, _ panelEnv) (any, error) {
			return Describe(t, dataset.ColHealthy, dataset.ColCalories)
		},
	},
	{
		id:          PanelCorrelation,
		tab:         TabNutrition,
		title:       "Macronutrient Correlation",
		description: "Pearson correlation of calories, fat, protein and carbs over all meals.",
		unfiltered:  true,
		build: func(t dataset.Table, _ panelEnv) (any, error) {
			return CorrelationMatrix(t, MacroKeys)
		},
	},
	{
		id:          PanelPrepScatter,
		tab:         TabPrep,
		title:       "Prep Time vs Calories",
		description: "Each meal as a point, colored by healthiness.",
		build: func(t dataset.Table, _ panelEnv) (any, error) {
			return Points(t, dataset.ColPrepTime, dataset.ColCalories, dataset.ColHealthy)
		},
	},
	{
		id:          PanelIngredientHist,
		tab:         TabPrep,
		title:       "Ingredient Count Distribution",
		description: "Number of ingredients per meal, stacked by healthiness.",
		build: func(t dataset.Table, env panelEnv) (any, error) {
			return BuildHistogram(t, dataset.ColIngredients, env.opts.Bins, dataset.ColHealthy)
		},
	},
	{
		id:          PanelDietMeans,
		tab:         TabPrep,
		title:       "Calories and Efficiency by Diet",
		description: "Mean calories and mean calories per prep minute for each diet.",
		build: func(t dataset.Table, env panelEnv) (any, error) {
			calories, err := GroupMean(t, dataset.ColDiet, dataset.ColCalories, env.diets...)
			if err != nil {
				return nil, err
			}
			perMin, err := GroupMean(t, dataset.ColDiet, dataset.ColCalPerMin, env.diets...)
			if err != nil {
				return nil, err
			}
			return DietMeans{Calories: calories, CalPerMin: perMin}, nil
		},
	},
}

// BuildReport computes every panel for the rows of ds selected by sel. Panels flagged
// Unfiltered use all of ds. A failing panel records its error and the rest still build.
func BuildReport(ds dataset.Table, sel filter.Selection, opts Options) Report {
	if opts.Bins <= 0 {
		opts.Bins = DefaultBins
	}
	diets, _ := dataset.Levels(ds, dataset.ColDiet)
	view := filter.Apply(ds, sel)
	env := panelEnv{opts: opts, diets: diets}

	report := Report{
		Selection: sel,
		Diets:     diets,
		Rows:      view.Len(),
		Total:     ds.Len(),
		Cards:     SummaryCards(view),
		Panels:    make([]Panel, 0, len(panelSpecs)),
	}
	for _, spec := range panelSpecs {
		var src dataset.Table = view
		if spec.unfiltered {
			src = ds
		}
		report.Panels = append(report.Panels, runPanel(spec, src, env))
	}
	return report
}

func runPanel(spec panelSpec, t dataset.Table, env panelEnv) (p Panel) {
	p = Panel{
		ID:          spec.id,
		Tab:         spec.tab,
		Title:       spec.title,
		Description: spec.description,
		Unfiltered:  spec.unfiltered,
		Rows:        t.Len(),
	}
	defer func() {
		if r := recover(); r != nil {
			p.Data = nil
			p.Err = fmt.Errorf("panel %s: %v", spec.id, r)
		}
	}()
	if t.Len() == 0 {
		p.Err = ErrNoData
		return p
	}
	data, err := spec.build(t, env)
	if err != nil {
		p.Err = err
		return p
	}
	p.Data = data
	return p
}
