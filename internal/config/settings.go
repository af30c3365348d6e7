package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

// Defaults for settings without a config value or flag.
const (
	DefaultBins       = 20
	DefaultPlotHeight = 12
	DefaultPort       = 8080
	DefaultLogLevel   = "info"
)

// Flag names that map onto config keys.
const (
	FlagData       = "data"
	FlagSheet      = "sheet"
	FlagDB         = "db"
	FlagDiet       = "diet"
	FlagBins       = "bins"
	FlagPlotHeight = "plot-height"
	FlagPort       = "port"
	FlagLogLevel   = "log-level"
	FlagOnInvalid  = "on-invalid"
	FlagOnNegative = "on-negative"
	FlagFoldCase   = "fold-case"
)

// Settings are the resolved values used by every command.
type Settings struct {
	DataPath   string
	Sheet      string
	DBPath     string
	Required   []string
	OnInvalid  string
	OnNegative string
	FoldCase   bool
	Aliases    map[string]string
	Diets      []string
	Bins       int
	PlotHeight int
	Port       int
	LogLevel   string
}

// DefaultSettings returns settings with built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		DBPath:     DefaultDBPath(),
		Required:   append([]string(nil), dataset.BaseColumns...),
		OnInvalid:  string(dataset.PolicyReject),
		OnNegative: string(dataset.PolicyReject),
		Bins:       DefaultBins,
		PlotHeight: DefaultPlotHeight,
		Port:       DefaultPort,
		LogLevel:   DefaultLogLevel,
	}
}

// Apply copies values present in fc over s. A value is skipped when changed reports that
// its flag was set on the command line. changed may be nil.
func (s *Settings) Apply(fc FileConfig, changed func(flag string) bool) {
	if changed == nil {
		changed = func(string) bool { return false }
	}
	apply(changed, FlagData, &s.DataPath, fc.Dataset.Path)
	apply(changed, FlagSheet, &s.Sheet, fc.Dataset.Sheet)
	apply(changed, FlagDB, &s.DBPath, fc.Dataset.DB)
	apply(changed, FlagOnInvalid, &s.OnInvalid, fc.Dataset.OnInvalid)
	apply(changed, FlagOnNegative, &s.OnNegative, fc.Dataset.OnNegative)
	apply(changed, FlagFoldCase, &s.FoldCase, fc.Dataset.FoldCase)
	apply(changed, FlagBins, &s.Bins, fc.Dashboard.Bins)
	apply(changed, FlagPlotHeight, &s.PlotHeight, fc.Dashboard.PlotHeight)
	apply(changed, FlagPort, &s.Port, fc.Serve.Port)
	apply(changed, FlagLogLevel, &s.LogLevel, fc.LogLevel)
	if fc.Dataset.Required != nil {
		s.Required = append([]string(nil), fc.Dataset.Required...)
	}
	if fc.Dashboard.Diets != nil && !changed(FlagDiet) {
		s.Diets = append([]string(nil), fc.Dashboard.Diets...)
	}
	if len(fc.Columns) > 0 {
		s.Aliases = make(map[string]string, len(fc.Columns))
		for alias, col := range fc.Columns {
			s.Aliases[alias] = col
		}
	}
}

func apply[T any](changed func(string) bool, flag string, target, value *T) {
	if value == nil {
		return
	}
	if changed(flag) {
		return
	}
	*target = *value
}

// Validate checks the resolved settings.
func (s *Settings) Validate() error {
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	for _, name := range []*string{&s.OnInvalid, &s.OnNegative} {
		if policy, err := dataset.ParsePolicy(*name); err == nil {
			*name = string(policy)
		}
	}
	return validation.ValidateStruct(s,
		validation.Field(&s.OnInvalid, validation.Required,
			validation.In(string(dataset.PolicyReject), string(dataset.PolicyDrop))),
		validation.Field(&s.OnNegative, validation.Required,
			validation.In(string(dataset.PolicyReject), string(dataset.PolicyDrop), string(dataset.PolicyClip))),
		validation.Field(&s.Required, validation.Each(validation.In(baseColumns()...))),
		validation.Field(&s.Aliases, validation.By(validateAliases)),
		validation.Field(&s.Bins, validation.Required, validation.Min(1), validation.Max(200)),
		validation.Field(&s.PlotHeight, validation.Required, validation.Min(4), validation.Max(60)),
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

func baseColumns() []any {
	out := make([]any, len(dataset.BaseColumns))
	for i, col := range dataset.BaseColumns {
		out[i] = col
	}
	return out
}

func validateAliases(value any) error {
	aliases, _ := value.(map[string]string)
	for alias, col := range aliases {
		if strings.TrimSpace(alias) == "" {
			return errors.New("alias must not be empty")
		}
		known := false
		for _, base := range dataset.BaseColumns {
			if col == base {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("alias %q targets unknown column %q", alias, col)
		}
	}
	return nil
}

// DatasetOptions builds loader options. Configured aliases extend the defaults and win
// on conflicts.
func (s Settings) DatasetOptions() dataset.Options {
	opts := dataset.DefaultOptions()
	for alias, col := range s.Aliases {
		opts.Aliases[strings.TrimSpace(alias)] = col
	}
	opts.FoldCase = s.FoldCase
	opts.Required = append([]string(nil), s.Required...)
	opts.OnInvalid = dataset.Policy(s.OnInvalid)
	opts.OnNegative = dataset.Policy(s.OnNegative)
	return opts
}

// SlogLevel maps LogLevel to a slog level. Unknown names map to info.
func (s Settings) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Address returns the HTTP listen address.
func (s Settings) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}
