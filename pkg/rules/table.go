// Package rules holds the declarative alert rule table and the pure
// evaluators that turn daily metric history into candidate alerts.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

//go:embed goals.yaml
var defaultTable []byte

const (
	defaultCriticalRatio = 0.3
	defaultDoDWarning    = 0.2
	defaultDoDCritical   = 0.3
	defaultCauseCutoff   = 0.2
)

// Rule is one static threshold rule of a goal.
type Rule struct {
	Threshold float64          `yaml:"threshold" json:"threshold"`
	Days      int              `yaml:"days"      json:"days"`
	Condition domain.Condition `yaml:"condition" json:"condition"`
}

// Goal is a named business objective with its default rules.
type Goal struct {
	Name  string                 `yaml:"name"  json:"name"`
	Rules map[domain.Metric]Rule `yaml:"rules" json:"rules"`
}

// Ratios is a warning/critical pair of fractional change thresholds.
type Ratios struct {
	Warning  float64 `yaml:"warning"  json:"warning"`
	Critical float64 `yaml:"critical" json:"critical"`
}

// MetricMeta describes how a metric is displayed and judged.
type MetricMeta struct {
	DisplayName   string           `yaml:"display_name"   json:"display_name"`
	Direction     domain.Direction `yaml:"direction"      json:"direction"`
	CriticalRatio float64          `yaml:"critical_ratio" json:"critical_ratio"`
	DayOverDay    *Ratios          `yaml:"day_over_day"   json:"day_over_day,omitempty"`
}

// Remediation is the content attached to an alert for the end user.
type Remediation struct {
	CheckItems   []domain.CheckItem  `yaml:"check_items"  json:"check_items"`
	Improvements map[string][]string `yaml:"improvements" json:"improvements"`
}

// DayOverDayConfig holds the cause tables for large day-over-day moves.
type DayOverDayConfig struct {
	CauseCutoff float64                `yaml:"cause_cutoff" json:"cause_cutoff"`
	Causes      map[string]Remediation `yaml:"causes"       json:"causes"`
}

// GoalTable is the complete rule table loaded at startup.
type GoalTable struct {
	DefaultGoal string                        `yaml:"default_goal" json:"default_goal"`
	Metrics     map[domain.Metric]MetricMeta  `yaml:"metrics"      json:"metrics"`
	Goals       map[string]Goal               `yaml:"goals"        json:"goals"`
	Remediation map[domain.Metric]Remediation `yaml:"remediation"  json:"remediation"`
	DayOverDay  DayOverDayConfig              `yaml:"day_over_day" json:"day_over_day"`
}

var loadDefault = sync.OnceValues(func() (*GoalTable, error) {
	return ParseGoalTable(defaultTable)
})

// Default returns the embedded rule table. It panics if the embedded file is
// invalid, which is a build defect.
func Default() *GoalTable {
	t, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded goal table: %v", err))
	}
	return t
}

// LoadGoalTable reads a rule table from path. An empty path returns the
// embedded default.
func LoadGoalTable(path string) (*GoalTable, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading goal table: %w", err)
	}

	return ParseGoalTable(data)
}

// ParseGoalTable decodes and validates a YAML rule table.
func ParseGoalTable(data []byte) (*GoalTable, error) {
	var t GoalTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing goal table: %w", err)
	}

	t.applyDefaults()

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid goal table: %w", err)
	}

	return &t, nil
}

func (t *GoalTable) applyDefaults() {
	if t.Metrics == nil {
		t.Metrics = make(map[domain.Metric]MetricMeta)
	}
	for m, meta := range t.Metrics {
		if meta.CriticalRatio == 0 {
			meta.CriticalRatio = defaultCriticalRatio
		}
		if meta.Direction == "" {
			meta.Direction = domain.HigherBetter
		}
		if meta.DisplayName == "" {
			meta.DisplayName = string(m)
		}
		t.Metrics[m] = meta
	}
	if t.DayOverDay.CauseCutoff == 0 {
		t.DayOverDay.CauseCutoff = defaultCauseCutoff
	}
}

func (t *GoalTable) validate() error {
	var errs []error

	if len(t.Goals) == 0 {
		errs = append(errs, errors.New("at least one goal is required"))
	}

	if _, ok := t.Goals[t.DefaultGoal]; !ok {
		errs = append(errs, fmt.Errorf("default_goal %q is not defined", t.DefaultGoal))
	}

	for name, g := range t.Goals {
		for m, r := range g.Rules {
			if _, ok := t.Metrics[m]; !ok {
				errs = append(errs, fmt.Errorf("goal %s: unknown metric %q", name, m))
			}
			if r.Days < 1 {
				errs = append(errs, fmt.Errorf("goal %s: %s days must be at least 1", name, m))
			}
			switch r.Condition {
			case domain.ConditionBelow, domain.ConditionAbove, domain.ConditionEqual:
			default:
				errs = append(errs, fmt.Errorf("goal %s: %s has invalid condition %q", name, m, r.Condition))
			}
		}
	}

	for m, meta := range t.Metrics {
		if meta.Direction != domain.HigherBetter && meta.Direction != domain.LowerBetter {
			errs = append(errs, fmt.Errorf("metric %s: invalid direction %q", m, meta.Direction))
		}
		if d := meta.DayOverDay; d != nil && d.Critical < d.Warning {
			errs = append(errs, fmt.Errorf("metric %s: day_over_day critical must be >= warning", m))
		}
	}

	return errors.Join(errs...)
}

// Goal returns the named goal, falling back to the default goal when the name
// is unknown. The returned name is the one actually used.
func (t *GoalTable) Goal(name string) (string, Goal) {
	if g, ok := t.Goals[name]; ok {
		return name, g
	}
	return t.DefaultGoal, t.Goals[t.DefaultGoal]
}

// GoalNames returns the defined goal keys in sorted order.
func (t *GoalTable) GoalNames() []string {
	names := make([]string, 0, len(t.Goals))
	for n := range t.Goals {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Meta returns the metric metadata, or sane defaults for unknown metrics.
func (t *GoalTable) Meta(m domain.Metric) MetricMeta {
	if meta, ok := t.Metrics[m]; ok {
		return meta
	}
	return MetricMeta{
		DisplayName:   string(m),
		Direction:     domain.HigherBetter,
		CriticalRatio: defaultCriticalRatio,
	}
}

// DayOverDayRatios returns the configured day-over-day thresholds for m.
func (t *GoalTable) DayOverDayRatios(m domain.Metric) Ratios {
	if d := t.Meta(m).DayOverDay; d != nil {
		return *d
	}
	return Ratios{Warning: defaultDoDWarning, Critical: defaultDoDCritical}
}

// DisplayName returns the human label for m.
func (t *GoalTable) DisplayName(m domain.Metric) string {
	return t.Meta(m).DisplayName
}

// causeFor returns the day-over-day cause content for m, or the default entry.
func (t *GoalTable) causeFor(m domain.Metric) Remediation {
	if r, ok := t.DayOverDay.Causes[string(m)]; ok {
		return r
	}
	return t.DayOverDay.Causes["default"]
}
