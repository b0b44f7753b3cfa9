package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"genka/internal/budget"
	"genka/internal/core"
	"genka/internal/validate"
)

// Profile describes one project: which source periods to read, what their
// control totals are, and the parameters of the budget table.
type Profile struct {
	Project string          `yaml:"project"`
	Periods []PeriodProfile `yaml:"periods"`
	Window  WindowProfile   `yaml:"window"`
	TaxRate string          `yaml:"tax_rate"`
}

type PeriodProfile struct {
	Label    string `yaml:"label"`
	Month    string `yaml:"month"`
	Expected *int64 `yaml:"expected,omitempty"`
}

type WindowProfile struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

func int64p(v int64) *int64 { return &v }

// DefaultProfile is the fishing-port revetment project the tool was first
// built for.
func DefaultProfile() Profile {
	return Profile{
		Project: "海潟漁港",
		Periods: []PeriodProfile{
			{Label: "10月度", Month: "2025-10", Expected: int64p(10_933_337)},
			{Label: "11月度", Month: "2025-11", Expected: int64p(8_458_604)},
			{Label: "12月度", Month: "2025-12", Expected: int64p(4_332_077)},
		},
		Window:  WindowProfile{Start: budget.DefaultWindow.Start, End: budget.DefaultWindow.End},
		TaxRate: "0.10",
	}
}

// LoadProfile reads a YAML profile. Omitted fields keep their defaults,
// except periods which replace the default list when present.
func LoadProfile(path string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(b)
}

func ParseProfile(b []byte) (Profile, error) {
	p := DefaultProfile()
	var in Profile
	if err := yaml.Unmarshal(b, &in); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if in.Project != "" {
		p.Project = in.Project
	}
	if len(in.Periods) > 0 {
		p.Periods = in.Periods
	}
	if in.Window.Start != "" {
		p.Window.Start = in.Window.Start
	}
	if in.Window.End != "" {
		p.Window.End = in.Window.End
	}
	if in.TaxRate != "" {
		p.TaxRate = in.TaxRate
	}
	return p, nil
}

// PeriodList returns the configured periods in order.
func (p Profile) PeriodList() []core.Period {
	out := make([]core.Period, len(p.Periods))
	for i, pp := range p.Periods {
		out[i] = core.Period{Label: pp.Label, Month: pp.Month}
	}
	return out
}

// Expectations returns control totals for the periods that declare one.
func (p Profile) Expectations() []validate.Expectation {
	var out []validate.Expectation
	for _, pp := range p.Periods {
		if pp.Expected != nil {
			out = append(out, validate.Expectation{Label: pp.Label, Total: *pp.Expected})
		}
	}
	return out
}

func (p Profile) BudgetWindow() budget.Window {
	return budget.Window{Start: p.Window.Start, End: p.Window.End}
}

// Rate parses the tax rate.
func (p Profile) Rate() (decimal.Decimal, error) {
	r, err := decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid tax rate '%s': %w", p.TaxRate, err)
	}
	if !r.IsPositive() || r.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, fmt.Errorf("invalid tax rate '%s': must be in (0, 1)", p.TaxRate)
	}
	return r, nil
}

func (p Profile) problems() []string {
	var out []string
	if len(p.Periods) == 0 {
		out = append(out, "profile must list at least one period")
	}
	seen := map[string]bool{}
	for _, pp := range p.Periods {
		cp := core.Period{Label: pp.Label, Month: pp.Month}
		if err := cp.Validate(); err != nil {
			out = append(out, fmt.Sprintf("invalid period '%s' (%s): %v", pp.Label, pp.Month, err))
		}
		if seen[pp.Label] {
			out = append(out, fmt.Sprintf("duplicate period label '%s'", pp.Label))
		}
		seen[pp.Label] = true
	}
	start, errS := time.Parse("2006-01", p.Window.Start)
	end, errE := time.Parse("2006-01", p.Window.End)
	switch {
	case errS != nil || errE != nil:
		out = append(out, fmt.Sprintf("invalid budget window %s..%s: months must be YYYY-MM", p.Window.Start, p.Window.End))
	case end.Before(start):
		out = append(out, fmt.Sprintf("invalid budget window %s..%s: end before start", p.Window.Start, p.Window.End))
	}
	if _, err := p.Rate(); err != nil {
		out = append(out, err.Error())
	}
	return out
}
