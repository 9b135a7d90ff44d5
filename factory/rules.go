/*
Package factory converts rules documents into payroll.Rules.

PURPOSE:
  Legislation changes (a new IRG schedule, a revised CNAS rate) are data,
  not code. A rules document lists only what differs from the canonical
  Algerian rules; every omitted field keeps its DefaultRules value.

DOCUMENT (YAML, or JSON which parses as YAML):
  name: finance-law-2025
  cnas:
    employee_rate: 0.09
    employer_rate: 0.26
  irg:
    brackets:
      - {floor: 0,      rate: 0}
      - {floor: 30000,  rate: 0.20}
      - {floor: 120000, rate: 0.30}
      - {floor: 360000, rate: 0.35}
  standard_monthly_hours: 173.33
  working_days_per_month: 22
  overtime_multiplier: 1.5

  Unknown keys are rejected so a typo cannot silently keep a default.
  The resulting Rules are validated before they are returned.

USAGE:
  f := factory.NewRulesFactory()
  rules, err := f.LoadFile("rules.yaml")
  calc, err := payroll.NewCalculator(rules)

SEE ALSO:
  - payroll/rules.go: Rules type and validation
  - cmd/server: loads RULES_FILE at startup
*/
package factory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// RulesDocument is the file representation of a rules set.
type RulesDocument struct {
	Name                 string        `yaml:"name,omitempty" json:"name,omitempty"`
	CNAS                 *CNASDocument `yaml:"cnas,omitempty" json:"cnas,omitempty"`
	IRG                  *IRGDocument  `yaml:"irg,omitempty" json:"irg,omitempty"`
	StandardMonthlyHours *float64      `yaml:"standard_monthly_hours,omitempty" json:"standard_monthly_hours,omitempty"`
	WorkingDaysPerMonth  *int          `yaml:"working_days_per_month,omitempty" json:"working_days_per_month,omitempty"`
	OvertimeMultiplier   *float64      `yaml:"overtime_multiplier,omitempty" json:"overtime_multiplier,omitempty"`
}

type CNASDocument struct {
	EmployeeRate *float64 `yaml:"employee_rate,omitempty" json:"employee_rate,omitempty"`
	EmployerRate *float64 `yaml:"employer_rate,omitempty" json:"employer_rate,omitempty"`
}

type IRGDocument struct {
	Brackets []BracketDocument `yaml:"brackets" json:"brackets"`
}

type BracketDocument struct {
	Floor float64 `yaml:"floor" json:"floor"`
	Rate  float64 `yaml:"rate" json:"rate"`
}

// =============================================================================
// RULES FACTORY
// =============================================================================

// RulesFactory builds payroll.Rules on top of a base rules set.
type RulesFactory struct {
	base payroll.Rules
}

// NewRulesFactory creates a factory whose omitted fields fall back to
// payroll.DefaultRules.
func NewRulesFactory() *RulesFactory {
	return &RulesFactory{base: payroll.DefaultRules()}
}

// ParseRules decodes a YAML or JSON document. An empty document yields
// the base rules.
func (f *RulesFactory) ParseRules(data []byte) (payroll.Rules, error) {
	var doc RulesDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return payroll.Rules{}, fmt.Errorf("failed to parse rules document: %w", err)
	}
	return f.FromDocument(doc)
}

// LoadFile reads and parses a rules file.
func (f *RulesFactory) LoadFile(path string) (payroll.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	rules, err := f.ParseRules(data)
	if err != nil {
		return payroll.Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// FromDocument overlays doc on the base rules and validates the result.
func (f *RulesFactory) FromDocument(doc RulesDocument) (payroll.Rules, error) {
	rules := f.base.Clone()

	if doc.CNAS != nil {
		setDecimal(&rules.CNASEmployeeRate, doc.CNAS.EmployeeRate)
		setDecimal(&rules.CNASEmployerRate, doc.CNAS.EmployerRate)
	}
	if doc.IRG != nil {
		rules.IRGBrackets = make([]payroll.Bracket, len(doc.IRG.Brackets))
		for i, b := range doc.IRG.Brackets {
			rules.IRGBrackets[i] = payroll.Bracket{
				Floor: decimal.NewFromFloat(b.Floor),
				Rate:  decimal.NewFromFloat(b.Rate),
			}
		}
	}
	setDecimal(&rules.StandardMonthlyHours, doc.StandardMonthlyHours)
	setDecimal(&rules.OvertimeMultiplier, doc.OvertimeMultiplier)
	if doc.WorkingDaysPerMonth != nil {
		rules.WorkingDaysPerMonth = *doc.WorkingDaysPerMonth
	}

	if err := rules.Validate(); err != nil {
		return payroll.Rules{}, err
	}
	return rules, nil
}

// ToDocument converts rules to a fully populated document.
func (f *RulesFactory) ToDocument(rules payroll.Rules) RulesDocument {
	brackets := make([]BracketDocument, len(rules.IRGBrackets))
	for i, b := range rules.IRGBrackets {
		brackets[i] = BracketDocument{Floor: b.Floor.InexactFloat64(), Rate: b.Rate.InexactFloat64()}
	}
	days := rules.WorkingDaysPerMonth
	return RulesDocument{
		CNAS: &CNASDocument{
			EmployeeRate: floatPtr(rules.CNASEmployeeRate),
			EmployerRate: floatPtr(rules.CNASEmployerRate),
		},
		IRG:                  &IRGDocument{Brackets: brackets},
		StandardMonthlyHours: floatPtr(rules.StandardMonthlyHours),
		WorkingDaysPerMonth:  &days,
		OvertimeMultiplier:   floatPtr(rules.OvertimeMultiplier),
	}
}

// Marshal renders rules as YAML.
func (f *RulesFactory) Marshal(rules payroll.Rules) ([]byte, error) {
	return yaml.Marshal(f.ToDocument(rules))
}

// =============================================================================
// HELPERS
// =============================================================================

func setDecimal(dst *decimal.Decimal, v *float64) {
	if v != nil {
		*dst = decimal.NewFromFloat(*v)
	}
}

func floatPtr(d decimal.Decimal) *float64 {
	v := d.InexactFloat64()
	return &v
}
