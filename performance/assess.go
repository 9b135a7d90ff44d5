/*
Package performance scores a month of attendance and suggests a
performance premium.

The score is a fixed arithmetic heuristic, not a model:

  presenceRate = daysWorked / 22 x 100
  lateRate     = lateCount  / 22 x 100
  score        = clamp(0, 100, 70 + (presenceRate - 80) x 0.5
                                  - lateRate x 2
                                  + overtimeHours x 0.5)
  bonus        = round(baseSalary x score / 100 x 0.10)

Bands and the bonus use the unrounded score; Assessment.Score is the
rounded value for display. The result is advisory: nothing in the payroll
pipeline reads it unless the operator applies a PremiumSuggestion.
*/
package performance

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

const (
	// NominalWorkingDays is the month length the rates are computed on,
	// independent of the actual calendar.
	NominalWorkingDays = 22

	BaseScore       = 70.0
	PresenceTarget  = 80.0
	PresenceWeight  = 0.5
	LatePenalty     = 2.0
	OvertimeCredit  = 0.5
	BonusShare      = 0.10
	ExcellentScore  = 80.0
	GoodScore       = 60.0
	ProductiveScore = 70.0
	TeamAboveScore  = 75.0
)

// Anomaly thresholds. Each is checked independently.
const (
	MaxAbsentDays    = 5
	MaxLateCount     = 3
	MaxOvertimeHours = 20
	OverloadHours    = 10
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func riskFor(anomalies int) RiskLevel {
	switch {
	case anomalies == 0:
		return RiskLow
	case anomalies <= 2:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Assessment is the output of Assess.
type Assessment struct {
	Score           int
	RawScore        float64
	PresenceRate    float64
	LateRate        float64
	SuggestedBonus  payroll.Amount
	RiskLevel       RiskLevel
	Anomalies       []string
	Recommendations []string
	Insights        []string

	baseSalary payroll.Amount
}

// Assess scores facts for the given employee. Only malformed input is an
// error; any valid facts produce an assessment.
func Assess(facts payroll.AttendanceFacts, emp payroll.EmployeeBaseline) (Assessment, error) {
	if err := facts.Validate(); err != nil {
		return Assessment{}, err
	}
	if err := emp.Validate(); err != nil {
		return Assessment{}, err
	}

	overtime := facts.OvertimeHours.Float64()
	presence := float64(facts.DaysWorked) / NominalWorkingDays * 100
	late := float64(facts.LateCount) / NominalWorkingDays * 100

	raw := BaseScore +
		(presence-PresenceTarget)*PresenceWeight -
		late*LatePenalty +
		overtime*OvertimeCredit
	raw = math.Max(0, math.Min(100, raw))

	bonus := emp.BaseSalaryMonthly.
		Mul(decimal.NewFromFloat(raw)).
		Mul(decimal.NewFromFloat(BonusShare)).
		Div(decimal.NewFromInt(100)).
		Round()
	bonus.Unit = payroll.UnitDZD

	var anomalies []string
	if facts.DaysAbsent > MaxAbsentDays {
		anomalies = append(anomalies, fmt.Sprintf("high absence: %d days", facts.DaysAbsent))
	}
	if facts.LateCount > MaxLateCount {
		anomalies = append(anomalies, fmt.Sprintf("frequent lateness: %d times", facts.LateCount))
	}
	if overtime > MaxOvertimeHours {
		anomalies = append(anomalies, fmt.Sprintf("excessive overtime: %sh", facts.OvertimeHours.Value))
	}

	return Assessment{
		Score:           int(math.Floor(raw + 0.5)),
		RawScore:        raw,
		PresenceRate:    presence,
		LateRate:        late,
		SuggestedBonus:  bonus,
		RiskLevel:       riskFor(len(anomalies)),
		Anomalies:       anomalies,
		Recommendations: recommendations(raw, bonus),
		Insights:        insights(raw, presence, overtime),
		baseSalary:      emp.BaseSalaryMonthly,
	}, nil
}

func recommendations(score float64, bonus payroll.Amount) []string {
	switch {
	case score >= ExcellentScore:
		return []string{
			"Excellent profile: eligible for a performance premium",
			fmt.Sprintf("Suggested premium: %s DZD", bonus.Value),
		}
	case score >= GoodScore:
		return []string{
			"Good profile: standard premium recommended",
			"Watch lateness to improve the score",
		}
	default:
		return []string{
			"Profile needs improvement: review meeting recommended",
			"Reduce absences to raise the score",
		}
	}
}

func insights(score, presence, overtime float64) []string {
	productivity := "needs improvement"
	if score >= ProductiveScore {
		productivity = "good"
	}
	trend := "normal"
	if overtime > OverloadHours {
		trend = "overload"
	}
	team := "average"
	if score >= TeamAboveScore {
		team = "above average"
	}
	return []string{
		fmt.Sprintf("Presence rate: %.1f%%", presence),
		"Productivity: " + productivity,
		"Trend: " + trend,
		"Team: " + team,
	}
}
