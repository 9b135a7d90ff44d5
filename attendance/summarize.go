package attendance

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/warp/payroll-engine/payroll"
)

// Summary is the outcome of Summarize.
type Summary struct {
	Facts      payroll.AttendanceFacts
	Considered int
	Ignored    int
	Warnings   []payroll.Warning
}

// Summarize reduces the records of one period to AttendanceFacts.
//
// An invalid record fails the whole call with a *payroll.ValidationError
// naming its index. No records yields all-zero facts: absence is never
// inferred from missing data.
func Summarize(period payroll.PayPeriod, records []Record) (Summary, error) {
	if err := period.Validate(); err != nil {
		return Summary{}, err
	}

	facts := payroll.AttendanceFacts{OvertimeHours: payroll.Hours(0)}
	s := Summary{}
	seen := make(map[string]int, len(records))

	for i, r := range records {
		if err := r.Validate(); err != nil {
			var vErr *payroll.ValidationError
			if errors.As(err, &vErr) {
				return Summary{}, &payroll.ValidationError{
					Field:  strings.Replace(vErr.Field, "attendance.", fmt.Sprintf("attendance.records[%d].", i), 1),
					Reason: vErr.Reason,
				}
			}
			return Summary{}, err
		}
		if !period.Contains(r.Date) {
			s.Ignored++
			continue
		}
		s.Considered++
		seen[r.Day()]++

		switch {
		case r.Status.Worked():
			facts.DaysWorked++
		case r.Status == StatusAbsent:
			facts.DaysAbsent++
		}
		if r.Status == StatusLate {
			facts.LateCount++
		}
		facts.OvertimeHours = facts.OvertimeHours.Add(r.Overtime())
	}

	if s.Ignored > 0 {
		s.Warnings = append(s.Warnings, payroll.Warning{
			Code:    payroll.WarnOutsidePeriod,
			Message: fmt.Sprintf("%d record(s) outside %s ignored", s.Ignored, period),
		})
	}
	if dups := duplicateDays(seen); len(dups) > 0 {
		s.Warnings = append(s.Warnings, payroll.Warning{
			Code:    payroll.WarnDuplicateDay,
			Message: "more than one record on " + strings.Join(dups, ", "),
		})
	}
	if days, limit := facts.DaysWorked+facts.DaysAbsent, period.WorkingDays(); days > limit {
		s.Warnings = append(s.Warnings, payroll.Warning{
			Code:    payroll.WarnAttendanceOverflow,
			Message: fmt.Sprintf("%d worked and absent days exceed the %d working days of %s", days, limit, period),
		})
	}

	s.Facts = facts
	return s, nil
}

func duplicateDays(seen map[string]int) []string {
	var out []string
	for day, n := range seen {
		if n > 1 {
			out = append(out, day)
		}
	}
	sort.Strings(out)
	return out
}
