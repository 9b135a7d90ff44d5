package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/payroll"
	"golang.org/x/sync/errgroup"
)

// Loader fetches what a calculation needs from the backend and reduces it
// to a payroll.Input. The calculation itself never waits on the network.
type Loader struct {
	Client *Client
}

func NewLoader(c *Client) *Loader {
	return &Loader{Client: c}
}

// Prepared is the result of Loader.Prepare.
type Prepared struct {
	Employee   Employee
	Attendance attendance.Summary
	Input      payroll.Input
}

// Prepare fetches the employee and their attendance concurrently, then
// summarizes the attendance for period. Rows tagged with another
// employee are dropped. The returned Input has empty
// Adjustments for the caller to fill. Invalid employee or attendance data
// sent by the backend is reported as ErrBackend, not as caller input.
func (l *Loader) Prepare(ctx context.Context, sess Session, employeeID ID, period payroll.PayPeriod) (Prepared, error) {
	if err := period.Validate(); err != nil {
		return Prepared{}, err
	}

	var (
		emp  Employee
		rows []AttendanceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emp, err = l.Client.GetEmployee(gctx, sess, employeeID)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
		}
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = l.Client.ListAttendances(gctx, sess, employeeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Prepared{}, err
	}

	baseline, err := emp.Baseline()
	if err != nil {
		return Prepared{}, fmt.Errorf("%w: employee %s: %w", ErrBackend, employeeID, err)
	}
	own := rows[:0]
	for _, r := range rows {
		if r.EmployeeID == "" || r.EmployeeID == employeeID {
			own = append(own, r)
		}
	}
	records, err := ToRecords(own)
	if err != nil {
		return Prepared{}, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	summary, err := attendance.Summarize(period, records)
	if err != nil {
		return Prepared{}, err
	}

	return Prepared{
		Employee:   emp,
		Attendance: summary,
		Input: payroll.Input{
			Period:   period,
			Employee: baseline,
			Facts:    summary.Facts,
		},
	}, nil
}
