package backend

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/payroll"
)

// ID is a backend identifier. The backend sends numbers; some endpoints
// send them as strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON sends numeric ids as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Session is an authenticated backend session. It is passed explicitly to
// every call that needs it.
type Session struct {
	Token string
	User  User
}

func (s Session) Valid() bool { return s.Token != "" }

type Department struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Employee is the subset of the backend employee record the engine uses.
// salaire_base arrives as a number or a decimal string.
type Employee struct {
	ID          ID              `json:"id"`
	Matricule   string          `json:"matricule"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Position    string          `json:"position"`
	Status      string          `json:"status"`
	SalaireBase decimal.Decimal `json:"salaire_base"`
	Department  *Department     `json:"department,omitempty"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Baseline converts the record to the calculator's employee input.
func (e Employee) Baseline() (payroll.EmployeeBaseline, error) {
	b := payroll.EmployeeBaseline{
		ID:                string(e.ID),
		BaseSalaryMonthly: payroll.Amount{Value: e.SalaireBase, Unit: payroll.UnitDZD},
	}
	if err := b.Validate(); err != nil {
		return payroll.EmployeeBaseline{}, err
	}
	return b, nil
}

// AttendanceRecord is one row of /attendances.
type AttendanceRecord struct {
	ID          ID              `json:"id"`
	EmployeeID  ID              `json:"employee_id"`
	Date        string          `json:"date"`
	CheckIn     *string         `json:"check_in"`
	CheckOut    *string         `json:"check_out"`
	Status      string          `json:"status"`
	HoursWorked decimal.Decimal `json:"hours_worked"`
}

// ToRecord validates the row and converts it for the attendance adapter.
func (a AttendanceRecord) ToRecord() (attendance.Record, error) {
	date, err := attendance.ParseDate(a.Date)
	if err != nil {
		return attendance.Record{}, err
	}
	r := attendance.Record{
		EmployeeID:  string(a.EmployeeID),
		Date:        date,
		Status:      attendance.Status(a.Status),
		HoursWorked: payroll.Amount{Value: a.HoursWorked, Unit: payroll.UnitHours},
	}
	if err := r.Validate(); err != nil {
		return attendance.Record{}, err
	}
	return r, nil
}

// ToRecords converts rows, failing on the first invalid one.
func ToRecords(rows []AttendanceRecord) ([]attendance.Record, error) {
	out := make([]attendance.Record, 0, len(rows))
	for i, row := range rows {
		r, err := row.ToRecord()
		if err != nil {
			return nil, fmt.Errorf("attendance row %d (id %s): %w", i, row.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}
