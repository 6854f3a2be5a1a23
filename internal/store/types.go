package store

import "time"

// Role distinguishes administrators from regular employees.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Department is the fixed set of org units members belong to.
type Department string

const (
	DeptEngineering Department = "Engineering"
	DeptMarketing   Department = "Marketing"
	DeptSales       Department = "Sales"
	DeptHR          Department = "HR"
	DeptOperations  Department = "Operations"
)

// Departments lists all departments in display order.
var Departments = []Department{DeptEngineering, DeptMarketing, DeptSales, DeptHR, DeptOperations}

// Status is an attendance marking for one member on one date.
type Status string

const (
	StatusPresent      Status = "present"
	StatusAbsent       Status = "absent"
	StatusLate         Status = "late"
	StatusHalfDay      Status = "half-day"
	StatusWorkFromHome Status = "work-from-home"
)

// ValidStatus reports whether s is one of the known attendance statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusWorkFromHome:
		return true
	}
	return false
}

// PresentLike reports whether s counts toward a positive attendance rate.
func PresentLike(s Status) bool {
	return s == StatusPresent || s == StatusLate || s == StatusWorkFromHome
}

// Member is a person tracked by the system.
type Member struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Password   string     `json:"-"`
	Role       Role       `json:"role"`
	Department Department `json:"department"`
	Position   string     `json:"position,omitempty"`
	JoinDate   string     `json:"join_date,omitempty"`
	Phone      string     `json:"phone,omitempty"`
}

// AttendanceRecord is one marking per (member, date) pair.
// Records are never mutated in place; re-marking replaces the prior record.
type AttendanceRecord struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Status    Status    `json:"status"`
	CheckIn   string    `json:"check_in,omitempty"`
	CheckOut  string    `json:"check_out,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LeaveType classifies a leave request.
type LeaveType string

const (
	LeaveSick     LeaveType = "sick"
	LeaveVacation LeaveType = "vacation"
	LeavePersonal LeaveType = "personal"
	LeaveUnpaid   LeaveType = "unpaid"
)

// ValidLeaveType reports whether t is a known leave type.
func ValidLeaveType(t LeaveType) bool {
	switch t {
	case LeaveSick, LeaveVacation, LeavePersonal, LeaveUnpaid:
		return true
	}
	return false
}

// LeaveStatus is the review state of a leave request.
// Transitions are one-way: pending -> approved|rejected, terminal after that.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest is a member's request for time off.
type LeaveRequest struct {
	ID          string      `json:"id"`
	MemberID    string      `json:"member_id"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	Type        LeaveType   `json:"type"`
	Reason      string      `json:"reason"`
	Status      LeaveStatus `json:"status"`
	RequestDate time.Time   `json:"request_date"`
	ReviewedBy  string      `json:"reviewed_by,omitempty"`
	ReviewDate  *time.Time  `json:"review_date,omitempty"`
}
