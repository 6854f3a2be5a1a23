package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendhub/internal/store"
)

func TestAttendanceCSV(t *testing.T) {
	ts := time.Date(2024, 3, 2, 9, 5, 0, 0, time.UTC)
	records := []store.AttendanceRecord{
		{ID: "a1", MemberID: "1", Date: "2024-03-02", Status: store.StatusPresent, CheckIn: "09:05", CheckOut: "18:00", Location: "Office", Timestamp: ts},
		{ID: "a2", MemberID: "2", Date: "2024-03-02", Status: store.StatusAbsent, Notes: "sick, no cert", Timestamp: ts},
	}

	var buf bytes.Buffer
	require.NoError(t, Attendance(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "member_id", "date", "status", "check_in", "check_out", "notes", "location", "timestamp"}, rows[0])
	assert.Equal(t, "a1", rows[1][0])
	assert.Equal(t, "present", rows[1][3])
	// Free text with a comma survives the round trip.
	assert.Equal(t, "sick, no cert", rows[2][6])
}

func TestLeavesCSV(t *testing.T) {
	reviewed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	leaves := []store.LeaveRequest{
		{ID: "l1", MemberID: "1", StartDate: "2024-03-10", EndDate: "2024-03-12", Type: store.LeaveVacation, Reason: "trip", Status: store.LeavePending, RequestDate: reviewed},
		{ID: "l2", MemberID: "2", StartDate: "2024-03-05", EndDate: "2024-03-05", Type: store.LeaveSick, Reason: "flu", Status: store.LeaveApproved, RequestDate: reviewed, ReviewedBy: "admin", ReviewDate: &reviewed},
	}

	var buf bytes.Buffer
	require.NoError(t, Leaves(&buf, leaves))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "pending", rows[1][6])
	assert.Empty(t, rows[1][9])
	assert.Equal(t, "admin", rows[2][8])
	assert.NotEmpty(t, rows[2][9])
}

func TestEmptyExports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Attendance(&buf, nil))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
