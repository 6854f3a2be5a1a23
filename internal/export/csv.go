// Package export writes store snapshots as downloadable CSV.
package export

import (
	"encoding/csv"
	"io"

	"attendhub/internal/store"
)

// Attendance writes attendance records as CSV. Column order follows the
// record's field order.
func Attendance(w io.Writer, records []store.AttendanceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "member_id", "date", "status", "check_in", "check_out", "notes", "location", "timestamp"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID, r.MemberID, r.Date, string(r.Status),
			r.CheckIn, r.CheckOut, r.Notes, r.Location,
			r.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Leaves writes leave requests as CSV.
func Leaves(w io.Writer, leaves []store.LeaveRequest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "member_id", "start_date", "end_date", "type", "reason", "status", "request_date", "reviewed_by", "review_date"}); err != nil {
		return err
	}
	for _, l := range leaves {
		reviewDate := ""
		if l.ReviewDate != nil {
			reviewDate = l.ReviewDate.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		row := []string{
			l.ID, l.MemberID, l.StartDate, l.EndDate, string(l.Type),
			l.Reason, string(l.Status),
			l.RequestDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
			l.ReviewedBy, reviewDate,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
