// Package seed builds the demo dataset the dashboard starts with.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"attendhub/internal/store"
)

// Data is a full demo snapshot.
type Data struct {
	Members    []store.Member
	Attendance []store.AttendanceRecord
	Leaves     []store.LeaveRequest
}

// Generate builds the demo snapshot: one admin, five employees, roughly
// twenty weekdays of randomized attendance per employee ending at ref, and
// two leave requests. The rand seed makes the output reproducible.
func Generate(ref time.Time, randSeed int64) Data {
	members := []store.Member{
		{ID: "admin", Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: store.RoleAdmin, Department: store.DeptHR, Position: "System Administrator", JoinDate: "2023-01-01", Phone: "+1 234-567-8900"},
		{ID: "1", Name: "John Smith", Email: "john@example.com", Password: "user123", Role: store.RoleUser, Department: store.DeptEngineering, Position: "Senior Developer", JoinDate: "2023-03-15", Phone: "+1 234-567-8901"},
		{ID: "2", Name: "Sarah Johnson", Email: "sarah@example.com", Password: "user123", Role: store.RoleUser, Department: store.DeptMarketing, Position: "Marketing Manager", JoinDate: "2023-02-20", Phone: "+1 234-567-8902"},
		{ID: "3", Name: "Michael Brown", Email: "michael@example.com", Password: "user123", Role: store.RoleUser, Department: store.DeptSales, Position: "Sales Executive", JoinDate: "2023-04-10", Phone: "+1 234-567-8903"},
		{ID: "4", Name: "Emily Davis", Email: "emily@example.com", Password: "user123", Role: store.RoleUser, Department: store.DeptEngineering, Position: "Frontend Developer", JoinDate: "2023-05-01", Phone: "+1 234-567-8904"},
		{ID: "5", Name: "David Wilson", Email: "david@example.com", Password: "user123", Role: store.RoleUser, Department: store.DeptOperations, Position: "Operations Manager", JoinDate: "2023-03-01", Phone: "+1 234-567-8905"},
	}

	rng := rand.New(rand.NewSource(randSeed))
	// Weighted present-heavy, matching what a real office looks like.
	statuses := []store.Status{
		store.StatusPresent, store.StatusPresent, store.StatusPresent,
		store.StatusLate, store.StatusWorkFromHome,
	}

	var records []store.AttendanceRecord
	for _, m := range members {
		if m.Role == store.RoleAdmin {
			continue
		}
		for i := 0; i < 20; i++ {
			day := ref.AddDate(0, 0, -i)
			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				continue
			}
			date := day.Format("2006-01-02")
			status := statuses[rng.Intn(len(statuses))]
			rec := store.AttendanceRecord{
				ID:        m.ID + "-" + date,
				MemberID:  m.ID,
				Date:      date,
				Status:    status,
				Location:  "Office",
				Timestamp: day,
			}
			if status != store.StatusAbsent {
				rec.CheckIn = fmt.Sprintf("09:%02d", rng.Intn(60))
				rec.CheckOut = fmt.Sprintf("18:%02d", rng.Intn(60))
			}
			records = append(records, rec)
		}
	}

	reviewDate := ref.AddDate(0, 0, -1)
	leaves := []store.LeaveRequest{
		{
			ID:          "1",
			MemberID:    "1",
			StartDate:   ref.AddDate(0, 0, 7).Format("2006-01-02"),
			EndDate:     ref.AddDate(0, 0, 9).Format("2006-01-02"),
			Type:        store.LeaveVacation,
			Reason:      "Family vacation",
			Status:      store.LeavePending,
			RequestDate: ref,
		},
		{
			ID:          "2",
			MemberID:    "2",
			StartDate:   ref.AddDate(0, 0, 3).Format("2006-01-02"),
			EndDate:     ref.AddDate(0, 0, 3).Format("2006-01-02"),
			Type:        store.LeaveSick,
			Reason:      "Medical appointment",
			Status:      store.LeaveApproved,
			RequestDate: ref.AddDate(0, 0, -2),
			ReviewedBy:  "admin",
			ReviewDate:  &reviewDate,
		},
	}

	return Data{Members: members, Attendance: records, Leaves: leaves}
}
