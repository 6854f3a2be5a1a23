package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds the full in-memory snapshot of members, attendance records, and
// leave requests. All mutations go through its methods and are atomic under a
// single lock, so readers never observe dangling references.
type Store struct {
	mu         sync.RWMutex
	members    []Member
	attendance []AttendanceRecord
	leaves     []LeaveRequest
	now        func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

// WithClock overrides the store's clock, for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Load replaces the entire snapshot, used at startup with seed data.
func (s *Store) Load(members []Member, attendance []AttendanceRecord, leaves []LeaveRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append([]Member(nil), members...)
	s.attendance = append([]AttendanceRecord(nil), attendance...)
	s.leaves = append([]LeaveRequest(nil), leaves...)
}

// Members returns a copy of the member list.
func (s *Store) Members() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Member(nil), s.members...)
}

// MemberByID returns the member with the given id.
func (s *Store) MemberByID(id string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// FindMemberByEmail returns the member whose email matches.
func (s *Store) FindMemberByEmail(email string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.Email == email {
			return m, true
		}
	}
	return Member{}, false
}

// AddMember inserts a new member with a fresh id.
func (s *Store) AddMember(m Member) (Member, error) {
	if m.Name == "" || m.Email == "" {
		return Member{}, errors.New("name and email required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.Email == m.Email {
			return Member{}, errors.New("email already exists")
		}
	}
	m.ID = uuid.NewString()
	if m.Role == "" {
		m.Role = RoleUser
	}
	s.members = append(s.members, m)
	return m, nil
}

// UpdateMember merges non-empty patch fields into the member with the given id.
func (s *Store) UpdateMember(id string, patch Member) (Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.members {
		if m.ID != id {
			continue
		}
		if patch.Name != "" {
			m.Name = patch.Name
		}
		if patch.Email != "" {
			m.Email = patch.Email
		}
		if patch.Password != "" {
			m.Password = patch.Password
		}
		if patch.Department != "" {
			m.Department = patch.Department
		}
		if patch.Position != "" {
			m.Position = patch.Position
		}
		if patch.JoinDate != "" {
			m.JoinDate = patch.JoinDate
		}
		if patch.Phone != "" {
			m.Phone = patch.Phone
		}
		s.members[i] = m
		return m, true
	}
	return Member{}, false
}

// DeleteMember removes the member and every attendance record and leave
// request referencing it, as one logical update.
func (s *Store) DeleteMember(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	members := s.members[:0]
	for _, m := range s.members {
		if m.ID == id {
			found = true
			continue
		}
		members = append(members, m)
	}
	if !found {
		return false
	}
	s.members = members

	attendance := s.attendance[:0]
	for _, a := range s.attendance {
		if a.MemberID != id {
			attendance = append(attendance, a)
		}
	}
	s.attendance = attendance

	leaves := s.leaves[:0]
	for _, l := range s.leaves {
		if l.MemberID != id {
			leaves = append(leaves, l)
		}
	}
	s.leaves = leaves
	return true
}

// Attendance returns a copy of all attendance records.
func (s *Store) Attendance() []AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AttendanceRecord(nil), s.attendance...)
}

// AttendanceFor returns the records for one member.
func (s *Store) AttendanceFor(memberID string) []AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []AttendanceRecord
	for _, a := range s.attendance {
		if a.MemberID == memberID {
			out = append(out, a)
		}
	}
	return out
}

// AttendanceOn returns the records for one calendar date.
func (s *Store) AttendanceOn(date string) []AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []AttendanceRecord
	for _, a := range s.attendance {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

// UpsertAttendance records a marking for (member, date). Any existing record
// for the same pair is replaced; the new record gets a fresh id and capture
// timestamp. Last write wins, no merge.
func (s *Store) UpsertAttendance(rec AttendanceRecord) AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.attendance[:0]
	for _, a := range s.attendance {
		if a.MemberID == rec.MemberID && a.Date == rec.Date {
			continue
		}
		kept = append(kept, a)
	}
	rec.ID = uuid.NewString()
	rec.Timestamp = s.now().UTC()
	s.attendance = append(kept, rec)
	return rec
}

// LeaveRequests returns a copy of all leave requests.
func (s *Store) LeaveRequests() []LeaveRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LeaveRequest(nil), s.leaves...)
}

// LeaveRequestsFor returns the leave requests filed by one member.
func (s *Store) LeaveRequestsFor(memberID string) []LeaveRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []LeaveRequest
	for _, l := range s.leaves {
		if l.MemberID == memberID {
			out = append(out, l)
		}
	}
	return out
}

// AddLeaveRequest files a new request. The id and request timestamp are
// assigned here and the status is forced to pending regardless of input.
func (s *Store) AddLeaveRequest(req LeaveRequest) LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = uuid.NewString()
	req.RequestDate = s.now().UTC()
	req.Status = LeavePending
	req.ReviewedBy = ""
	req.ReviewDate = nil
	s.leaves = append(s.leaves, req)
	return req
}

// LeavePatch carries the fields an update may change.
type LeavePatch struct {
	Status     LeaveStatus
	ReviewedBy string
}

// UpdateLeaveRequest applies a review transition. The reviewer and review
// timestamp are set together with the new status. Unknown ids and requests
// already reviewed are left untouched (transition is one-way, terminal).
func (s *Store) UpdateLeaveRequest(id string, patch LeavePatch) (LeaveRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.leaves {
		if l.ID != id {
			continue
		}
		if l.Status != LeavePending {
			return l, false
		}
		if patch.Status != "" {
			l.Status = patch.Status
			l.ReviewedBy = patch.ReviewedBy
			now := s.now().UTC()
			l.ReviewDate = &now
		}
		s.leaves[i] = l
		return l, true
	}
	return LeaveRequest{}, false
}
