package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendhub/internal/auth"
	"attendhub/internal/config"
	"attendhub/internal/geo"
	"attendhub/internal/queue"
	"attendhub/internal/seed"
	"attendhub/internal/store"
	"attendhub/internal/submit"
)

func testServer(t *testing.T) (*server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.App{
		Env:             "test",
		JWTIssuer:       "attendhub",
		JWTSigningKey:   "test-secret",
		SessionTTL:      time.Hour,
		QueueBackend:    "memory",
		RateLimitPerMin: 10000,
	}

	retry := queue.NewInMemory(16)
	st := store.New()
	data := seed.Generate(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), 1)
	st.Load(data.Members, data.Attendance, data.Leaves)

	submitter := submit.New("", time.Second, retry)
	t.Cleanup(submitter.Close)

	s := &server{
		cfg:       cfg,
		store:     st,
		retry:     retry,
		redis:     nil,
		submitter: submitter,
		resolver:  geo.NewResolver("", 0),
		baseCtx:   context.Background(),
	}
	return s, s.router()
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, s *server, memberID string) string {
	t.Helper()
	m, ok := s.store.MemberByID(memberID)
	require.True(t, ok)
	token, _, err := auth.Issue(auth.Session{
		MemberID:   m.ID,
		Role:       m.Role,
		Name:       m.Name,
		Department: m.Department,
	}, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, time.Hour)
	require.NoError(t, err)
	return token
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	_, r := testServer(t)

	w := doJSON(r, http.MethodPost, "/api/login", "", gin.H{
		"email": "john@example.com", "password": "user123", "role": "user",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token   string       `json:"token"`
		Session auth.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "1", resp.Session.MemberID)
	assert.Equal(t, store.RoleUser, resp.Session.Role)
}

func TestLoginFailureIsGeneric(t *testing.T) {
	_, r := testServer(t)

	wrongPassword := doJSON(r, http.MethodPost, "/api/login", "", gin.H{
		"email": "john@example.com", "password": "nope", "role": "user",
	})
	unknownEmail := doJSON(r, http.MethodPost, "/api/login", "", gin.H{
		"email": "ghost@example.com", "password": "user123", "role": "user",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// Both failures read identically; nothing hints which field was wrong.
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestMarkAttendanceReplacesAndQueuesSubmission(t *testing.T) {
	s, r := testServer(t)
	token := tokenFor(t, s, "1")

	w := doJSON(r, http.MethodPost, "/api/attendance/mark", token, gin.H{
		"date": "2024-03-04", "status": "present", "check_in": "09:01",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/attendance/mark", token, gin.H{
		"date": "2024-03-04", "status": "late", "check_in": "09:40",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	matches := 0
	for _, rec := range s.store.AttendanceFor("1") {
		if rec.Date == "2024-03-04" {
			matches++
			assert.Equal(t, store.StatusLate, rec.Status)
		}
	}
	assert.Equal(t, 1, matches)

	// The submission endpoint is unset, so both marks end up on the retry
	// queue; local commit succeeded regardless.
	require.Eventually(t, func() bool {
		n, err := s.retry.Len(context.Background())
		return err == nil && n == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMarkAttendanceForOtherMember(t *testing.T) {
	s, r := testServer(t)

	asUser := doJSON(r, http.MethodPost, "/api/attendance/mark", tokenFor(t, s, "1"), gin.H{
		"member_id": "2", "date": "2024-03-04", "status": "present",
	})
	assert.Equal(t, http.StatusForbidden, asUser.Code)

	asAdmin := doJSON(r, http.MethodPost, "/api/attendance/mark", tokenFor(t, s, "admin"), gin.H{
		"member_id": "2", "date": "2024-03-04", "status": "present",
	})
	assert.Equal(t, http.StatusCreated, asAdmin.Code)
}

func TestMarkAttendanceValidation(t *testing.T) {
	s, r := testServer(t)
	token := tokenFor(t, s, "1")

	badStatus := doJSON(r, http.MethodPost, "/api/attendance/mark", token, gin.H{
		"date": "2024-03-04", "status": "vacationing",
	})
	assert.Equal(t, http.StatusBadRequest, badStatus.Code)

	badDate := doJSON(r, http.MethodPost, "/api/attendance/mark", token, gin.H{
		"date": "04/03/2024", "status": "present",
	})
	assert.Equal(t, http.StatusBadRequest, badDate.Code)

	unknownMember := doJSON(r, http.MethodPost, "/api/attendance/mark", tokenFor(t, s, "admin"), gin.H{
		"member_id": "ghost", "date": "2024-03-04", "status": "present",
	})
	assert.Equal(t, http.StatusNotFound, unknownMember.Code)
}

func TestDeleteMemberCascadesOverHTTP(t *testing.T) {
	s, r := testServer(t)
	admin := tokenFor(t, s, "admin")

	require.NotEmpty(t, s.store.AttendanceFor("1"))

	w := doJSON(r, http.MethodDelete, "/api/members/1", admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Empty(t, s.store.AttendanceFor("1"))
	assert.Empty(t, s.store.LeaveRequestsFor("1"))

	w = doJSON(r, http.MethodDelete, "/api/members/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMembersEndpointsRequireAdmin(t *testing.T) {
	s, r := testServer(t)
	user := tokenFor(t, s, "1")

	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodGet, "/api/members", user, nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodDelete, "/api/members/2", user, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/api/members", "", nil).Code)
}

func TestLeaveLifecycle(t *testing.T) {
	s, r := testServer(t)
	user := tokenFor(t, s, "3")
	admin := tokenFor(t, s, "admin")

	// Status in the create payload is ignored; requests start pending.
	w := doJSON(r, http.MethodPost, "/api/leaves", user, gin.H{
		"start_date": "2024-03-20", "end_date": "2024-03-22",
		"type": "vacation", "reason": "trip", "status": "approved",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created store.LeaveRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, store.LeavePending, created.Status)
	assert.Equal(t, "3", created.MemberID)

	w = doJSON(r, http.MethodPut, "/api/leaves/"+created.ID+"/review", admin, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	var reviewed store.LeaveRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviewed))
	assert.Equal(t, store.LeaveApproved, reviewed.Status)
	assert.Equal(t, "admin", reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewDate)

	// Second transition is refused; the decision is terminal.
	w = doJSON(r, http.MethodPut, "/api/leaves/"+created.ID+"/review", admin, gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPut, "/api/leaves/nope/review", admin, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaveValidation(t *testing.T) {
	s, r := testServer(t)
	user := tokenFor(t, s, "3")

	inverted := doJSON(r, http.MethodPost, "/api/leaves", user, gin.H{
		"start_date": "2024-03-22", "end_date": "2024-03-20", "type": "vacation", "reason": "trip",
	})
	assert.Equal(t, http.StatusBadRequest, inverted.Code)

	badType := doJSON(r, http.MethodPost, "/api/leaves", user, gin.H{
		"start_date": "2024-03-20", "end_date": "2024-03-22", "type": "sabbatical", "reason": "trip",
	})
	assert.Equal(t, http.StatusBadRequest, badType.Code)

	missingReason := doJSON(r, http.MethodPost, "/api/leaves", user, gin.H{
		"start_date": "2024-03-20", "end_date": "2024-03-22", "type": "vacation",
	})
	assert.Equal(t, http.StatusBadRequest, missingReason.Code)
}

func TestStatsEndpoints(t *testing.T) {
	s, r := testServer(t)
	admin := tokenFor(t, s, "admin")
	user := tokenFor(t, s, "1")

	w := doJSON(r, http.MethodGet, "/api/stats/overview?date=2024-03-01", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview struct {
		Summary struct {
			TotalMembers int `json:"total_members"`
		} `json:"summary"`
		PendingLeaves int `json:"pending_leaves"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, 6, overview.Summary.TotalMembers)
	assert.Equal(t, 1, overview.PendingLeaves)

	w = doJSON(r, http.MethodGet, "/api/stats/trend?date=2024-03-02&days=7", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trend struct {
		Trend []struct {
			Date string `json:"date"`
		} `json:"trend"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trend))
	require.Len(t, trend.Trend, 7)
	assert.Equal(t, "2024-02-25", trend.Trend[0].Date)
	assert.Equal(t, "2024-03-02", trend.Trend[6].Date)

	// Members can read their own stats but not a colleague's.
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/api/stats/member/1?date=2024-03-02", user, nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodGet, "/api/stats/member/2?date=2024-03-02", user, nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/api/stats/member/2?date=2024-03-02", admin, nil).Code)
}

func TestExportAttendanceCSV(t *testing.T) {
	s, r := testServer(t)
	admin := tokenFor(t, s, "admin")

	w := doJSON(r, http.MethodGet, "/api/export/attendance.csv", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance.csv")
	assert.Contains(t, w.Body.String(), "id,member_id,date,status")
}
