package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendhub/internal/auth"
	"attendhub/internal/config"
	"attendhub/internal/export"
	"attendhub/internal/geo"
	"attendhub/internal/httpmiddleware"
	"attendhub/internal/queue"
	"attendhub/internal/stats"
	"attendhub/internal/store"
	"attendhub/internal/submit"
)

type server struct {
	cfg       config.App
	store     *store.Store
	retry     queue.Queue
	redis     *queue.Redis
	submitter *submit.Submitter
	resolver  *geo.Resolver
	baseCtx   context.Context
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewRateLimiter(s.cfg.RateLimitPerMin, s.cfg.RateLimitPerMin).Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.healthz)
	r.POST("/api/login", s.login)

	authed := r.Group("/api", auth.RequireAuth(s.cfg.JWTSigningKey, s.cfg.JWTIssuer))
	authed.GET("/me", s.me)
	authed.POST("/attendance/mark", s.markAttendance)
	authed.GET("/attendance/me", s.myAttendance)
	authed.POST("/leaves", s.addLeave)
	authed.GET("/leaves/me", s.myLeaves)
	authed.GET("/stats/member/:id", s.memberStats)

	admin := authed.Group("", auth.RequireAdmin())
	admin.GET("/members", s.listMembers)
	admin.POST("/members", s.addMember)
	admin.PUT("/members/:id", s.updateMember)
	admin.DELETE("/members/:id", s.deleteMember)
	admin.GET("/attendance", s.listAttendance)
	admin.GET("/attendance/date/:date", s.attendanceByDate)
	admin.GET("/leaves", s.listLeaves)
	admin.PUT("/leaves/:id/review", s.reviewLeave)
	admin.GET("/stats/overview", s.overview)
	admin.GET("/stats/trend", s.trend)
	admin.GET("/stats/departments", s.departments)
	admin.GET("/export/attendance.csv", s.exportAttendance)
	admin.GET("/export/leaves.csv", s.exportLeaves)

	return r
}

func (s *server) healthz(c *gin.Context) {
	redisHealthy := s.redis.Healthy(c.Request.Context())
	status := http.StatusOK
	if s.cfg.QueueBackend != "memory" && !redisHealthy {
		status = http.StatusServiceUnavailable
	}
	queued, _ := s.retry.Len(c.Request.Context())
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "retry_queued": queued})
}

func (s *server) login(c *gin.Context) {
	var req struct {
		Email    string     `json:"email" binding:"required"`
		Password string     `json:"password" binding:"required"`
		Role     store.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = store.RoleUser
	}

	res := auth.Login(s.store, req.Email, req.Password, req.Role)
	if !res.OK {
		// One generic message, regardless of which field was wrong.
		c.JSON(http.StatusUnauthorized, gin.H{"error": res.Reason})
		return
	}

	token, exp, err := auth.Issue(res.Session, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	// Best-effort remote notification; never gates the login response.
	go s.notifyAttendance(res.Session.MemberID)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.Unix(),
		"session":    res.Session,
	})
}

// notifyAttendance resolves the device location and ships a submission for
// the member. Runs detached from any request.
func (s *server) notifyAttendance(memberID string) {
	loc := s.resolver.Resolve(s.baseCtx)
	payload := submit.NewPayload(memberID, loc, time.Now())
	s.submitter.SubmitAsync(s.baseCtx, payload)
}

func (s *server) me(c *gin.Context) {
	session, _ := auth.FromContext(c)
	member, ok := s.store.MemberByID(session.MemberID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "member": member})
}

func (s *server) markAttendance(c *gin.Context) {
	var req struct {
		MemberID string `json:"member_id"`
		Date     string `json:"date"`
		Status   string `json:"status" binding:"required"`
		CheckIn  string `json:"check_in"`
		CheckOut string `json:"check_out"`
		Notes    string `json:"notes"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, _ := auth.FromContext(c)
	memberID := req.MemberID
	if memberID == "" {
		memberID = session.MemberID
	}
	// Only admins may record on someone else's behalf.
	if memberID != session.MemberID && session.Role != store.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot mark attendance for another member"})
		return
	}
	if _, ok := s.store.MemberByID(memberID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format(stats.DateLayout)
	}
	if _, err := time.Parse(stats.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	status := store.Status(req.Status)
	if !store.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	// Local commit happens first and unconditionally; remote delivery is
	// best effort and never reported as a request error.
	rec := s.store.UpsertAttendance(store.AttendanceRecord{
		MemberID: memberID,
		Date:     date,
		Status:   status,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Notes:    req.Notes,
		Location: req.Location,
	})
	submit.MarkedTotal.Inc()

	go s.notifyAttendance(memberID)

	c.JSON(http.StatusCreated, rec)
}

func (s *server) myAttendance(c *gin.Context) {
	session, _ := auth.FromContext(c)
	c.JSON(http.StatusOK, gin.H{"records": s.store.AttendanceFor(session.MemberID)})
}

func (s *server) listAttendance(c *gin.Context) {
	if memberID := c.Query("member_id"); memberID != "" {
		c.JSON(http.StatusOK, gin.H{"records": s.store.AttendanceFor(memberID)})
		return
	}
	if date := c.Query("date"); date != "" {
		c.JSON(http.StatusOK, gin.H{"records": s.store.AttendanceOn(date)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": s.store.Attendance()})
}

func (s *server) attendanceByDate(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse(stats.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": s.store.AttendanceOn(date)})
}

func (s *server) listMembers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"members": s.store.Members()})
}

func (s *server) addMember(c *gin.Context) {
	var req struct {
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required"`
		Password   string `json:"password" binding:"required"`
		Department string `json:"department" binding:"required"`
		Position   string `json:"position"`
		JoinDate   string `json:"join_date"`
		Phone      string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := s.store.AddMember(store.Member{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       store.RoleUser,
		Department: store.Department(req.Department),
		Position:   req.Position,
		JoinDate:   req.JoinDate,
		Phone:      req.Phone,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *server) updateMember(c *gin.Context) {
	var patch store.Member
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, ok := s.store.UpdateMember(c.Param("id"), patch)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *server) deleteMember(c *gin.Context) {
	if !s.store.DeleteMember(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) addLeave(c *gin.Context) {
	var req struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
		Type      string `json:"type" binding:"required"`
		Reason    string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := time.Parse(stats.DateLayout, req.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	if _, err := time.Parse(stats.DateLayout, req.EndDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if req.EndDate < req.StartDate {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date before start_date"})
		return
	}
	if !store.ValidLeaveType(store.LeaveType(req.Type)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid leave type"})
		return
	}

	session, _ := auth.FromContext(c)
	l := s.store.AddLeaveRequest(store.LeaveRequest{
		MemberID:  session.MemberID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Type:      store.LeaveType(req.Type),
		Reason:    req.Reason,
	})
	c.JSON(http.StatusCreated, l)
}

func (s *server) myLeaves(c *gin.Context) {
	session, _ := auth.FromContext(c)
	c.JSON(http.StatusOK, gin.H{"leaves": s.store.LeaveRequestsFor(session.MemberID)})
}

func (s *server) listLeaves(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"leaves": s.store.LeaveRequests()})
}

func (s *server) reviewLeave(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := store.LeaveStatus(req.Status)
	if status != store.LeaveApproved && status != store.LeaveRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		return
	}

	session, _ := auth.FromContext(c)
	l, ok := s.store.UpdateLeaveRequest(c.Param("id"), store.LeavePatch{
		Status:     status,
		ReviewedBy: session.MemberID,
	})
	if !ok {
		if l.ID == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "leave request not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": "leave request already reviewed"})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *server) refDate(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		return time.Now().Format(stats.DateLayout), true
	}
	if _, err := time.Parse(stats.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return "", false
	}
	return date, true
}

func (s *server) overview(c *gin.Context) {
	date, ok := s.refDate(c)
	if !ok {
		return
	}
	members := s.store.Members()
	records := s.store.Attendance()
	pending := 0
	for _, l := range s.store.LeaveRequests() {
		if l.Status == store.LeavePending {
			pending++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":        stats.Summarize(members, records, date),
		"departments":    stats.DepartmentBreakdown(members, records, date),
		"distribution":   stats.StatusDistribution(records),
		"pending_leaves": pending,
	})
}

func (s *server) trend(c *gin.Context) {
	date, ok := s.refDate(c)
	if !ok {
		return
	}
	days := 7
	if v := c.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	points, err := stats.Trend(s.store.Members(), s.store.Attendance(), date, days)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": points})
}

func (s *server) departments(c *gin.Context) {
	date, ok := s.refDate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"departments": stats.DepartmentBreakdown(s.store.Members(), s.store.Attendance(), date),
	})
}

func (s *server) memberStats(c *gin.Context) {
	memberID := c.Param("id")
	session, _ := auth.FromContext(c)
	if memberID != session.MemberID && session.Role != store.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another member's stats"})
		return
	}
	date, ok := s.refDate(c)
	if !ok {
		return
	}
	records := s.store.Attendance()
	month, err := stats.ForMonth(records, memberID, date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lifetime": stats.ForMember(records, memberID),
		"month":    month,
		"streak":   stats.CurrentStreak(records, memberID, date),
	})
}

func (s *server) exportAttendance(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="attendance.csv"`)
	if err := export.Attendance(c.Writer, s.store.Attendance()); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func (s *server) exportLeaves(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="leaves.csv"`)
	if err := export.Leaves(c.Writer, s.store.LeaveRequests()); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
