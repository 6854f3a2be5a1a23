package submit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendhub_submissions_sent_total",
		Help: "Attendance submissions acknowledged by the remote endpoint.",
	})
	submissionsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendhub_submissions_queued_total",
		Help: "Attendance submissions parked on the retry queue after a failed delivery.",
	})
	// MarkedTotal counts locally committed attendance markings.
	MarkedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendhub_attendance_marked_total",
		Help: "Attendance records committed to the local store.",
	})
)
