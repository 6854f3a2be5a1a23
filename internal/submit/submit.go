// Package submit forwards freshly marked attendance to the remote collection
// endpoint. Delivery is best effort: the local record is already committed by
// the time a submission starts, and any failure just parks the payload on the
// durable retry queue.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"attendhub/internal/geo"
	"attendhub/internal/queue"
)

// Outcome is the terminal state of one submission attempt.
type Outcome string

const (
	// Sent means the endpoint acknowledged the payload.
	Sent Outcome = "sent"
	// Queued means delivery failed and the payload is parked for retry.
	Queued Outcome = "queued"
)

// MessageType tags retry-queue messages carrying submission payloads.
const MessageType = "attendance"

// Payload is the wire form sent to the attendance endpoint.
type Payload struct {
	UserID          string    `json:"user_id"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	Accuracy        *float64  `json:"accuracy"`
	LocationSource  string    `json:"location_source"`
	ClientTimestamp time.Time `json:"client_timestamp"`
}

// NewPayload builds a payload from a resolved location.
func NewPayload(userID string, loc geo.Location, at time.Time) Payload {
	return Payload{
		UserID:          userID,
		Latitude:        loc.Latitude,
		Longitude:       loc.Longitude,
		Accuracy:        loc.Accuracy,
		LocationSource:  string(loc.Source),
		ClientTimestamp: at.UTC(),
	}
}

// Submitter posts payloads to the attendance endpoint and falls back to the
// retry queue when delivery fails.
type Submitter struct {
	endpoint string
	http     *http.Client
	retry    queue.Queue

	mu      sync.Mutex
	wg      sync.WaitGroup
	pending map[*context.CancelFunc]struct{}
}

// New creates a submitter. An empty endpoint disables network delivery; every
// submission then goes straight to the retry queue.
func New(endpoint string, timeout time.Duration, retry queue.Queue) *Submitter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Submitter{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		retry:    retry,
		pending:  make(map[*context.CancelFunc]struct{}),
	}
}

// Submit attempts one delivery. Transport errors, non-2xx statuses, and
// unreadable response bodies are all handled the same way: the payload is
// appended to the retry queue and the outcome is Queued. Submit never
// returns an error to the caller.
func (s *Submitter) Submit(ctx context.Context, p Payload) Outcome {
	if err := s.deliver(ctx, p); err != nil {
		log.Printf("attendance submission failed, queueing: %v", err)
		s.enqueue(p)
		submissionsQueued.Inc()
		return Queued
	}
	submissionsSent.Inc()
	return Sent
}

// SubmitAsync runs Submit on a background goroutine tied to ctx, so an ending
// session cancels in-flight deliveries. The task is tracked and waited on by
// Close.
func (s *Submitter) SubmitAsync(ctx context.Context, p Payload) {
	taskCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.pending[&cancel] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.pending, &cancel)
			s.mu.Unlock()
			cancel()
		}()
		s.Submit(taskCtx, p)
	}()
}

// Close cancels in-flight submissions and waits for them to finish.
func (s *Submitter) Close() {
	s.mu.Lock()
	for cancel := range s.pending {
		(*cancel)()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Submitter) deliver(ctx context.Context, p Payload) error {
	if s.endpoint == "" {
		return errEndpointUnset
	}
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &statusError{status: resp.Status, body: string(raw)}
	}
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return err
	}
	return nil
}

func (s *Submitter) enqueue(p Payload) {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Printf("payload marshal failed, dropping: %v", err)
		return
	}
	// Queueing must not hang behind a dead backend.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.retry.Append(ctx, queue.Message{Type: MessageType, Body: raw}); err != nil {
		log.Printf("retry queue append failed: %v", err)
	}
}

var errEndpointUnset = &statusError{status: "endpoint not configured"}

type statusError struct {
	status string
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return "attendance endpoint: " + e.status
	}
	return "attendance endpoint: " + e.status + ": " + e.body
}
