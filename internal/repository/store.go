package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/parisxmas/OxiDB/qrform/internal/models"
)

// ErrPersistence wraps every failure to write the submission collection.
var ErrPersistence = errors.New("persistence failure")

// SubmissionStore persists the submission collection.
type SubmissionStore interface {
	Append(ctx context.Context, data map[string]any) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// HealthReporter is implemented by stores that remember their last write
// failure. Health returns nil once a later write succeeds.
type HealthReporter interface {
	Health() error
}

type writeHealth struct {
	mu      sync.Mutex
	lastErr error
}

func (h *writeHealth) record(err error) {
	h.mu.Lock()
	h.lastErr = err
	h.mu.Unlock()
}

func (h *writeHealth) Health() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// nextID returns the creation time in Unix nanoseconds as a decimal
// string, bumped past maxID so ids stay unique and strictly increasing.
func nextID(maxID string, now time.Time) string {
	n := now.UnixNano()
	if max, err := strconv.ParseInt(maxID, 10, 64); err == nil && n <= max {
		n = max + 1
	}
	return strconv.FormatInt(n, 10)
}

func maxID(subs []models.Submission) string {
	var max int64 = -1
	out := ""
	for _, s := range subs {
		if n, err := strconv.ParseInt(s.ID, 10, 64); err == nil && n > max {
			max, out = n, s.ID
		}
	}
	return out
}

func newSubmission(data map[string]any, id string, now time.Time) *models.Submission {
	if data == nil {
		data = map[string]any{}
	}
	return &models.Submission{
		ID:        id,
		Timestamp: models.FormatTimestamp(now),
		Data:      data,
	}
}
