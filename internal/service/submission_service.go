package service

import (
	"context"
	"errors"
	"sync"

	"github.com/parisxmas/OxiDB/qrform/internal/models"
	"github.com/parisxmas/OxiDB/qrform/internal/repository"
)

var (
	ErrValidation = errors.New("invalid submission")
	ErrNotFound   = errors.New("submission not found")
)

// SubmissionService serialises store mutations: Submit and Delete hold
// mu for the whole read-modify-write cycle of the backing store.
type SubmissionService struct {
	subs repository.SubmissionStore
	mu   sync.Mutex
}

func NewSubmissionService(subs repository.SubmissionStore) *SubmissionService {
	return &SubmissionService{subs: subs}
}

func (s *SubmissionService) Submit(ctx context.Context, data map[string]any) (*models.Submission, error) {
	if data == nil {
		return nil, ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.Append(ctx, data)
}

func (s *SubmissionService) List(ctx context.Context) ([]models.Submission, error) {
	return s.subs.List(ctx)
}

// Delete removes the submission with id, or returns ErrNotFound.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed, err := s.subs.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// Health returns the store's last write failure, if it tracks one.
func (s *SubmissionService) Health() error {
	if h, ok := s.subs.(repository.HealthReporter); ok {
		return h.Health()
	}
	return nil
}
