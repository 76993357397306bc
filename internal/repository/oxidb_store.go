package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/parisxmas/OxiDB/qrform/internal/db"
	"github.com/parisxmas/OxiDB/qrform/internal/models"
	"github.com/parisxmas/OxiDB/qrform/internal/oxidb"
)

const SubmissionsCollection = "_qrform_submissions"

// OxiSubmissionRepo stores one document per submission in OxiDB.
type OxiSubmissionRepo struct {
	pool *db.Pool
	now  func() time.Time
	writeHealth
}

func NewOxiSubmissionRepo(pool *db.Pool) *OxiSubmissionRepo {
	return &OxiSubmissionRepo{pool: pool, now: time.Now}
}

func (r *OxiSubmissionRepo) EnsureIndexes() error {
	c := r.pool.Get()
	return c.CreateUniqueIndex(SubmissionsCollection, "id")
}

func (r *OxiSubmissionRepo) Append(ctx context.Context, data map[string]any) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := r.pool.Get()

	one := 1
	last, err := c.Find(SubmissionsCollection, map[string]any{}, &oxidb.FindOptions{
		Sort:  map[string]any{"id": -1},
		Limit: &one,
	})
	if err != nil {
		return nil, r.fail("read last id", err)
	}
	max := ""
	if len(last) > 0 {
		max, _ = last[0]["id"].(string)
	}

	now := r.now()
	sub := newSubmission(data, nextID(max, now), now)
	if _, err := c.Insert(SubmissionsCollection, submissionToDoc(sub)); err != nil {
		return nil, r.fail("insert", err)
	}
	r.record(nil)
	return sub, nil
}

// List returns an empty collection when OxiDB cannot be read.
func (r *OxiSubmissionRepo) List(ctx context.Context) ([]models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := r.pool.Get()
	docs, err := c.Find(SubmissionsCollection, map[string]any{}, &oxidb.FindOptions{
		Sort: map[string]any{"id": 1},
	})
	if err != nil {
		log.Printf("Warning: reading submissions from OxiDB: %v", err)
		return []models.Submission{}, nil
	}
	subs := make([]models.Submission, 0, len(docs))
	for _, d := range docs {
		s, err := docToSubmission(d)
		if err != nil {
			log.Printf("Warning: skipping malformed submission document: %v", err)
			continue
		}
		subs = append(subs, *s)
	}
	return subs, nil
}

func (r *OxiSubmissionRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c := r.pool.Get()
	n, err := c.DeleteOne(SubmissionsCollection, map[string]any{"id": id})
	if err != nil {
		return false, r.fail("delete", err)
	}
	r.record(nil)
	return n > 0, nil
}

func (r *OxiSubmissionRepo) fail(op string, err error) error {
	err = persistenceError("oxidb "+op, err)
	log.Printf("Error saving submissions: %v", err)
	r.record(err)
	return err
}

func submissionToDoc(s *models.Submission) map[string]any {
	return map[string]any{
		"id":        s.ID,
		"timestamp": s.Timestamp,
		"data":      s.Data,
	}
}

// docToSubmission drops OxiDB's own _id and decodes the rest.
func docToSubmission(doc map[string]any) (*models.Submission, error) {
	delete(doc, "_id")
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal submission doc: %w", err)
	}
	var s models.Submission
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal submission: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("submission document without id")
	}
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	return &s, nil
}
