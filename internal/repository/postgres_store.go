package repository

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parisxmas/OxiDB/qrform/internal/models"
)

// PostgresSubmissionRepo stores submissions in the qrform_submissions table.
type PostgresSubmissionRepo struct {
	db  *pgxpool.Pool
	now func() time.Time
	writeHealth
}

func NewPostgresSubmissionRepo(db *pgxpool.Pool) *PostgresSubmissionRepo {
	return &PostgresSubmissionRepo{db: db, now: time.Now}
}

func (p *PostgresSubmissionRepo) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS qrform_submissions (
            id   TEXT PRIMARY KEY,
            ts   TEXT NOT NULL,
            data JSONB NOT NULL
        )`)
	return err
}

func (p *PostgresSubmissionRepo) Append(ctx context.Context, data map[string]any) (*models.Submission, error) {
	var max string
	err := p.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(id), '') FROM qrform_submissions`).Scan(&max)
	if err != nil {
		return nil, p.fail("read last id", err)
	}

	now := p.now()
	sub := newSubmission(data, nextID(max, now), now)
	_, err = p.db.Exec(ctx,
		`INSERT INTO qrform_submissions (id, ts, data) VALUES ($1, $2, $3)`,
		sub.ID, sub.Timestamp, sub.Data)
	if err != nil {
		return nil, p.fail("insert", err)
	}
	p.record(nil)
	return sub, nil
}

// List returns an empty collection when the table cannot be read.
func (p *PostgresSubmissionRepo) List(ctx context.Context) ([]models.Submission, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, ts, data FROM qrform_submissions ORDER BY id ASC`)
	if err != nil {
		log.Printf("Warning: reading submissions from Postgres: %v", err)
		return []models.Submission{}, nil
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.Data); err != nil {
			log.Printf("Warning: skipping unreadable submission row: %v", err)
			continue
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Warning: reading submissions from Postgres: %v", err)
		return []models.Submission{}, nil
	}
	return subs, nil
}

func (p *PostgresSubmissionRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM qrform_submissions WHERE id=$1`, id)
	if err != nil {
		return false, p.fail("delete", err)
	}
	p.record(nil)
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresSubmissionRepo) fail(op string, err error) error {
	err = persistenceError("postgres "+op, err)
	log.Printf("Error saving submissions: %v", err)
	p.record(err)
	return err
}
