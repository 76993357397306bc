package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parisxmas/OxiDB/qrform/internal/models"
)

// FileSubmissionRepo keeps the whole collection in one JSON array file.
// Every write replaces the file through a temp file and rename.
type FileSubmissionRepo struct {
	path string
	mu   sync.RWMutex
	now  func() time.Time
	writeHealth
}

// NewFileSubmissionRepo opens the store at path, creating it holding an
// empty array when it does not exist yet.
func NewFileSubmissionRepo(path string) (*FileSubmissionRepo, error) {
	r := &FileSubmissionRepo{path: path, now: time.Now}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := r.save(nil); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *FileSubmissionRepo) Path() string { return r.path }

func (r *FileSubmissionRepo) Append(ctx context.Context, data map[string]any) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, corrupt, err := r.load()
	if err != nil {
		return nil, r.readFailure(err)
	}
	now := r.now()
	sub := newSubmission(data, nextID(maxID(subs), now), now)
	if corrupt {
		r.quarantine(now)
	}
	if err := r.save(append(subs, *sub)); err != nil {
		return nil, err
	}
	return sub, nil
}

// List never fails on a missing or unreadable file; it logs and returns
// an empty collection instead.
func (r *FileSubmissionRepo) List(ctx context.Context) ([]models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs, _, err := r.load()
	if err != nil {
		log.Printf("Warning: reading submissions from %s: %v", r.path, err)
	}
	return subs, nil
}

func (r *FileSubmissionRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, _, err := r.load()
	if err != nil {
		return false, r.readFailure(err)
	}
	for i, s := range subs {
		if s.ID != id {
			continue
		}
		kept := append(subs[:i:i], subs[i+1:]...)
		if err := r.save(kept); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// load reads the collection. corrupt reports a file that exists but does
// not hold a JSON array of submissions. err is set when an existing file
// cannot be read at all; writers must not replace it then.
func (r *FileSubmissionRepo) load() (subs []models.Submission, corrupt bool, err error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Submission{}, false, nil
	}
	if err != nil {
		return []models.Submission{}, false, err
	}
	if len(raw) == 0 {
		return []models.Submission{}, false, nil
	}
	if err := json.Unmarshal(raw, &subs); err != nil {
		log.Printf("Warning: submissions file %s is corrupt, treating as empty: %v", r.path, err)
		return []models.Submission{}, true, nil
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, false, nil
}

// readFailure refuses a write because the current contents are unknown.
func (r *FileSubmissionRepo) readFailure(err error) error {
	err = persistenceError("read "+r.path, err)
	log.Printf("Error saving submissions: %v", err)
	r.record(err)
	return err
}

// quarantine moves a corrupt store aside so the next save does not
// destroy it.
func (r *FileSubmissionRepo) quarantine(now time.Time) {
	dst := fmt.Sprintf("%s.corrupt-%d", r.path, now.UnixNano())
	if err := os.Rename(r.path, dst); err != nil {
		log.Printf("Warning: could not move corrupt store aside: %v", err)
		return
	}
	log.Printf("Warning: corrupt submissions file moved to %s", dst)
}

func (r *FileSubmissionRepo) save(subs []models.Submission) error {
	if subs == nil {
		subs = []models.Submission{}
	}
	err := r.writeAtomic(subs)
	if err != nil {
		err = persistenceError("write "+r.path, err)
		log.Printf("Error saving submissions: %v", err)
	}
	r.record(err)
	return err
}

func (r *FileSubmissionRepo) writeAtomic(subs []models.Submission) error {
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, r.path)
}
