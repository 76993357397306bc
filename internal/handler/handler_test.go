package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/parisxmas/OxiDB/qrform/internal/handler"
	"github.com/parisxmas/OxiDB/qrform/internal/models"
	"github.com/parisxmas/OxiDB/qrform/internal/repository"
	"github.com/parisxmas/OxiDB/qrform/internal/service"
)

type fakeStore struct {
	inserted  map[string]any
	appendErr error
	deleteErr error
}

func (f *fakeStore) Append(ctx context.Context, data map[string]any) (*models.Submission, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	f.inserted = data
	return &models.Submission{ID: "42", Data: data}, nil
}

func (f *fakeStore) List(ctx context.Context) ([]models.Submission, error) {
	return []models.Submission{}, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return id == "42", nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		appendErr   error
		wantStatus  int
	}{
		{"json object", "application/json", `{"name":"Alice","age":30,"ok":true}`, nil, http.StatusCreated},
		{"empty body", "application/json", ``, nil, http.StatusCreated},
		{"json array", "application/json", `[1,2]`, nil, http.StatusBadRequest},
		{"json null", "application/json", `null`, nil, http.StatusBadRequest},
		{"malformed", "application/json", `{"name":`, nil, http.StatusBadRequest},
		{"trailing garbage", "application/json", `{"a":1}garbage`, nil, http.StatusBadRequest},
		{"two objects", "application/json", `{"a":1}{"b":2}`, nil, http.StatusBadRequest},
		{"trailing whitespace", "application/json", "{\"a\":1}\n", nil, http.StatusCreated},
		{"write failure", "application/json", `{"a":1}`, repository.ErrPersistence, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeStore{appendErr: tt.appendErr}
			h := handler.NewSubmissionHandler(service.NewSubmissionService(fs))

			req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h.Submit(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			out := decode(t, rec)
			if tt.wantStatus == http.StatusCreated && out["id"] != "42" {
				t.Fatalf("expected id in body, got %v", out)
			}
			if tt.wantStatus == http.StatusInternalServerError && out["error"] != "Failed to save submission." {
				t.Fatalf("unexpected error body %v", out)
			}
		})
	}
}

func TestSubmitFormEncoded(t *testing.T) {
	fs := &fakeStore{}
	h := handler.NewSubmissionHandler(service.NewSubmissionService(fs))

	form := url.Values{"name": {"Alice"}, "tag": {"a", "b"}}
	req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: %d", rec.Code)
	}
	if fs.inserted["name"] != "Alice" || fs.inserted["tag"] != "a" {
		t.Fatalf("unexpected stored data %v", fs.inserted)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		id         string
		deleteErr  error
		wantStatus int
	}{
		{"42", nil, http.StatusOK},
		{"7", nil, http.StatusNotFound},
		{"42", errors.New("disk gone"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		fs := &fakeStore{deleteErr: tt.deleteErr}
		h := handler.NewSubmissionHandler(service.NewSubmissionService(fs))
		r := chi.NewRouter()
		r.Delete("/api/submissions/{id}", h.Delete)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/submissions/"+tt.id, nil))
		if rec.Code != tt.wantStatus {
			t.Errorf("delete %s: got %d, want %d", tt.id, rec.Code, tt.wantStatus)
		}
		if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "disk gone") {
			t.Errorf("internal error leaked: %s", rec.Body.String())
		}
	}
}

func TestHealthDegraded(t *testing.T) {
	failing := false
	h := handler.NewHealthHandler(func() error {
		if failing {
			return fmt.Errorf("%w: write /srv/data/submissions.json: disk full", repository.ErrPersistence)
		}
		return nil
	})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	out := decode(t, rec)
	if out["status"] != "OK" || out["message"] != "Server is running" {
		t.Fatalf("unexpected healthy body %v", out)
	}
	if _, ok := out["timestamp"].(string); !ok {
		t.Fatalf("missing timestamp %v", out)
	}

	failing = true
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health must stay 200, got %d", rec.Code)
	}
	out = decode(t, rec)
	if out["status"] != "DEGRADED" {
		t.Fatalf("expected DEGRADED, got %v", out)
	}
	if msg, _ := out["message"].(string); strings.Contains(msg, "/srv/data") || strings.Contains(msg, "disk full") {
		t.Fatalf("health message leaks error detail: %q", msg)
	}
}

func TestLoginBadBody(t *testing.T) {
	h := handler.NewAuthHandler(nil)
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("nope")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}
