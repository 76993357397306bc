package handler

import (
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/parisxmas/OxiDB/qrform/internal/service"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
}

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// Submit stores a public form post. JSON objects and url-encoded forms
// are accepted; field values are not validated.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	data, err := h.formData(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}
	sub, err := h.svc.Submit(r.Context(), data)
	if err != nil {
		log.Printf("Error processing submission: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save submission.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Form submitted successfully!",
		"id":      sub.ID,
	})
}

func (h *SubmissionHandler) formData(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		data := make(map[string]any, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				data[k] = v[0]
			}
		}
		return data, nil
	}

	var data map[string]any
	if err := readJSON(w, r, &data); err != nil {
		if errors.Is(err, errEmptyBody) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if data == nil {
		return nil, service.ErrValidation
	}
	return data, nil
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("Error fetching submissions: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"count":       len(subs),
		"submissions": subs,
	})
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.svc.Delete(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Submission not found.")
	case err != nil:
		log.Printf("Error deleting submission %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete submission.")
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Submission deleted successfully!",
		})
	}
}
