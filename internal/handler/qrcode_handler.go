package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/parisxmas/OxiDB/qrform/internal/service"
)

type QRCodeHandler struct {
	svc *service.QRCodeService
}

func NewQRCodeHandler(svc *service.QRCodeService) *QRCodeHandler {
	return &QRCodeHandler{svc: svc}
}

func (h *QRCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Generate(r.URL.Query().Get("url"))
	if errors.Is(err, service.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, "Invalid url.")
		return
	}
	if err != nil {
		log.Printf("Error generating QR code: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"qrCode":  result.QRCode,
		"url":     result.URL,
	})
}
