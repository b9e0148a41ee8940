package handler

import (
	"encoding/json"
	"net/http"

	"github.com/remiblancher/kms-csr/internal/api/dto"
	apierrors "github.com/remiblancher/kms-csr/internal/api/errors"
	"github.com/remiblancher/kms-csr/internal/api/service"
	"github.com/remiblancher/kms-csr/internal/audit"
)

// CSRHandler handles certification request creation.
type CSRHandler struct {
	svc *service.CSRService
}

// NewCSRHandler creates a new CSRHandler.
func NewCSRHandler(svc *service.CSRService) *CSRHandler {
	return &CSRHandler{svc: svc}
}

// Create handles POST /api/v1/csr
func (h *CSRHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CSRCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("Invalid JSON request body"))
		return
	}

	if req.CommonName == "" {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("common_name is required"))
		return
	}
	if req.CountryCode == "" {
		respondError(w, http.StatusBadRequest, apierrors.NewBadRequest("country_code is required"))
		return
	}

	result, err := h.svc.Create(r.Context(), req.CommonName, req.CountryCode)
	if err != nil {
		status, apiErr := apierrors.MapError(err)
		respondError(w, status, apiErr)
		return
	}

	algorithm, err := h.svc.Algorithm()
	if err != nil {
		status, apiErr := apierrors.MapError(err)
		respondError(w, status, apiErr)
		return
	}

	if err := audit.LogCSRServed(h.svc.Backend(), h.svc.KeyID(), result.Subject.String(), true, ""); err != nil {
		status, apiErr := apierrors.MapError(err)
		respondError(w, status, apiErr)
		return
	}

	respondJSON(w, http.StatusCreated, dto.CSRCreateResponse{
		CSR:                string(result.PEM),
		Subject:            result.Subject.String(),
		KeyID:              h.svc.KeyID(),
		SignatureAlgorithm: algorithm,
	})
}
