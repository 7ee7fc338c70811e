package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/ternarybob/playbook/internal/services/ingest"
)

// IngestHandler turns posted transcripts into draft cards.
type IngestHandler struct {
	service  *ingest.Service
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewIngestHandler(service *ingest.Service) *IngestHandler {
	return &IngestHandler{
		service:  service,
		validate: validator.New(),
		logger:   common.GetLogger(),
	}
}

// IngestHandler handles POST /api/ingest
func (h *IngestHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	resp, err := h.service.Ingest(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("Transcript ingest failed")
		WriteError(w, http.StatusInternalServerError, "Ingest failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}
