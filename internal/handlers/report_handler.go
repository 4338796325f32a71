package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mockmate/interview/internal/archive"
	"mockmate/interview/internal/models"
	"mockmate/interview/internal/utils"
)

// ReportHandler serves archived reports of completed interviews. It is only
// registered when the archive is configured.
type ReportHandler struct {
	archive *archive.Store
	logger  *zap.Logger
}

func NewReportHandler(archiveStore *archive.Store, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		archive: archiveStore,
		logger:  logger,
	}
}

func (h *ReportHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.archive.Get(id)
	if errors.Is(err, archive.ErrReportNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Message: "report not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load report", zap.String("session_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Message: err.Error()})
		return
	}

	session, err := h.archive.Session(report)
	if err != nil {
		h.logger.Error("failed to decode archived session", zap.String("session_id", id), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Message: err.Error()})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"report":  report,
		"session": session,
	})
}

func (h *ReportHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	reports, err := h.archive.List(limit)
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Message: err.Error()})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}
