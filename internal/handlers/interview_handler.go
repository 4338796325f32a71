package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mockmate/interview/internal/middleware"
	"mockmate/interview/internal/models"
	"mockmate/interview/internal/orchestrator"
	"mockmate/interview/internal/store"
	"mockmate/interview/internal/utils"
)

type InterviewHandler struct {
	orchestrator *orchestrator.Orchestrator
	logger       *zap.Logger
}

func NewInterviewHandler(o *orchestrator.Orchestrator, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		orchestrator: o,
		logger:       logger,
	}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartRequest](r)

	resp, err := h.orchestrator.Start(r.Context(), req.Role, req.Company)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.AnswerRequest](r)

	resp, err := h.orchestrator.SubmitAnswer(r.Context(), req.SessionID, req.QuestionID, req.Transcript, req.Skipped)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) SubmitCodeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SubmitCodeRequest](r)

	resp, err := h.orchestrator.SubmitCode(r.Context(), req.SessionID, req.QuestionID, req.Code, req.Language)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CompleteRequest](r)

	resp, err := h.orchestrator.Complete(r.Context(), req.SessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// SessionHandler is the debug/resume accessor.
func (h *InterviewHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Message: "session id is required"})
		return
	}

	session, err := h.orchestrator.Session(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.SessionResponse{Session: session})
}

// writeError maps structural errors to 404 and everything unexpected to
// 500. Agent failures never reach this path; the orchestrator absorbs them
// through its fallback policy.
func (h *InterviewHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrQuestionNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Message: err.Error()})
		return
	}

	h.logger.Error("interview request failed", zap.Error(err))
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Message: err.Error()})
}
