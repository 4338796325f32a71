package handlers

import (
	"net/http"

	"mockmate/interview/internal/config"
	"mockmate/interview/internal/llm"
	"mockmate/interview/internal/prompts"
	"mockmate/interview/internal/store"
	"mockmate/interview/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	sessions      *store.SessionStore
	config        *config.Config
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, sessions *store.SessionStore, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		sessions:      sessions,
		config:        cfg,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// verify agent provider is initialized
	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{Status: "failed", Message: "agent provider not initialized"}
		allChecksPass = false
	} else {
		checks["provider"] = ReadinessCheck{Status: "ok"}
	}

	// verify prompt templates are loaded
	if handler.promptManager == nil || len(handler.promptManager.Modes()) == 0 {
		checks["prompts"] = ReadinessCheck{Status: "failed", Message: "prompt templates not loaded"}
		allChecksPass = false
	} else {
		checks["prompts"] = ReadinessCheck{Status: "ok"}
	}

	// verify session store is reachable
	if handler.sessions == nil {
		checks["sessions"] = ReadinessCheck{Status: "failed", Message: "session store not initialized"}
		allChecksPass = false
	} else {
		checks["sessions"] = ReadinessCheck{Status: "ok"}
	}

	status := "ready"
	statusCode := http.StatusOK
	if !allChecksPass {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	utils.JSON(writer, statusCode, ReadinessResponse{
		Status:  status,
		Service: "interview",
		Checks:  checks,
	})
}
