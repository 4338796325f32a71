package routers

import (
	"mockmate/interview/internal/handlers"
	"mockmate/interview/internal/middleware"
	"mockmate/interview/internal/models"

	"github.com/go-chi/chi/v5"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, reportHandler *handlers.ReportHandler) {
	router.Route("/interview", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.StartRequest]()).Post("/start", interviewHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.AnswerRequest]()).Post("/answer", interviewHandler.AnswerHandler)
		r.With(middleware.ValidateRequest[*models.SubmitCodeRequest]()).Post("/submit-code", interviewHandler.SubmitCodeHandler)
		r.With(middleware.ValidateRequest[*models.CompleteRequest]()).Post("/complete", interviewHandler.CompleteHandler)
		r.Get("/session/{id}", interviewHandler.SessionHandler)

		// report endpoints are only available when the archive is configured
		if reportHandler != nil {
			r.Get("/report/{id}", reportHandler.GetHandler)
			r.Get("/reports", reportHandler.ListHandler)
		}
	})
}
