package api

import (
	"net/http"

	service "github.com/okian/appraise/internal/app"
)

// QuestionsHandler lists the questionnaire.
type QuestionsHandler struct {
	deps Dependencies
}

// NewQuestionsHandler creates a new questions handler.
func NewQuestionsHandler(deps Dependencies) *QuestionsHandler {
	return &QuestionsHandler{deps: deps}
}

type questionsResponse struct {
	Count     int                    `json:"count"`
	Questions []service.QuestionView `json:"questions"`
}

// HandleListQuestions handles GET /questions.
func (h *QuestionsHandler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	qs := h.deps.Questions(r.Context())
	writeJSON(w, http.StatusOK, questionsResponse{Count: len(qs), Questions: qs})
}
