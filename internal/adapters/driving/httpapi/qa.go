package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
)

// QAHandler serves question answering over the corpus or a single document.
type QAHandler struct {
	qa driving.QAService
}

func NewQAHandler(qa driving.QAService) *QAHandler {
	return &QAHandler{qa: qa}
}

type askRequest struct {
	Question string `json:"question"`
	DocID    string `json:"docId"`
}

// Ask handles POST /api/qa. An empty docId answers over the whole corpus.
func (h *QAHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidInput)
		return
	}

	answer, err := h.qa.Ask(c.Request.Context(), req.Question, req.DocID)
	if err != nil {
		respondError(c, err)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []driving.Source{}
	}
	respond(c, http.StatusOK, gin.H{
		"answer":  answer.Text,
		"sources": sources,
	})
}
