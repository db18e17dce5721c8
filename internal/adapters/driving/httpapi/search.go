package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
)

// SearchHandler serves keyword and semantic search.
type SearchHandler struct {
	search driving.SearchService
}

func NewSearchHandler(search driving.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchResultJSON struct {
	docJSON

	Score float64 `json:"score"`
}

func toSearchResults(results []driving.ScoredDocument) []searchResultJSON {
	out := make([]searchResultJSON, len(results))
	for i, r := range results {
		out[i] = searchResultJSON{
			docJSON: toDocJSON(r.DocumentView),
			Score:   r.Score,
		}
	}
	return out
}

// Text handles GET /api/search/text?q=...
func (h *SearchHandler) Text(c *gin.Context) {
	results, err := h.search.Text(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toSearchResults(results))
}

// Semantic handles GET /api/search/semantic?q=...
func (h *SearchHandler) Semantic(c *gin.Context) {
	results, err := h.search.Semantic(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toSearchResults(results))
}
