package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
)

const defaultPageSize = 10

// DocsHandler serves the document lifecycle routes.
type DocsHandler struct {
	docs driving.DocumentService
}

func NewDocsHandler(docs driving.DocumentService) *DocsHandler {
	return &DocsHandler{docs: docs}
}

type createDocRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updateDocRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

// creatorJSON is the owning user's public detail on a document response.
type creatorJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// docJSON is the wire shape of a document. The embedding vector is internal
// and never serialised.
type docJSON struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Summary   string      `json:"summary"`
	Tags      []string    `json:"tags"`
	CreatedBy creatorJSON `json:"createdBy"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type versionJSON struct {
	ID       string    `json:"id"`
	DocID    string    `json:"docId"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Tags     []string  `json:"tags"`
	Summary  string    `json:"summary"`
	EditedBy string    `json:"editedBy"`
	EditedAt time.Time `json:"editedAt"`
}

type activityJSON struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	DocID     string    `json:"docId"`
	DocTitle  string    `json:"docTitle"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

func toDocJSON(v driving.DocumentView) docJSON {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return docJSON{
		ID:      v.ID,
		Title:   v.Title,
		Content: v.Content,
		Summary: v.Summary,
		Tags:    tags,
		CreatedBy: creatorJSON{
			ID:   v.Document.CreatedBy,
			Name: v.CreatorName,
			Role: string(v.CreatorRole),
		},
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toDocJSONs(views []driving.DocumentView) []docJSON {
	out := make([]docJSON, len(views))
	for i, v := range views {
		out[i] = toDocJSON(v)
	}
	return out
}

// Create handles POST /api/docs.
func (h *DocsHandler) Create(c *gin.Context) {
	var req createDocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidInput)
		return
	}

	view, err := h.docs.Create(c.Request.Context(), currentUser(c), driving.DocumentInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, toDocJSON(*view))
}

// List handles GET /api/docs with optional tag, page, and limit query
// parameters.
func (h *DocsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit <= 0 {
		limit = defaultPageSize
	}

	views, err := h.docs.List(c.Request.Context(), driven.DocumentFilter{
		Tag:   c.Query("tag"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, toDocJSONs(views))
}

// Get handles GET /api/docs/:id.
func (h *DocsHandler) Get(c *gin.Context) {
	view, err := h.docs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toDocJSON(*view))
}

// Update handles PUT /api/docs/:id. Absent fields stay untouched; present
// fields trigger a version snapshot even when unchanged.
func (h *DocsHandler) Update(c *gin.Context) {
	var req updateDocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidInput)
		return
	}

	view, err := h.docs.Update(c.Request.Context(), currentUser(c), c.Param("id"), driving.DocumentUpdate{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, toDocJSON(*view))
}

// Delete handles DELETE /api/docs/:id.
func (h *DocsHandler) Delete(c *gin.Context) {
	if err := h.docs.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": true})
}

// Summarize handles POST /api/docs/:id/summarize: regenerate only the
// summary from current content.
func (h *DocsHandler) Summarize(c *gin.Context) {
	summary, err := h.docs.RegenerateSummary(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"summary": summary})
}

// Tags handles POST /api/docs/:id/tags: regenerate only the tags from
// current content.
func (h *DocsHandler) Tags(c *gin.Context) {
	tags, err := h.docs.RegenerateTags(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	respond(c, http.StatusOK, gin.H{"tags": tags})
}

// Versions handles GET /api/docs/:id/versions, newest first.
func (h *DocsHandler) Versions(c *gin.Context) {
	versions, err := h.docs.Versions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]versionJSON, len(versions))
	for i, v := range versions {
		tags := v.Tags
		if tags == nil {
			tags = []string{}
		}
		out[i] = versionJSON{
			ID:       v.ID,
			DocID:    v.DocID,
			Title:    v.Title,
			Content:  v.Content,
			Tags:     tags,
			Summary:  v.Summary,
			EditedBy: v.EditedBy,
			EditedAt: v.EditedAt,
		}
	}
	respond(c, http.StatusOK, out)
}

// Activity handles GET /api/docs/activity/feed/latest.
func (h *DocsHandler) Activity(c *gin.Context) {
	items, err := h.docs.LatestActivity(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]activityJSON, len(items))
	for i, a := range items {
		out[i] = activityJSON{
			ID:        a.ID,
			Action:    string(a.Action),
			DocID:     a.DocID,
			DocTitle:  a.DocTitle,
			UserID:    a.UserID,
			UserName:  a.UserName,
			CreatedAt: a.CreatedAt,
		}
	}
	respond(c, http.StatusOK, out)
}
