package projects

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"energienachweise/marketplace-backend/internal/auth"
)

// Handler handles HTTP requests for the project lifecycle
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new lifecycle handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type createProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	EGID        *string `json:"egid"`
	Parzelle    *string `json:"parzelle"`
	Adresse     *string `json:"adresse"`
	Ort         *string `json:"ort"`
	Kontrolltyp string  `json:"kontrolltyp" binding:"required,oneof=pk ak beides"`
}

type patchProjectRequest struct {
	Kontrolltyp *string `json:"kontrolltyp" binding:"omitempty,oneof=pk ak beides"`
	Status      *string `json:"status" binding:"omitempty,oneof=plan ausf done"`
}

type createEvidenceRequest struct {
	Fachbereich      string   `json:"fachbereich" binding:"required"`
	ENCode           string   `json:"en_code" binding:"required"`
	SwissTransferURL *string  `json:"swiss_transfer_url" binding:"omitempty,url"`
	RequiredDocs     []string `json:"required_docs"`
}

type createRequestsRequest struct {
	ProjectID   uuid.UUID   `json:"project_id" binding:"required"`
	ExpertenIDs []uuid.UUID `json:"experten_ids" binding:"required,min=1"`
}

type submitQuoteRequest struct {
	Preis     *float64 `json:"preis" binding:"required,gte=0"`
	Kommentar *string  `json:"kommentar"`
}

// CreateProject handles POST /projects
func (h *Handler) CreateProject(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), principal, CreateProjectInput{
		Name:        req.Name,
		EGID:        req.EGID,
		Parzelle:    req.Parzelle,
		Adresse:     req.Adresse,
		Ort:         req.Ort,
		Kontrolltyp: Kontrolltyp(req.Kontrolltyp),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ListMyProjects handles GET /projects/mine
func (h *Handler) ListMyProjects(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	projects, err := h.service.ListMyProjects(c.Request.Context(), principal)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject handles GET /projects/:id
func (h *Handler) GetProject(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.service.GetProject(c.Request.Context(), principal, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// PatchProject handles PATCH /projects/:id
func (h *Handler) PatchProject(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req patchProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	input := PatchProjectInput{}
	if req.Kontrolltyp != nil {
		kontrolltyp := Kontrolltyp(*req.Kontrolltyp)
		input.Kontrolltyp = &kontrolltyp
	}
	if req.Status != nil {
		status := ProjektStatus(*req.Status)
		input.Status = &status
	}

	project, err := h.service.PatchProject(c.Request.Context(), principal, projectID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// AddEvidence handles POST /projects/:id/evidences
func (h *Handler) AddEvidence(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req createEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	evidence, err := h.service.AddEvidence(c.Request.Context(), principal, projectID, EvidenceInput{
		Fachbereich:      req.Fachbereich,
		ENCode:           req.ENCode,
		SwissTransferURL: req.SwissTransferURL,
		RequiredDocs:     req.RequiredDocs,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, evidence)
}

// ListEvidences handles GET /projects/:id/evidences
func (h *Handler) ListEvidences(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	evidences, err := h.service.ListEvidences(c.Request.Context(), principal, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, evidences)
}

// DeleteEvidence handles DELETE /projects/:id/evidences/:evidenceID
func (h *Handler) DeleteEvidence(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)
	projectID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	evidenceID, ok := h.pathID(c, "evidenceID")
	if !ok {
		return
	}

	if err := h.service.DeleteEvidence(c.Request.Context(), principal, projectID, evidenceID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CreateRequests handles POST /requests
func (h *Handler) CreateRequests(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	var req createRequestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateRequests(c.Request.Context(), principal, req.ProjectID, req.ExpertenIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// ListMyRequests handles GET /requests/mine?role=
func (h *Handler) ListMyRequests(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)

	view := c.Query("role")
	if view != string(auth.RoleKunde) && view != string(auth.RoleExperte) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "role must be 'kunde' or 'experte'"})
		return
	}

	requests, err := h.service.ListMyRequests(c.Request.Context(), principal, auth.Role(view))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// SubmitQuote handles POST /quotes/requests/:id
func (h *Handler) SubmitQuote(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)
	requestID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req submitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.service.SubmitQuote(c.Request.Context(), principal, requestID, QuoteInput{
		Preis:     *req.Preis,
		Kommentar: req.Kommentar,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// AcceptQuote handles POST /quotes/:id/accept
func (h *Handler) AcceptQuote(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)
	quoteID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.AcceptQuote(c.Request.Context(), principal, quoteID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RejectQuote handles POST /quotes/:id/reject
func (h *Handler) RejectQuote(c *gin.Context) {
	principal, _ := auth.PrincipalFrom(c)
	quoteID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RejectQuote(c.Request.Context(), principal, quoteID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound),
		errors.Is(err, ErrEvidenceNotFound),
		errors.Is(err, ErrRequestNotFound),
		errors.Is(err, ErrQuoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ErrNoNewRequests):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUnknownExpert):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRequestClosed), errors.Is(err, ErrProjectDecided):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Lifecycle operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
