package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for user accounts
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new users handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type registerCustomerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type registerExpertRequest struct {
	Email             string   `json:"email" binding:"required,email"`
	Password          string   `json:"password" binding:"required,min=8"`
	Personentyp       string   `json:"personentyp" binding:"required,oneof='natürliche Person' 'Firma'"`
	Vorname           *string  `json:"vorname"`
	Nachname          *string  `json:"nachname"`
	Firmenname        *string  `json:"firmenname"`
	Fachbereiche      []string `json:"fachbereiche" binding:"required,min=1"`
	Mitarbeiteranzahl *int     `json:"mitarbeiteranzahl" binding:"omitempty,gte=0"`
	Berufsnachweis    *string  `json:"berufsnachweis"`
}

// RegisterCustomer handles POST /customers/register
func (h *Handler) RegisterCustomer(c *gin.Context) {
	var req registerCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.RegisterCustomer(c.Request.Context(), RegisterCustomerRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Out())
}

// RegisterExpert handles POST /experts/register
func (h *Handler) RegisterExpert(c *gin.Context) {
	var req registerExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.RegisterExpert(c.Request.Context(), RegisterExpertRequest{
		Email:             req.Email,
		Password:          req.Password,
		Personentyp:       Personentyp(req.Personentyp),
		Vorname:           req.Vorname,
		Nachname:          req.Nachname,
		Firmenname:        req.Firmenname,
		Fachbereiche:      req.Fachbereiche,
		Mitarbeiteranzahl: req.Mitarbeiteranzahl,
		Berufsnachweis:    req.Berufsnachweis,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Out())
}

// ListUnverifiedExperts handles GET /admin/experts/unverified
func (h *Handler) ListUnverifiedExperts(c *gin.Context) {
	experts, err := h.service.ListUnverifiedExperts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usersOut(experts))
}

// VerifyExpert handles POST /admin/experts/:id/verify
func (h *Handler) VerifyExpert(c *gin.Context) {
	expertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid expert id"})
		return
	}

	user, err := h.service.VerifyExpert(c.Request.Context(), expertID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.Out())
}

// SearchExperts handles GET /experts/search
func (h *Handler) SearchExperts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	experts, err := h.service.SearchExperts(c.Request.Context(), c.Query("fachbereich"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usersOut(experts))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
	case errors.Is(err, ErrExpertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "expert not found"})
	default:
		h.logger.Error("User operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func usersOut(users []User) []UserOut {
	out := make([]UserOut, 0, len(users))
	for i := range users {
		out = append(out, users[i].Out())
	}
	return out
}
