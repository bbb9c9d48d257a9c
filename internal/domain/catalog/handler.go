package catalog

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/money"
	"photosession/internal/pkg/response"
	"photosession/internal/pkg/validator"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type createPackageRequest struct {
	Name            string       `json:"name" validate:"required,max=255"`
	Description     string       `json:"description"`
	Price           money.Amount `json:"price" validate:"gte=0"`
	DurationMinutes int          `json:"duration_minutes" validate:"gte=15,lte=480"`
}

type createServiceRequest struct {
	Name            string       `json:"name" validate:"required,max=255"`
	PricePerUnit    money.Amount `json:"price_per_unit" validate:"gte=0"`
	DurationMinutes *int         `json:"duration_minutes" validate:"omitempty,gte=15"`
}

func (h *Handler) CreatePackage(c *gin.Context) {
	var req createPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.FromError(c, apperror.Validation(errs))
		return
	}

	p := &Package{Name: req.Name, Description: req.Description, Price: req.Price, DurationMinutes: req.DurationMinutes, IsActive: true}
	p.StampCreate(c.GetInt64("user_id"), time.Now())
	if err := h.repo.CreatePackage(c.Request.Context(), p); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.FromError(c, apperror.Validation(errs))
		return
	}

	s := &Service{Name: req.Name, PricePerUnit: req.PricePerUnit, DurationMinutes: req.DurationMinutes, IsActive: true}
	s.StampCreate(c.GetInt64("user_id"), time.Now())
	if err := h.repo.CreateService(c.Request.Context(), s); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, s)
}

func (h *Handler) List(c *gin.Context) {
	packages, err := h.repo.ListPackages(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	services, err := h.repo.ListServices(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"packages": packages, "services": services})
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	catalog := rg.Group("/catalog")
	{
		catalog.GET("", h.List)
		catalog.POST("/packages", adminOnly, h.CreatePackage)
		catalog.POST("/services", adminOnly, h.CreateService)
	}
}
