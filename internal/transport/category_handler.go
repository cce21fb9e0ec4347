package transport

import (
	"net/http"

	"product-catalog/internal/middleware"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.FindAll)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAnyRole(h.logger, middleware.RoleAdmin))
			r.Post("/", h.Insert)
		})
	})
}

// FindAll handles GET /categories
func (h *CategoryHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.FindAll(r.Context())
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Insert handles POST /categories
func (h *CategoryHandler) Insert(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, r, validationErrors)
			return
		}
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Insert(r.Context(), req.Name)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Category created", zap.Int64("category_id", category.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}
