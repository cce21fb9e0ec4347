package transport

import (
	"fmt"
	"net/http"

	"product-catalog/internal/dto"
	"product-catalog/internal/middleware"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads are public, writes
// need an authenticated ROLE_ADMIN caller.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Get("/{id}", h.FindByID)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAnyRole(h.logger, middleware.RoleAdmin))
			r.Post("/", h.Insert)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// FindByID handles GET /products/{id}
func (h *ProductHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productService.FindByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// FindAll handles GET /products?name=&page=&size=&sort=
func (h *ProductHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	page := parsePageRequest(r)

	result, err := h.productService.FindAll(r.Context(), name, page)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Insert handles POST /products
func (h *ProductHandler) Insert(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductDTO
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.productService.Insert(r.Context(), req)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/products/%d", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles PUT /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var req dto.ProductDTO
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), id, req)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decode reads and validates a request body, answering the request itself
// when the body is unusable
func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Product request rejected", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, r, validationErrors)
			return false
		}

		middleware.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
