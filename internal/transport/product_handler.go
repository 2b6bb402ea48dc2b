package transport

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"food-rescue/internal/domain"
	"food-rescue/internal/middleware"
	"food-rescue/internal/repository"
	"food-rescue/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the create payload. Numeric fields are
// pointers so that a legitimate zero survives the required check.
type CreateProductRequest struct {
	Name           string           `json:"name" validate:"required"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice" validate:"required"`
	DiscountPrice  *decimal.Decimal `json:"discountPrice" validate:"required"`
	Image          string           `json:"image" validate:"required"`
	Category       string           `json:"category" validate:"required"`
	Quantity       *int             `json:"quantity" validate:"required"`
	ExpirationDate *string          `json:"expirationDate"`
	Description    *string          `json:"description"`
}

// UpdateProductRequest represents the partial update payload. Every field is
// optional; the struct itself is the whitelist of mutable attributes, so a
// caller can never touch id, createdAt or updatedAt through this path.
type UpdateProductRequest struct {
	Name           *string          `json:"name"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice"`
	DiscountPrice  *decimal.Decimal `json:"discountPrice"`
	Image          *string          `json:"image"`
	Category       *string          `json:"category"`
	Quantity       *int             `json:"quantity"`
	ExpirationDate *string          `json:"expirationDate"`
	Description    *string          `json:"description"`
}

// ListProductsResponse is the envelope for the list endpoint
type ListProductsResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Products []*domain.Product `json:"products"`
}

// ProductResponse is the envelope for create and update
type ProductResponse struct {
	Success bool            `json:"success"`
	Product *domain.Product `json:"product"`
}

// DeleteProductResponse is the envelope for delete
type DeleteProductResponse struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	DeletedProduct *domain.Product `json:"deletedProduct"`
}

// ProductHandler handles HTTP requests for product operations
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

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(middleware.RequireJSON)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// wellFormed applies the create rules the validator tags can't express:
// required strings must be non-empty after trimming, numeric fields must not
// be negative.
func (req *CreateProductRequest) wellFormed() bool {
	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Image) == "" ||
		strings.TrimSpace(req.Category) == "" {
		return false
	}
	if req.OriginalPrice == nil || req.OriginalPrice.IsNegative() {
		return false
	}
	if req.DiscountPrice == nil || req.DiscountPrice.IsNegative() {
		return false
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		return false
	}
	return true
}

// parseDate accepts RFC3339 timestamps or plain dates. An empty string is
// treated as absent, matching clients that send "" for an untracked date.
func parseDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithServerError(w, "Internal server error", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListProductsResponse{
		Success:  true,
		Count:    len(products),
		Products: products,
	})
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	if !req.wellFormed() {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	var expirationDate *time.Time
	if req.ExpirationDate != nil {
		parsed, err := parseDate(*req.ExpirationDate)
		if err != nil {
			h.logger.Debug("Unparseable expiration date", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product data")
			return
		}
		expirationDate = parsed
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	product, err := h.productService.Create(r.Context(), service.CreateProductInput{
		Name:           req.Name,
		OriginalPrice:  *req.OriginalPrice,
		DiscountPrice:  *req.DiscountPrice,
		Image:          req.Image,
		Category:       req.Category,
		Quantity:       *req.Quantity,
		ExpirationDate: expirationDate,
		Description:    description,
	})
	if err != nil {
		h.logger.Error("Create product failed", zap.Error(err))
		middleware.RespondWithServerError(w, "Product creation failed", err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, ProductResponse{
		Success: true,
		Product: product,
	})
}

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	update := &repository.ProductUpdate{
		Name:          req.Name,
		OriginalPrice: req.OriginalPrice,
		DiscountPrice: req.DiscountPrice,
		Image:         req.Image,
		Category:      req.Category,
		Quantity:      req.Quantity,
		Description:   req.Description,
	}
	if req.ExpirationDate != nil {
		parsed, err := parseDate(*req.ExpirationDate)
		if err != nil {
			h.logger.Debug("Unparseable expiration date", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product data")
			return
		}
		update.ExpirationDate = parsed
	}

	product, err := h.productService.Update(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFieldsToUpdate):
			middleware.RespondWithError(w, http.StatusBadRequest, "Provide at least one field to update")
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
		default:
			h.logger.Error("Update product failed", zap.Error(err))
			middleware.RespondWithServerError(w, "Internal server error", err)
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{
		Success: true,
		Product: product,
	})
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid or missing product ID")
		return
	}

	product, err := h.productService.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Delete product failed", zap.Error(err))
		middleware.RespondWithServerError(w, "Failed to delete product", err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, DeleteProductResponse{
		Success:        true,
		Message:        "Product deleted successfully",
		DeletedProduct: product,
	})
}
