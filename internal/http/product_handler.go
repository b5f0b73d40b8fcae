package http

import (
	"context"
	"net/http"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/catalog"
	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog is the product surface the handlers need.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, category domain.Category, query string) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in catalog.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CreateSale(ctx context.Context, id string, salePrice decimal.Decimal) (*domain.Product, error)
	RemoveSale(ctx context.Context, id string) (*domain.Product, error)
}

type ProductHandler struct {
	catalog Catalog
	log     *zap.Logger
}

func NewProductHandler(c Catalog, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: c, log: log}
}

type ProductResponse struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Category       domain.Category  `json:"category"`
	Colors         []string         `json:"colors"`
	Images         []string         `json:"images"`
	SellPrice      decimal.Decimal  `json:"sell_price"`
	SalePrice      *decimal.Decimal `json:"sale_price,omitempty"`
	EffectivePrice decimal.Decimal  `json:"effective_price"`
	OnSale         bool             `json:"on_sale"`
	Sizes          domain.Sizes     `json:"sizes"`
	AvailableSizes []string         `json:"available_sizes"`
	TotalQuantity  int              `json:"total_quantity"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// AdminProductResponse adds the fields only the back office may see.
type AdminProductResponse struct {
	ProductResponse
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
}

type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Count    int               `json:"count"`
}

type SaleRequest struct {
	SalePrice decimal.Decimal `json:"sale_price"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Colors:         p.Colors,
		Images:         p.Images,
		SellPrice:      p.SellPrice,
		SalePrice:      p.SalePrice,
		EffectivePrice: p.EffectivePrice(),
		OnSale:         p.OnSale(),
		Sizes:          p.Sizes,
		AvailableSizes: catalog.AvailableSizes(p),
		TotalQuantity:  p.TotalQuantity,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toAdminProductResponse(p *domain.Product) AdminProductResponse {
	return AdminProductResponse{
		ProductResponse: toProductResponse(p),
		PurchasePrice:   p.PurchasePrice,
	}
}

// ListProducts handles GET /api/v1/products?category=&q=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(r.URL.Query().Get("category"))
	if category != "" && !category.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_argument", "unknown category")
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), category, r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp := ListProductsResponse{
		Products: make([]ProductResponse, 0, len(products)),
		Count:    len(products),
	}
	for _, p := range products {
		resp.Products = append(resp.Products, toProductResponse(p))
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetProduct handles GET /api/v1/products/{product_id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(product))
}

// CreateProduct handles POST /api/v1/admin/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req catalog.ProductInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAdminProductResponse(product))
}

// UpdateProduct handles PUT /api/v1/admin/products/{product_id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req catalog.ProductInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "product_id"), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toAdminProductResponse(product))
}

// DeleteProduct handles DELETE /api/v1/admin/products/{product_id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "product_id")); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSale handles POST /api/v1/admin/products/{product_id}/sale
func (h *ProductHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	product, err := h.catalog.CreateSale(r.Context(), chi.URLParam(r, "product_id"), req.SalePrice)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toAdminProductResponse(product))
}

// RemoveSale handles DELETE /api/v1/admin/products/{product_id}/sale
func (h *ProductHandler) RemoveSale(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.RemoveSale(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toAdminProductResponse(product))
}
