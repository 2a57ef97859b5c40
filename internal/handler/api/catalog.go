package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/handler"
)

const defaultFeaturedLimit = 8

// CatalogHandler serves the read-only product, category and vendor routes.
type CatalogHandler struct {
	catalog domain.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog domain.CatalogService, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListProducts handles GET /api/products?page&limit&category&vendor&q
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		VendorSlug:   strings.TrimSpace(q.Get("vendor")),
		Search:       strings.TrimSpace(q.Get("q")),
		FeaturedOnly: q.Get("featured") == "true",
	}

	page, err := h.catalog.ListProducts(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", domain.DefaultPageSize), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Paged(w, page)
}

// ListFeatured handles GET /api/products/featured?limit
func (h *CatalogHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListFeatured(r.Context(), queryInt(r, "limit", defaultFeaturedLimit))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Data(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Data(w, http.StatusOK, product)
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Data(w, http.StatusOK, categories)
}

// ListVendors handles GET /api/vendors?page&limit
func (h *CatalogHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.ListVendors(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", domain.DefaultPageSize))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Paged(w, page)
}

// queryInt reads an integer query parameter. Missing or malformed values
// use def; range clamping is left to the service.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
