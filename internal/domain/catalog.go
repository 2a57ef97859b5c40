package domain

import (
	"context"
	"math"
	"time"
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// ProductStatus represents the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// VendorStatusActive is the only vendor status whose products are sold.
const VendorStatusActive = "active"


// Pagination limits for catalog listings.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*MaxPageSize inside an int32 OFFSET.
	MaxPage = math.MaxInt32/MaxPageSize + 1
)

// CatalogService is the read-only view of products, categories and vendors.
type CatalogService interface {
	ListProducts(ctx context.Context, page, pageSize int, filter ProductFilter) (*Page[Product], error)
	ListFeatured(ctx context.Context, limit int) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListVendors(ctx context.Context, page, pageSize int) (*Page[Vendor], error)
}

// Product is a vendor's sellable item. Price is in whole francs.
type Product struct {
	ID           string        `json:"id"`
	VendorID     string        `json:"vendorId"`
	VendorName   string        `json:"vendorName,omitempty"`
	CategoryID   string        `json:"categoryId,omitempty"`
	CategorySlug string        `json:"categorySlug,omitempty"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	Description  string        `json:"description,omitempty"`
	Price        int64         `json:"price"`
	Stock        int32         `json:"stock"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	IsFeatured   bool          `json:"isFeatured"`
	Status       ProductStatus `json:"status"`
	VendorStatus string        `json:"-"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Purchasable reports whether the product can be put in a cart: the
// product and its vendor must both be active.
func (p *Product) Purchasable() bool {
	return p != nil && p.Status == ProductStatusActive && p.VendorStatus == VendorStatusActive
}

// Category groups products. ParentID is empty for top-level categories.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	ParentID  string `json:"parentId,omitempty"`
	SortOrder int32  `json:"sortOrder"`
}

// Vendor is a seller on the marketplace.
type Vendor struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	CategorySlug string
	VendorSlug   string
	Search       string
	FeaturedOnly bool
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items      []T
	Count      int64
	Page       int
	PageSize   int
	TotalPages int
}

// NormalizePage clamps page and pageSize into the accepted range.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// NewPage builds a Page and derives TotalPages from count.
func NewPage[T any](items []T, count int64, page, pageSize int) *Page[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((count + int64(pageSize) - 1) / int64(pageSize))
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Count:      count,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
