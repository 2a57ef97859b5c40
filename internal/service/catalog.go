package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/repository"
	"github.com/dukerupert/isoko/internal/telemetry"
)

type catalogService struct {
	repo    repository.Querier
	timeout time.Duration
	logger  *slog.Logger
}

// NewCatalogService creates the read-only catalog. Each call is bounded by
// timeout when it is positive.
func NewCatalogService(repo repository.Querier, timeout time.Duration, logger *slog.Logger) domain.CatalogService {
	return &catalogService{
		repo:    repo,
		timeout: timeout,
		logger:  logger,
	}
}

// ListProducts returns one page of active products, newest first.
func (s *catalogService) ListProducts(ctx context.Context, page, pageSize int, filter domain.ProductFilter) (*domain.Page[domain.Product], error) {
	const op = "catalog.list_products"
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page, pageSize = domain.NormalizePage(page, pageSize)
	search := likeEscaper.Replace(strings.TrimSpace(filter.Search))

	count, err := s.repo.CountActiveProducts(ctx, repository.CountActiveProductsParams{
		CategorySlug: toText(filter.CategorySlug),
		VendorSlug:   toText(filter.VendorSlug),
		Search:       toText(search),
		FeaturedOnly: filter.FeaturedOnly,
	})
	if err != nil {
		return nil, s.queryError(err, op, "failed to count products")
	}

	rows, err := s.repo.ListActiveProducts(ctx, repository.ListActiveProductsParams{
		CategorySlug: toText(filter.CategorySlug),
		VendorSlug:   toText(filter.VendorSlug),
		Search:       toText(search),
		FeaturedOnly: filter.FeaturedOnly,
		Offset:       int32((page - 1) * pageSize),
		Limit:        int32(pageSize),
	})
	if err != nil {
		return nil, s.queryError(err, op, "failed to list products")
	}

	if telemetry.Business != nil {
		telemetry.Business.ProductSearches.WithLabelValues(filterType(filter)).Inc()
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, productFromRow(repository.GetProductByIDRow(row)))
	}
	return domain.NewPage(products, count, page, pageSize), nil
}

// ListFeatured returns up to limit featured active products.
func (s *catalogService) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	page, err := s.ListProducts(ctx, 1, limit, domain.ProductFilter{FeaturedOnly: true})
	if err != nil {
		return nil, domain.WithOp(err, "catalog.list_featured")
	}
	return page.Items, nil
}

// GetProduct returns an active product. Unknown, malformed and
// non-active ids all report ENOTFOUND.
func (s *catalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "catalog.get_product"
	productID, ok := parseUUID(id)
	if !ok {
		return nil, domain.WithOp(ErrProductNotFound, op)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.WithOp(ErrProductNotFound, op)
		}
		return nil, s.queryError(err, op, "failed to load product")
	}

	product := productFromRow(row)
	if !product.Purchasable() {
		return nil, domain.WithOp(ErrProductNotFound, op)
	}

	if telemetry.Business != nil {
		telemetry.Business.ProductViews.WithLabelValues(product.VendorID).Inc()
	}
	return &product, nil
}

// ListCategories returns every category ordered by sort order then name.
func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "catalog.list_categories"
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, s.queryError(err, op, "failed to list categories")
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, domain.Category{
			ID:        uuidString(row.ID),
			Name:      row.Name,
			Slug:      row.Slug,
			ParentID:  uuidString(row.ParentID),
			SortOrder: row.SortOrder,
		})
	}
	return categories, nil
}

// ListVendors returns one page of active vendors.
func (s *catalogService) ListVendors(ctx context.Context, page, pageSize int) (*domain.Page[domain.Vendor], error) {
	const op = "catalog.list_vendors"
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page, pageSize = domain.NormalizePage(page, pageSize)

	count, err := s.repo.CountActiveVendors(ctx)
	if err != nil {
		return nil, s.queryError(err, op, "failed to count vendors")
	}

	rows, err := s.repo.ListActiveVendors(ctx, repository.ListActiveVendorsParams{
		Limit:  int32(pageSize),
		Offset: int32((page - 1) * pageSize),
	})
	if err != nil {
		return nil, s.queryError(err, op, "failed to list vendors")
	}

	vendors := make([]domain.Vendor, 0, len(rows))
	for _, row := range rows {
		vendors = append(vendors, domain.Vendor{
			ID:          uuidString(row.ID),
			Name:        row.Name,
			Slug:        row.Slug,
			Description: textValue(row.Description),
			LogoURL:     textValue(row.LogoUrl),
			Status:      row.Status,
			CreatedAt:   timeValue(row.CreatedAt),
		})
	}
	return domain.NewPage(vendors, count, page, pageSize), nil
}

func (s *catalogService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *catalogService) queryError(err error, op, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("catalog query timed out", "op", op, "timeout", s.timeout)
		return domain.Timeout(err, op, "Catalog is taking too long to respond")
	}
	return domain.Internal(err, op, message)
}

func filterType(f domain.ProductFilter) string {
	switch {
	case strings.TrimSpace(f.Search) != "":
		return "search"
	case f.CategorySlug != "":
		return "category"
	case f.VendorSlug != "":
		return "vendor"
	case f.FeaturedOnly:
		return "featured"
	default:
		return "none"
	}
}

// likeEscaper makes user search text match literally inside ILIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func productFromRow(row repository.GetProductByIDRow) domain.Product {
	return domain.Product{
		ID:           uuidString(row.ID),
		VendorID:     uuidString(row.VendorID),
		VendorName:   row.VendorName,
		CategoryID:   uuidString(row.CategoryID),
		CategorySlug: textValue(row.CategorySlug),
		Name:         row.Name,
		Slug:         row.Slug,
		Description:  textValue(row.Description),
		Price:        row.Price,
		Stock:        row.Stock,
		ImageURL:     textValue(row.ImageUrl),
		IsFeatured:   row.IsFeatured,
		Status:       domain.ProductStatus(row.Status),
		VendorStatus: row.VendorStatus,
		CreatedAt:    timeValue(row.CreatedAt),
	}
}
