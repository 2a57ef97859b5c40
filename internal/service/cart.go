package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/dukerupert/isoko/internal/cache"
	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/repository"
	"github.com/dukerupert/isoko/internal/telemetry"
)

type cartService struct {
	store  repository.Store
	cache  cache.CartCache
	pricer *Pricer
	logger *slog.Logger
	loads  singleflight.Group
}

// NewCartService creates the cart manager. A nil cache disables caching.
func NewCartService(store repository.Store, cartCache cache.CartCache, pricer *Pricer, logger *slog.Logger) domain.CartService {
	if cartCache == nil {
		cartCache = cache.NoopCache{}
	}
	return &cartService{
		store:  store,
		cache:  cartCache,
		pricer: pricer,
		logger: logger,
	}
}

// GetCart returns the session's cart. An unknown session gets an empty
// cart without a row being written.
func (s *cartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	const op = "cart.get"
	if !ValidSessionID(sessionID) {
		return nil, domain.WithOp(ErrInvalidSession, op)
	}

	cart, err := s.cache.Get(ctx, sessionID)
	switch {
	case err == nil:
		s.cacheLookup("hit")
		return cart, nil
	case errors.Is(err, cache.ErrCacheMiss):
		s.cacheLookup("miss")
	default:
		s.cacheLookup("error")
		s.logger.WarnContext(ctx, "cart cache read failed", "error", err)
	}

	v, err, _ := s.loads.Do(sessionID, func() (any, error) {
		// The version is read before the rows so a mutation that commits
		// while we load makes the cache write below a no-op.
		version, verr := s.cache.Version(ctx, sessionID)
		cart, err := s.loadCart(ctx, op, sessionID)
		if err != nil {
			return nil, err
		}
		if verr != nil {
			s.logger.WarnContext(ctx, "cart cache version read failed", "error", verr)
			return cart, nil
		}
		s.storeCart(ctx, op, sessionID, version, cart)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem adds quantity units of productID, merging into an existing line.
func (s *cartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	const op = "cart.add"
	if !ValidSessionID(sessionID) {
		return nil, domain.WithOp(ErrInvalidSession, op)
	}
	if quantity < 1 {
		return nil, domain.WithOp(ErrInvalidQuantity, op)
	}

	productUUID, ok := parseUUID(productID)
	if !ok {
		return nil, domain.WithOp(ErrProductNotFound, op)
	}

	product, err := s.store.GetProductByID(ctx, productUUID)
	if err != nil {
		if repository.IsNotFound(err) || repository.IsInvalidInput(err) {
			return nil, domain.WithOp(ErrProductNotFound, op)
		}
		return nil, domain.Internal(err, op, "failed to load product")
	}
	if p := productFromRow(product); !p.Purchasable() {
		return nil, domain.WithOp(ErrProductUnavailable, op)
	}

	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := q.UpsertCart(ctx, sessionID)
		if err != nil {
			return domain.Internal(err, op, "failed to open cart")
		}

		var existing int64
		line, err := q.GetCartItemByProduct(ctx, repository.GetCartItemByProductParams{
			CartID:    cart.ID,
			ProductID: product.ID,
		})
		switch {
		case err == nil:
			existing = int64(line.Quantity)
		case repository.IsNotFound(err):
		default:
			return domain.Internal(err, op, "failed to load cart line")
		}

		if int64(product.Stock) < existing+int64(quantity) {
			return domain.WithOp(ErrInsufficientStock, op)
		}

		_, err = q.AddCartItem(ctx, repository.AddCartItemParams{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  int32(quantity),
			UnitPrice: product.Price,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to add item to cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if telemetry.Business != nil {
		telemetry.Business.CartItemsAdded.WithLabelValues(uuidString(product.VendorID)).Inc()
	}

	return s.afterMutation(ctx, op, sessionID)
}

// UpdateQuantity replaces a line's quantity. Zero or less removes the line.
func (s *cartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*domain.Cart, error) {
	const op = "cart.update"
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, itemID)
	}
	if !ValidSessionID(sessionID) {
		return nil, domain.WithOp(ErrInvalidSession, op)
	}

	itemUUID, ok := parseUUID(itemID)
	if !ok {
		return nil, domain.WithOp(ErrCartItemNotFound, op)
	}

	cart, err := s.store.GetCartBySessionID(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.WithOp(ErrCartItemNotFound, op)
		}
		return nil, domain.Internal(err, op, "failed to load cart")
	}

	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		line, err := q.GetCartItem(ctx, repository.GetCartItemParams{ID: itemUUID, CartID: cart.ID})
		if err != nil {
			if repository.IsNotFound(err) {
				return domain.WithOp(ErrCartItemNotFound, op)
			}
			return domain.Internal(err, op, "failed to load cart line")
		}

		product, err := q.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return domain.Internal(err, op, "failed to load product")
		}
		if int64(product.Stock) < int64(quantity) {
			return domain.WithOp(ErrInsufficientStock, op)
		}

		n, err := q.UpdateCartItemQuantity(ctx, repository.UpdateCartItemQuantityParams{
			ID:       itemUUID,
			CartID:   cart.ID,
			Quantity: int32(quantity),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to update quantity")
		}
		if n == 0 {
			return domain.WithOp(ErrCartItemNotFound, op)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.afterMutation(ctx, op, sessionID)
}

// RemoveItem deletes a line. Removing a line that is not there succeeds.
func (s *cartService) RemoveItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error) {
	const op = "cart.remove"
	if !ValidSessionID(sessionID) {
		return nil, domain.WithOp(ErrInvalidSession, op)
	}

	itemUUID, ok := parseUUID(itemID)
	if !ok {
		return s.GetCart(ctx, sessionID)
	}

	cart, err := s.store.GetCartBySessionID(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return s.emptyCart(ctx, op, sessionID)
		}
		return nil, domain.Internal(err, op, "failed to load cart")
	}

	if err := s.store.RemoveCartItem(ctx, repository.RemoveCartItemParams{ID: itemUUID, CartID: cart.ID}); err != nil {
		return nil, domain.Internal(err, op, "failed to remove item")
	}

	if telemetry.Business != nil {
		telemetry.Business.CartItemsRemoved.Inc()
	}

	return s.afterMutation(ctx, op, sessionID)
}

// Clear deletes every line in the session's cart.
func (s *cartService) Clear(ctx context.Context, sessionID string) (*domain.Cart, error) {
	const op = "cart.clear"
	if !ValidSessionID(sessionID) {
		return nil, domain.WithOp(ErrInvalidSession, op)
	}

	cart, err := s.store.GetCartBySessionID(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return s.emptyCart(ctx, op, sessionID)
		}
		return nil, domain.Internal(err, op, "failed to load cart")
	}

	if err := s.store.ClearCart(ctx, cart.ID); err != nil {
		return nil, domain.Internal(err, op, "failed to clear cart")
	}

	if telemetry.Business != nil {
		telemetry.Business.CartCleared.Inc()
	}

	return s.afterMutation(ctx, op, sessionID)
}

// GetCount returns the number of units in the cart, or 0 on any failure.
func (s *cartService) GetCount(ctx context.Context, sessionID string) int {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "cart count unavailable", "error", err)
		return 0
	}
	return cart.Count()
}

// afterMutation bumps the cache version, reloads the cart and caches the
// fresh view. Reads that started before the commit no longer share a
// load with later callers.
func (s *cartService) afterMutation(ctx context.Context, op, sessionID string) (*domain.Cart, error) {
	s.loads.Forget(sessionID)

	version, verr := s.cache.Invalidate(ctx, sessionID)
	if verr != nil {
		s.logger.WarnContext(ctx, "cart cache invalidation failed", "error", verr, "op", op)
	}

	cart, err := s.loadCart(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if verr == nil {
		s.storeCart(ctx, op, sessionID, version, cart)
	}
	return cart, nil
}

func (s *cartService) storeCart(ctx context.Context, op, sessionID string, version int64, cart *domain.Cart) {
	stored, err := s.cache.SetIfVersion(ctx, sessionID, version, cart)
	if err != nil {
		s.logger.WarnContext(ctx, "cart cache write failed", "error", err, "op", op)
		return
	}
	if !stored {
		s.logger.DebugContext(ctx, "cart cache write skipped, cart changed during load", "op", op)
	}
}

func (s *cartService) loadCart(ctx context.Context, op, sessionID string) (*domain.Cart, error) {
	cart, err := s.store.GetCartBySessionID(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return s.emptyCart(ctx, op, sessionID)
		}
		return nil, domain.Internal(err, op, "failed to load cart")
	}

	rows, err := s.store.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load cart items")
	}

	result := &domain.Cart{
		ID:        uuidString(cart.ID),
		SessionID: cart.SessionID,
		Items:     cartItemsFromRows(rows),
		CreatedAt: timeValue(cart.CreatedAt),
		UpdatedAt: timeValue(cart.UpdatedAt),
	}

	result.Totals, err = s.pricer.Totals(ctx, result.Items)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to price cart")
	}
	return result, nil
}

func (s *cartService) emptyCart(ctx context.Context, op, sessionID string) (*domain.Cart, error) {
	totals, err := s.pricer.Totals(ctx, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to price cart")
	}
	return &domain.Cart{
		SessionID: sessionID,
		Items:     []domain.CartItem{},
		Totals:    totals,
	}, nil
}

func (s *cartService) cacheLookup(result string) {
	if telemetry.Business != nil {
		telemetry.Business.CartCacheLookups.WithLabelValues(result).Inc()
	}
}

func cartItemsFromRows(rows []repository.GetCartItemsRow) []domain.CartItem {
	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.CartItem{
			ID:          uuidString(row.ID),
			ProductID:   uuidString(row.ProductID),
			VendorID:    uuidString(row.VendorID),
			ProductName: row.ProductName,
			ImageURL:    textValue(row.ImageUrl),
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			LineTotal:   int64(row.Quantity) * row.UnitPrice,
			AddedAt:     timeValue(row.CreatedAt),
		})
	}
	return items
}
