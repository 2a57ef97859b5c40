package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dukerupert/isoko/internal/cache"
	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/repository"
)

// mockQuerier implements repository.Store for testing. Reads default to
// pgx.ErrNoRows, writes default to success. ExecTx runs fn against the
// mock itself.
type mockQuerier struct {
	// Cart
	AddCartItemFunc            func(ctx context.Context, arg repository.AddCartItemParams) (repository.CartItem, error)
	ClearCartFunc              func(ctx context.Context, cartID pgtype.UUID) error
	ClearCartBySessionIDFunc   func(ctx context.Context, sessionID string) error
	GetCartBySessionIDFunc     func(ctx context.Context, sessionID string) (repository.Cart, error)
	GetCartItemFunc            func(ctx context.Context, arg repository.GetCartItemParams) (repository.CartItem, error)
	GetCartItemByProductFunc   func(ctx context.Context, arg repository.GetCartItemByProductParams) (repository.CartItem, error)
	GetCartItemsFunc           func(ctx context.Context, cartID pgtype.UUID) ([]repository.GetCartItemsRow, error)
	RemoveCartItemFunc         func(ctx context.Context, arg repository.RemoveCartItemParams) error
	UpdateCartItemQuantityFunc func(ctx context.Context, arg repository.UpdateCartItemQuantityParams) (int64, error)
	UpsertCartFunc             func(ctx context.Context, sessionID string) (repository.Cart, error)

	// Catalog
	CountActiveProductsFunc func(ctx context.Context, arg repository.CountActiveProductsParams) (int64, error)
	CountActiveVendorsFunc  func(ctx context.Context) (int64, error)
	GetProductByIDFunc      func(ctx context.Context, id pgtype.UUID) (repository.GetProductByIDRow, error)
	ListActiveProductsFunc  func(ctx context.Context, arg repository.ListActiveProductsParams) ([]repository.ListActiveProductsRow, error)
	ListActiveVendorsFunc   func(ctx context.Context, arg repository.ListActiveVendorsParams) ([]repository.Vendor, error)
	ListCategoriesFunc      func(ctx context.Context) ([]repository.Category, error)

	// Orders
	CreateOrderFunc              func(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error)
	CreateOrderItemFunc          func(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error)
	CreatePaymentAttemptFunc     func(ctx context.Context, arg repository.CreatePaymentAttemptParams) error
	CreateTransactionFunc        func(ctx context.Context, arg repository.CreateTransactionParams) (int64, error)
	GetOrderByAttemptTxRefFunc   func(ctx context.Context, txRef string) (repository.Order, error)
	GetOrderByIDFunc             func(ctx context.Context, id pgtype.UUID) (repository.Order, error)
	GetOrderByTxRefFunc          func(ctx context.Context, txRef string) (repository.Order, error)
	GetOrderItemsFunc            func(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error)
	ListOrderTransactionsFunc    func(ctx context.Context, orderID pgtype.UUID) ([]repository.Transaction, error)
	ListStalePendingOrdersFunc   func(ctx context.Context, arg repository.ListStalePendingOrdersParams) ([]repository.Order, error)
	MarkOrderPaidFunc            func(ctx context.Context, arg repository.MarkOrderPaidParams) (repository.Order, error)
	MarkOrderPaymentFailedFunc   func(ctx context.Context, id pgtype.UUID) (int64, error)
	ResetOrderPaymentFunc        func(ctx context.Context, arg repository.ResetOrderPaymentParams) (repository.Order, error)
	SetOrderGatewayReferenceFunc func(ctx context.Context, arg repository.SetOrderGatewayReferenceParams) error

	// Outbox
	CreateOutboxEventFunc           func(ctx context.Context, arg repository.CreateOutboxEventParams) error
	ListUnpublishedOutboxEventsFunc func(ctx context.Context, limit int32) ([]repository.OutboxEvent, error)
	MarkOutboxEventFailedFunc       func(ctx context.Context, arg repository.MarkOutboxEventFailedParams) error
	MarkOutboxEventPublishedFunc    func(ctx context.Context, id pgtype.UUID) error

	// ExecTxErr, when set, is returned after fn succeeds to simulate a failed commit.
	ExecTxErr error

	mu           sync.Mutex
	calls        []string
	outboxEvents []repository.CreateOutboxEventParams
}

var _ repository.Store = (*mockQuerier)(nil)

func (m *mockQuerier) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// called reports whether the named method ran.
func (m *mockQuerier) called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (m *mockQuerier) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	m.record("ExecTx")
	if err := fn(m); err != nil {
		return err
	}
	return m.ExecTxErr
}

func (m *mockQuerier) AddCartItem(ctx context.Context, arg repository.AddCartItemParams) (repository.CartItem, error) {
	m.record("AddCartItem")
	if m.AddCartItemFunc != nil {
		return m.AddCartItemFunc(ctx, arg)
	}
	return repository.CartItem{CartID: arg.CartID, ProductID: arg.ProductID, Quantity: arg.Quantity, UnitPrice: arg.UnitPrice}, nil
}

func (m *mockQuerier) ClearCart(ctx context.Context, cartID pgtype.UUID) error {
	m.record("ClearCart")
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx, cartID)
	}
	return nil
}

func (m *mockQuerier) ClearCartBySessionID(ctx context.Context, sessionID string) error {
	m.record("ClearCartBySessionID")
	if m.ClearCartBySessionIDFunc != nil {
		return m.ClearCartBySessionIDFunc(ctx, sessionID)
	}
	return nil
}

func (m *mockQuerier) GetCartBySessionID(ctx context.Context, sessionID string) (repository.Cart, error) {
	m.record("GetCartBySessionID")
	if m.GetCartBySessionIDFunc != nil {
		return m.GetCartBySessionIDFunc(ctx, sessionID)
	}
	return repository.Cart{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetCartItem(ctx context.Context, arg repository.GetCartItemParams) (repository.CartItem, error) {
	m.record("GetCartItem")
	if m.GetCartItemFunc != nil {
		return m.GetCartItemFunc(ctx, arg)
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetCartItemByProduct(ctx context.Context, arg repository.GetCartItemByProductParams) (repository.CartItem, error) {
	m.record("GetCartItemByProduct")
	if m.GetCartItemByProductFunc != nil {
		return m.GetCartItemByProductFunc(ctx, arg)
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]repository.GetCartItemsRow, error) {
	m.record("GetCartItems")
	if m.GetCartItemsFunc != nil {
		return m.GetCartItemsFunc(ctx, cartID)
	}
	return nil, nil
}

func (m *mockQuerier) RemoveCartItem(ctx context.Context, arg repository.RemoveCartItemParams) error {
	m.record("RemoveCartItem")
	if m.RemoveCartItemFunc != nil {
		return m.RemoveCartItemFunc(ctx, arg)
	}
	return nil
}

func (m *mockQuerier) UpdateCartItemQuantity(ctx context.Context, arg repository.UpdateCartItemQuantityParams) (int64, error) {
	m.record("UpdateCartItemQuantity")
	if m.UpdateCartItemQuantityFunc != nil {
		return m.UpdateCartItemQuantityFunc(ctx, arg)
	}
	return 1, nil
}

func (m *mockQuerier) UpsertCart(ctx context.Context, sessionID string) (repository.Cart, error) {
	m.record("UpsertCart")
	if m.UpsertCartFunc != nil {
		return m.UpsertCartFunc(ctx, sessionID)
	}
	return repository.Cart{ID: testUUID(1), SessionID: sessionID}, nil
}

func (m *mockQuerier) CountActiveProducts(ctx context.Context, arg repository.CountActiveProductsParams) (int64, error) {
	m.record("CountActiveProducts")
	if m.CountActiveProductsFunc != nil {
		return m.CountActiveProductsFunc(ctx, arg)
	}
	return 0, nil
}

func (m *mockQuerier) CountActiveVendors(ctx context.Context) (int64, error) {
	m.record("CountActiveVendors")
	if m.CountActiveVendorsFunc != nil {
		return m.CountActiveVendorsFunc(ctx)
	}
	return 0, nil
}

func (m *mockQuerier) GetProductByID(ctx context.Context, id pgtype.UUID) (repository.GetProductByIDRow, error) {
	m.record("GetProductByID")
	if m.GetProductByIDFunc != nil {
		return m.GetProductByIDFunc(ctx, id)
	}
	return repository.GetProductByIDRow{}, pgx.ErrNoRows
}

func (m *mockQuerier) ListActiveProducts(ctx context.Context, arg repository.ListActiveProductsParams) ([]repository.ListActiveProductsRow, error) {
	m.record("ListActiveProducts")
	if m.ListActiveProductsFunc != nil {
		return m.ListActiveProductsFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockQuerier) ListActiveVendors(ctx context.Context, arg repository.ListActiveVendorsParams) ([]repository.Vendor, error) {
	m.record("ListActiveVendors")
	if m.ListActiveVendorsFunc != nil {
		return m.ListActiveVendorsFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockQuerier) ListCategories(ctx context.Context) ([]repository.Category, error) {
	m.record("ListCategories")
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *mockQuerier) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	m.record("CreateOrder")
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, arg)
	}
	return repository.Order{
		ID:            testUUID(9),
		OrderNumber:   arg.OrderNumber,
		CartSessionID: arg.CartSessionID,
		CustomerEmail: arg.CustomerEmail,
		CustomerName:  arg.CustomerName,
		CustomerPhone: arg.CustomerPhone,
		Currency:      arg.Currency,
		Subtotal:      arg.Subtotal,
		Shipping:      arg.Shipping,
		Tax:           arg.Tax,
		Total:         arg.Total,
		Status:        string(domain.OrderStatusPending),
		PaymentStatus: string(domain.PaymentStatusPending),
		TxRef:         arg.TxRef,
	}, nil
}

func (m *mockQuerier) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	m.record("CreateOrderItem")
	if m.CreateOrderItemFunc != nil {
		return m.CreateOrderItemFunc(ctx, arg)
	}
	return repository.OrderItem{
		OrderID:     arg.OrderID,
		ProductID:   arg.ProductID,
		VendorID:    arg.VendorID,
		ProductName: arg.ProductName,
		Quantity:    arg.Quantity,
		UnitPrice:   arg.UnitPrice,
		LineTotal:   arg.LineTotal,
	}, nil
}

func (m *mockQuerier) CreatePaymentAttempt(ctx context.Context, arg repository.CreatePaymentAttemptParams) error {
	m.record("CreatePaymentAttempt")
	if m.CreatePaymentAttemptFunc != nil {
		return m.CreatePaymentAttemptFunc(ctx, arg)
	}
	return nil
}

func (m *mockQuerier) GetOrderByAttemptTxRef(ctx context.Context, txRef string) (repository.Order, error) {
	m.record("GetOrderByAttemptTxRef")
	if m.GetOrderByAttemptTxRefFunc != nil {
		return m.GetOrderByAttemptTxRefFunc(ctx, txRef)
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (m *mockQuerier) CreateTransaction(ctx context.Context, arg repository.CreateTransactionParams) (int64, error) {
	m.record("CreateTransaction")
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, arg)
	}
	return 1, nil
}

func (m *mockQuerier) GetOrderByID(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
	m.record("GetOrderByID")
	if m.GetOrderByIDFunc != nil {
		return m.GetOrderByIDFunc(ctx, id)
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetOrderByTxRef(ctx context.Context, txRef string) (repository.Order, error) {
	m.record("GetOrderByTxRef")
	if m.GetOrderByTxRefFunc != nil {
		return m.GetOrderByTxRefFunc(ctx, txRef)
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error) {
	m.record("GetOrderItems")
	if m.GetOrderItemsFunc != nil {
		return m.GetOrderItemsFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *mockQuerier) ListOrderTransactions(ctx context.Context, orderID pgtype.UUID) ([]repository.Transaction, error) {
	m.record("ListOrderTransactions")
	if m.ListOrderTransactionsFunc != nil {
		return m.ListOrderTransactionsFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *mockQuerier) ListStalePendingOrders(ctx context.Context, arg repository.ListStalePendingOrdersParams) ([]repository.Order, error) {
	m.record("ListStalePendingOrders")
	if m.ListStalePendingOrdersFunc != nil {
		return m.ListStalePendingOrdersFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockQuerier) MarkOrderPaid(ctx context.Context, arg repository.MarkOrderPaidParams) (repository.Order, error) {
	m.record("MarkOrderPaid")
	if m.MarkOrderPaidFunc != nil {
		return m.MarkOrderPaidFunc(ctx, arg)
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (m *mockQuerier) MarkOrderPaymentFailed(ctx context.Context, id pgtype.UUID) (int64, error) {
	m.record("MarkOrderPaymentFailed")
	if m.MarkOrderPaymentFailedFunc != nil {
		return m.MarkOrderPaymentFailedFunc(ctx, id)
	}
	return 1, nil
}

func (m *mockQuerier) ResetOrderPayment(ctx context.Context, arg repository.ResetOrderPaymentParams) (repository.Order, error) {
	m.record("ResetOrderPayment")
	if m.ResetOrderPaymentFunc != nil {
		return m.ResetOrderPaymentFunc(ctx, arg)
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (m *mockQuerier) SetOrderGatewayReference(ctx context.Context, arg repository.SetOrderGatewayReferenceParams) error {
	m.record("SetOrderGatewayReference")
	if m.SetOrderGatewayReferenceFunc != nil {
		return m.SetOrderGatewayReferenceFunc(ctx, arg)
	}
	return nil
}

func (m *mockQuerier) CreateOutboxEvent(ctx context.Context, arg repository.CreateOutboxEventParams) error {
	m.record("CreateOutboxEvent")
	m.mu.Lock()
	m.outboxEvents = append(m.outboxEvents, arg)
	m.mu.Unlock()
	if m.CreateOutboxEventFunc != nil {
		return m.CreateOutboxEventFunc(ctx, arg)
	}
	return nil
}

func (m *mockQuerier) ListUnpublishedOutboxEvents(ctx context.Context, limit int32) ([]repository.OutboxEvent, error) {
	m.record("ListUnpublishedOutboxEvents")
	if m.ListUnpublishedOutboxEventsFunc != nil {
		return m.ListUnpublishedOutboxEventsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockQuerier) MarkOutboxEventFailed(ctx context.Context, arg repository.MarkOutboxEventFailedParams) error {
	m.record("MarkOutboxEventFailed")
	if m.MarkOutboxEventFailedFunc != nil {
		return m.MarkOutboxEventFailedFunc(ctx, arg)
	}
	return nil
}

func (m *mockQuerier) MarkOutboxEventPublished(ctx context.Context, id pgtype.UUID) error {
	m.record("MarkOutboxEventPublished")
	if m.MarkOutboxEventPublishedFunc != nil {
		return m.MarkOutboxEventPublishedFunc(ctx, id)
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// testUUID returns a valid UUID whose last byte is n.
func testUUID(n byte) pgtype.UUID {
	var id pgtype.UUID
	id.Bytes[15] = n
	id.Bytes[6] = 0x40
	id.Valid = true
	return id
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryCache is an in-process cache.CartCache for service tests.
type memoryCache struct {
	mu            sync.Mutex
	carts         map[string]*domain.Cart
	versions      map[string]int64
	invalidations int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		carts:    make(map[string]*domain.Cart),
		versions: make(map[string]int64),
	}
}

func (c *memoryCache) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cart, ok := c.carts[sessionID]; ok {
		return cart, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *memoryCache) Version(ctx context.Context, sessionID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[sessionID], nil
}

func (c *memoryCache) SetIfVersion(ctx context.Context, sessionID string, version int64, cart *domain.Cart) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[sessionID] != version {
		return false, nil
	}
	c.carts[sessionID] = cart
	return true, nil
}

func (c *memoryCache) Invalidate(ctx context.Context, sessionID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, sessionID)
	c.versions[sessionID]++
	c.invalidations++
	return c.versions[sessionID], nil
}

func (c *memoryCache) cached(sessionID string) (*domain.Cart, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cart, ok := c.carts[sessionID]
	return cart, ok
}
