package api

import (
	"context"

	"github.com/dukerupert/isoko/internal/domain"
)

// mockCartService implements domain.CartService for testing
type mockCartService struct {
	getCartFunc        func(ctx context.Context, sessionID string) (*domain.Cart, error)
	addItemFunc        func(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	updateQuantityFunc func(ctx context.Context, sessionID, itemID string, quantity int) (*domain.Cart, error)
	removeItemFunc     func(ctx context.Context, sessionID, itemID string) (*domain.Cart, error)
	clearFunc          func(ctx context.Context, sessionID string) (*domain.Cart, error)
}

func emptyCart(sessionID string) *domain.Cart {
	return &domain.Cart{SessionID: sessionID, Items: []domain.CartItem{}, Totals: domain.CartTotals{Currency: "RWF"}}
}

func (m *mockCartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if m.getCartFunc != nil {
		return m.getCartFunc(ctx, sessionID)
	}
	return emptyCart(sessionID), nil
}

func (m *mockCartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if m.addItemFunc != nil {
		return m.addItemFunc(ctx, sessionID, productID, quantity)
	}
	return emptyCart(sessionID), nil
}

func (m *mockCartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*domain.Cart, error) {
	if m.updateQuantityFunc != nil {
		return m.updateQuantityFunc(ctx, sessionID, itemID, quantity)
	}
	return emptyCart(sessionID), nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error) {
	if m.removeItemFunc != nil {
		return m.removeItemFunc(ctx, sessionID, itemID)
	}
	return emptyCart(sessionID), nil
}

func (m *mockCartService) Clear(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if m.clearFunc != nil {
		return m.clearFunc(ctx, sessionID)
	}
	return emptyCart(sessionID), nil
}

func (m *mockCartService) GetCount(ctx context.Context, sessionID string) int {
	cart, err := m.GetCart(ctx, sessionID)
	if err != nil {
		return 0
	}
	return cart.Count()
}

// mockCatalogService implements domain.CatalogService for testing
type mockCatalogService struct {
	listProductsFunc   func(ctx context.Context, page, pageSize int, filter domain.ProductFilter) (*domain.Page[domain.Product], error)
	listFeaturedFunc   func(ctx context.Context, limit int) ([]domain.Product, error)
	getProductFunc     func(ctx context.Context, id string) (*domain.Product, error)
	listCategoriesFunc func(ctx context.Context) ([]domain.Category, error)
	listVendorsFunc    func(ctx context.Context, page, pageSize int) (*domain.Page[domain.Vendor], error)
}

func (m *mockCatalogService) ListProducts(ctx context.Context, page, pageSize int, filter domain.ProductFilter) (*domain.Page[domain.Product], error) {
	if m.listProductsFunc != nil {
		return m.listProductsFunc(ctx, page, pageSize, filter)
	}
	return domain.NewPage[domain.Product](nil, 0, page, pageSize), nil
}

func (m *mockCatalogService) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	if m.listFeaturedFunc != nil {
		return m.listFeaturedFunc(ctx, limit)
	}
	return []domain.Product{}, nil
}

func (m *mockCatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if m.getProductFunc != nil {
		return m.getProductFunc(ctx, id)
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if m.listCategoriesFunc != nil {
		return m.listCategoriesFunc(ctx)
	}
	return []domain.Category{}, nil
}

func (m *mockCatalogService) ListVendors(ctx context.Context, page, pageSize int) (*domain.Page[domain.Vendor], error) {
	if m.listVendorsFunc != nil {
		return m.listVendorsFunc(ctx, page, pageSize)
	}
	return domain.NewPage[domain.Vendor](nil, 0, page, pageSize), nil
}

// mockOrderService implements domain.OrderService for testing
type mockOrderService struct {
	createOrderFunc       func(ctx context.Context, sessionID string, customer domain.CustomerInfo) (*domain.CheckoutResult, error)
	reinitiatePaymentFunc func(ctx context.Context, orderID string) (*domain.CheckoutResult, error)
	getOrderFunc          func(ctx context.Context, orderID string) (*domain.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, sessionID string, customer domain.CustomerInfo) (*domain.CheckoutResult, error) {
	if m.createOrderFunc != nil {
		return m.createOrderFunc(ctx, sessionID, customer)
	}
	return nil, domain.ErrEmptyCart
}

func (m *mockOrderService) ReinitiatePayment(ctx context.Context, orderID string) (*domain.CheckoutResult, error) {
	if m.reinitiatePaymentFunc != nil {
		return m.reinitiatePaymentFunc(ctx, orderID)
	}
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if m.getOrderFunc != nil {
		return m.getOrderFunc(ctx, orderID)
	}
	return nil, domain.ErrOrderNotFound
}
