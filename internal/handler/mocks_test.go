package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListItems(ctx context.Context, limit, offset int) ([]model.Item, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockCatalogService) GetItem(ctx context.Context, slug string) (*model.Item, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddToCart(ctx context.Context, userID, slug string) (*model.LineItem, error) {
	args := m.Called(ctx, userID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LineItem), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, userID, slug string) error {
	return m.Called(ctx, userID, slug).Error(0)
}

func (m *MockCartService) RemoveSingleItem(ctx context.Context, userID, slug string) error {
	return m.Called(ctx, userID, slug).Error(0)
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*model.OrderResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockCartService) ApplyCoupon(ctx context.Context, userID, code string) (*model.OrderResponse, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) response(args mock.Arguments) (*model.OrderResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Checkout(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, userID, req))
}

func (m *MockOrderService) MarkBeingDelivered(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, orderID))
}

func (m *MockOrderService) MarkReceived(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, orderID))
}

func (m *MockOrderService) RequestRefund(ctx context.Context, userID string, orderID uuid.UUID, req *model.RefundRequest) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, userID, orderID, req))
}

func (m *MockOrderService) GrantRefund(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, orderID))
}

func (m *MockOrderService) DenyRefund(ctx context.Context, orderID uuid.UUID) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, orderID))
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, userID, orderID))
}

func (m *MockOrderService) GetTotal(ctx context.Context, userID string, orderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID string) ([]model.OrderResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderResponse), args.Error(1)
}

// serve routes one request through a chi router holding a single pattern, so path parameters resolve.
// A non-empty user is placed in the request context the way the UserID middleware does.
func serve(method, pattern, target, body, user string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), user))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
