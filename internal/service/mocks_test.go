package service

import (
	"context"
	"time"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/payment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Item, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) GetBySlug(ctx context.Context, slug string) (*model.Item, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

// MockItemCache is a mock implementation of ItemCache.
type MockItemCache struct {
	mock.Mock
}

func (m *MockItemCache) Get(ctx context.Context, slug string) (*model.Item, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemCache) Set(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

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

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) FindActiveForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*model.Order, error) {
	args := m.Called(ctx, tx, userID)
	return orderOrNil(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) FindActive(ctx context.Context, userID string) (*model.Order, error) {
	args := m.Called(ctx, userID)
	return orderOrNil(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) EnsureActive(ctx context.Context, tx pgx.Tx, userID string, now time.Time) (*model.Order, error) {
	args := m.Called(ctx, tx, userID, now)
	return orderOrNil(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	return orderOrNil(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	return orderOrNil(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) ListPlacedByUser(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func orderOrNil(v any) *model.Order {
	if o, ok := v.(*model.Order); ok {
		return o
	}
	return nil
}

// MockLineItemRepository is a mock implementation of LineItemRepository.
type MockLineItemRepository struct {
	mock.Mock
}

func (m *MockLineItemRepository) FindInOrderForUpdate(ctx context.Context, tx pgx.Tx, orderID, itemID uuid.UUID) (*model.LineItem, error) {
	args := m.Called(ctx, tx, orderID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LineItem), args.Error(1)
}

func (m *MockLineItemRepository) Create(ctx context.Context, tx pgx.Tx, li *model.LineItem) error {
	args := m.Called(ctx, tx, li)
	return args.Error(0)
}

func (m *MockLineItemRepository) UpdateQuantity(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

func (m *MockLineItemRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockLineItemRepository) MarkOrdered(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAddressRepository is a mock implementation of AddressRepository.
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(ctx context.Context, tx pgx.Tx, addr *model.Address) error {
	args := m.Called(ctx, tx, addr)
	return args.Error(0)
}

func (m *MockAddressRepository) FindDefault(ctx context.Context, tx pgx.Tx, userID string, addrType model.AddressType) (*model.Address, error) {
	args := m.Called(ctx, tx, userID, addrType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockAddressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, userID string, addrType model.AddressType) error {
	args := m.Called(ctx, tx, userID, addrType)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

// MockRefundRepository is a mock implementation of RefundRepository.
type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) Create(ctx context.Context, tx pgx.Tx, refund *model.Refund) error {
	args := m.Called(ctx, tx, refund)
	return args.Error(0)
}

func (m *MockRefundRepository) FindPendingForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Refund, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Refund), args.Error(1)
}

func (m *MockRefundRepository) Accept(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockCouponResolver is a mock implementation of CouponResolver.
type MockCouponResolver struct {
	mock.Mock
}

func (m *MockCouponResolver) Resolve(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

// MockCharger is a mock implementation of payment.Charger.
type MockCharger struct {
	mock.Mock
}

func (m *MockCharger) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTx is a minimal pgx.Tx for testing. Methods the services never call panic through the nil embedded Tx.
type MockTx struct {
	pgx.Tx
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

// Rollback reports pgx.ErrTxClosed after a commit, the way a real transaction does.
func (m *MockTx) Rollback(ctx context.Context) error {
	if m.committed {
		return pgx.ErrTxClosed
	}
	m.rolledBack = true
	return nil
}

func testItem(slug, price, discount string) *model.Item {
	item := &model.Item{
		ID:       uuid.New(),
		Title:    slug,
		Slug:     slug,
		Category: model.CategoryHoodie,
		Price:    decimal.RequireFromString(price),
	}
	if discount != "" {
		item.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(discount))
	}
	return item
}

// cartWith builds an active order holding one line item per item with the given quantity.
func cartWith(userID string, quantity int, items ...*model.Item) *model.Order {
	order := model.NewOrder(userID, time.Now().UTC())
	for _, item := range items {
		order.LineItems = append(order.LineItems, model.LineItem{
			ID:       uuid.New(),
			UserID:   userID,
			OrderID:  &order.ID,
			Item:     *item,
			Quantity: quantity,
		})
	}
	return order
}

// placedOrder builds an order already checked out.
func placedOrder(userID string, items ...*model.Item) *model.Order {
	order := cartWith(userID, 1, items...)
	billing, paymentID := uuid.New(), uuid.New()
	if err := order.Place(billing, nil, paymentID, time.Now().UTC()); err != nil {
		panic(err)
	}
	return order
}
