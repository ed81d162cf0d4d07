package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/entity"
	"github.com/lanchonete/pos-api/internal/domain/enum"
	"github.com/lanchonete/pos-api/internal/domain/repository"
	"github.com/lanchonete/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*entity.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*entity.Order)}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stored := *order
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		out := *o
		return &out, nil
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeOrderRepo) Update(ctx context.Context, order *entity.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *order
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		o.Status = status
	}
	return nil
}

func (f *fakeOrderRepo) List(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

type fakeOrderItemRepo struct {
	mu    sync.Mutex
	items []entity.OrderItem
}

func (f *fakeOrderItemRepo) CreateBatch(ctx context.Context, items []entity.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeOrderItemRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.OrderItem, 0)
	for _, item := range f.items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		out := *p
		return &out, nil
	}
	return nil, nil
}

func (f *fakeProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) List(ctx context.Context, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductRepo) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var failed []uuid.UUID
	for id, qty := range decrements {
		p, ok := f.products[id]
		if !ok || p.Stock < qty {
			failed = append(failed, id)
			continue
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}
	for id, qty := range decrements {
		f.products[id].Stock -= qty
	}
	return nil, nil
}

func (f *fakeProductRepo) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, qty := range increments {
		if p, ok := f.products[id]; ok {
			p.Stock += qty
		}
	}
	return nil
}

func (f *fakeProductRepo) stockOf(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

type orderFixture struct {
	orders   *fakeOrderRepo
	products *fakeProductRepo
	cashier  *CashierService
	svc      *OrderService
	burger   *entity.Product
	soda     *entity.Product
}

func newOrderFixture(t *testing.T, openTill bool) *orderFixture {
	t.Helper()

	burger := &entity.Product{ID: uuid.New(), Name: "Burger", Price: 2500, Stock: 10, Active: true}
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Price: 800, Stock: 5, Active: true}

	orders := newFakeOrderRepo()
	products := newFakeProductRepo(burger, soda)
	cashier := newTestCashier("")
	if openTill {
		_, err := cashier.Open(context.Background(), testOperator, testOperatorName, 10000)
		require.NoError(t, err)
	}

	svc := NewOrderService(orders, &fakeOrderItemRepo{}, products, NewSettlementService(cashier))
	return &orderFixture{
		orders:   orders,
		products: products,
		cashier:  cashier,
		svc:      svc,
		burger:   burger,
		soda:     soda,
	}
}

func TestCreateOrder(t *testing.T) {
	fx := newOrderFixture(t, false)

	order, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		UserID: testOperator,
		Note:   "No onions",
		Items: []OrderItemInput{
			{ProductID: fx.burger.ID, Quantity: 2},
			{ProductID: fx.soda.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, enum.OrderStatusPending, order.Status)
	assert.Equal(t, int64(5800), order.Total)
	assert.Equal(t, 3, order.TotalItems)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(2500), order.Items[0].UnitPrice)

	// Stock is untouched until completion.
	assert.Equal(t, 10, fx.products.stockOf(fx.burger.ID))
	assert.Equal(t, 5, fx.products.stockOf(fx.soda.ID))
}

func TestCreateOrderValidation(t *testing.T) {
	fx := newOrderFixture(t, false)

	_, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{UserID: testOperator})
	assert.Error(t, err)

	_, err = fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		UserID: testOperator,
		Items:  []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	assert.Error(t, err)

	_, err = fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		UserID: testOperator,
		Items:  []OrderItemInput{{ProductID: fx.burger.ID, Quantity: 0}},
	})
	assert.Error(t, err)
}

func TestUpdateStatusBlocksCompletion(t *testing.T) {
	fx := newOrderFixture(t, true)

	order, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		UserID: testOperator,
		Items:  []OrderItemInput{{ProductID: fx.burger.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = fx.svc.UpdateStatus(context.Background(), order.ID, enum.OrderStatusCompleted)
	assert.Error(t, err)

	updated, err := fx.svc.UpdateStatus(context.Background(), order.ID, enum.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusPreparing, updated.Status)
}

func TestCompleteOrder(t *testing.T) {
	fx := newOrderFixture(t, true)

	created, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		UserID: testOperator,
		Items:  []OrderItemInput{{ProductID: fx.burger.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	fx.orders.orders[created.ID].Items = created.Items

	completed, err := fx.svc.CompleteOrder(context.Background(), created.ID, testOperator, testOperatorName)
	require.NoError(t, err)

	assert.Equal(t, enum.OrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, 8, fx.products.stockOf(fx.burger.ID))

	// The sale landed on the ledger.
	assert.Equal(t, int64(15000), fx.cashier.Balance())
	movements := fx.cashier.Movements(nil)
	last := movements[len(movements)-1]
	assert.Equal(t, enum.MovementSale, last.Kind)
	assert.Equal(t, created.Total, last.Amount)
}

func TestCompleteOrderWithClosedTill(t *testing.T) {
	fx := newOrderFixture(t, false)

	created, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		UserID: testOperator,
		Items:  []OrderItemInput{{ProductID: fx.burger.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	fx.orders.orders[created.ID].Items = created.Items

	_, err = fx.svc.CompleteOrder(context.Background(), created.ID, testOperator, testOperatorName)
	assert.ErrorIs(t, err, apperror.ErrCashierClosed)

	// Nothing changed: no stock move, order still pending.
	assert.Equal(t, 10, fx.products.stockOf(fx.burger.ID))
	stored, err := fx.svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusPending, stored.Status)
}

func TestCompleteOrderInsufficientStockReversesSale(t *testing.T) {
	fx := newOrderFixture(t, true)

	created, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		UserID: testOperator,
		Items:  []OrderItemInput{{ProductID: fx.soda.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	fx.orders.orders[created.ID].Items = created.Items

	// Drain stock behind the order's back.
	fx.products.products[fx.soda.ID].Stock = 2

	_, err = fx.svc.CompleteOrder(context.Background(), created.ID, testOperator, testOperatorName)
	require.Error(t, err)

	// The sale was registered then reversed; the balance is back where it
	// started and the reversal is on the record.
	assert.Equal(t, int64(10000), fx.cashier.Balance())
	movements := fx.cashier.Movements(nil)
	last := movements[len(movements)-1]
	assert.Equal(t, enum.MovementOutflow, last.Kind)
	assert.Equal(t, created.Total, last.Amount)
	assert.Equal(t, "adjustment", last.Category)
	assert.Equal(t, 2, fx.products.stockOf(fx.soda.ID))
}

func TestCompleteOrderTwice(t *testing.T) {
	fx := newOrderFixture(t, true)

	created, err := fx.svc.CreateOrder(context.Background(), &CreateOrderInput{
		UserID: testOperator,
		Items:  []OrderItemInput{{ProductID: fx.burger.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	fx.orders.orders[created.ID].Items = created.Items

	_, err = fx.svc.CompleteOrder(context.Background(), created.ID, testOperator, testOperatorName)
	require.NoError(t, err)

	_, err = fx.svc.CompleteOrder(context.Background(), created.ID, testOperator, testOperatorName)
	assert.Error(t, err)

	// No double charge, no double decrement.
	assert.Equal(t, int64(12500), fx.cashier.Balance())
	assert.Equal(t, 9, fx.products.stockOf(fx.burger.ID))
}
