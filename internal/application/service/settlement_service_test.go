package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/entity"
	"github.com/lanchonete/pos-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(total int64) *entity.Order {
	return &entity.Order{
		ID:      uuid.New(),
		OrderNo: "ORD-20260830-0001",
		Total:   total,
		Items: []entity.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2, UnitPrice: total / 2, Total: total},
		},
	}
}

func TestSettleCompletedOrder(t *testing.T) {
	cashier := newTestCashier("")
	_, err := cashier.Open(context.Background(), testOperator, testOperatorName, 10000)
	require.NoError(t, err)

	settlement := NewSettlementService(cashier)
	ok := settlement.SettleCompletedOrder(context.Background(), testOrder(4590), testOperator, testOperatorName)
	require.True(t, ok)

	assert.Equal(t, int64(14590), cashier.Balance())

	movements := cashier.Movements(nil)
	require.Len(t, movements, 2)
	sale := movements[1]
	assert.Equal(t, enum.MovementSale, sale.Kind)
	assert.Equal(t, int64(4590), sale.Amount)
	assert.Equal(t, "Sale ORD-20260830-0001", sale.Description)
	assert.Equal(t, "sale", sale.Category)
}

func TestSettleWithClosedTill(t *testing.T) {
	cashier := newTestCashier("")
	settlement := NewSettlementService(cashier)

	ok := settlement.SettleCompletedOrder(context.Background(), testOrder(4590), testOperator, testOperatorName)
	assert.False(t, ok)
	assert.Empty(t, cashier.Movements(nil))
}

func TestSettleInvalidOrders(t *testing.T) {
	cashier := newTestCashier("")
	_, err := cashier.Open(context.Background(), testOperator, testOperatorName, 10000)
	require.NoError(t, err)

	settlement := NewSettlementService(cashier)

	assert.False(t, settlement.SettleCompletedOrder(context.Background(), nil, testOperator, testOperatorName))

	empty := testOrder(4590)
	empty.Items = nil
	assert.False(t, settlement.SettleCompletedOrder(context.Background(), empty, testOperator, testOperatorName))

	free := testOrder(0)
	assert.False(t, settlement.SettleCompletedOrder(context.Background(), free, testOperator, testOperatorName))

	// Nothing leaked into the ledger.
	assert.Equal(t, int64(10000), cashier.Balance())
	assert.Len(t, cashier.Movements(nil), 1)
}
