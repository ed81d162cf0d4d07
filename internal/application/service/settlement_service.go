package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/entity"
)

// SettlementService is the single integration point between the order flow
// and the cashier ledger. Settlement gates order completion: the order flow
// may only decrement stock and transition status after SettleCompletedOrder
// returns true.
type SettlementService struct {
	cashier *CashierService
}

// NewSettlementService creates a new settlement service
func NewSettlementService(cashier *CashierService) *SettlementService {
	return &SettlementService{cashier: cashier}
}

// SettleCompletedOrder registers the order total as a sale inflow against the
// open session. Returns false without mutating anything when no session is
// open or the order has no items or a non-positive total.
func (s *SettlementService) SettleCompletedOrder(ctx context.Context, order *entity.Order, operatorID uuid.UUID, operatorName string) bool {
	if order == nil || len(order.Items) == 0 || order.Total <= 0 {
		return false
	}
	if !s.cashier.IsOpen() {
		return false
	}

	_, err := s.cashier.RegisterSale(ctx, operatorID, operatorName, order.Total, "Sale "+order.OrderNo)
	if err != nil {
		log.Printf("[settlement] order %s not settled: %v", order.OrderNo, err)
		return false
	}
	return true
}
