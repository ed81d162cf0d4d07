package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/entity"
	"github.com/lanchonete/pos-api/internal/domain/enum"
	"github.com/lanchonete/pos-api/internal/domain/repository"
	"github.com/lanchonete/pos-api/pkg/apperror"
	"github.com/lanchonete/pos-api/pkg/pagination"
	"github.com/lanchonete/pos-api/pkg/utils"
)

// OrderService handles the kitchen-queue order lifecycle
type OrderService struct {
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	productRepo   repository.ProductRepository
	settlement    *SettlementService
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	productRepo repository.ProductRepository,
	settlement *SettlementService,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
		settlement:    settlement,
	}
}

// OrderItemInput represents an item in an order
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	UserID uuid.UUID
	Note   string
	Items  []OrderItemInput
}

// CreateOrder creates a new order with its items. Stock is reserved at
// completion, not at creation, so a cancelled ticket never touches inventory.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Order must have at least one item")
	}

	productIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	var total int64
	var totalItems int
	orderItems := make([]entity.OrderItem, 0, len(input.Items))

	for _, item := range input.Items {
		product, exists := productMap[item.ProductID]
		if !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
		if item.Quantity < 1 {
			return nil, apperror.NewBadRequestError("Item quantity must be at least 1")
		}

		itemTotal := product.Price * int64(item.Quantity)
		total += itemTotal
		totalItems += item.Quantity

		orderItems = append(orderItems, entity.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Total:     itemTotal,
		})
	}

	order := &entity.Order{
		UserID:     input.UserID,
		OrderNo:    utils.GenerateOrderNo("ORD"),
		Status:     enum.OrderStatusPending,
		TotalItems: totalItems,
		Total:      total,
		Note:       input.Note,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}

	if err := s.orderItemRepo.CreateBatch(ctx, orderItems); err != nil {
		return nil, err
	}

	order.Items = orderItems
	return order, nil
}

// UpdateStatus moves an order through the kitchen queue. Completion goes
// through CompleteOrder, never through here.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) (*entity.Order, error) {
	if status == enum.OrderStatusCompleted {
		return nil, apperror.NewBadRequestError("Orders are completed through the completion endpoint")
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.Status == enum.OrderStatusCompleted || order.Status == enum.OrderStatusCancelled {
		return nil, apperror.NewBadRequestError("Order is already finalized")
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

// CompleteOrder settles the order against the cashier ledger, then decrements
// stock and marks the order completed. Settlement comes first: a closed till
// blocks completion before any stock is touched.
func (s *OrderService) CompleteOrder(ctx context.Context, id uuid.UUID, operatorID uuid.UUID, operatorName string) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.Status == enum.OrderStatusCompleted {
		return nil, apperror.NewBadRequestError("Order is already completed")
	}
	if order.Status == enum.OrderStatusCancelled {
		return nil, apperror.NewBadRequestError("Order is cancelled")
	}

	if !s.settlement.SettleCompletedOrder(ctx, order, operatorID, operatorName) {
		return nil, apperror.ErrCashierClosed
	}

	stockDecrements := make(map[uuid.UUID]int, len(order.Items))
	for _, item := range order.Items {
		stockDecrements[item.ProductID] += item.Quantity
	}

	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, stockDecrements)
	if err == nil && len(failedIDs) > 0 {
		err = apperror.NewBadRequestError(fmt.Sprintf("Insufficient stock for %d product(s)", len(failedIDs)))
	}
	if err != nil {
		// The sale was already registered; reverse it so the ledger stays
		// consistent with the failed completion.
		s.reverseSettlement(ctx, order, operatorID, operatorName)
		return nil, err
	}

	now := time.Now().UTC()
	order.Status = enum.OrderStatusCompleted
	order.CompletedAt = &now
	if err := s.orderRepo.Update(ctx, order); err != nil {
		_ = s.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
		s.reverseSettlement(ctx, order, operatorID, operatorName)
		return nil, err
	}

	return order, nil
}

func (s *OrderService) reverseSettlement(ctx context.Context, order *entity.Order, operatorID uuid.UUID, operatorName string) {
	_, _ = s.settlement.cashier.RegisterOutflow(ctx, operatorID, operatorName, order.Total,
		"Reversal of sale "+order.OrderNo, "adjustment")
}

// GetOrder returns an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders returns orders matching the filter
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, p), nil
}
