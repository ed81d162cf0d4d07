package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/application/service"
	"github.com/lanchonete/pos-api/internal/presentation/http/dto/request"
	"github.com/lanchonete/pos-api/internal/presentation/http/dto/response"
	"github.com/lanchonete/pos-api/pkg/utils"
)

// CashierHandler handles cash-drawer HTTP requests
type CashierHandler struct {
	cashierService *service.CashierService
}

// NewCashierHandler creates a new cashier handler
func NewCashierHandler(cashierService *service.CashierService) *CashierHandler {
	return &CashierHandler{cashierService: cashierService}
}

// Open handles opening a cashier session
func (h *CashierHandler) Open(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.OpenCashierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.cashierService.Open(c.Request.Context(), *userID, GetUserName(c), utils.ToCents(req.InitialAmount))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithSync(c, 201, "Cashier session opened", session, h.cashierService.Synced())
}

// Close handles closing the current cashier session
func (h *CashierHandler) Close(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CloseCashierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entries := make([]service.PaymentReconciliationEntry, 0, len(req.Reconciliation))
	for _, e := range req.Reconciliation {
		entries = append(entries, service.PaymentReconciliationEntry{
			Method:   e.Method,
			Reported: utils.ToCents(e.Amount),
		})
	}

	session, err := h.cashierService.Close(c.Request.Context(), *userID, GetUserName(c), entries, req.AdminPassword)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithSync(c, 200, "Cashier session closed", session, h.cashierService.Synced())
}

// RegisterInflow handles recording a manual cash addition
func (h *CashierHandler) RegisterInflow(c *gin.Context) {
	h.registerMovement(c, true)
}

// RegisterOutflow handles recording a manual cash removal
func (h *CashierHandler) RegisterOutflow(c *gin.Context) {
	h.registerMovement(c, false)
}

func (h *CashierHandler) registerMovement(c *gin.Context, inflow bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount := utils.ToCents(req.Amount)
	var err error
	var movement interface{}
	if inflow {
		movement, err = h.cashierService.RegisterInflow(c.Request.Context(), *userID, GetUserName(c), amount, req.Description, req.Category)
	} else {
		movement, err = h.cashierService.RegisterOutflow(c.Request.Context(), *userID, GetUserName(c), amount, req.Description, req.Category)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithSync(c, 201, "Movement recorded", movement, h.cashierService.Synced())
}

// GetStatus handles reading the live session state
func (h *CashierHandler) GetStatus(c *gin.Context) {
	status := gin.H{
		"open":   h.cashierService.IsOpen(),
		"synced": h.cashierService.Synced(),
	}
	if session := h.cashierService.CurrentSession(); session != nil {
		status["session"] = session
	}
	response.OK(c, "Cashier status retrieved", status)
}

// GetBalance handles reading the current balance
func (h *CashierHandler) GetBalance(c *gin.Context) {
	if !h.cashierService.IsOpen() {
		response.OK(c, "No cashier session is open", gin.H{"open": false, "balance": 0})
		return
	}
	response.OK(c, "Balance retrieved", gin.H{
		"open":    true,
		"balance": float64(h.cashierService.Balance()) / 100,
	})
}

// ListMovements handles listing the current session's movements
func (h *CashierHandler) ListMovements(c *gin.Context) {
	var req request.MovementFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := &service.MovementFilter{}
	if req.SessionID != "" {
		if sessionID, err := uuid.Parse(req.SessionID); err == nil {
			filter.SessionID = &sessionID
		}
	}
	if req.StartDate != "" {
		if startDate, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			filter.StartDate = &startDate
		}
	}
	if req.EndDate != "" {
		if endDate, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			end := endDate.Add(24*time.Hour - time.Nanosecond)
			filter.EndDate = &end
		}
	}

	movements := h.cashierService.Movements(filter)
	response.OK(c, "Movements retrieved", movements)
}
