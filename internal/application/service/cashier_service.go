package service

import (
	"context"
	"crypto/subtle"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/entity"
	"github.com/lanchonete/pos-api/internal/domain/enum"
	"github.com/lanchonete/pos-api/internal/domain/repository"
	"github.com/lanchonete/pos-api/internal/infrastructure/outbox"
	"github.com/lanchonete/pos-api/pkg/apperror"
	"github.com/lanchonete/pos-api/pkg/utils"
)

// CashierService owns the single active cash-drawer session, its balance and
// the append-only movement list. All mutation of session state goes through
// this service; the in-memory state is the source of truth and the durable
// store is a best-effort mirror fed through the outbox. A failed mirror write
// never reverses an in-memory operation; the till keeps working offline.
//
// currentBalance is mutated only by opening, inflow, outflow and sale
// movements. Shortage and closing movements are appended at close as audit
// records; they carry debit sign for reporting folds over finished sessions
// but do not change the balance the session closes at.
type CashierService struct {
	mu            sync.Mutex
	session       *entity.CashierSession
	movements     []entity.CashMovement
	store         repository.CashierRepository
	outbox        *outbox.Outbox
	closePassword string
}

// NewCashierService creates a new cashier service
func NewCashierService(store repository.CashierRepository, box *outbox.Outbox, closePassword string) *CashierService {
	return &CashierService{
		store:         store,
		outbox:        box,
		closePassword: closePassword,
	}
}

// PaymentReconciliationEntry pairs a payment method with the amount the
// operator counted for it at close.
type PaymentReconciliationEntry struct {
	Method   string
	Reported int64
}

// MovementFilter narrows the movement listing. Filtering is a pure predicate
// over the in-memory list, no I/O.
type MovementFilter struct {
	SessionID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// Restore rehydrates the in-memory ledger from the durable store. Called once
// at startup; if an open session was mirrored before a crash, the till
// resumes it with the balance recomputed from its movements.
func (s *CashierService) Restore(ctx context.Context) error {
	session, err := s.store.GetOpenSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	movements, err := s.store.ListMovements(ctx, &repository.MovementFilterParams{SessionID: &session.ID})
	if err != nil {
		return err
	}
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Timestamp.Before(movements[j].Timestamp)
	})

	var balance int64
	for i := range movements {
		balance += movements[i].SignedAmount()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session.CurrentBalance = balance
	s.session = session
	s.movements = movements
	return nil
}

// Open starts a new cashier session with the given cash float.
func (s *CashierService) Open(ctx context.Context, operatorID uuid.UUID, operatorName string, initialAmount int64) (*entity.CashierSession, error) {
	if initialAmount < 0 {
		return nil, apperror.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && s.session.IsOpen {
		return nil, apperror.ErrCashierAlreadyOpen
	}

	now := time.Now().UTC()
	session := &entity.CashierSession{
		ID:             utils.NewUUID(),
		IsOpen:         true,
		OpenedBy:       operatorID,
		OpenedByName:   operatorName,
		OpenedAt:       now,
		InitialAmount:  initialAmount,
		CurrentBalance: initialAmount,
	}
	opening := entity.CashMovement{
		ID:           utils.NewUUID(),
		SessionID:    session.ID,
		Kind:         enum.MovementOpening,
		Amount:       initialAmount,
		Description:  "Session opened",
		Category:     "opening",
		OperatorID:   operatorID,
		OperatorName: operatorName,
		Timestamp:    now,
	}

	s.session = session
	s.movements = []entity.CashMovement{opening}

	s.persistSession(*session)
	s.persistMovement(opening)

	out := *session
	return &out, nil
}

// RegisterInflow records a manual cash addition (supply).
func (s *CashierService) RegisterInflow(ctx context.Context, operatorID uuid.UUID, operatorName string, amount int64, description, category string) (*entity.CashMovement, error) {
	return s.registerMovement(operatorID, operatorName, enum.MovementInflow, amount, description, category)
}

// RegisterOutflow records a manual cash removal (petty cash, withdrawal). A
// non-empty description is required and the amount cannot exceed the balance.
func (s *CashierService) RegisterOutflow(ctx context.Context, operatorID uuid.UUID, operatorName string, amount int64, description, category string) (*entity.CashMovement, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperror.ErrMissingDescription
	}
	return s.registerMovement(operatorID, operatorName, enum.MovementOutflow, amount, description, category)
}

// RegisterSale records the cash effect of a completed order. Only the order
// settlement bridge calls this.
func (s *CashierService) RegisterSale(ctx context.Context, operatorID uuid.UUID, operatorName string, amount int64, description string) (*entity.CashMovement, error) {
	return s.registerMovement(operatorID, operatorName, enum.MovementSale, amount, description, "sale")
}

func (s *CashierService) registerMovement(operatorID uuid.UUID, operatorName string, kind enum.MovementKind, amount int64, description, category string) (*entity.CashMovement, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || !s.session.IsOpen {
		return nil, apperror.ErrCashierClosed
	}
	if kind == enum.MovementOutflow && amount > s.session.CurrentBalance {
		return nil, apperror.ErrInsufficientFunds
	}

	movement := entity.CashMovement{
		ID:           utils.NewUUID(),
		SessionID:    s.session.ID,
		Kind:         kind,
		Amount:       amount,
		Description:  description,
		Category:     category,
		OperatorID:   operatorID,
		OperatorName: operatorName,
		Timestamp:    time.Now().UTC(),
	}

	s.session.CurrentBalance += movement.SignedAmount()
	s.movements = append(s.movements, movement)

	s.persistMovement(movement)
	s.persistSession(*s.session)

	out := movement
	return &out, nil
}

// Close finalizes the current session. When a closing password is configured
// the supplied password must match; a mismatch leaves the session open and
// unmodified. Reconciliation entries, when present, are summed against the
// recorded balance and a positive variance is recorded as a shortage
// movement. A counted total meeting or exceeding the balance records nothing.
func (s *CashierService) Close(ctx context.Context, operatorID uuid.UUID, operatorName string, entries []PaymentReconciliationEntry, adminPassword string) (*entity.CashierSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || !s.session.IsOpen {
		return nil, apperror.ErrCashierClosed
	}
	if !s.checkClosePassword(adminPassword) {
		return nil, apperror.ErrWrongClosePassword
	}

	now := time.Now().UTC()

	if len(entries) > 0 {
		var reported int64
		for _, e := range entries {
			reported += e.Reported
		}
		if variance := s.session.CurrentBalance - reported; variance > 0 {
			shortage := entity.CashMovement{
				ID:           utils.NewUUID(),
				SessionID:    s.session.ID,
				Kind:         enum.MovementShortage,
				Amount:       variance,
				Description:  "Cash count below recorded balance",
				Category:     "reconciliation",
				OperatorID:   operatorID,
				OperatorName: operatorName,
				Timestamp:    now,
			}
			s.movements = append(s.movements, shortage)
			s.persistMovement(shortage)
		}
	}

	closingBalance := s.session.CurrentBalance
	closing := entity.CashMovement{
		ID:           utils.NewUUID(),
		SessionID:    s.session.ID,
		Kind:         enum.MovementClosing,
		Amount:       closingBalance,
		Description:  "Session closed",
		Category:     "closing",
		OperatorID:   operatorID,
		OperatorName: operatorName,
		Timestamp:    now,
	}
	s.movements = append(s.movements, closing)

	s.session.IsOpen = false
	s.session.ClosedBy = &operatorID
	s.session.ClosedByName = &operatorName
	s.session.ClosedAt = &now
	s.session.ClosingBalance = &closingBalance

	s.persistMovement(closing)
	s.persistSession(*s.session)

	out := *s.session
	return &out, nil
}

func (s *CashierService) checkClosePassword(supplied string) bool {
	if s.closePassword == "" {
		return true
	}
	if strings.HasPrefix(s.closePassword, "$2") {
		return utils.CheckPasswordHash(supplied, s.closePassword)
	}
	return subtle.ConstantTimeCompare([]byte(s.closePassword), []byte(supplied)) == 1
}

// IsOpen reports whether a session is currently open.
func (s *CashierService) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && s.session.IsOpen
}

// Balance returns the current balance in cents. Zero when no session is open;
// callers that need to distinguish should check IsOpen first.
func (s *CashierService) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || !s.session.IsOpen {
		return 0
	}
	return s.session.CurrentBalance
}

// CurrentSession returns a copy of the session the till is working on, open
// or just closed. Nil when nothing has been opened yet.
func (s *CashierService) CurrentSession() *entity.CashierSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	out := *s.session
	return &out
}

// Movements returns a copy of the recorded movements in timestamp order,
// optionally narrowed by filter. Two calls without intervening writes return
// identical sequences.
func (s *CashierService) Movements(filter *MovementFilter) []entity.CashMovement {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.CashMovement, 0, len(s.movements))
	for _, m := range s.movements {
		if filter != nil {
			if filter.SessionID != nil && m.SessionID != *filter.SessionID {
				continue
			}
			if filter.StartDate != nil && m.Timestamp.Before(*filter.StartDate) {
				continue
			}
			if filter.EndDate != nil && m.Timestamp.After(*filter.EndDate) {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// Synced reports whether the durable-store mirror has caught up with the
// in-memory ledger.
func (s *CashierService) Synced() bool {
	if s.outbox == nil {
		return true
	}
	return s.outbox.Synced()
}

func (s *CashierService) persistSession(session entity.CashierSession) {
	if s.outbox == nil || s.store == nil {
		return
	}
	s.outbox.Enqueue("session "+session.ID.String(), func(ctx context.Context) error {
		existing, err := s.store.GetSessionByID(ctx, session.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return s.store.InsertSession(ctx, &session)
		}
		return s.store.UpdateSession(ctx, &session)
	})
}

func (s *CashierService) persistMovement(movement entity.CashMovement) {
	if s.outbox == nil || s.store == nil {
		return
	}
	s.outbox.Enqueue("movement "+movement.ID.String(), func(ctx context.Context) error {
		return s.store.InsertMovement(ctx, &movement)
	})
}
