package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/entity"
)

// CashierRepository is the durable-store side of the cashier ledger. The
// ledger treats every call as best effort: a failed write is reported back as
// an unsynced session, never as a failure of the in-memory operation.
type CashierRepository interface {
	InsertSession(ctx context.Context, session *entity.CashierSession) error
	UpdateSession(ctx context.Context, session *entity.CashierSession) error
	InsertMovement(ctx context.Context, movement *entity.CashMovement) error
	GetOpenSession(ctx context.Context) (*entity.CashierSession, error)
	GetSessionByID(ctx context.Context, id uuid.UUID) (*entity.CashierSession, error)
	ListSessions(ctx context.Context, params *SessionFilterParams) ([]entity.CashierSession, int64, error)
	ListMovements(ctx context.Context, params *MovementFilterParams) ([]entity.CashMovement, error)
}

// SessionFilterParams contains filtering parameters for session queries
type SessionFilterParams struct {
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PerPage   int
}

// MovementFilterParams contains filtering parameters for movement queries
type MovementFilterParams struct {
	SessionID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}
