package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/entity"
	domainRepo "github.com/lanchonete/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type cashierRepository struct {
	db *gorm.DB
}

// NewCashierRepository creates a new cashier repository
func NewCashierRepository(db *gorm.DB) domainRepo.CashierRepository {
	return &cashierRepository{db: db}
}

func (r *cashierRepository) InsertSession(ctx context.Context, session *entity.CashierSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *cashierRepository) UpdateSession(ctx context.Context, session *entity.CashierSession) error {
	return r.db.WithContext(ctx).Model(&entity.CashierSession{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"is_open":         session.IsOpen,
			"current_balance": session.CurrentBalance,
			"closed_by":       session.ClosedBy,
			"closed_by_name":  session.ClosedByName,
			"closed_at":       session.ClosedAt,
			"closing_balance": session.ClosingBalance,
		}).Error
}

func (r *cashierRepository) InsertMovement(ctx context.Context, movement *entity.CashMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *cashierRepository) GetOpenSession(ctx context.Context) (*entity.CashierSession, error) {
	var session entity.CashierSession
	err := r.db.WithContext(ctx).First(&session, "is_open = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

func (r *cashierRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*entity.CashierSession, error) {
	var session entity.CashierSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

func (r *cashierRepository) ListSessions(ctx context.Context, params *domainRepo.SessionFilterParams) ([]entity.CashierSession, int64, error) {
	var sessions []entity.CashierSession
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CashierSession{})
	if params.StartDate != nil {
		query = query.Where("opened_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("opened_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := params.Page
	perPage := params.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}

	err := query.Offset((page - 1) * perPage).Limit(perPage).
		Order("opened_at DESC").
		Find(&sessions).Error

	return sessions, total, err
}

func (r *cashierRepository) ListMovements(ctx context.Context, params *domainRepo.MovementFilterParams) ([]entity.CashMovement, error) {
	var movements []entity.CashMovement

	query := r.db.WithContext(ctx).Model(&entity.CashMovement{})
	if params != nil {
		if params.SessionID != nil {
			query = query.Where("session_id = ?", *params.SessionID)
		}
		if params.StartDate != nil {
			query = query.Where("timestamp >= ?", *params.StartDate)
		}
		if params.EndDate != nil {
			query = query.Where("timestamp <= ?", *params.EndDate)
		}
	}

	err := query.Order("timestamp ASC").Find(&movements).Error
	return movements, err
}
