package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lanchonete/pos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// CashMovement is an append-only record of one balance-affecting event on the
// cash drawer. Movements are never updated or deleted once created. The
// amount is always non-negative; the kind decides the sign of its effect.
type CashMovement struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SessionID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"session_id"`
	Kind         enum.MovementKind `gorm:"not null;index" json:"kind"`
	Amount       int64             `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Description  string            `gorm:"size:255" json:"description"`
	Category     string            `gorm:"size:100" json:"category,omitempty"`
	OperatorID   uuid.UUID         `gorm:"type:uuid;not null" json:"operator_id"`
	OperatorName string            `gorm:"size:255;not null" json:"operator_name"`
	Timestamp    time.Time         `gorm:"not null;index" json:"timestamp"`
	CreatedAt    time.Time         `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (m CashMovement) MarshalJSON() ([]byte, error) {
	type Alias CashMovement
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(m),
		Amount: float64(m.Amount) / 100,
	})
}

// SignedAmount returns the amount with the sign implied by the kind.
func (m *CashMovement) SignedAmount() int64 {
	return m.Kind.Sign() * m.Amount
}

// BeforeCreate generates a UUID before creating a new movement
func (m *CashMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashMovement model
func (CashMovement) TableName() string {
	return "cash_movements"
}
