package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CashierSession represents one open-to-close lifecycle of the cash drawer.
// At most one session is open at any time. The in-memory ledger is the source
// of truth; rows in this table are a best-effort mirror used for reporting
// and audit.
type CashierSession struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	IsOpen         bool       `gorm:"not null;default:false;index" json:"is_open"`
	OpenedBy       uuid.UUID  `gorm:"type:uuid;not null" json:"opened_by"`
	OpenedByName   string     `gorm:"size:255;not null" json:"opened_by_name"`
	OpenedAt       time.Time  `gorm:"not null" json:"opened_at"`
	InitialAmount  int64      `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CurrentBalance int64      `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	ClosedBy       *uuid.UUID `gorm:"type:uuid" json:"closed_by,omitempty"`
	ClosedByName   *string    `gorm:"size:255" json:"closed_by_name,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	ClosingBalance *int64     `json:"-"` // Stored in cents, excluded from JSON
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s CashierSession) MarshalJSON() ([]byte, error) {
	type Alias CashierSession
	out := &struct {
		Alias
		InitialAmount  float64  `json:"initial_amount"`
		CurrentBalance float64  `json:"current_balance"`
		ClosingBalance *float64 `json:"closing_balance,omitempty"`
	}{
		Alias:          Alias(s),
		InitialAmount:  float64(s.InitialAmount) / 100,
		CurrentBalance: float64(s.CurrentBalance) / 100,
	}
	if s.ClosingBalance != nil {
		cb := float64(*s.ClosingBalance) / 100
		out.ClosingBalance = &cb
	}
	return json.Marshal(out)
}

// BeforeCreate generates a UUID before creating a new session
func (s *CashierSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashierSession model
func (CashierSession) TableName() string {
	return "cashier_sessions"
}
