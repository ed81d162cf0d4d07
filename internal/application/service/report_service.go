package service

import (
	"context"
	"time"

	"github.com/lanchonete/pos-api/internal/domain/entity"
	"github.com/lanchonete/pos-api/internal/domain/enum"
	"github.com/lanchonete/pos-api/internal/domain/repository"
)

// ReportService builds read-only projections over the cashier records. It
// reads the durable-store mirror for history and the in-memory ledger for
// the live session; it never writes.
type ReportService struct {
	cashierRepo repository.CashierRepository
	cashier     *CashierService
}

// NewReportService creates a new report service
func NewReportService(cashierRepo repository.CashierRepository, cashier *CashierService) *ReportService {
	return &ReportService{
		cashierRepo: cashierRepo,
		cashier:     cashier,
	}
}

// DailySummary aggregates one day of cash movements by kind.
type DailySummary struct {
	Date          string           `json:"date"`
	TotalSales    float64          `json:"total_sales"`
	TotalInflows  float64          `json:"total_inflows"`
	TotalOutflows float64          `json:"total_outflows"`
	TotalShortage float64          `json:"total_shortage"`
	NetCash       float64          `json:"net_cash"`
	MovementCount map[string]int   `json:"movement_count"`
	Sessions      []SessionSummary `json:"sessions"`
}

// SessionSummary is one session's line in a report.
type SessionSummary struct {
	Session entity.CashierSession `json:"session"`
	Synced  bool                  `json:"synced"`
}

// GetDailySummary folds the day's movements. Opening and closing markers are
// excluded from the net figure; sales and inflows credit, outflows and
// shortages debit.
func (s *ReportService) GetDailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	movements, err := s.cashierRepo.ListMovements(ctx, &repository.MovementFilterParams{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:          start.Format("2006-01-02"),
		MovementCount: make(map[string]int),
	}
	var net int64
	for _, m := range movements {
		summary.MovementCount[m.Kind.String()]++
		switch m.Kind {
		case enum.MovementSale:
			summary.TotalSales += float64(m.Amount) / 100
			net += m.SignedAmount()
		case enum.MovementInflow:
			summary.TotalInflows += float64(m.Amount) / 100
			net += m.SignedAmount()
		case enum.MovementOutflow:
			summary.TotalOutflows += float64(m.Amount) / 100
			net += m.SignedAmount()
		case enum.MovementShortage:
			summary.TotalShortage += float64(m.Amount) / 100
			net += m.SignedAmount()
		}
	}
	summary.NetCash = float64(net) / 100

	sessions, _, err := s.cashierRepo.ListSessions(ctx, &repository.SessionFilterParams{
		StartDate: &start,
		EndDate:   &end,
		Page:      1,
		PerPage:   100,
	})
	if err != nil {
		return nil, err
	}
	synced := s.cashier.Synced()
	for _, session := range sessions {
		summary.Sessions = append(summary.Sessions, SessionSummary{Session: session, Synced: synced})
	}

	return summary, nil
}

// ListShortages returns shortage movements in the given range.
func (s *ReportService) ListShortages(ctx context.Context, start, end *time.Time) ([]entity.CashMovement, error) {
	movements, err := s.cashierRepo.ListMovements(ctx, &repository.MovementFilterParams{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, err
	}

	shortages := make([]entity.CashMovement, 0)
	for _, m := range movements {
		if m.Kind == enum.MovementShortage {
			shortages = append(shortages, m)
		}
	}
	return shortages, nil
}

// TillStatus is the live state of the terminal's cash drawer.
type TillStatus struct {
	Open    bool                   `json:"open"`
	Session *entity.CashierSession `json:"session,omitempty"`
	Synced  bool                   `json:"synced"`
}

// GetTillStatus reads the live ledger state.
func (s *ReportService) GetTillStatus(ctx context.Context) *TillStatus {
	return &TillStatus{
		Open:    s.cashier.IsOpen(),
		Session: s.cashier.CurrentSession(),
		Synced:  s.cashier.Synced(),
	}
}
