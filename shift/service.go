package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository persists shifts and inventory sessions. Current* return a nil
// pointer, not an error, when nothing is open. Create* return an error
// wrapping generic.ErrShiftAlreadyOpen when another record is still open.
type Repository interface {
	CreateCashShift(ctx context.Context, s CashShift) error
	GetCashShift(ctx context.Context, id string) (CashShift, error)
	CurrentCashShift(ctx context.Context) (*CashShift, error)
	AppendCashTransaction(ctx context.Context, t CashTransaction) error
	CloseCashShift(ctx context.Context, s CashShift) error
	ListCashShifts(ctx context.Context, limit int) ([]CashShift, error)

	CreateInventorySession(ctx context.Context, s InventorySession) error
	GetInventorySession(ctx context.Context, id string) (InventorySession, error)
	CurrentInventorySession(ctx context.Context) (*InventorySession, error)
	CloseInventorySession(ctx context.Context, s InventorySession) error
	ListInventorySessions(ctx context.Context, limit int) ([]InventorySession, error)
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	Repo   Repository
	Logger *slog.Logger
	Now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Repo: repo, Logger: logger, Now: time.Now}
}

// OpenCashShift starts a shift with the given opening float.
func (s *Service) OpenCashShift(ctx context.Context, initial decimal.Decimal, openedBy string) (CashShift, error) {
	current, err := s.Repo.CurrentCashShift(ctx)
	if err != nil {
		return CashShift{}, err
	}
	if current != nil {
		return CashShift{}, fmt.Errorf("%w: shift %s opened at %s", generic.ErrShiftAlreadyOpen, current.ID, current.OpenedAt.Format(time.RFC3339))
	}

	shift, err := NewCashShift(initial, openedBy, s.Now().UTC())
	if err != nil {
		return CashShift{}, err
	}
	if err := s.Repo.CreateCashShift(ctx, shift); err != nil {
		return CashShift{}, fmt.Errorf("create cash shift: %w", err)
	}
	s.Logger.Info("cash shift opened", "shift_id", shift.ID, "initial", shift.InitialAmount.StringFixed(2), "by", openedBy)
	return shift, nil
}

// TransactionInput is one movement entered by the cashier.
type TransactionInput struct {
	Type        generic.Direction
	Method      generic.Method
	Category    string
	Description string
	Amount      decimal.Decimal
}

// RecordCashTransaction adds a movement to the open shift.
func (s *Service) RecordCashTransaction(ctx context.Context, in TransactionInput) (CashTransaction, error) {
	shift, err := s.openCashShift(ctx)
	if err != nil {
		return CashTransaction{}, err
	}
	t := CashTransaction{
		ID:          generic.NewID(),
		ShiftID:     shift.ID,
		Type:        in.Type,
		Method:      in.Method,
		Category:    normalizeCategory(in.Category),
		Description: in.Description,
		Amount:      generic.RoundMoney(in.Amount),
		CreatedAt:   s.Now().UTC(),
	}
	if err := shift.Add(t); err != nil {
		return CashTransaction{}, err
	}
	if err := s.Repo.AppendCashTransaction(ctx, t); err != nil {
		return CashTransaction{}, fmt.Errorf("append cash transaction: %w", err)
	}
	s.Logger.Debug("cash transaction recorded",
		"shift_id", shift.ID,
		"type", t.Type,
		"method", t.Method,
		"amount", t.Amount.StringFixed(2),
	)
	return t, nil
}

// CloseInput carries the cashier's declared counts.
type CloseInput struct {
	FinalCash     decimal.Decimal
	FinalTransfer decimal.Decimal
	Orders        map[string]int
	ClosedBy      string
}

// CloseCashShift reconciles and closes the open shift.
func (s *Service) CloseCashShift(ctx context.Context, in CloseInput) (CashShift, CloseReport, error) {
	shift, err := s.openCashShift(ctx)
	if err != nil {
		return CashShift{}, CloseReport{}, err
	}
	report, err := shift.Close(in.FinalCash, in.FinalTransfer, in.Orders, in.ClosedBy, s.Now().UTC())
	if err != nil {
		return CashShift{}, CloseReport{}, err
	}
	if err := s.Repo.CloseCashShift(ctx, *shift); err != nil {
		return CashShift{}, CloseReport{}, fmt.Errorf("close cash shift: %w", err)
	}

	level := slog.LevelInfo
	if !report.Balanced {
		level = slog.LevelWarn
	}
	s.Logger.Log(ctx, level, "cash shift closed",
		"shift_id", shift.ID,
		"expected_cash", report.ExpectedCash.StringFixed(2),
		"final_cash", report.FinalCash.StringFixed(2),
		"variance", report.CashVariance.StringFixed(2),
		"balanced", report.Balanced,
		"orders", report.Orders,
	)
	return *shift, report, nil
}

// CurrentCashShift returns the open shift or nil.
func (s *Service) CurrentCashShift(ctx context.Context) (*CashShift, error) {
	return s.Repo.CurrentCashShift(ctx)
}

func (s *Service) CashShift(ctx context.Context, id string) (CashShift, error) {
	return s.Repo.GetCashShift(ctx, id)
}

// CashShiftReport rebuilds the reconciliation of a shift. For an open shift
// the declared counts are taken as zero.
func (s *Service) CashShiftReport(ctx context.Context, id string) (CashShift, CloseReport, error) {
	shift, err := s.Repo.GetCashShift(ctx, id)
	if err != nil {
		return CashShift{}, CloseReport{}, err
	}
	return shift, Reconcile(shift, shift.FinalCash, shift.FinalTransfer), nil
}

// CashShifts lists shifts newest first. limit <= 0 means all.
func (s *Service) CashShifts(ctx context.Context, limit int) ([]CashShift, error) {
	return s.Repo.ListCashShifts(ctx, limit)
}

func (s *Service) openCashShift(ctx context.Context) (*CashShift, error) {
	shift, err := s.Repo.CurrentCashShift(ctx)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, generic.ErrNoOpenShift
	}
	return shift, nil
}

// =============================================================================
// INVENTORY
// =============================================================================

// OpenInventory starts a session with the opening counts.
func (s *Service) OpenInventory(ctx context.Context, items []InventoryItem, openedBy string) (InventorySession, error) {
	current, err := s.Repo.CurrentInventorySession(ctx)
	if err != nil {
		return InventorySession{}, err
	}
	if current != nil {
		return InventorySession{}, fmt.Errorf("%w: inventory %s is still open", generic.ErrShiftAlreadyOpen, current.ID)
	}
	session, err := NewInventorySession(items, openedBy, s.Now().UTC())
	if err != nil {
		return InventorySession{}, err
	}
	if err := s.Repo.CreateInventorySession(ctx, session); err != nil {
		return InventorySession{}, fmt.Errorf("create inventory session: %w", err)
	}
	s.Logger.Info("inventory opened", "session_id", session.ID, "items", len(session.Items), "by", openedBy)
	return session, nil
}

// CloseInventory applies the closing counts to the open session.
func (s *Service) CloseInventory(ctx context.Context, finals map[string]decimal.Decimal, closedBy string) (InventorySession, error) {
	session, err := s.Repo.CurrentInventorySession(ctx)
	if err != nil {
		return InventorySession{}, err
	}
	if session == nil {
		return InventorySession{}, generic.ErrNoOpenShift
	}
	if err := session.Close(finals, closedBy, s.Now().UTC()); err != nil {
		var missing *generic.MissingCountError
		if errors.As(err, &missing) {
			s.Logger.Warn("inventory close rejected", "session_id", session.ID, "missing", missing.Items)
		}
		return InventorySession{}, err
	}
	if err := s.Repo.CloseInventorySession(ctx, *session); err != nil {
		return InventorySession{}, fmt.Errorf("close inventory session: %w", err)
	}
	for _, it := range session.Increases() {
		s.Logger.Warn("stock increased during session", "session_id", session.ID, "item", it.Name, "consumption", it.Consumption.String())
	}
	s.Logger.Info("inventory closed", "session_id", session.ID, "by", closedBy)
	return *session, nil
}

func (s *Service) CurrentInventory(ctx context.Context) (*InventorySession, error) {
	return s.Repo.CurrentInventorySession(ctx)
}

func (s *Service) InventorySession(ctx context.Context, id string) (InventorySession, error) {
	return s.Repo.GetInventorySession(ctx, id)
}

func (s *Service) InventorySessions(ctx context.Context, limit int) ([]InventorySession, error) {
	return s.Repo.ListInventorySessions(ctx, limit)
}
