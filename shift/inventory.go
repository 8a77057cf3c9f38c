package shift

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/parrilla/backoffice/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// INVENTORY SESSION
// =============================================================================

type InventoryItem struct {
	Name    string
	Unit    string // "kg", "u", ...
	Initial decimal.Decimal

	// Set on close.
	Final       decimal.Decimal
	Consumption decimal.Decimal // Initial − Final, may be negative
}

type InventorySession struct {
	ID       string
	Status   Status
	OpenedBy string
	OpenedAt time.Time
	ClosedBy string
	ClosedAt *time.Time
	Items    []InventoryItem
}

// NewInventorySession opens a session with the opening counts. Item names
// must be unique (case-insensitive) and counts must not be negative.
func NewInventorySession(items []InventoryItem, openedBy string, now time.Time) (InventorySession, error) {
	if len(items) == 0 {
		return InventorySession{}, fmt.Errorf("%w: inventory needs at least one item", generic.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(items))
	opened := make([]InventoryItem, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		key := strings.ToUpper(name)
		if name == "" {
			return InventorySession{}, fmt.Errorf("%w: item name is required", generic.ErrInvalidInput)
		}
		if seen[key] {
			return InventorySession{}, fmt.Errorf("%w: duplicate item %q", generic.ErrInvalidInput, name)
		}
		if it.Initial.IsNegative() {
			return InventorySession{}, fmt.Errorf("%w: negative count for %q", generic.ErrInvalidAmount, name)
		}
		seen[key] = true
		opened = append(opened, InventoryItem{
			Name:        name,
			Unit:        it.Unit,
			Initial:     it.Initial,
			Final:       decimal.Zero,
			Consumption: decimal.Zero,
		})
	}
	return InventorySession{
		ID:       generic.NewID(),
		Status:   StatusOpen,
		OpenedBy: openedBy,
		OpenedAt: now,
		Items:    opened,
	}, nil
}

func (s InventorySession) IsOpen() bool { return s.Status == StatusOpen }

// Consumption is initial − final. It is not clamped.
func Consumption(initial, final decimal.Decimal) decimal.Decimal {
	return initial.Sub(final)
}

// CloseCounts applies the closing counts to the items. Finals are matched to
// items by name, case-insensitively. Every item needs a final count.
func CloseCounts(items []InventoryItem, finals map[string]decimal.Decimal) ([]InventoryItem, error) {
	byName := make(map[string]decimal.Decimal, len(finals))
	for name, v := range finals {
		byName[strings.ToUpper(strings.TrimSpace(name))] = v
	}

	var missing []string
	out := make([]InventoryItem, len(items))
	for i, it := range items {
		final, ok := byName[strings.ToUpper(it.Name)]
		if !ok {
			missing = append(missing, it.Name)
			continue
		}
		if final.IsNegative() {
			return nil, fmt.Errorf("%w: negative count for %q", generic.ErrInvalidAmount, it.Name)
		}
		it.Final = final
		it.Consumption = Consumption(it.Initial, final)
		out[i] = it
	}
	if len(missing) > 0 {
		return nil, &generic.MissingCountError{Items: missing}
	}
	return out, nil
}

// Close records the closing counts and moves the session to CLOSED.
func (s *InventorySession) Close(finals map[string]decimal.Decimal, closedBy string, now time.Time) error {
	if !s.IsOpen() {
		return generic.ErrShiftClosed
	}
	items, err := CloseCounts(s.Items, finals)
	if err != nil {
		return err
	}
	s.Items = items
	s.Status = StatusClosed
	s.ClosedBy = closedBy
	s.ClosedAt = &now
	return nil
}

// Increases returns the items whose stock went up during the session, which
// usually means a counting mistake. Sorted by name.
func (s InventorySession) Increases() []InventoryItem {
	var out []InventoryItem
	for _, it := range s.Items {
		if it.Consumption.IsNegative() {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
