/*
handlers.go - HTTP handler wiring and shared request/response helpers

PURPOSE:
  Holds the Handler that every endpoint hangs off, and the helpers they
  share: JSON encoding, body validation, query parsing and the mapping of
  service errors to HTTP status codes.

ENDPOINT FILES:
  payroll.go    employees, attendance, absences, sanctions, holidays
  shift.go      cash shifts, inventory sessions
  finance.go    products, projections, partners, wallet, fixed expenses
  scenarios.go  demo data

ERROR MAPPING:
  validation failure          400 validation_failed
  generic.IsClientError       400 invalid_input
  generic.IsNotFound          404 not_found
  generic.IsConflict          409 conflict
  anything else               500 internal (logged)

MONEY:
  Amounts travel as strings in both directions. Requests accept the
  operator's format ("1.234,50", "250.000", "1500.5"); responses always
  use two decimals with a dot.

SEE ALSO:
  - server.go: routes and middleware
  - dto.go: request and response shapes
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
	"github.com/parrilla/backoffice/shift"
	"github.com/shopspring/decimal"
)

// Resetter wipes every stored record. Both stores implement it.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Payroll  *payroll.Service
	Shifts   *shift.Service
	Finance  *finance.Service
	Resetter Resetter
	Logger   *slog.Logger

	validate *validator.Validate

	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler. resetter may be nil, which disables the
// demo scenario endpoint.
func NewHandler(p *payroll.Service, s *shift.Service, f *finance.Service, resetter Resetter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Payroll:  p,
		Shifts:   s,
		Finance:  f,
		Resetter: resetter,
		Logger:   logger,
		validate: newValidator(),
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := generic.ParseAmount(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		_, err := generic.ParsePositiveAmount(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := generic.ParseClock(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := generic.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// readJSON decodes the body into v and validates it.
func (h *Handler) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", generic.ErrInvalidInput, err)
	}
	return h.validate.Struct(v)
}

// =============================================================================
// RESPONSES
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// fail maps a service or validation error to a response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid      validator.ValidationErrors
		missing      *generic.MissingCountError
		insufficient *generic.InsufficientBalanceError
	)
	switch {
	case errors.As(err, &invalid):
		fields := make([]FieldError, 0, len(invalid))
		for _, fe := range invalid {
			fields = append(fields, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
		}
		writeError(w, http.StatusBadRequest, "validation_failed", "Request validation failed", fields)
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, "missing_count", err.Error(), missing.Items)
	case errors.As(err, &insufficient):
		writeError(w, http.StatusBadRequest, "insufficient_balance", err.Error(), map[string]string{
			"available": insufficient.Available.Value.StringFixed(generic.MoneyPlaces),
			"requested": insufficient.Requested.Value.StringFixed(generic.MoneyPlaces),
		})
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error", nil)
	}
}

// =============================================================================
// PARSING
// =============================================================================

// amount parses a money or count string. The error names the field.
func amount(field, s string) (decimal.Decimal, error) {
	d, err := generic.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// amountReader parses several fields and keeps the first failure.
type amountReader struct{ err error }

func (a *amountReader) read(field, s string) decimal.Decimal {
	d, err := amount(field, s)
	if err != nil && a.err == nil {
		a.err = err
	}
	return d
}

// optionalAmount returns nil for an absent or blank value.
func optionalAmount(s *string) (*decimal.Decimal, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := generic.ParseAmount(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// optionalDate returns the zero TimePoint for a blank value.
func optionalDate(s string) (generic.TimePoint, error) {
	if strings.TrimSpace(s) == "" {
		return generic.TimePoint{}, nil
	}
	return generic.ParseDate(s)
}

// queryPeriod reads ?year=&month= or ?from=&to=. Neither means no filter.
func queryPeriod(r *http.Request) (generic.Period, error) {
	q := r.URL.Query()
	if y, m := q.Get("year"), q.Get("month"); y != "" || m != "" {
		return monthPeriod(y, m)
	}
	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return generic.Period{}, nil
	}
	start, err := generic.ParseDate(from)
	if err != nil {
		return generic.Period{}, fmt.Errorf("from: %w", err)
	}
	end, err := generic.ParseDate(to)
	if err != nil {
		return generic.Period{}, fmt.Errorf("to: %w", err)
	}
	p := generic.Period{Start: start, End: end}
	if !p.Valid() {
		return generic.Period{}, fmt.Errorf("%w: from is after to", generic.ErrInvalidInput)
	}
	return p, nil
}

func monthPeriod(year, month string) (generic.Period, error) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 2000 || y > 2100 {
		return generic.Period{}, fmt.Errorf("%w: invalid year %q", generic.ErrInvalidInput, year)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return generic.Period{}, fmt.Errorf("%w: invalid month %q", generic.ErrInvalidInput, month)
	}
	return generic.MonthPeriod(y, time.Month(m)), nil
}

// queryLimit reads ?limit=, defaulting to def.
func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
