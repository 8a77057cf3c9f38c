package legacy

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/parrilla/backoffice/finance"
	"github.com/parrilla/backoffice/generic"
	"github.com/parrilla/backoffice/payroll"
)

// Report counts records moved per collection key.
type Report map[string]int

// Importer copies collections between a BlobStore and the repositories.
type Importer struct {
	Blobs   BlobStore
	Payroll payroll.Repository
	Finance finance.Repository
	Logger  *slog.Logger
	Now     func() time.Time
}

func NewImporter(blobs BlobStore, pr payroll.Repository, fr finance.Repository, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{Blobs: blobs, Payroll: pr, Finance: fr, Logger: logger, Now: time.Now}
}

// =============================================================================
// IMPORT
// =============================================================================

// Import reads every known collection and saves its records. Missing keys
// are skipped. Records keep their ids, so importing twice overwrites
// instead of duplicating, and a failed run can simply be repeated. The
// first record that does not convert aborts the run with an error naming
// the key and position. Payroll collections are saved as they are read and
// stay saved when a later key fails; the finance collections are written
// in a single transaction, so a bad finance record leaves none of them.
func (im *Importer) Import(ctx context.Context) (Report, error) {
	report := Report{}
	now := im.Now().UTC()

	for _, key := range Keys {
		if financeKeys[key] {
			continue
		}
		if err := im.importInto(ctx, report, key, now, im.Finance); err != nil {
			return report, err
		}
		im.logImported(report, key)
	}

	staged := Report{}
	err := im.Finance.WithTx(ctx, func(tx finance.Repository) error {
		for _, key := range Keys {
			if !financeKeys[key] {
				continue
			}
			if err := im.importInto(ctx, staged, key, now, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	maps.Copy(report, staged)
	for _, key := range Keys {
		if financeKeys[key] {
			im.logImported(staged, key)
		}
	}
	return report, nil
}

// financeKeys are imported together inside Finance.WithTx.
var financeKeys = map[string]bool{
	KeyProducts:      true,
	KeyPartners:      true,
	KeyWallet:        true,
	KeyFixedExpenses: true,
}

func (im *Importer) importInto(ctx context.Context, report Report, key string, now time.Time, fr finance.Repository) error {
	n, err := im.importKey(ctx, key, now, fr)
	if err != nil {
		return fmt.Errorf("import %s: %w", key, err)
	}
	if n >= 0 {
		report[key] = n
	}
	return nil
}

func (im *Importer) logImported(report Report, key string) {
	if n, ok := report[key]; ok {
		im.Logger.Info("legacy collection imported", "key", key, "records", n)
	}
}

// importKey returns -1 when the key does not exist.
func (im *Importer) importKey(ctx context.Context, key string, now time.Time, fr finance.Repository) (int, error) {
	switch key {
	case KeyEmployees:
		return importEach(ctx, im.Blobs, key, func(r Employee) error {
			e, err := r.toDomain(now)
			if err != nil {
				return err
			}
			return im.Payroll.SaveEmployee(ctx, e)
		})
	case KeyHolidays:
		return importEach(ctx, im.Blobs, key, func(r Holiday) error {
			h, err := r.toDomain()
			if err != nil {
				return err
			}
			return im.Payroll.SaveHoliday(ctx, h)
		})
	case KeyAttendance:
		return importEach(ctx, im.Blobs, key, func(r Attendance) error {
			a, err := r.toDomain(now)
			if err != nil {
				return err
			}
			return im.Payroll.SaveAttendance(ctx, a)
		})
	case KeyAbsences:
		return importEach(ctx, im.Blobs, key, func(r Absence) error {
			a, err := r.toDomain(now)
			if err != nil {
				return err
			}
			return im.Payroll.SaveAbsence(ctx, a)
		})
	case KeySanctions:
		return importEach(ctx, im.Blobs, key, func(r Sanction) error {
			s, err := r.toDomain(now)
			if err != nil {
				return err
			}
			return im.Payroll.SaveSanction(ctx, s)
		})
	case KeyProducts:
		return importEach(ctx, im.Blobs, key, func(r Product) error {
			p, err := r.toDomain(now)
			if err != nil {
				return err
			}
			return fr.SaveProduct(ctx, p)
		})
	case KeyPartners:
		return importEach(ctx, im.Blobs, key, func(r Partner) error {
			p, err := r.toDomain(now)
			if err != nil {
				return err
			}
			return fr.SavePartner(ctx, p)
		})
	case KeyWallet:
		return importEach(ctx, im.Blobs, key, func(r WalletEntry) error {
			t, err := r.toDomain(now)
			if err != nil {
				return err
			}
			return fr.SaveWalletTransaction(ctx, t)
		})
	case KeyFixedExpenses:
		return importEach(ctx, im.Blobs, key, func(r FixedExpense) error {
			e, err := r.toDomain(now)
			if err != nil {
				return err
			}
			return fr.SaveFixedExpense(ctx, e)
		})
	}
	return -1, fmt.Errorf("%w: unknown collection %q", generic.ErrInvalidInput, key)
}

func importEach[R any](ctx context.Context, blobs BlobStore, key string, save func(R) error) (int, error) {
	var records []R
	found, err := blobs.Load(ctx, key, &records)
	if err != nil {
		return 0, err
	}
	if !found {
		return -1, nil
	}
	for i, r := range records {
		if err := save(r); err != nil {
			return i, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return len(records), nil
}

// =============================================================================
// EXPORT
// =============================================================================

// Export writes every collection back as a whole blob, replacing what the
// store held.
func (im *Importer) Export(ctx context.Context) (Report, error) {
	report := Report{}

	employees, err := im.Payroll.ListEmployees(ctx, true)
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeyEmployees, employees, fromEmployee); err != nil {
		return report, err
	}

	holidays, err := im.Payroll.ListHolidays(ctx)
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeyHolidays, holidays, fromHoliday); err != nil {
		return report, err
	}

	attendance, err := im.Payroll.ListAttendance(ctx, "", generic.Period{})
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeyAttendance, attendance, fromAttendance); err != nil {
		return report, err
	}

	absences, err := im.Payroll.ListAbsences(ctx, "", generic.Period{})
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeyAbsences, absences, fromAbsence); err != nil {
		return report, err
	}

	sanctions, err := im.Payroll.ListSanctions(ctx, "")
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeySanctions, sanctions, fromSanction); err != nil {
		return report, err
	}

	products, err := im.Finance.ListProducts(ctx)
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeyProducts, products, fromProduct); err != nil {
		return report, err
	}

	partners, err := im.Finance.ListPartners(ctx)
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeyPartners, partners, fromPartner); err != nil {
		return report, err
	}

	wallet, err := im.Finance.ListWalletTransactions(ctx, generic.Period{}, true)
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeyWallet, wallet, fromWallet); err != nil {
		return report, err
	}

	expenses, err := im.Finance.ListFixedExpenses(ctx)
	if err != nil {
		return report, err
	}
	if err := exportAll(ctx, im.Blobs, report, KeyFixedExpenses, expenses, fromFixedExpense); err != nil {
		return report, err
	}

	im.Logger.Info("legacy collections exported", "keys", len(report))
	return report, nil
}

func exportAll[T, R any](ctx context.Context, blobs BlobStore, report Report, key string, items []T, convert func(T) R) error {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	if err := blobs.Save(ctx, key, out); err != nil {
		return fmt.Errorf("export %s: %w", key, err)
	}
	report[key] = len(out)
	return nil
}
