package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"medstock/m/domain"
)

const (
	// DefaultHistoryLimit caps history and stock-in listings.
	DefaultHistoryLimit = 200
	// ReportHistoryLimit caps the history half of a report.
	ReportHistoryLimit = 500
)

// Store owns the medicines and history tables. Every quantity change is
// written together with its history row inside one transaction.
type Store struct {
	db *sqlx.DB
	// lockSuffix is appended to reads that precede a write of the same row.
	lockSuffix string
}

// New constructs a Store on top of a pooled connection.
func New(db *sqlx.DB) *Store {
	s := &Store{db: db}
	if db.DriverName() == "postgres" {
		s.lockSuffix = " FOR UPDATE"
	}
	return s
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction. The transaction is committed only
// when fn succeeds and is rolled back on every other exit path.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func recordMovement(ctx context.Context, tx *sqlx.Tx, kind domain.MovementType, name, batch string, quantity int64, person string) error {
	_, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO history (type, medicine_name, batch, quantity, person) VALUES (?, ?, ?, ?, ?)`),
		kind, name, batch, quantity, person,
	)
	if err != nil {
		return fmt.Errorf("recording %s history: %w", strings.ToLower(string(kind)), err)
	}
	return nil
}

// findPair returns the id of the (name, batch) pair, or found=false when it
// is not stocked.
func (s *Store) findPair(ctx context.Context, tx *sqlx.Tx, name, batch string) (id int64, found bool, err error) {
	err = tx.GetContext(ctx, &id,
		tx.Rebind(`SELECT id FROM medicines WHERE name = ? AND batch = ?`+s.lockSuffix),
		name, batch,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("looking up medicine: %w", err)
	}
	return id, true, nil
}

func insertMedicine(ctx context.Context, tx *sqlx.Tx, in domain.StockInput) error {
	_, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO medicines (name, batch, expiry, brand, supplier, quantity) VALUES (?, ?, ?, ?, ?, ?)`),
		in.Name, in.Batch, in.Expiry, in.Brand, in.Supplier, in.Quantity,
	)
	if err != nil {
		return fmt.Errorf("inserting medicine: %w", err)
	}
	return nil
}

// AddStock restocks an existing (name, batch) pair or creates it. Expiry,
// brand and supplier of an existing pair are left untouched.
func (s *Store) AddStock(ctx context.Context, in domain.StockInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		id, found, err := s.findPair(ctx, tx, in.Name, in.Batch)
		if err != nil {
			return err
		}
		if !found {
			if err := insertMedicine(ctx, tx, in); err != nil {
				return err
			}
		} else {
			_, err = tx.ExecContext(ctx,
				tx.Rebind(`UPDATE medicines SET quantity = quantity + ? WHERE id = ?`),
				in.Quantity, id,
			)
			if err != nil {
				return fmt.Errorf("restocking medicine %d: %w", id, err)
			}
		}

		return recordMovement(ctx, tx, domain.MovementAdd, in.Name, in.Batch, in.Quantity, domain.SystemPerson)
	})
}

// SeedStock creates the (name, batch) pair only if it is not stocked yet and
// reports whether it did. Existing pairs keep their quantity, so replaying
// the same seed file changes nothing.
func (s *Store) SeedStock(ctx context.Context, in domain.StockInput) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}

	created := false
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, found, err := s.findPair(ctx, tx, in.Name, in.Batch)
		if err != nil || found {
			return err
		}
		if err := insertMedicine(ctx, tx, in); err != nil {
			return err
		}
		created = true
		return recordMovement(ctx, tx, domain.MovementAdd, in.Name, in.Batch, in.Quantity, domain.SystemPerson)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

type stockRow struct {
	Name     string `db:"name"`
	Batch    string `db:"batch"`
	Quantity int64  `db:"quantity"`
}

func (s *Store) lockMedicine(ctx context.Context, tx *sqlx.Tx, id int64) (stockRow, error) {
	var row stockRow
	err := tx.GetContext(ctx, &row,
		tx.Rebind(`SELECT name, batch, quantity FROM medicines WHERE id = ?`+s.lockSuffix), id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return row, domain.ErrNotFound
	}
	if err != nil {
		return row, fmt.Errorf("reading medicine %d: %w", id, err)
	}
	return row, nil
}

// DeleteMedicine removes a medicine regardless of its quantity and records
// a DELETE movement.
func (s *Store) DeleteMedicine(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		med, err := s.lockMedicine(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM medicines WHERE id = ?`), id); err != nil {
			return fmt.Errorf("deleting medicine %d: %w", id, err)
		}

		return recordMovement(ctx, tx, domain.MovementDelete, med.Name, med.Batch, 0, domain.SystemPerson)
	})
}

// Dispense hands quantity units of a medicine to patient. A medicine whose
// stock reaches zero is removed; the DISPENSE entry is the only history
// written for it.
func (s *Store) Dispense(ctx context.Context, id, quantity int64, patient string) (domain.DispenseResult, error) {
	patient = strings.TrimSpace(patient)
	if quantity <= 0 {
		return domain.DispenseResult{}, domain.Invalid("quantity", "Quantity must be greater than 0")
	}
	if patient == "" {
		return domain.DispenseResult{}, domain.Invalid("patient", "Patient name is required")
	}

	var result domain.DispenseResult
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		med, err := s.lockMedicine(ctx, tx, id)
		if err != nil {
			return err
		}
		if med.Quantity < quantity {
			return &domain.InsufficientStockError{Available: med.Quantity, Requested: quantity}
		}

		// The guard keeps the decrement correct even if another writer got
		// in between the read and the update.
		res, err := tx.ExecContext(ctx,
			tx.Rebind(`UPDATE medicines SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`),
			quantity, id, quantity,
		)
		if err != nil {
			return fmt.Errorf("dispensing medicine %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("dispensing medicine %d: %w", id, err)
		}
		if n == 0 {
			current, err := s.lockMedicine(ctx, tx, id)
			if err != nil {
				return err
			}
			return &domain.InsufficientStockError{Available: current.Quantity, Requested: quantity}
		}

		if err := recordMovement(ctx, tx, domain.MovementDispense, med.Name, med.Batch, quantity, patient); err != nil {
			return err
		}

		remaining := med.Quantity - quantity
		if remaining == 0 {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM medicines WHERE id = ?`), id); err != nil {
				return fmt.Errorf("removing exhausted medicine %d: %w", id, err)
			}
		}

		result = domain.DispenseResult{Medicine: med.Name, Quantity: quantity, Remaining: remaining}
		return nil
	})
	if err != nil {
		return domain.DispenseResult{}, err
	}
	return result, nil
}

// ListMedicines returns every medicine currently in stock. Each id appears
// once even if the read yields a row twice.
func (s *Store) ListMedicines(ctx context.Context) ([]domain.Medicine, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, name, batch, expiry, brand, supplier, quantity FROM medicines ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing medicines: %w", err)
	}
	defer rows.Close()

	medicines := make([]domain.Medicine, 0)
	seen := make(map[int64]struct{})
	for rows.Next() {
		var m domain.Medicine
		if err := rows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("scanning medicine: %w", err)
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

func (s *Store) listHistory(ctx context.Context, kind domain.MovementType, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `SELECT id, type, medicine_name, batch, quantity, person, "timestamp" FROM history`
	args := []any{}
	if kind != "" {
		query += ` WHERE type = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY "timestamp" DESC, id DESC LIMIT ?`
	args = append(args, limit)

	entries := make([]domain.HistoryEntry, 0)
	if err := s.db.SelectContext(ctx, &entries, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}

// ListHistory returns the newest limit movements. A non-positive limit
// means DefaultHistoryLimit.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	return s.listHistory(ctx, "", limit)
}

// ListStockIns returns the newest limit ADD movements.
func (s *Store) ListStockIns(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	return s.listHistory(ctx, domain.MovementAdd, limit)
}

// GetReport combines current stock with recent history. The two reads are
// not isolated from each other.
func (s *Store) GetReport(ctx context.Context) (domain.Report, error) {
	stock, err := s.ListMedicines(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	history, err := s.ListHistory(ctx, ReportHistoryLimit)
	if err != nil {
		return domain.Report{}, err
	}
	return domain.Report{Stock: stock, History: history}, nil
}

// ClearHistory deletes every history entry. Medicines are not touched.
func (s *Store) ClearHistory(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		return nil
	})
}
