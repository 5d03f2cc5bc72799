// Package store implements the record-store gateway over the Chinook
// SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/tuneport/support-assistant/internal/model"
	"github.com/tuneport/support-assistant/pkg/logger"
	"github.com/tuneport/support-assistant/pkg/metrics"
)

// ErrStorage is the generic storage failure surfaced to callers. The
// underlying cause is wrapped for operator logs, never shown to end users.
var ErrStorage = errors.New("storage failure")

// Config holds store configuration.
type Config struct {
	// Path is the SQLite database file location.
	Path string
	// DownloadURL is where the Chinook database is fetched from when the
	// file does not exist yet. Empty disables bootstrap.
	DownloadURL string
	// PoolSize bounds the reusable connection pool.
	PoolSize int
}

// Store is the record-store gateway. It owns a bounded connection pool and is
// passed by reference to whichever scope creates it.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// Open ensures the database file exists and opens the connection pool.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 5
	}

	if cfg.DownloadURL != "" {
		if err := EnsureDatabase(ctx, cfg.Path, cfg.DownloadURL, log); err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.PoolSize)
	db.SetMaxIdleConns(cfg.PoolSize)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db, logger: log}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InvoiceTotal returns the total for one invoice, or zero when it does not
// exist.
func (s *Store) InvoiceTotal(ctx context.Context, invoiceID int64) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT Total FROM Invoice WHERE InvoiceId = ?", invoiceID,
	).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, s.storageErr("invoice total", err)
	}
	return total, nil
}

// SumLineAmounts returns the summed unit price times quantity over the named
// invoice lines. Missing lines contribute nothing.
func (s *Store) SumLineAmounts(ctx context.Context, lineIDs []int64) (float64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(
		"SELECT COALESCE(SUM(UnitPrice * Quantity), 0) FROM InvoiceLine WHERE InvoiceLineId IN (%s)",
		placeholders(len(lineIDs)),
	)

	var total float64
	if err := s.db.QueryRowContext(ctx, query, int64Args(lineIDs)...).Scan(&total); err != nil {
		return 0, s.storageErr("sum line amounts", err)
	}
	return total, nil
}

// DeleteInvoice removes an invoice and its lines in one transaction.
func (s *Store) DeleteInvoice(ctx context.Context, invoiceID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.storageErr("begin delete invoice", err)
	}
	defer tx.Rollback()

	if err := deleteInvoiceTx(ctx, tx, invoiceID); err != nil {
		return s.storageErr("delete invoice", err)
	}
	if err := tx.Commit(); err != nil {
		return s.storageErr("commit delete invoice", err)
	}
	return nil
}

// DeleteLines removes the named invoice lines in one transaction.
func (s *Store) DeleteLines(ctx context.Context, lineIDs []int64) error {
	if len(lineIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.storageErr("begin delete lines", err)
	}
	defer tx.Rollback()

	if err := deleteLinesTx(ctx, tx, lineIDs); err != nil {
		return s.storageErr("delete lines", err)
	}
	if err := tx.Commit(); err != nil {
		return s.storageErr("commit delete lines", err)
	}
	return nil
}

// Refund computes the dollar amount covered by the target and deletes the
// corresponding rows, all in one transaction: a failed delete leaves the
// store unchanged. When both an invoice and invoice lines are named, both
// amounts are summed. With simulate set nothing is deleted.
func (s *Store) Refund(ctx context.Context, target model.RefundTarget, simulate bool) (float64, error) {
	defer observe("refund")()

	if target.IsEmpty() {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.storageErr("begin refund", err)
	}
	defer tx.Rollback()

	var total float64

	if target.InvoiceID != nil {
		var invoiceTotal float64
		err := tx.QueryRowContext(ctx,
			"SELECT Total FROM Invoice WHERE InvoiceId = ?", *target.InvoiceID,
		).Scan(&invoiceTotal)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return 0, s.storageErr("refund invoice total", err)
		}
		total += invoiceTotal

		if !simulate {
			if err := deleteInvoiceTx(ctx, tx, *target.InvoiceID); err != nil {
				return 0, s.storageErr("refund delete invoice", err)
			}
		}
	}

	if len(target.InvoiceLineIDs) > 0 {
		query := fmt.Sprintf(
			"SELECT COALESCE(SUM(UnitPrice * Quantity), 0) FROM InvoiceLine WHERE InvoiceLineId IN (%s)",
			placeholders(len(target.InvoiceLineIDs)),
		)
		var lineTotal float64
		if err := tx.QueryRowContext(ctx, query, int64Args(target.InvoiceLineIDs)...).Scan(&lineTotal); err != nil {
			return 0, s.storageErr("refund line amounts", err)
		}
		total += lineTotal

		if !simulate {
			if err := deleteLinesTx(ctx, tx, target.InvoiceLineIDs); err != nil {
				return 0, s.storageErr("refund delete lines", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, s.storageErr("commit refund", err)
	}

	return total, nil
}

// FindPurchases returns the purchase history matching the criteria. Name
// fields match case-insensitive substrings, phone matches a substring, and
// the purchase date matches ignoring time of day.
func (s *Store) FindPurchases(ctx context.Context, criteria model.LookupCriteria) ([]model.PurchaseRecord, error) {
	defer observe("find_purchases")()

	query := `
	SELECT DISTINCT
		InvoiceLine.InvoiceLineId,
		Track.Name,
		Artist.Name,
		Invoice.InvoiceDate,
		InvoiceLine.Quantity,
		InvoiceLine.UnitPrice
	FROM Customer
	JOIN Invoice ON Customer.CustomerId = Invoice.CustomerId
	JOIN InvoiceLine ON Invoice.InvoiceId = InvoiceLine.InvoiceId
	JOIN Track ON InvoiceLine.TrackId = Track.TrackId
	JOIN Album ON Track.AlbumId = Album.AlbumId
	JOIN Artist ON Album.ArtistId = Artist.ArtistId
	WHERE LOWER(Customer.FirstName) LIKE LOWER(?)
	AND LOWER(Customer.LastName) LIKE LOWER(?)
	AND Customer.Phone LIKE ?`

	args := []any{
		contains(criteria.FirstName),
		contains(criteria.LastName),
		contains(criteria.Phone),
	}

	if criteria.TrackName != nil {
		query += " AND LOWER(Track.Name) LIKE LOWER(?)"
		args = append(args, contains(*criteria.TrackName))
	}
	if criteria.AlbumTitle != nil {
		query += " AND LOWER(Album.Title) LIKE LOWER(?)"
		args = append(args, contains(*criteria.AlbumTitle))
	}
	if criteria.ArtistName != nil {
		query += " AND LOWER(Artist.Name) LIKE LOWER(?)"
		args = append(args, contains(*criteria.ArtistName))
	}
	if criteria.PurchaseDate != nil {
		query += " AND DATE(Invoice.InvoiceDate) = DATE(?)"
		args = append(args, *criteria.PurchaseDate)
	}

	query += " ORDER BY Invoice.InvoiceDate DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.storageErr("find purchases", err)
	}
	defer rows.Close()

	var records []model.PurchaseRecord
	for rows.Next() {
		var r model.PurchaseRecord
		if err := rows.Scan(
			&r.InvoiceLineID,
			&r.TrackName,
			&r.ArtistName,
			&r.PurchaseDate,
			&r.QuantityPurchased,
			&r.PricePerUnit,
		); err != nil {
			return nil, s.storageErr("scan purchase", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr("iterate purchases", err)
	}

	return records, nil
}

func deleteInvoiceTx(ctx context.Context, tx *sql.Tx, invoiceID int64) error {
	// Invoice lines go first because of the foreign key.
	if _, err := tx.ExecContext(ctx, "DELETE FROM InvoiceLine WHERE InvoiceId = ?", invoiceID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM Invoice WHERE InvoiceId = ?", invoiceID)
	return err
}

func deleteLinesTx(ctx context.Context, tx *sql.Tx, lineIDs []int64) error {
	query := fmt.Sprintf(
		"DELETE FROM InvoiceLine WHERE InvoiceLineId IN (%s)",
		placeholders(len(lineIDs)),
	)
	_, err := tx.ExecContext(ctx, query, int64Args(lineIDs)...)
	return err
}

// observe times one store operation for the query duration histogram.
func observe(op string) func() {
	start := time.Now()
	return func() {
		metrics.StoreQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (s *Store) storageErr(op string, err error) error {
	// Operator-facing detail stays in the log; callers only see ErrStorage.
	s.logger.Error("store operation failed",
		zap.String("op", op),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s", ErrStorage, op)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func contains(s string) string {
	return "%" + s + "%"
}
