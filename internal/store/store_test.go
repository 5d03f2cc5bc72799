package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneport/support-assistant/internal/model"
	"github.com/tuneport/support-assistant/pkg/logger"
)

const testSchema = `
CREATE TABLE Artist (
	ArtistId INTEGER PRIMARY KEY,
	Name TEXT
);
CREATE TABLE Album (
	AlbumId INTEGER PRIMARY KEY,
	Title TEXT,
	ArtistId INTEGER REFERENCES Artist(ArtistId)
);
CREATE TABLE Track (
	TrackId INTEGER PRIMARY KEY,
	Name TEXT,
	AlbumId INTEGER REFERENCES Album(AlbumId),
	Milliseconds INTEGER
);
CREATE TABLE Customer (
	CustomerId INTEGER PRIMARY KEY,
	FirstName TEXT,
	LastName TEXT,
	Phone TEXT
);
CREATE TABLE Invoice (
	InvoiceId INTEGER PRIMARY KEY,
	CustomerId INTEGER REFERENCES Customer(CustomerId),
	InvoiceDate TEXT,
	Total REAL
);
CREATE TABLE InvoiceLine (
	InvoiceLineId INTEGER PRIMARY KEY,
	InvoiceId INTEGER REFERENCES Invoice(InvoiceId),
	TrackId INTEGER REFERENCES Track(TrackId),
	UnitPrice REAL,
	Quantity INTEGER
);

INSERT INTO Artist VALUES (1, 'Pink Floyd');
INSERT INTO Album VALUES (1, 'The Wall', 1);
INSERT INTO Album VALUES (2, 'The Dark Side of the Moon', 1);
INSERT INTO Track VALUES (10, 'In the Flesh?', 1, 199000);
INSERT INTO Track VALUES (11, 'Money', 2, 382000);
INSERT INTO Track VALUES (12, 'Time', 2, 413000);
INSERT INTO Customer VALUES (1, 'Jane', 'Doe', '+1 555-0100');
INSERT INTO Invoice VALUES (7, 1, '2024-05-01 00:00:00', 9.99);
INSERT INTO InvoiceLine VALUES (70, 7, 10, 0.99, 1);
INSERT INTO InvoiceLine VALUES (71, 7, 11, 0.99, 2);
`

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chinook.db")
	s, err := Open(context.Background(), Config{Path: path, PoolSize: 2}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.db.ExecContext(context.Background(), testSchema)
	require.NoError(t, err)

	return s
}

func lineExists(t *testing.T, s *Store, lineID int64) bool {
	t.Helper()
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM InvoiceLine WHERE InvoiceLineId = ?", lineID,
	).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func invoiceExists(t *testing.T, s *Store, invoiceID int64) bool {
	t.Helper()
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM Invoice WHERE InvoiceId = ?", invoiceID,
	).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInvoiceTotal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	total, err := s.InvoiceTotal(ctx, 7)
	require.NoError(t, err)
	require.InDelta(t, 9.99, total, 0.001)

	// Unknown invoices contribute zero, not an error.
	total, err = s.InvoiceTotal(ctx, 999)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestSumLineAmounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	total, err := s.SumLineAmounts(ctx, []int64{70, 71})
	require.NoError(t, err)
	require.InDelta(t, 2.97, total, 0.001)

	total, err = s.SumLineAmounts(ctx, []int64{70, 999})
	require.NoError(t, err)
	require.InDelta(t, 0.99, total, 0.001)

	total, err = s.SumLineAmounts(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestRefundInvoice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	amount, err := s.Refund(ctx, model.RefundTarget{InvoiceID: ptr(int64(7))}, false)
	require.NoError(t, err)
	require.InDelta(t, 9.99, amount, 0.001)

	require.False(t, invoiceExists(t, s, 7))
	require.False(t, lineExists(t, s, 70))
	require.False(t, lineExists(t, s, 71))

	// A second refund of the same invoice finds nothing left.
	amount, err = s.Refund(ctx, model.RefundTarget{InvoiceID: ptr(int64(7))}, false)
	require.NoError(t, err)
	require.Zero(t, amount)
}

func TestRefundLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	amount, err := s.Refund(ctx, model.RefundTarget{InvoiceLineIDs: []int64{70}}, false)
	require.NoError(t, err)
	require.InDelta(t, 0.99, amount, 0.001)

	require.False(t, lineExists(t, s, 70))
	require.True(t, lineExists(t, s, 71))
	require.True(t, invoiceExists(t, s, 7))
}

func TestRefundSimulateLeavesRowsIntact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	target := model.RefundTarget{
		InvoiceID:      ptr(int64(7)),
		InvoiceLineIDs: []int64{70, 71},
	}

	amount, err := s.Refund(ctx, target, true)
	require.NoError(t, err)
	// Both targets are summed when both are named.
	require.InDelta(t, 9.99+2.97, amount, 0.001)

	require.True(t, invoiceExists(t, s, 7))
	require.True(t, lineExists(t, s, 70))
	require.True(t, lineExists(t, s, 71))
}

func TestRefundEmptyTarget(t *testing.T) {
	s := newTestStore(t)

	amount, err := s.Refund(context.Background(), model.RefundTarget{}, false)
	require.NoError(t, err)
	require.Zero(t, amount)
}

func TestDeleteInvoiceRemovesLines(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.DeleteInvoice(context.Background(), 7))
	require.False(t, invoiceExists(t, s, 7))
	require.False(t, lineExists(t, s, 70))
	require.False(t, lineExists(t, s, 71))
}

func TestDeleteLines(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.DeleteLines(context.Background(), []int64{71}))
	require.True(t, lineExists(t, s, 70))
	require.False(t, lineExists(t, s, 71))

	require.NoError(t, s.DeleteLines(context.Background(), nil))
}

func TestFindPurchases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Case-insensitive substring matching on the identity fields.
	records, err := s.FindPurchases(ctx, model.LookupCriteria{
		FirstName: "jane",
		LastName:  "DOE",
		Phone:     "555-0100",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	byLine := map[int64]model.PurchaseRecord{}
	for _, r := range records {
		byLine[r.InvoiceLineID] = r
	}
	require.Equal(t, "In the Flesh?", byLine[70].TrackName)
	require.Equal(t, "Pink Floyd", byLine[70].ArtistName)
	require.Equal(t, int64(2), byLine[71].QuantityPurchased)
	require.InDelta(t, 0.99, byLine[71].PricePerUnit, 0.001)
}

func TestFindPurchasesOptionalFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	criteria := model.LookupCriteria{
		FirstName: "Jane",
		LastName:  "Doe",
		Phone:     "+1 555-0100",
		TrackName: ptr("money"),
	}
	records, err := s.FindPurchases(ctx, criteria)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(71), records[0].InvoiceLineID)

	criteria.TrackName = nil
	criteria.PurchaseDate = ptr("2024-05-01")
	records, err = s.FindPurchases(ctx, criteria)
	require.NoError(t, err)
	require.Len(t, records, 2)

	criteria.PurchaseDate = ptr("2024-06-01")
	records, err = s.FindPurchases(ctx, criteria)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestFindPurchasesNoMatch(t *testing.T) {
	s := newTestStore(t)

	records, err := s.FindPurchases(context.Background(), model.LookupCriteria{
		FirstName: "John",
		LastName:  "Smith",
		Phone:     "+1 555-9999",
	})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestFindTracks(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.FindTracks(context.Background(), "money")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Money", rows[0].TrackName)
	require.Equal(t, "The Dark Side of the Moon", rows[0].AlbumTitle)
	require.Equal(t, int64(382000), rows[0].DurationMs)
}

func TestFindAlbums(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.FindAlbums(context.Background(), "wall")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "In the Flesh?", rows[0].TrackName)
	require.Equal(t, "The Wall", rows[0].AlbumTitle)
}

func TestFindArtistsStripsQueryPhrasing(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.FindArtists(context.Background(), "tracks by Pink Floyd")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	rows, err = s.FindArtists(context.Background(), "songs by pink floyd")
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestFindTracksNoMatch(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.FindTracks(context.Background(), "stairway")
	require.NoError(t, err)
	require.Empty(t, rows)
}

func ptr[T any](v T) *T {
	return &v
}
