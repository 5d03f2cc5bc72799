package model

// RefundTarget names what a refund should delete: a whole invoice, individual
// invoice lines, or both. Amounts for both are summed when both are present.
type RefundTarget struct {
	InvoiceID      *int64
	InvoiceLineIDs []int64
}

// IsEmpty reports whether the target names nothing to refund.
func (t RefundTarget) IsEmpty() bool {
	return t.InvoiceID == nil && len(t.InvoiceLineIDs) == 0
}

// LookupCriteria filters a purchase-history lookup. The identity triple is
// required; the remaining fields narrow the search when present.
type LookupCriteria struct {
	FirstName    string
	LastName     string
	Phone        string
	TrackName    *string
	AlbumTitle   *string
	ArtistName   *string
	PurchaseDate *string
}

// PurchaseRecord is one row of a customer's purchase history.
type PurchaseRecord struct {
	InvoiceLineID     int64
	TrackName         string
	ArtistName        string
	PurchaseDate      string
	QuantityPurchased int64
	PricePerUnit      float64
}

// CatalogRow is one row of a catalog search result.
type CatalogRow struct {
	TrackName  string
	ArtistName string
	AlbumTitle string
	DurationMs int64
}
