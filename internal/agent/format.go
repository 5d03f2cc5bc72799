package agent

import (
	"fmt"
	"strings"

	"github.com/tuneport/support-assistant/internal/model"
)

// FormatTable renders rows as fixed-width pipe-delimited text. It is a pure
// function: the same headers and rows always produce identical output.
func FormatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, "| %-*s ", w, cell)
		}
		b.WriteString("|\n")
	}

	writeRow(headers)
	for i, w := range widths {
		if i == 0 {
			b.WriteString("|")
		}
		b.WriteString(":" + strings.Repeat("-", w+1) + "|")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// FormatDuration renders a millisecond track length as minutes:seconds with
// the seconds zero-padded to two digits.
func FormatDuration(ms int64) string {
	return fmt.Sprintf("%d:%02d", ms/60000, ms%60000/1000)
}

// FormatPurchases renders purchase history rows for a lookup reply.
func FormatPurchases(records []model.PurchaseRecord) string {
	headers := []string{"Invoice Line ID", "Track", "Artist", "Purchase Date", "Quantity", "Price"}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			fmt.Sprintf("%d", r.InvoiceLineID),
			r.TrackName,
			r.ArtistName,
			r.PurchaseDate,
			fmt.Sprintf("%d", r.QuantityPurchased),
			fmt.Sprintf("$%.2f", r.PricePerUnit),
		}
	}
	return FormatTable(headers, rows)
}

// FormatCatalog renders catalog search rows for a music-query reply.
func FormatCatalog(rows []model.CatalogRow) string {
	headers := []string{"Track", "Artist", "Album", "Duration"}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			r.TrackName,
			r.ArtistName,
			r.AlbumTitle,
			FormatDuration(r.DurationMs),
		}
	}
	return FormatTable(headers, out)
}
