package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneport/support-assistant/internal/model"
)

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "2:05", FormatDuration(125000))
	require.Equal(t, "0:00", FormatDuration(0))
	require.Equal(t, "0:59", FormatDuration(59999))
	require.Equal(t, "1:00", FormatDuration(60000))
	require.Equal(t, "10:30", FormatDuration(630000))
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"Track", "Artist"},
		[][]string{
			{"Money", "Pink Floyd"},
			{"Time", "Pink Floyd"},
		},
	)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "| Track | Artist     |", lines[0])
	require.Equal(t, "|:------|:-----------|", lines[1])
	require.Equal(t, "| Money | Pink Floyd |", lines[2])
	require.Equal(t, "| Time  | Pink Floyd |", lines[3])
}

func TestFormatTableIdempotent(t *testing.T) {
	headers := []string{"Track", "Artist", "Album", "Duration"}
	rows := [][]string{
		{"Another Brick in the Wall", "Pink Floyd", "The Wall", "3:59"},
	}

	first := FormatTable(headers, rows)
	second := FormatTable(headers, rows)
	require.Equal(t, first, second)
}

func TestFormatCatalog(t *testing.T) {
	out := FormatCatalog([]model.CatalogRow{
		{TrackName: "Money", ArtistName: "Pink Floyd", AlbumTitle: "The Dark Side of the Moon", DurationMs: 125000},
	})

	require.Contains(t, out, "| Track |")
	require.Contains(t, out, "Duration")
	require.Contains(t, out, "2:05")
	require.Contains(t, out, "The Dark Side of the Moon")
}

func TestFormatPurchases(t *testing.T) {
	out := FormatPurchases([]model.PurchaseRecord{
		{
			InvoiceLineID:     42,
			TrackName:         "Money",
			ArtistName:        "Pink Floyd",
			PurchaseDate:      "2024-05-01 00:00:00",
			QuantityPurchased: 1,
			PricePerUnit:      0.99,
		},
	})

	require.Contains(t, out, "42")
	require.Contains(t, out, "$0.99")
	require.Contains(t, out, "Invoice Line ID")
}
