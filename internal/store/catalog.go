package store

import (
	"context"
	"strings"

	"github.com/tuneport/support-assistant/internal/model"
)

const catalogSelect = `
	SELECT DISTINCT
		Track.Name,
		Artist.Name,
		Album.Title,
		Track.Milliseconds
	FROM Track
	JOIN Album ON Track.AlbumId = Album.AlbumId
	JOIN Artist ON Album.ArtistId = Artist.ArtistId
	WHERE `

// FindTracks returns catalog rows whose track name contains the query text.
func (s *Store) FindTracks(ctx context.Context, query string) ([]model.CatalogRow, error) {
	return s.catalogQuery(ctx, "find tracks",
		catalogSelect+"LOWER(Track.Name) LIKE LOWER(?)", contains(query))
}

// FindAlbums returns catalog rows whose album title contains the query text.
func (s *Store) FindAlbums(ctx context.Context, query string) ([]model.CatalogRow, error) {
	return s.catalogQuery(ctx, "find albums",
		catalogSelect+"LOWER(Album.Title) LIKE LOWER(?)", contains(query))
}

// FindArtists returns catalog rows whose artist name contains the query text,
// after stripping common "tracks by" phrasings.
func (s *Store) FindArtists(ctx context.Context, query string) ([]model.CatalogRow, error) {
	name := strings.ToLower(query)
	name = strings.ReplaceAll(name, "tracks by ", "")
	name = strings.ReplaceAll(name, "songs by ", "")
	return s.catalogQuery(ctx, "find artists",
		catalogSelect+"LOWER(Artist.Name) LIKE LOWER(?)", contains(name))
}

func (s *Store) catalogQuery(ctx context.Context, op, query string, args ...any) ([]model.CatalogRow, error) {
	defer observe(op)()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.storageErr(op, err)
	}
	defer rows.Close()

	var out []model.CatalogRow
	for rows.Next() {
		var r model.CatalogRow
		if err := rows.Scan(&r.TrackName, &r.ArtistName, &r.AlbumTitle, &r.DurationMs); err != nil {
			return nil, s.storageErr(op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(op, err)
	}

	return out, nil
}
