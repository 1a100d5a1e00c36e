package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/siddheshzz/galileo/tile"
)

func init() {
	Register("mbtiles", func(rawURL string) (Source, error) {
		_, path, _ := strings.Cut(rawURL, "://")
		return OpenMBTiles(path)
	})
}

// MBTiles reads tiles from an MBTiles file, the sqlite container used
// for offline tile sets. Rows are stored in TMS order, so the Y axis
// is flipped on lookup. Tile data compressed with gzip or zlib is
// inflated transparently.
type MBTiles struct {
	name        string
	db          *sql.DB
	attribution string
}

// OpenMBTiles opens the MBTiles file at path. The metadata table is
// read for the set's name and attribution; a missing metadata table is
// tolerated.
func OpenMBTiles(path string) (*MBTiles, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}

	s := &MBTiles{name: strings.TrimSuffix(filepath.Base(path), ".mbtiles"), db: db}

	rows, err := db.Query(`SELECT name, value FROM metadata`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var k, v string
			if rows.Scan(&k, &v) != nil {
				continue
			}
			switch k {
			case "name":
				if v != "" {
					s.name = v
				}
			case "attribution":
				s.attribution = v
			}
		}
	}
	return s, nil
}

// Name implements Source.
func (s *MBTiles) Name() string { return s.name }

// Attribution returns the attribution notice from the file's metadata,
// empty when none is recorded.
func (s *MBTiles) Attribution() string { return s.attribution }

// Fetch implements Source.
func (s *MBTiles) Fetch(ctx context.Context, c tile.Coord) ([]byte, error) {
	// MBTiles rows count from the south edge; tile coordinates from
	// the north.
	row := (uint32(1) << c.Z) - 1 - c.Y

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		c.Z, c.X, row,
	).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c)
	case err != nil:
		return nil, fmt.Errorf("source: %s: read %s: %w", s.name, c, err)
	}
	return maybeInflate(data)
}

// Close releases the underlying database handle.
func (s *MBTiles) Close() error {
	return s.db.Close()
}
