package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/parentmap/ingest-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local runs
// without a Postgres instance. There is no geography column; latitude and
// longitude are stored as plain REALs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS regions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sub_regions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	region_id  INTEGER NOT NULL REFERENCES regions(id),
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (region_id, name)
);

CREATE TABLE IF NOT EXISTS places (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	address       TEXT,
	region_id     INTEGER REFERENCES regions(id),
	sub_region_id INTEGER REFERENCES sub_regions(id),
	latitude      REAL NOT NULL,
	longitude     REAL NOT NULL,
	link          TEXT,
	facilities    TEXT NOT NULL DEFAULT '[]',
	metadata      TEXT NOT NULL DEFAULT '{}',
	source        TEXT NOT NULL,
	source_id     TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (source, source_id)
);

CREATE INDEX IF NOT EXISTS idx_places_region ON places(region_id);
CREATE INDEX IF NOT EXISTS idx_places_source ON places(source);

CREATE TABLE IF NOT EXISTS geocode_pending (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	address       TEXT,
	region_id     INTEGER REFERENCES regions(id),
	sub_region_id INTEGER REFERENCES sub_regions(id),
	metadata      TEXT NOT NULL DEFAULT '{}',
	source        TEXT NOT NULL,
	source_id     TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (source, source_id)
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return eris.Wrap(s.db.Close(), "sqlite: close")
}

func (s *SQLiteStore) UpsertRegion(ctx context.Context, name string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO regions (name) VALUES (?) ON CONFLICT (name) DO UPDATE SET name = excluded.name RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: upsert region %s", name)
	}
	return id, nil
}

func (s *SQLiteStore) UpsertSubRegion(ctx context.Context, regionID int, name string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO sub_regions (region_id, name) VALUES (?, ?) ON CONFLICT (region_id, name) DO UPDATE SET name = excluded.name RETURNING id`,
		regionID, name,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: upsert sub-region %s", name)
	}
	return id, nil
}

func (s *SQLiteStore) PlaceExists(ctx context.Context, source, sourceID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM places WHERE source = ? AND source_id = ?)`,
		source, sourceID,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: place exists %s/%s", source, sourceID)
	}
	return exists, nil
}

func (s *SQLiteStore) InsertPlace(ctx context.Context, row PlaceRow) error {
	p := row.Place
	if !p.HasCoordinates() {
		return eris.Errorf("sqlite: place %s has no coordinates", p.Name)
	}
	facilitiesJSON, metadataJSON, err := marshalPlaceJSON(p)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO places
		   (id, name, address, region_id, sub_region_id, latitude, longitude, link, facilities, metadata, source, source_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (source, source_id) DO NOTHING`,
		uuid.New().String(), p.Name, p.Address, nullableID(row.RegionID), nullableID(row.SubRegionID),
		*p.Latitude, *p.Longitude, p.Link, string(facilitiesJSON), string(metadataJSON),
		p.Source, p.SourceID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert place %s", p.Name)
	}
	return nil
}

func (s *SQLiteStore) InsertPendingGeocode(ctx context.Context, row PlaceRow) (bool, error) {
	p := row.Place
	_, metadataJSON, err := marshalPlaceJSON(p)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO geocode_pending
		   (id, name, address, region_id, sub_region_id, metadata, source, source_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (source, source_id) DO NOTHING`,
		uuid.New().String(), p.Name, p.Address, nullableID(row.RegionID), nullableID(row.SubRegionID),
		string(metadataJSON), p.Source, p.SourceID,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert pending geocode %s", p.Name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: pending geocode rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) AddPlace(ctx context.Context, req AddPlaceRequest) (model.Place, error) {
	return addPlace(ctx, s, req)
}

func nullableID(id *int) any {
	if id == nil {
		return nil
	}
	return *id
}
