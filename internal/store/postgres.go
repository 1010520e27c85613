package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/parentmap/ingest-cli/internal/db"
	"github.com/parentmap/ingest-cli/internal/model"
)

// PostgresStore implements Store using pgxpool. The geog column carries an
// EWKB point (SRID 4326) so the query tier's spatial index works directly on
// inserted rows.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection; the
// ingestion loop hits these once per record.
var preparedStatements = map[string]string{
	"upsert_region":     `INSERT INTO regions (name) VALUES ($1) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`,
	"upsert_sub_region": `INSERT INTO sub_regions (region_id, name) VALUES ($1, $2) ON CONFLICT (region_id, name) DO UPDATE SET name = EXCLUDED.name RETURNING id`,
	"place_exists":      `SELECT EXISTS(SELECT 1 FROM places WHERE source = $1 AND source_id = $2)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access (e.g., the boundary loader's COPY path).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS regions (
	id         SERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sub_regions (
	id         SERIAL PRIMARY KEY,
	region_id  INTEGER NOT NULL REFERENCES regions(id),
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (region_id, name)
);

CREATE TABLE IF NOT EXISTS places (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL,
	address       TEXT,
	region_id     INTEGER REFERENCES regions(id),
	sub_region_id INTEGER REFERENCES sub_regions(id),
	latitude      DOUBLE PRECISION NOT NULL,
	longitude     DOUBLE PRECISION NOT NULL,
	geog          GEOGRAPHY(POINT, 4326) NOT NULL,
	link          TEXT,
	facilities    JSONB NOT NULL DEFAULT '[]',
	metadata      JSONB NOT NULL DEFAULT '{}',
	source        TEXT NOT NULL,
	source_id     TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, source_id)
);

CREATE INDEX IF NOT EXISTS idx_places_geog ON places USING GIST (geog);
CREATE INDEX IF NOT EXISTS idx_places_region ON places(region_id);
CREATE INDEX IF NOT EXISTS idx_places_source ON places(source);

CREATE TABLE IF NOT EXISTS geocode_pending (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL,
	address       TEXT,
	region_id     INTEGER REFERENCES regions(id),
	sub_region_id INTEGER REFERENCES sub_regions(id),
	metadata      JSONB NOT NULL DEFAULT '{}',
	source        TEXT NOT NULL,
	source_id     TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, source_id)
);

CREATE TABLE IF NOT EXISTS sub_region_boundaries (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	region_name   TEXT NOT NULL,
	sub_region_name TEXT NOT NULL,
	boundary      GEOGRAPHY(MULTIPOLYGON, 4326) NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (region_name, sub_region_name)
);

CREATE INDEX IF NOT EXISTS idx_sub_region_boundaries_geog ON sub_region_boundaries USING GIST (boundary);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertRegion(ctx context.Context, name string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO regions (name) VALUES ($1) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: upsert region %s", name)
	}
	return id, nil
}

func (s *PostgresStore) UpsertSubRegion(ctx context.Context, regionID int, name string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sub_regions (region_id, name) VALUES ($1, $2) ON CONFLICT (region_id, name) DO UPDATE SET name = EXCLUDED.name RETURNING id`,
		regionID, name,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: upsert sub-region %s", name)
	}
	return id, nil
}

func (s *PostgresStore) PlaceExists(ctx context.Context, source, sourceID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM places WHERE source = $1 AND source_id = $2)`,
		source, sourceID,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: place exists %s/%s", source, sourceID)
	}
	return exists, nil
}

func (s *PostgresStore) InsertPlace(ctx context.Context, row PlaceRow) error {
	p := row.Place
	if !p.HasCoordinates() {
		return eris.Errorf("postgres: place %s has no coordinates", p.Name)
	}

	geog, err := pointEWKB(*p.Latitude, *p.Longitude)
	if err != nil {
		return eris.Wrapf(err, "postgres: encode point for %s", p.Name)
	}
	facilitiesJSON, metadataJSON, err := marshalPlaceJSON(p)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO places
		   (id, name, address, region_id, sub_region_id, latitude, longitude, geog, link, facilities, metadata, source, source_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (source, source_id) DO NOTHING`,
		uuid.New().String(), p.Name, p.Address, row.RegionID, row.SubRegionID,
		*p.Latitude, *p.Longitude, geog, p.Link, facilitiesJSON, metadataJSON,
		p.Source, p.SourceID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert place %s", p.Name)
	}
	return nil
}

func (s *PostgresStore) InsertPendingGeocode(ctx context.Context, row PlaceRow) (bool, error) {
	p := row.Place
	_, metadataJSON, err := marshalPlaceJSON(p)
	if err != nil {
		return false, err
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO geocode_pending
		   (id, name, address, region_id, sub_region_id, metadata, source, source_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source, source_id) DO NOTHING`,
		uuid.New().String(), p.Name, p.Address, row.RegionID, row.SubRegionID,
		metadataJSON, p.Source, p.SourceID,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: insert pending geocode %s", p.Name)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) AddPlace(ctx context.Context, req AddPlaceRequest) (model.Place, error) {
	return addPlace(ctx, s, req)
}

// pointEWKB encodes a lat/lng pair as an EWKB point in X=lng, Y=lat order.
func pointEWKB(lat, lng float64) ([]byte, error) {
	g := geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(4326)
	return ewkb.Marshal(g, ewkb.NDR)
}

func marshalPlaceJSON(p model.Place) (facilities, metadata []byte, err error) {
	fs := p.Facilities
	if fs == nil {
		fs = []model.Facility{}
	}
	facilities, err = json.Marshal(fs)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "postgres: marshal facilities for %s", p.Name)
	}

	md := p.Metadata
	if md == nil {
		md = map[string]any{}
	}
	metadata, err = json.Marshal(md)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "postgres: marshal metadata for %s", p.Name)
	}
	return facilities, metadata, nil
}
