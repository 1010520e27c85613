package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/parentmap/ingest-cli/internal/boundary"
)

var (
	boundaryShapefile  string
	boundaryGeographic bool
)

var boundaryCmd = &cobra.Command{
	Use:   "boundary",
	Short: "Load district boundaries from a shapefile into PostGIS",
	Long: `Reads the national district boundary shapefile and upserts one multipolygon
per district. Requires the postgres store; the boundary table backs
point-in-polygon matching for places whose address did not resolve.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Store.Driver != "postgres" {
			return eris.Errorf("boundary load requires the postgres store, not %q", cfg.Store.Driver)
		}

		path := boundaryShapefile
		if path == "" {
			path = cfg.Sources.BoundaryShapefile
		}
		if path == "" {
			return eris.New("no shapefile given: set --shapefile or sources.boundary_shapefile")
		}

		pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "boundary: connect")
		}
		defer pool.Close()

		l := &boundary.Loader{Pool: pool, Geographic: boundaryGeographic}
		n, err := l.Load(ctx, path)
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d district boundaries\n", n)
		return nil
	},
}

func init() {
	boundaryCmd.Flags().StringVar(&boundaryShapefile, "shapefile", "", "district shapefile path (default from config)")
	boundaryCmd.Flags().BoolVar(&boundaryGeographic, "geographic", false, "shapefile is already in lat/lng, skip the projected inversion")
	rootCmd.AddCommand(boundaryCmd)
}
