package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parentmap/ingest-cli/internal/ingest"
)

var townsCmd = &cobra.Command{
	Use:   "towns",
	Short: "Seed regions and districts from the national land survey",
	Long: `Fetches the NLSC district listing for every city code and upserts the
canonical region and sub-region names, so ingestion runs resolve known
divisions instead of creating them on demand.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		imp := &ingest.TownImporter{
			Fetcher: newFetcher(),
			Engine:  ingest.NewEngine(st),
		}
		n, err := imp.Import(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d districts\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(townsCmd)
}
