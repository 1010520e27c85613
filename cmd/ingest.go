package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parentmap/ingest-cli/internal/fetcher"
	"github.com/parentmap/ingest-cli/internal/ingest"
	"github.com/parentmap/ingest-cli/internal/model"
	"github.com/parentmap/ingest-cli/internal/parser"
	"github.com/parentmap/ingest-cli/internal/pdf"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one or more ingestion sources",
	Long: `Each subcommand ingests one upstream dataset: parse, resolve regions,
deduplicate on (source, source id), and persist. Every run prints a per-source
summary line with created and skipped counts.`,
}

// runSources drives the engine over the given source builders and prints
// each summary. Any failed source makes the command exit non-zero, after
// the remaining sources have run.
func runSources(cmd *cobra.Command, build func(ctx context.Context) ([]ingest.Source, error)) error {
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

	sources, err := build(ctx)
	if err != nil {
		return err
	}

	eng := ingest.NewEngine(st)
	failed := 0
	for _, src := range sources {
		summary, err := eng.Run(ctx, src)
		if err != nil {
			failed++
			zap.L().Error("ingest: source failed",
				zap.String("source", src.Name()),
				zap.Error(err))
		}
		fmt.Println(summary.String())
	}

	if failed > 0 {
		return eris.Errorf("ingest: %d of %d sources failed", failed, len(sources))
	}
	return nil
}

// dataSource reads a configured source location: a local path opens the file
// directly, an http(s) or ftp URL streams through the scheme dispatcher.
func dataSource(name, location string, parse ingest.ParseFunc) ingest.Source {
	if isRemote(location) {
		return ingest.NewFetchSource(name, location, newFetcher(), parse)
	}
	return ingest.NewFileSource(name, location, parse)
}

func isRemote(location string) bool {
	for _, scheme := range []string{"http://", "https://", "ftp://"} {
		if strings.HasPrefix(strings.ToLower(location), scheme) {
			return true
		}
	}
	return false
}

func toiletSources(context.Context) ([]ingest.Source, error) {
	return []ingest.Source{
		dataSource(model.SourceToilets, cfg.Sources.ToiletsJSON, parser.ParseToilets),
	}, nil
}

// nursingSource picks the reader by file extension; county offices publish
// the registry as CSV or as an XLSX workbook depending on the year.
func nursingSource(path string, sourceType parser.NursingSourceType) ingest.Source {
	name := model.SourceNursingMandatory
	if sourceType == parser.NursingVoluntary {
		name = model.SourceNursingVoluntary
	}

	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ingest.NewFuncSource(name, func(context.Context) ([]model.Place, error) {
			return parser.ParseNursingRoomsXLSX(path, sourceType)
		})
	}
	return dataSource(name, path, func(r io.Reader) ([]model.Place, error) {
		return parser.ParseNursingRooms(r, sourceType)
	})
}

func nursingSources(nursingType string) func(context.Context) ([]ingest.Source, error) {
	return func(context.Context) ([]ingest.Source, error) {
		switch nursingType {
		case "mandatory":
			return []ingest.Source{nursingSource(cfg.Sources.NursingMandatoryCSV, parser.NursingMandatory)}, nil
		case "voluntary":
			return []ingest.Source{nursingSource(cfg.Sources.NursingVoluntaryCSV, parser.NursingVoluntary)}, nil
		case "both":
			return []ingest.Source{
				nursingSource(cfg.Sources.NursingMandatoryCSV, parser.NursingMandatory),
				nursingSource(cfg.Sources.NursingVoluntaryCSV, parser.NursingVoluntary),
			}, nil
		default:
			return nil, eris.Errorf("unknown nursing type %q (mandatory, voluntary, both)", nursingType)
		}
	}
}

func playgroundSources(context.Context) ([]ingest.Source, error) {
	return []ingest.Source{
		dataSource(model.SourcePlaygrounds, cfg.Sources.PlaygroundsCSV, parser.ParsePlaygroundsCSV),
		dataSource(model.SourceTaipeiPlaygrounds, cfg.Sources.TaipeiPlaygroundJSON, parser.ParseTaipeiPlaygrounds),
	}, nil
}

func parkSources(context.Context) ([]ingest.Source, error) {
	ex, err := newExtractor()
	if err != nil {
		return nil, err
	}
	collector := &ingest.ParksCollector{
		Fetcher:     newFetcher(),
		Extract:     ex,
		ListURLs:    cfg.Sources.ParkListURLs,
		DetailLimit: cfg.Ingest.DetailLimit,
	}
	return []ingest.Source{
		ingest.NewFuncSource(model.SourceNewTaipeiParks, collector.Collect),
	}, nil
}

func schoolPDFSources(context.Context) ([]ingest.Source, error) {
	ex, err := newExtractor()
	if err != nil {
		return nil, err
	}
	cache, err := fetcher.NewCache(cfg.Fetch.CacheDir)
	if err != nil {
		return nil, err
	}
	collector := &ingest.PDFCollector{
		Fetcher:  newFetcher(),
		Cache:    cache,
		Text:     pdf.NewPdfToText(cfg.Ingest.PdfToTextPath),
		Extract:  ex,
		ImageDir: cfg.Ingest.ImageDir,
	}

	return []ingest.Source{
		ingest.NewFuncSource(model.SourceSchoolPDF, func(ctx context.Context) ([]model.Place, error) {
			f, err := os.Open(cfg.Sources.SchoolPDFJSON)
			if err != nil {
				return nil, eris.Wrapf(err, "open PDF spec list %s", cfg.Sources.SchoolPDFJSON)
			}
			defer f.Close()

			specs, err := fetcher.DecodeJSONArray[ingest.PDFPlaceSpec](f)
			if err != nil {
				return nil, eris.Wrap(err, "decode PDF spec list")
			}
			return collector.Collect(ctx, specs)
		}),
	}, nil
}

func allSources(ctx context.Context) ([]ingest.Source, error) {
	var sources []ingest.Source
	for _, build := range []func(context.Context) ([]ingest.Source, error){
		toiletSources,
		nursingSources("both"),
		playgroundSources,
		parkSources,
		schoolPDFSources,
	} {
		batch, err := build(ctx)
		if err != nil {
			return nil, err
		}
		sources = append(sources, batch...)
	}
	return sources, nil
}

func init() {
	var nursingType string

	toiletsCmd := &cobra.Command{
		Use:   "toilets",
		Short: "Ingest the public toilet registry (family stalls only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSources(cmd, toiletSources)
		},
	}

	nursingCmd := &cobra.Command{
		Use:   "nursing",
		Short: "Ingest the nursing room registries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSources(cmd, nursingSources(nursingType))
		},
	}
	nursingCmd.Flags().StringVar(&nursingType, "type", "both", "registry to ingest: mandatory, voluntary, both")

	playgroundsCmd := &cobra.Command{
		Use:   "playgrounds",
		Short: "Ingest the inclusive playground datasets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSources(cmd, playgroundSources)
		},
	}

	parksCmd := &cobra.Command{
		Use:   "parks",
		Short: "Scrape and ingest the New Taipei park directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSources(cmd, parkSources)
		},
	}

	schoolPDFCmd := &cobra.Command{
		Use:   "school-pdfs",
		Short: "Ingest school playground inspection PDFs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSources(cmd, schoolPDFSources)
		},
	}

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Run every ingestion source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSources(cmd, allSources)
		},
	}

	ingestCmd.AddCommand(toiletsCmd, nursingCmd, playgroundsCmd, parksCmd, schoolPDFCmd, allCmd)
	rootCmd.AddCommand(ingestCmd)
}
