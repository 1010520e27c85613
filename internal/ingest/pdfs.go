package ingest

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/parentmap/ingest-cli/internal/address"
	"github.com/parentmap/ingest-cli/internal/extract"
	"github.com/parentmap/ingest-cli/internal/fetcher"
	"github.com/parentmap/ingest-cli/internal/model"
	"github.com/parentmap/ingest-cli/internal/pdf"
)

// PDFPlaceSpec names one school playground document: where its PDF lives and
// the address the school publishes.
type PDFPlaceSpec struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	URL     string `json:"url"`
}

// PDFCollector turns downloaded playground PDFs into places. Documents are
// cached on disk keyed by the sanitized school name, text is extracted with
// the PDF tool, and the facility heuristics run over the text. Embedded
// photos found by the byte-level scan are saved under ImageDir and attached
// to facilities in document order.
type PDFCollector struct {
	Fetcher  fetcher.Fetcher
	Cache    *fetcher.Cache
	Text     pdf.Extractor
	Extract  *extract.Extractor
	ImageDir string
}

// Collect processes every spec; a failed document is skipped with a warning,
// it does not abort the batch.
func (c *PDFCollector) Collect(ctx context.Context, specs []PDFPlaceSpec) ([]model.Place, error) {
	log := zap.L().With(zap.String("source", model.SourceSchoolPDF))

	var places []model.Place
	for _, spec := range specs {
		p, err := c.collectOne(ctx, spec)
		if err != nil {
			log.Warn("ingest: school PDF skipped",
				zap.String("name", spec.Name),
				zap.Error(err))
			continue
		}
		places = append(places, p)
	}
	return places, nil
}

func (c *PDFCollector) collectOne(ctx context.Context, spec PDFPlaceSpec) (model.Place, error) {
	if spec.Name == "" || spec.URL == "" {
		return model.Place{}, eris.New("ingest: PDF spec needs a name and URL")
	}

	path, cached, err := c.Cache.Fetch(ctx, c.Fetcher, spec.URL, spec.Name, ".pdf")
	if err != nil {
		return model.Place{}, eris.Wrapf(err, "ingest: fetch PDF %s", spec.URL)
	}
	if cached {
		zap.L().Debug("ingest: PDF cache hit", zap.String("name", spec.Name))
	}

	text, err := c.Text.ExtractText(ctx, path)
	if err != nil {
		return model.Place{}, eris.Wrapf(err, "ingest: extract text from %s", path)
	}

	facilities := c.Extract.Facilities(extract.Input{Text: text})

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Place{}, eris.Wrapf(err, "ingest: read PDF %s", path)
	}
	images := extract.ScanJPEG(raw)
	if err := c.attachImages(spec.Name, facilities, images); err != nil {
		return model.Place{}, eris.Wrapf(err, "ingest: save images for %s", spec.Name)
	}

	res := address.Resolve(spec.Address, "", "")

	return model.Place{
		Name:       spec.Name,
		Address:    res.Remainder,
		Region:     address.NormalizeRegion(res.Region),
		SubRegion:  address.NormalizeSubRegion(res.SubRegion),
		Link:       spec.URL,
		Facilities: facilities,
		Metadata: map[string]any{
			"originalAddress": spec.Address,
			"embeddedImages":  len(images),
			"documentPath":    path,
		},
		Source:   model.SourceSchoolPDF,
		SourceID: fmt.Sprintf("school_pdf_%s", spec.Name),
	}, nil
}

// attachImages writes each embedded photo under ImageDir/<school>/ and pairs
// it with the facility at the same document position. Images beyond the
// facility count are saved with an index name; facilities beyond the image
// count keep an empty ref. A no-op when ImageDir is unset or nothing matched.
func (c *PDFCollector) attachImages(school string, facilities []model.Facility, images [][]byte) error {
	if c.ImageDir == "" || len(images) == 0 {
		return nil
	}

	schoolDir := fetcher.SanitizeName(school)
	dir := filepath.Join(c.ImageDir, schoolDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "ingest: create image dir %s", dir)
	}

	for i, img := range images {
		var filename string
		if i < len(facilities) {
			filename = fetcher.SanitizeName(facilities[i].EquipmentName) + ".jpg"
		} else {
			filename = fmt.Sprintf("image_%d.jpg", i)
		}

		if err := os.WriteFile(filepath.Join(dir, filename), img, 0o644); err != nil {
			return eris.Wrapf(err, "ingest: write image %s", filename)
		}
		if i < len(facilities) {
			facilities[i].ImageRef = path.Join("image", schoolDir, filename)
		}
	}
	return nil
}
