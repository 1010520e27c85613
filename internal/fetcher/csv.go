package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
	TrimSpace  bool
	Big5       bool // decode legacy Big5 exports instead of UTF-8
}

// DecodeBOM wraps r so that a leading UTF-8 byte-order mark is stripped.
// Government CSV exports are written "utf-8-sig"; the BOM otherwise ends up
// glued to the first header name.
func DecodeBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// DecodeBig5 wraps r with a Big5 decoder for legacy encodings still used by
// some county-level publishers.
func DecodeBig5(r io.Reader) io.Reader {
	return transform.NewReader(r, traditionalchinese.Big5.NewDecoder())
}

// ReadCSV reads an entire CSV document, returning the header row and the data
// rows. Input is decoded per opts (BOM-stripped UTF-8 by default), fields may
// vary in count, and RFC4180 quoting applies.
func ReadCSV(r io.Reader, opts CSVOptions) (header []string, rows [][]string, err error) {
	if opts.Big5 {
		r = DecodeBig5(r)
	} else {
		r = DecodeBOM(r)
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	first := true
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return header, rows, eris.Wrap(readErr, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if first {
			first = false
			header = record
			continue
		}
		rows = append(rows, record)
	}

	return header, rows, nil
}

// ColumnIndex returns the index of the first header cell matching any of the
// given names, or -1. Header variants across dataset vintages make a single
// fixed name unreliable.
func ColumnIndex(header []string, names ...string) int {
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

// Field returns row[idx] trimmed, or "" when idx is out of range.
func Field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
