package fetcher

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeXMLElements decodes every XML element with the given local name into
// a slice. Used for the national land-survey town-list API, whose responses
// occasionally declare a non-UTF-8 charset.
func DecodeXMLElements[T any](ctx context.Context, r io.Reader, elementName string) ([]T, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var items []T
	for {
		if ctx.Err() != nil {
			return items, eris.Wrap(ctx.Err(), "xml: context cancelled")
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return items, eris.Wrap(err, "xml: read token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elementName {
			continue
		}

		var item T
		if err := decoder.DecodeElement(&item, &se); err != nil {
			return items, eris.Wrap(err, "xml: decode element")
		}
		items = append(items, item)
	}
}
