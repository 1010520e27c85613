package fetcher

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray decodes a JSON array of objects into a slice. Source files
// are bounded (thousands of rows at most), so decoding is eager.
func DecodeJSONArray[T any](r io.Reader) ([]T, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "json: read opening token")
	}

	delim, ok := tok.(json.Delim)
	if !ok || delim != '[' {
		return nil, eris.Errorf("json: expected '[', got %v", tok)
	}

	var items []T
	for decoder.More() {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return items, eris.Wrap(err, "json: decode element")
		}
		items = append(items, item)
	}

	if _, err := decoder.Token(); err != nil && err != io.EOF {
		return items, eris.Wrap(err, "json: read closing token")
	}

	return items, nil
}

// DecodeJSONObject decodes a single JSON object from a reader.
func DecodeJSONObject[T any](r io.Reader) (*T, error) {
	var obj T
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "json: decode object")
	}
	return &obj, nil
}
