package ingest

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentmap/ingest-cli/internal/model"
)

type stubFetcher struct {
	body string
	err  error
	urls []string
}

func (s *stubFetcher) Download(_ context.Context, url string) (io.ReadCloser, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func (s *stubFetcher) DownloadToFile(context.Context, string, string) (int64, error) {
	return 0, eris.New("not used")
}

func TestFetchSource_StreamsRemoteDocument(t *testing.T) {
	f := &stubFetcher{body: "raw-document"}
	src := NewFetchSource("公廁建檔", "ftp://data.example.gov.tw/toilets.json", f,
		func(r io.Reader) ([]model.Place, error) {
			body, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "raw-document", string(body))
			return []model.Place{{Name: "測試公廁"}}, nil
		})

	places, err := src.Parse(context.Background())
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "測試公廁", places[0].Name)
	assert.Equal(t, []string{"ftp://data.example.gov.tw/toilets.json"}, f.urls)
}

func TestFetchSource_DownloadFailure(t *testing.T) {
	f := &stubFetcher{err: eris.New("connection refused")}
	src := NewFetchSource("公廁建檔", "ftp://data.example.gov.tw/toilets.json", f,
		func(io.Reader) ([]model.Place, error) {
			t.Fatal("parse must not run on a failed download")
			return nil, nil
		})

	_, err := src.Parse(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download source")
}
