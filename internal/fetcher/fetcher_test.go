package fetcher

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markerFetcher records which transport served a download.
type markerFetcher struct {
	marker string
}

func (m *markerFetcher) Download(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.marker)), nil
}

func (m *markerFetcher) DownloadToFile(context.Context, string, string) (int64, error) {
	return int64(len(m.marker)), nil
}

func TestDispatcher_RoutesByScheme(t *testing.T) {
	d := &Dispatcher{
		HTTP: &markerFetcher{marker: "http"},
		FTP:  &markerFetcher{marker: "ftp"},
	}

	tests := []struct {
		url  string
		want string
	}{
		{"https://example.tw/file.json", "http"},
		{"http://example.tw/file.json", "http"},
		{"ftp://example.tw/file.json", "ftp"},
		{"FTP://example.tw/file.json", "ftp"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			rc, err := d.Download(context.Background(), tt.url)
			require.NoError(t, err)
			defer rc.Close()

			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestDispatcher_UnsupportedScheme(t *testing.T) {
	d := NewDispatcher(HTTPOptions{}, FTPOptions{})

	_, err := d.Download(context.Background(), "gopher://example.tw/file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}
