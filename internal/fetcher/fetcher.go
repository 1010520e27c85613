// Package fetcher downloads and decodes open-data sources over HTTP and FTP:
// JSON arrays, BOM-prefixed CSV, XLSX workbooks, XML listings, and PDF
// documents cached to a local directory.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Dispatcher routes downloads to an HTTP or FTP transport by URL scheme.
// Open-data mirrors expose the same registry files over both.
type Dispatcher struct {
	HTTP Fetcher
	FTP  Fetcher
}

// NewDispatcher creates a Dispatcher with default transports.
func NewDispatcher(httpOpts HTTPOptions, ftpOpts FTPOptions) *Dispatcher {
	return &Dispatcher{
		HTTP: NewHTTPFetcher(httpOpts),
		FTP:  NewFTPFetcher(ftpOpts),
	}
}

func (d *Dispatcher) forURL(rawURL string) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return d.HTTP, nil
	case "ftp":
		return d.FTP, nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q in %s", u.Scheme, rawURL)
	}
}

// Download fetches the URL using the transport matching its scheme.
func (d *Dispatcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	f, err := d.forURL(rawURL)
	if err != nil {
		return nil, err
	}
	return f.Download(ctx, rawURL)
}

// DownloadToFile fetches the URL to a local path using the transport matching
// its scheme.
func (d *Dispatcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	f, err := d.forURL(rawURL)
	if err != nil {
		return 0, err
	}
	return f.DownloadToFile(ctx, rawURL, path)
}
