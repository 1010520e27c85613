package ingest

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/parentmap/ingest-cli/internal/fetcher"
	"github.com/parentmap/ingest-cli/internal/model"
)

// ParseFunc reads one raw source file into normalized places.
type ParseFunc func(r io.Reader) ([]model.Place, error)

// FileSource adapts a file-backed parser to the Source interface. A missing
// or unreadable file fails this source only.
type FileSource struct {
	name  string
	path  string
	parse ParseFunc
}

func NewFileSource(name, path string, parse ParseFunc) *FileSource {
	return &FileSource{name: name, path: path, parse: parse}
}

func (s *FileSource) Name() string { return s.name }

func (s *FileSource) Parse(ctx context.Context) ([]model.Place, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open source file %s", s.path)
	}
	defer f.Close()
	return s.parse(f)
}

// FetchSource downloads a remote source document before parsing. Configured
// source locations may point at http(s) or ftp mirrors of the open-data
// files instead of local copies; the fetcher dispatches on the URL scheme.
type FetchSource struct {
	name  string
	url   string
	fetch fetcher.Fetcher
	parse ParseFunc
}

func NewFetchSource(name, url string, fetch fetcher.Fetcher, parse ParseFunc) *FetchSource {
	return &FetchSource{name: name, url: url, fetch: fetch, parse: parse}
}

func (s *FetchSource) Name() string { return s.name }

func (s *FetchSource) Parse(ctx context.Context) ([]model.Place, error) {
	rc, err := s.fetch.Download(ctx, s.url)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: download source %s", s.url)
	}
	defer rc.Close()
	return s.parse(rc)
}

// FuncSource adapts a collection closure to the Source interface, deferring
// the work until the engine reaches the parsing state.
type FuncSource struct {
	name    string
	collect func(ctx context.Context) ([]model.Place, error)
}

func NewFuncSource(name string, collect func(ctx context.Context) ([]model.Place, error)) *FuncSource {
	return &FuncSource{name: name, collect: collect}
}

func (s *FuncSource) Name() string { return s.name }

func (s *FuncSource) Parse(ctx context.Context) ([]model.Place, error) {
	return s.collect(ctx)
}

// StaticSource wraps an already-collected place list, such as the output of
// the two-phase park fetch or the PDF pipeline.
type StaticSource struct {
	name   string
	places []model.Place
	err    error
}

func NewStaticSource(name string, places []model.Place, err error) *StaticSource {
	return &StaticSource{name: name, places: places, err: err}
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Parse(context.Context) ([]model.Place, error) {
	return s.places, s.err
}
