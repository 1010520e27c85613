package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFTPURL(t *testing.T) {
	addr, remote, err := splitFTPURL("ftp://data.example.gov.tw/opendata/toilets.json")
	require.NoError(t, err)
	assert.Equal(t, "data.example.gov.tw:21", addr)
	assert.Equal(t, "/opendata/toilets.json", remote)
}

func TestSplitFTPURL_ExplicitPort(t *testing.T) {
	addr, remote, err := splitFTPURL("ftp://mirror.example.tw:2121/pub/file.csv")
	require.NoError(t, err)
	assert.Equal(t, "mirror.example.tw:2121", addr)
	assert.Equal(t, "/pub/file.csv", remote)
}

func TestSplitFTPURL_Rejects(t *testing.T) {
	_, _, err := splitFTPURL("https://example.tw/file.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected ftp scheme")

	_, _, err = splitFTPURL("ftp://example.tw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty path")
}

func TestNewFTPFetcher_AnonymousDefault(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, "anonymous", f.opts.User)
	assert.Equal(t, "anonymous@", f.opts.Password)
	assert.NotZero(t, f.opts.Timeout)

	f = NewFTPFetcher(FTPOptions{User: "opendata", Password: "secret"})
	assert.Equal(t, "opendata", f.opts.User)
	assert.Equal(t, "secret", f.opts.Password)
}
