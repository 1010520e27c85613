package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRecord struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func TestDecodeJSONArray(t *testing.T) {
	input := `[{"name":"甲","type":"親子廁所"},{"name":"乙","type":"無障礙廁所"}]`
	items, err := DecodeJSONArray[sampleRecord](strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "甲", items[0].Name)
	assert.Equal(t, "無障礙廁所", items[1].Type)
}

func TestDecodeJSONArray_Empty(t *testing.T) {
	items, err := DecodeJSONArray[sampleRecord](strings.NewReader("[]"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeJSONArray_NotAnArray(t *testing.T) {
	_, err := DecodeJSONArray[sampleRecord](strings.NewReader(`{"name":"x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '['")
}

func TestDecodeJSONArray_MalformedElement(t *testing.T) {
	input := `[{"name":"甲"},{"name":}]`
	items, err := DecodeJSONArray[sampleRecord](strings.NewReader(input))
	require.Error(t, err)
	assert.Len(t, items, 1)
}

func TestDecodeJSONObject(t *testing.T) {
	obj, err := DecodeJSONObject[sampleRecord](strings.NewReader(`{"name":"丙"}`))
	require.NoError(t, err)
	assert.Equal(t, "丙", obj.Name)
}
