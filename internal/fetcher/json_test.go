package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestDecodeJSONArray(t *testing.T) {
	input := `[{"name":"a","value":1},{"name":"b","value":2}]`

	items, err := DecodeJSONArray[testItem](strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, testItem{Name: "a", Value: 1}, items[0])
	assert.Equal(t, testItem{Name: "b", Value: 2}, items[1])
}

func TestDecodeJSONArray_Empty(t *testing.T) {
	items, err := DecodeJSONArray[testItem](strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeJSONArray_EmptyInput(t *testing.T) {
	items, err := DecodeJSONArray[testItem](strings.NewReader(``))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeJSONArray_NotArray(t *testing.T) {
	_, err := DecodeJSONArray[testItem](strings.NewReader(`{"name":"a"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '['")
}

func TestDecodeJSONArray_MalformedElement(t *testing.T) {
	input := `[{"name":"a","value":1},{"name":}]`

	items, err := DecodeJSONArray[testItem](strings.NewReader(input))
	require.Error(t, err)
	assert.Len(t, items, 1)
}
