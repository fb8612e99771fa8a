package export_test

import (
	"bytes"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadProducts(t *testing.T) {
	products := []model.Product{
		{ID: "p1", Code: "PS5", Title: "PS5 Console", Category: "consoles", Price: 499.99, Stock: 3, Status: true},
		{ID: "p2", Code: "PAD", Title: "Gamepad", Category: "accessories", Price: 59, Stock: 0, Description: "wireless"},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteProducts(&buf, products))

	rows, skipped, err := export.ReadProducts(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, "PS5", rows[0].Code)
	assert.Equal(t, "PS5 Console", rows[0].Title)
	assert.InDelta(t, 499.99, rows[0].Price, 0.001)
	assert.Equal(t, 3, rows[0].Stock)
	assert.True(t, rows[0].Status)

	assert.Equal(t, "wireless", rows[1].Description)
	assert.False(t, rows[1].Status)
}

func TestReadProducts_EmptySheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteProducts(&buf, nil))

	_, _, err := export.ReadProducts(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, export.ErrEmptySheet)
}
