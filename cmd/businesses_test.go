package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/tribly-hq/dashboard-cli/internal/model"
)

func TestWriteBusinessesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "businesses.xlsx")

	err := writeBusinessesXLSX(path, []model.Business{
		{Name: "Cafe Noir", PlaceID: "place-1", Category: "Cafe", City: "Mumbai", Status: "active"},
		{Name: "Bistro Uno", Category: "Restaurant", City: "Pune"},
	})
	require.NoError(t, err)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Businesses", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Cafe Noir", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "place-1", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "Bistro Uno", sheet.Rows[2].Cells[0].String())
}

func TestWriteBusinessesXLSX_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	require.NoError(t, writeBusinessesXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1) // header only
}
