package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendormap/internal/ingest"
)

func openTemp(t *testing.T) *Dataset {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "vendormap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestInsertAndLoadRoundTrip(t *testing.T) {
	d := openTemp(t)

	n, err := d.InsertOrderRows([]ingest.Row{
		{"vendor_code": "V001", "vendor_name": "Cafe Naderi", "total_order_count": "1250"},
		{"vendor_code": "V002", "vendor_name": "Dizi House", "total_order_count": "890"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = d.InsertGeoRows([]ingest.Row{
		{"vendor_code": "V001", "latitude": "35.6892", "longitude": "51.3890"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = d.InsertDistrictRows([]ingest.Row{
		{"name": "Central", "WKT": "POLYGON ((51.3 35.6, 51.4 35.6, 51.4 35.7, 51.3 35.6))"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	orders, geo, districts, err := d.LoadRows()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Len(t, geo, 1)
	require.Len(t, districts, 1)

	assert.Equal(t, "V001", orders[0]["vendor_code"])
	assert.Equal(t, "1250", orders[0]["total_order_count"])
	assert.Equal(t, "35.6892", geo[0]["latitude"])
	assert.Equal(t, "Central", districts[0]["name"])
	assert.Contains(t, districts[0]["wkt"], "POLYGON")
}

func TestInsertIgnoresDuplicateCodes(t *testing.T) {
	d := openTemp(t)

	n, err := d.InsertOrderRows([]ingest.Row{
		{"vendor_code": "V001", "total_order_count": "1"},
		{"vendor_code": "V001", "total_order_count": "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "second row with the same code is ignored")

	orders, _, _, err := d.LoadRows()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "1", orders[0]["total_order_count"], "first occurrence wins")
}

func TestCounts(t *testing.T) {
	d := openTemp(t)

	_, err := d.InsertOrderRows([]ingest.Row{{"vendor_code": "V001"}})
	require.NoError(t, err)
	_, err = d.InsertGeoRows([]ingest.Row{{"vendor_code": "V001"}, {"vendor_code": "V002"}})
	require.NoError(t, err)

	orders, geo, districts, err := d.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, orders)
	assert.Equal(t, 2, geo)
	assert.Equal(t, 0, districts)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendormap.db")

	d, err := Open(path)
	require.NoError(t, err)
	_, err = d.InsertOrderRows([]ingest.Row{{"vendor_code": "V001"}})
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = Open(path)
	require.NoError(t, err)
	defer d.Close()

	orders, _, _, err := d.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, orders)
}

func TestLoadRowsEmptyDataset(t *testing.T) {
	d := openTemp(t)
	orders, geo, districts, err := d.LoadRows()
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, geo)
	assert.Empty(t, districts)
}
