// Package storage reads and writes vendormap dataset files: single-file
// sqlite databases holding the three raw ingestion sources. A dataset is a
// portable artifact produced by `vendormap ingest` and consumed by serve,
// export, and the TUI; the engine itself never touches the database.
package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"vendormap/internal/ingest"
)

type Dataset struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Dataset, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}

	return &Dataset{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS order_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vendor_code TEXT NOT NULL,
		vendor_name TEXT,
		total_order_count TEXT,
		organic_order_count TEXT,
		non_organic_order_count TEXT,
		organic_to_non_organic_ratio TEXT,
		avg_daily_orders TEXT,
		UNIQUE(vendor_code)
	);
	CREATE TABLE IF NOT EXISTS geo_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vendor_code TEXT NOT NULL,
		vendor_name TEXT,
		latitude TEXT,
		longitude TEXT,
		UNIQUE(vendor_code)
	);
	CREATE TABLE IF NOT EXISTS district_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		wkt TEXT NOT NULL,
		UNIQUE(name)
	);
	CREATE INDEX IF NOT EXISTS idx_order_rows_code ON order_rows(vendor_code);
	CREATE INDEX IF NOT EXISTS idx_geo_rows_code ON geo_rows(vendor_code);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// InsertOrderRows stores raw order rows, ignoring duplicate vendor codes.
// Returns the number actually inserted.
func (d *Dataset) InsertOrderRows(rows []ingest.Row) (int, error) {
	cols := []string{"vendor_code", "vendor_name", "total_order_count",
		"organic_order_count", "non_organic_order_count",
		"organic_to_non_organic_ratio", "avg_daily_orders"}
	return d.insertRows("order_rows", cols, rows)
}

// InsertGeoRows stores raw geo rows, ignoring duplicate vendor codes.
func (d *Dataset) InsertGeoRows(rows []ingest.Row) (int, error) {
	cols := []string{"vendor_code", "vendor_name", "latitude", "longitude"}
	return d.insertRows("geo_rows", cols, rows)
}

// InsertDistrictRows stores raw district rows, ignoring duplicate names.
// Accepts the WKT cell under either "WKT" or "wkt".
func (d *Dataset) InsertDistrictRows(rows []ingest.Row) (int, error) {
	normalized := make([]ingest.Row, 0, len(rows))
	for _, row := range rows {
		text := row["WKT"]
		if text == "" {
			text = row["wkt"]
		}
		name := row["name"]
		if name == "" {
			name = row["Name"]
		}
		normalized = append(normalized, ingest.Row{"name": name, "wkt": text})
	}
	return d.insertRows("district_rows", []string{"name", "wkt"}, normalized)
}

func (d *Dataset) insertRows(table string, cols []string, rows []ingest.Row) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	placeholders := "?"
	colList := cols[0]
	for _, c := range cols[1:] {
		placeholders += ",?"
		colList += "," + c
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)", table, colList, placeholders))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range rows {
		args := make([]any, len(cols))
		for i, c := range cols {
			args[i] = row[c]
		}
		res, err := stmt.Exec(args...)
		if err != nil {
			continue
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}
	return inserted, nil
}

// LoadRows reads the three raw sources back out of the dataset, in insertion
// order, ready to hand to the store build.
func (d *Dataset) LoadRows() (orderRows, geoRows, districtRows []ingest.Row, err error) {
	orderRows, err = d.selectRows("order_rows", []string{"vendor_code", "vendor_name",
		"total_order_count", "organic_order_count", "non_organic_order_count",
		"organic_to_non_organic_ratio", "avg_daily_orders"})
	if err != nil {
		return nil, nil, nil, err
	}
	geoRows, err = d.selectRows("geo_rows", []string{"vendor_code", "vendor_name", "latitude", "longitude"})
	if err != nil {
		return nil, nil, nil, err
	}
	districtRows, err = d.selectRows("district_rows", []string{"name", "wkt"})
	if err != nil {
		return nil, nil, nil, err
	}
	return orderRows, geoRows, districtRows, nil
}

func (d *Dataset) selectRows(table string, cols []string) ([]ingest.Row, error) {
	colList := cols[0]
	for _, c := range cols[1:] {
		colList += "," + c
	}
	rows, err := d.db.Query(fmt.Sprintf("SELECT %s FROM %s ORDER BY id", colList, table))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var out []ingest.Row
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			continue
		}
		row := make(ingest.Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i].String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Counts returns the row counts of the three tables.
func (d *Dataset) Counts() (orders, geo, districts int, err error) {
	if err = d.db.QueryRow("SELECT COUNT(*) FROM order_rows").Scan(&orders); err != nil {
		return
	}
	if err = d.db.QueryRow("SELECT COUNT(*) FROM geo_rows").Scan(&geo); err != nil {
		return
	}
	err = d.db.QueryRow("SELECT COUNT(*) FROM district_rows").Scan(&districts)
	return
}

func (d *Dataset) Close() error {
	return d.db.Close()
}
