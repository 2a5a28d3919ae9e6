package datastore

import (
	"log/slog"
	"strconv"

	"github.com/lepinkainen/pokexcel/internal/errors"
)

// AssignmentTable is the table that receives one row per assignment.
const AssignmentTable = "zapis"

// AssignmentSchema creates AssignmentTable on first use.
const AssignmentSchema = `CREATE TABLE IF NOT EXISTS zapis (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sheet INTEGER,
	cell TEXT,
	value TEXT
)`

// WriteAssignment appends one row to the store at dbPath, creating the
// database and table when needed. The connection is always closed.
func WriteAssignment(dbPath, sheet, cell, value string) (err error) {
	sheetNum, err := strconv.ParseInt(sheet, 10, 64)
	if err != nil {
		return errors.NewRowStoreError("convert sheet", dbPath, err)
	}

	store := NewSQLiteStore(dbPath)
	if err := store.Connect(); err != nil {
		return errors.NewRowStoreError("connect", dbPath, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = errors.NewRowStoreError("close", dbPath, cerr)
		}
	}()

	if err := store.CreateTable(AssignmentSchema); err != nil {
		return errors.NewRowStoreError("create table", dbPath, err)
	}

	id, err := store.Insert(AssignmentTable, map[string]any{
		"sheet": sheetNum,
		"cell":  cell,
		"value": value,
	})
	if err != nil {
		return errors.NewRowStoreError("insert", dbPath, err)
	}

	slog.Debug("Stored assignment", "db", dbPath, "id", id, "sheet", sheetNum, "cell", cell)
	return nil
}

// Recorder writes assignments to the row store and swallows failures.
type Recorder struct {
	Logger *slog.Logger
	// Write defaults to WriteAssignment.
	Write func(dbPath, sheet, cell, value string) error
}

// Record stores one assignment. Errors are logged, not returned, so a single
// failed row does not stop a batch; the result reports whether it was stored.
func (r *Recorder) Record(dbPath, sheet, cell, value string) bool {
	write := r.Write
	if write == nil {
		write = WriteAssignment
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := write(dbPath, sheet, cell, value); err != nil {
		logger.Error("Failed to write to database", "db", dbPath, "error", err)
		return false
	}
	return true
}
