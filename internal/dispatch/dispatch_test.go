package dispatch

import (
	"bytes"
	"database/sql"
	stdErrors "errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/lepinkainen/pokexcel/internal/assignment"
	"github.com/lepinkainen/pokexcel/internal/errors"
	"github.com/lepinkainen/pokexcel/internal/testutil"
	"github.com/lepinkainen/pokexcel/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type fakeSession struct {
	rows     []workbook.Row
	writeErr error
	closed   int
}

func (f *fakeSession) Write(rows []workbook.Row) error {
	f.rows = append(f.rows, rows...)
	return f.writeErr
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

type fakeRecorder struct {
	calls []assignment.Assignment
	fail  map[string]bool
	panic bool
}

func (f *fakeRecorder) Record(dbPath, sheet, cell, value string) bool {
	if f.panic {
		panic("driver exploded")
	}
	f.calls = append(f.calls, assignment.Assignment{Path: dbPath, Sheet: sheet, Cell: cell, Value: value})
	return !f.fail[cell]
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	d := &Dispatcher{
		Stdout:       &stdout,
		Stderr:       &stderr,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Capabilities: Capabilities{Spreadsheet: true},
		WorkDir:      "/work",
	}
	return d, &stdout, &stderr
}

func TestRun_SpreadsheetReformatsRows(t *testing.T) {
	d, stdout, stderr := newTestDispatcher(t)
	session := &fakeSession{}
	var gotVisible bool
	d.OpenSpreadsheet = func(visible bool) (SpreadsheetSession, error) {
		gotVisible = visible
		return session, nil
	}

	err := d.Run(&assignment.Request{
		Mode:    assignment.ModeExcel,
		Visible: true,
		Assignments: []assignment.Assignment{
			{Path: "/work/book.xlsx", Sheet: "1", Cell: "A6", Value: "456"},
			{Path: "/other/x.xlsx", Sheet: "2", Cell: "B1", Value: "a=b"},
		},
	})
	require.NoError(t, err)

	assert.True(t, gotVisible)
	assert.Equal(t, []workbook.Row{
		{Path: "/work/book.xlsx", Assignment: "/1:A6=456"},
		{Path: "/other/x.xlsx", Assignment: "/2:B1=a=b"},
	}, session.rows)
	assert.Equal(t, 1, session.closed)
	assert.Equal(t,
		"[OK] Excel: book.xlsx sheet=1 cell=A6 value=456\n[OK] Excel: /other/x.xlsx sheet=2 cell=B1 value=a=b\n",
		stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_SpreadsheetWriteFailureStillCloses(t *testing.T) {
	d, stdout, stderr := newTestDispatcher(t)
	session := &fakeSession{writeErr: stdErrors.New("backend crashed")}
	d.OpenSpreadsheet = func(bool) (SpreadsheetSession, error) { return session, nil }

	err := d.Run(&assignment.Request{
		Mode:        assignment.ModeExcel,
		Assignments: []assignment.Assignment{{Path: "/work/b.xlsx", Sheet: "1", Cell: "A1", Value: "1"}},
	})
	require.Error(t, err)

	assert.True(t, errors.IsSinkWriteError(err))
	assert.Equal(t, 1, session.closed)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "[ERROR] Excel write: backend crashed")
}

func TestRun_SpreadsheetOpenFailure(t *testing.T) {
	d, _, stderr := newTestDispatcher(t)
	d.OpenSpreadsheet = func(bool) (SpreadsheetSession, error) {
		return nil, stdErrors.New("no automation server")
	}

	err := d.Run(&assignment.Request{
		Mode:        assignment.ModeExcel,
		Assignments: []assignment.Assignment{{Path: "/work/b.xlsx", Sheet: "1", Cell: "A1", Value: "1"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsSinkWriteError(err))
	assert.Contains(t, stderr.String(), "no automation server")
}

func TestRun_SpreadsheetCapabilityMissing(t *testing.T) {
	d, _, stderr := newTestDispatcher(t)
	d.Capabilities.Spreadsheet = false
	d.OpenSpreadsheet = func(bool) (SpreadsheetSession, error) {
		t.Fatal("spreadsheet must not be opened without the capability")
		return nil, nil
	}

	err := d.Run(&assignment.Request{
		Mode:        assignment.ModeExcel,
		Assignments: []assignment.Assignment{{Path: "/work/b.xlsx", Sheet: "1", Cell: "A1", Value: "1"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsDependencyMissingError(err))
	assert.Contains(t, stderr.String(), "spreadsheet backend is not available")
}

func TestCheckAvailable(t *testing.T) {
	tests := []struct {
		name        string
		spreadsheet bool
		mode        assignment.Mode
		wantErr     bool
	}{
		{name: "excel with spreadsheet", spreadsheet: true, mode: assignment.ModeExcel},
		{name: "excel without spreadsheet", spreadsheet: false, mode: assignment.ModeExcel, wantErr: true},
		{name: "sql without spreadsheet", spreadsheet: false, mode: assignment.ModeSQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, stdout, stderr := newTestDispatcher(t)
			d.Capabilities.Spreadsheet = tt.spreadsheet

			err := d.CheckAvailable(tt.mode)
			assert.Empty(t, stdout.String())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsDependencyMissingError(err))
				assert.Contains(t, stderr.String(), "[ERROR] spreadsheet backend is not available")
				return
			}
			require.NoError(t, err)
			assert.Empty(t, stderr.String())
		})
	}
}

func TestRun_RowStore(t *testing.T) {
	d, stdout, stderr := newTestDispatcher(t)
	rec := &fakeRecorder{fail: map[string]bool{"B2": true}}
	d.Rows = rec

	err := d.Run(&assignment.Request{
		Mode: assignment.ModeSQL,
		Assignments: []assignment.Assignment{
			{Path: "/work/test.sqlite", Sheet: "1", Cell: "A1", Value: "100"},
			{Path: "/work/test.sqlite", Sheet: "1", Cell: "B2", Value: "lost"},
			{Path: "/work/test.sqlite", Sheet: "2", Cell: "C3", Value: "x"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, rec.calls, 3)
	assert.Equal(t,
		"[OK] SQL: test.sqlite sheet=1 cell=A1 value=100\n[OK] SQL: test.sqlite sheet=2 cell=C3 value=x\n",
		stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_RowStorePanic(t *testing.T) {
	d, _, stderr := newTestDispatcher(t)
	d.Rows = &fakeRecorder{panic: true}

	err := d.Run(&assignment.Request{
		Mode:        assignment.ModeSQL,
		Assignments: []assignment.Assignment{{Path: "a.db", Sheet: "1", Cell: "A1", Value: "1"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsSinkWriteError(err))
	assert.Contains(t, stderr.String(), "[ERROR] SQL write: driver exploded")
}

func TestRun_UnknownMode(t *testing.T) {
	d, _, stderr := newTestDispatcher(t)

	err := d.Run(&assignment.Request{Mode: "CSV"})
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "unknown mode")
}

func TestRun_EmptyRequest(t *testing.T) {
	d, stdout, _ := newTestDispatcher(t)
	d.OpenSpreadsheet = func(bool) (SpreadsheetSession, error) {
		t.Fatal("no session needed for an empty batch")
		return nil, nil
	}
	d.Rows = &fakeRecorder{panic: true}

	require.NoError(t, d.Run(&assignment.Request{Mode: assignment.ModeExcel}))
	require.NoError(t, d.Run(&assignment.Request{Mode: assignment.ModeSQL}))
	assert.Empty(t, stdout.String())
}

func TestDisplayPath(t *testing.T) {
	d := &Dispatcher{WorkDir: filepath.FromSlash("/work")}

	assert.Equal(t, "a.db", d.displayPath(filepath.FromSlash("/work/a.db")))
	assert.Equal(t, filepath.FromSlash("sub/a.db"), d.displayPath(filepath.FromSlash("/work/sub/a.db")))
	assert.Equal(t, filepath.FromSlash("/elsewhere/a.db"), d.displayPath(filepath.FromSlash("/elsewhere/a.db")))
	assert.Equal(t, "relative.db", d.displayPath("relative.db"))
}

func TestNew_RowStoreEndToEnd(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Chdir()

	var stdout, stderr bytes.Buffer
	d := New(&stdout, &stderr, slog.New(slog.NewTextHandler(io.Discard, nil)), Capabilities{})

	req, err := assignment.Parse([]string{"SQL", "test.sqlite", "/1:A1=100"}, assignment.Options{})
	require.NoError(t, err)
	require.NoError(t, d.Run(req))

	assert.Equal(t, "[OK] SQL: test.sqlite sheet=1 cell=A1 value=100\n", stdout.String())

	db, err := sql.Open("sqlite", env.Path("test.sqlite"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var id, sheet int
	var cell, value string
	require.NoError(t, db.QueryRow("SELECT id, sheet, cell, value FROM zapis").Scan(&id, &sheet, &cell, &value))
	assert.Equal(t, []any{1, 1, "A1", "100"}, []any{id, sheet, cell, value})
}
