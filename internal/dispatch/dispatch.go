// Package dispatch routes parsed assignments to the spreadsheet or row-store sink.
package dispatch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lepinkainen/pokexcel/internal/assignment"
	"github.com/lepinkainen/pokexcel/internal/datastore"
	"github.com/lepinkainen/pokexcel/internal/errors"
	"github.com/lepinkainen/pokexcel/internal/workbook"
)

// SpreadsheetSession is an open spreadsheet sink.
type SpreadsheetSession interface {
	Write(rows []workbook.Row) error
	Close() error
}

// RowRecorder appends assignments to a row store, reporting whether each was stored.
type RowRecorder interface {
	Record(dbPath, sheet, cell, value string) bool
}

// Capabilities lists the sinks usable in this process, resolved at startup.
type Capabilities struct {
	Spreadsheet bool
}

// Dispatcher applies a Request to the sink selected by its mode.
// Every failure is reported on Stderr before Run returns it.
type Dispatcher struct {
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	Capabilities Capabilities

	OpenSpreadsheet func(visible bool) (SpreadsheetSession, error)
	Rows            RowRecorder

	// WorkDir is used to print paths relative to where the command was run.
	WorkDir string
}

// New returns a Dispatcher wired to the real sinks.
func New(stdout, stderr io.Writer, logger *slog.Logger, caps Capabilities) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	wd, err := os.Getwd()
	if err != nil {
		logger.Debug("Cannot determine working directory", "error", err)
	}

	return &Dispatcher{
		Stdout:       stdout,
		Stderr:       stderr,
		Logger:       logger,
		Capabilities: caps,
		OpenSpreadsheet: func(visible bool) (SpreadsheetSession, error) {
			s, err := workbook.Open(visible, logger)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Rows:    &datastore.Recorder{Logger: logger},
		WorkDir: wd,
	}
}

// Run executes the request.
func (d *Dispatcher) Run(req *assignment.Request) error {
	d.logger().Info("Dispatching", "mode", req.Mode, "visible", req.Visible, "rows", len(req.Assignments))

	switch req.Mode {
	case assignment.ModeExcel:
		return d.runSpreadsheet(req)
	case assignment.ModeSQL:
		return d.runRowStore(req)
	default:
		err := fmt.Errorf("unknown mode: %q", req.Mode)
		d.errorf("[ERROR] %v", err)
		return err
	}
}

// CheckAvailable reports on Stderr and returns an error when the sink for
// mode cannot be used in this process. The row store is always available.
func (d *Dispatcher) CheckAvailable(mode assignment.Mode) error {
	if mode == assignment.ModeExcel && !d.Capabilities.Spreadsheet {
		err := errors.NewDependencyMissingError("spreadsheet")
		d.errorf("[ERROR] %v (rebuild without the noxlsx tag and set spreadsheet.enabled)", err)
		return err
	}
	return nil
}

func (d *Dispatcher) runSpreadsheet(req *assignment.Request) (err error) {
	if err := d.CheckAvailable(req.Mode); err != nil {
		return err
	}
	if len(req.Assignments) == 0 {
		d.logger().Warn("No assignments to write")
		return nil
	}

	session, err := d.OpenSpreadsheet(req.Visible)
	defer func() {
		if session == nil {
			return
		}
		if cerr := session.Close(); cerr != nil {
			d.logger().Warn("Failed to release spreadsheet resources", "error", cerr)
		}
	}()
	if err != nil {
		return d.spreadsheetFailed(err)
	}

	rows := make([]workbook.Row, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		rows = append(rows, workbook.Row{Path: a.Path, Assignment: a.Token()})
	}

	if err := session.Write(rows); err != nil {
		return d.spreadsheetFailed(err)
	}

	for _, a := range req.Assignments {
		d.printf("[OK] Excel: %s sheet=%s cell=%s value=%s", d.displayPath(a.Path), a.Sheet, a.Cell, a.Value)
	}
	return nil
}

func (d *Dispatcher) spreadsheetFailed(err error) error {
	if !errors.IsSinkWriteError(err) && !errors.IsDependencyMissingError(err) {
		err = errors.NewSinkWriteError(workbook.BackendName, err)
	}
	d.errorf("[ERROR] %v", err)
	return err
}

func (d *Dispatcher) runRowStore(req *assignment.Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewSinkWriteError("SQL", fmt.Errorf("%v", r))
			d.errorf("[ERROR] %v", err)
		}
	}()

	if len(req.Assignments) == 0 {
		d.logger().Warn("No assignments to write")
		return nil
	}

	stored := 0
	for _, a := range req.Assignments {
		if !d.Rows.Record(a.Path, a.Sheet, a.Cell, a.Value) {
			continue
		}
		stored++
		d.printf("[OK] SQL: %s sheet=%s cell=%s value=%s", d.displayPath(a.Path), a.Sheet, a.Cell, a.Value)
	}

	if stored < len(req.Assignments) {
		d.logger().Warn("Some rows were not stored", "stored", stored, "total", len(req.Assignments))
	}
	return nil
}

// displayPath shortens paths below the working directory.
func (d *Dispatcher) displayPath(p string) string {
	if d.WorkDir == "" || !filepath.IsAbs(p) {
		return p
	}
	rel, err := filepath.Rel(d.WorkDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Dispatcher) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.Stdout, format+"\n", args...)
}

func (d *Dispatcher) errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.Stderr, format+"\n", args...)
}
