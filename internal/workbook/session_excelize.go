//go:build !noxlsx

package workbook

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lepinkainen/pokexcel/internal/assignment"
	"github.com/lepinkainen/pokexcel/internal/errors"
	"github.com/xuri/excelize/v2"
)

const backendAvailable = true

// maxSheets bounds how many sheets a single write may append to a workbook.
const maxSheets = 1024

// Session holds the workbooks opened while applying assignments.
type Session struct {
	visible bool
	logger  *slog.Logger
	books   map[string]*excelize.File
	order   []string
}

func openSession(visible bool, logger *slog.Logger) (*Session, error) {
	// A file-based backend has no window; visibility is only reported.
	logger.Debug("Opened spreadsheet session", "backend", "excelize", "visible", visible)
	return &Session{
		visible: visible,
		logger:  logger,
		books:   make(map[string]*excelize.File),
	}, nil
}

// Visible reports the visibility requested when the session was opened.
func (s *Session) Visible() bool {
	return s != nil && s.visible
}

// Write applies every row and saves each workbook it touched. Rows are
// applied in order; the first failure stops the write and nothing is saved.
func (s *Session) Write(rows []Row) error {
	if s == nil {
		return errors.NewSinkWriteError(BackendName, stdErrors.New("session is not open"))
	}

	var touched []string
	seen := make(map[string]bool)

	for _, row := range rows {
		sheet, cell, value, err := assignment.ParseToken(row.Assignment)
		if err != nil {
			return errors.NewSinkWriteError(BackendName, err)
		}

		f, err := s.book(row.Path)
		if err != nil {
			return errors.NewSinkWriteError(BackendName, err)
		}

		name, err := sheetByIndex(f, sheet)
		if err != nil {
			return errors.NewSinkWriteError(BackendName, fmt.Errorf("%s: %w", row.Path, err))
		}

		if err := setCell(f, name, cell, value); err != nil {
			return errors.NewSinkWriteError(BackendName, fmt.Errorf("%s!%s: %w", name, cell, err))
		}

		if !seen[row.Path] {
			seen[row.Path] = true
			touched = append(touched, row.Path)
		}
	}

	for _, path := range touched {
		if err := s.books[path].SaveAs(path); err != nil {
			return errors.NewSinkWriteError(BackendName, fmt.Errorf("failed to save %s: %w", path, err))
		}
		s.logger.Debug("Saved workbook", "path", path)
	}

	return nil
}

// Close releases every workbook opened by the session.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	for _, path := range s.order {
		if err := s.books[path].Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", path, err))
		}
	}
	s.books = make(map[string]*excelize.File)
	s.order = nil

	return stdErrors.Join(errs...)
}

// book returns the open workbook for path, opening it or creating a new one.
func (s *Session) book(path string) (*excelize.File, error) {
	if f, ok := s.books[path]; ok {
		return f, nil
	}

	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
	} else if stdErrors.Is(err, os.ErrNotExist) {
		s.logger.Info("Workbook not found, creating", "path", path)
		f = excelize.NewFile()
	} else {
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	s.books[path] = f
	s.order = append(s.order, path)
	return f, nil
}

// sheetByIndex resolves a 1-based sheet number to a sheet name, appending
// sheets when the workbook has fewer.
func sheetByIndex(f *excelize.File, sheet string) (string, error) {
	idx, err := strconv.Atoi(sheet)
	if err != nil || idx < 1 {
		return "", fmt.Errorf("invalid sheet number %q", sheet)
	}
	if idx > maxSheets {
		return "", fmt.Errorf("sheet number %d exceeds limit of %d", idx, maxSheets)
	}

	list := f.GetSheetList()
	for len(list) < idx {
		name := fmt.Sprintf("Sheet%d", len(list)+1)
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
		grown := f.GetSheetList()
		if len(grown) == len(list) {
			return "", fmt.Errorf("cannot add sheet %s: name already taken", name)
		}
		list = grown
	}

	return list[idx-1], nil
}

// setCell writes value the way a spreadsheet user would type it: a leading
// '=' is a formula, numbers and booleans keep their type, anything else is text.
// Numeric typing follows strconv.ParseFloat, so "007" is stored as 7 and
// "1_000" as 1000; leading zeros are not preserved.
func setCell(f *excelize.File, sheet, cell, value string) error {
	if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
		return err
	}

	if strings.HasPrefix(value, "=") && len(value) > 1 {
		return f.SetCellFormula(sheet, cell, value[1:])
	}

	if n, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return f.SetCellValue(sheet, cell, n)
	}

	switch strings.ToLower(value) {
	case "true":
		return f.SetCellValue(sheet, cell, true)
	case "false":
		return f.SetCellValue(sheet, cell, false)
	}

	return f.SetCellValue(sheet, cell, value)
}
