// Package workbook applies assignment tokens to spreadsheet workbooks.
//
// The excelize backend is compiled in by default. Building with the noxlsx
// tag leaves the package without a backend; Available then reports false and
// Open fails with a DependencyMissingError.
package workbook

import (
	"log/slog"

	"github.com/lepinkainen/pokexcel/internal/errors"
)

// BackendName identifies the spreadsheet sink in diagnostics.
const BackendName = "Excel"

// Row asks for one assignment token, such as "/1:A1=100", to be applied to
// the workbook at Path.
type Row struct {
	Path       string
	Assignment string
}

// Available reports whether a spreadsheet backend is compiled in.
func Available() bool {
	return backendAvailable
}

// Open starts a spreadsheet session. The session must be closed with Close,
// which is safe to call on a nil session.
func Open(visible bool, logger *slog.Logger) (*Session, error) {
	if !Available() {
		return nil, errors.NewDependencyMissingError("spreadsheet")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return openSession(visible, logger)
}
