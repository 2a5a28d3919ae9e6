//go:build noxlsx

package workbook

import (
	"log/slog"

	"github.com/lepinkainen/pokexcel/internal/errors"
)

const backendAvailable = false

// Session is a placeholder when no spreadsheet backend is compiled in.
type Session struct{}

func openSession(bool, *slog.Logger) (*Session, error) {
	return nil, errors.NewDependencyMissingError("spreadsheet")
}

// Visible always reports false without a backend.
func (s *Session) Visible() bool { return false }

// Write always fails without a backend.
func (s *Session) Write([]Row) error {
	return errors.NewSinkWriteError(BackendName, errors.NewDependencyMissingError("spreadsheet"))
}

// Close is a no-op without a backend.
func (s *Session) Close() error { return nil }
