// Package batch reads consume-once batch files of assignment records.
package batch

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ProcessorOptions configures line processing behavior.
type ProcessorOptions struct {
	// SkipInvalid controls whether to skip invalid lines or return an error.
	SkipInvalid bool
}

// LineError reports a line that failed to parse.
type LineError struct {
	Line   int
	Text   string
	Reason error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Reason)
}

func (e *LineError) Unwrap() error {
	return e.Reason
}

// ProcessLines reads a text file and parses each non-blank line into type T.
// Lines are trimmed before being handed to the parser.
func ProcessLines[T any](filename string, parser func(string) (T, error), opts ProcessorOptions) ([]T, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []T

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		item, err := parser(line)
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid line", "line", lineNo, "error", err)
				continue
			}
			return nil, &LineError{Line: lineNo, Text: line, Reason: err}
		}

		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return items, nil
}

// Consume truncates the batch file so its records are not processed twice.
func Consume(filename string) error {
	if err := os.Truncate(filename, 0); err != nil {
		return fmt.Errorf("failed to truncate batch file: %w", err)
	}
	return nil
}
