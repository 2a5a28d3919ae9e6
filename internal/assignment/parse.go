package assignment

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/pokexcel/internal/batch"
	"github.com/lepinkainen/pokexcel/internal/errors"
)

const (
	flagHidden  = "/H"
	flagVisible = "/S"

	batchHint = `Each line must look like: ["book.xlsx", "1", "A1", "100"]`
)

// Options controls how Parse interprets the command line.
type Options struct {
	// BatchFile is the --csv argument; empty for a single assignment.
	BatchFile string
	// DefaultMode is used when the first argument is not a mode keyword.
	DefaultMode Mode
	// Batch controls how BatchFile is read.
	Batch BatchOptions
}

// BatchOptions controls ReadBatch.
type BatchOptions struct {
	// Truncate empties the batch file after a successful read.
	Truncate bool
	// SkipInvalid drops lines that do not parse instead of rejecting the file.
	SkipInvalid bool
}

// ResolveMode returns the mode selected by args and the arguments that follow
// the mode keyword. Without a keyword def is used, falling back to Excel.
func ResolveMode(args []string, def Mode) (Mode, []string) {
	if len(args) > 0 {
		if m, ok := ParseMode(args[0]); ok {
			return m, args[1:]
		}
	}
	if def == "" {
		return ModeExcel, args
	}
	return def, args
}

// Parse turns positional command-line arguments into a Request.
//
// Accepted shapes:
//
//	[Excel|SQL] <target> [/H|/S] /<sheet>:<cell>=<value>
//	[Excel|SQL] --csv <batch_file>
//
// Incomplete single-assignment input returns errors.ErrHelpRequested.
func Parse(args []string, opts Options) (*Request, error) {
	mode, args := ResolveMode(args, opts.DefaultMode)

	if opts.BatchFile != "" {
		if len(args) != 0 {
			return nil, errors.NewUsageError("", "--csv takes exactly one argument, got extra %q", args)
		}
		rows, err := ReadBatch(opts.BatchFile, opts.Batch)
		if err != nil {
			return nil, err
		}
		return &Request{Mode: mode, Assignments: rows, BatchFile: opts.BatchFile}, nil
	}

	if len(args) == 0 {
		return nil, errors.ErrHelpRequested
	}
	target := args[0]
	idx := 1

	visible := false
	if mode == ModeExcel && idx < len(args) && (args[idx] == flagHidden || args[idx] == flagVisible) {
		visible = args[idx] == flagVisible
		idx++
	}

	if idx >= len(args) {
		return nil, errors.ErrHelpRequested
	}
	if extra := args[idx+1:]; len(extra) > 0 {
		return nil, errors.NewUsageError(TokenHint, "unexpected arguments after assignment: %q", extra)
	}

	sheet, cell, value, err := ParseToken(args[idx])
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target path %q: %w", target, err)
	}

	return &Request{
		Mode:    mode,
		Visible: visible,
		Assignments: []Assignment{{
			Path:  absPath,
			Sheet: sheet,
			Cell:  cell,
			Value: value,
		}},
	}, nil
}

// ReadBatch reads every record of a batch file. With opts.Truncate the file
// is emptied after all lines parsed successfully; on any error it is left untouched.
// With opts.SkipInvalid broken lines are logged and dropped.
func ReadBatch(path string, opts BatchOptions) ([]Assignment, error) {
	if _, err := os.Stat(path); err != nil {
		if stdErrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewUsageError("", "batch file not found: %s", path)
		}
		return nil, errors.NewUsageError("", "batch file not readable: %s: %v", path, err)
	}

	rows, err := batch.ProcessLines(path, parseRecord, batch.ProcessorOptions{SkipInvalid: opts.SkipInvalid})
	if err != nil {
		return nil, errors.NewUsageError(batchHint, "invalid batch file %s: %v", path, err)
	}

	if opts.Truncate {
		if err := batch.Consume(path); err != nil {
			return nil, err
		}
	}

	slog.Debug("Read batch file", "path", path, "rows", len(rows), "truncated", opts.Truncate)
	return rows, nil
}

func parseRecord(line string) (Assignment, error) {
	fields, err := batch.ParseRecord(line)
	if err != nil {
		return Assignment{}, err
	}
	a := Assignment{Path: fields[0], Sheet: fields[1], Cell: fields[2], Value: fields[3]}
	if a.Path == "" {
		return Assignment{}, stdErrors.New("path is empty")
	}
	if verr := validate(a.Sheet, a.Cell); verr != nil {
		return Assignment{}, verr
	}
	return a, nil
}
