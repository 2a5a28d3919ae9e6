package assignment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lepinkainen/pokexcel/internal/errors"
)

// TokenHint describes the expected shape of an assignment token.
const TokenHint = "Expected form: 1:A6=456 (sheet:cell=value)"

// ParseToken splits an assignment token such as "/1:A6=456" into its parts.
// Leading slashes are ignored. The sheet must be decimal digits and the cell
// must start with a letter; the value may be empty and may itself contain
// ':' or '='.
func ParseToken(raw string) (sheet, cell, value string, err error) {
	token := strings.TrimLeft(raw, "/")

	sheet, rest, ok := strings.Cut(token, ":")
	if !ok {
		return "", "", "", errors.NewUsageError(TokenHint, "invalid assignment %q: missing ':'", token)
	}
	cell, value, ok = strings.Cut(rest, "=")
	if !ok {
		return "", "", "", errors.NewUsageError(TokenHint, "invalid assignment %q: missing '='", token)
	}

	if verr := validate(sheet, cell); verr != nil {
		return "", "", "", errors.NewUsageError(TokenHint, "invalid assignment %q: %s", token, verr.Message)
	}

	return sheet, cell, value, nil
}

// validate checks the sheet and cell components shared by tokens and batch records.
func validate(sheet, cell string) *errors.UsageError {
	if !isDigits(sheet) {
		return errors.NewUsageError(TokenHint, "sheet %q is not a number", sheet)
	}
	first, _ := utf8.DecodeRuneInString(cell)
	if cell == "" || !unicode.IsLetter(first) {
		return errors.NewUsageError(TokenHint, "cell %q must start with a letter", cell)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
