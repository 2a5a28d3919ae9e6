// Package assignment parses cell-assignment instructions from the command line
// and from batch files.
package assignment

// Mode selects the sink that assignments are written to.
type Mode string

const (
	// ModeExcel writes assignments into spreadsheet workbooks.
	ModeExcel Mode = "Excel"
	// ModeSQL appends assignments to a SQLite row store.
	ModeSQL Mode = "SQL"
)

// ParseMode reports whether s is a mode keyword.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeExcel, ModeSQL:
		return Mode(s), true
	}
	return "", false
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := ParseMode(string(m))
	return ok
}

// Assignment is one normalized instruction: write Value to Cell on sheet
// number Sheet of the file at Path.
type Assignment struct {
	Path  string
	Sheet string
	Cell  string
	Value string
}

// Token formats the assignment back into the /sheet:cell=value form.
func (a Assignment) Token() string {
	return "/" + a.Sheet + ":" + a.Cell + "=" + a.Value
}

// Request is everything the command line asked for.
type Request struct {
	Mode Mode
	// Visible is only meaningful in Excel mode (/S on the command line).
	Visible     bool
	Assignments []Assignment
	// BatchFile is set when the assignments came from --csv.
	BatchFile string
}
