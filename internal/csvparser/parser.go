// =============================================================================
// Payables Dashboard - CSV Parser Module
// =============================================================================
//
// This module turns a published CSV snapshot into a header row plus raw data
// rows. It handles:
//   - A UTF-8 byte-order mark at the start of the document
//   - Legacy single-byte code pages (Windows-1256 for Arabic exports)
//   - Different delimiters (comma, semicolon, tab, pipe)
//   - Ragged rows and sloppy quoting
//
// Header cells are returned as written; resolving them to canonical fields is
// the schema package's job. Values are not cleaned here either.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmpty is returned when the document has no header row.
var ErrEmpty = errors.New("csv document is empty")

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how the document is decoded and split.
type Settings struct {
	// Delimiter is ",", ";", "tab" or "pipe". Empty means comma.
	Delimiter string

	// Encoding is UTF-8 (default), Windows-1256, Windows-1252 or ISO-8859-1.
	Encoding string
}

var encodings = map[string]encoding.Encoding{
	"windows-1256": charmap.Windows1256,
	"cp1256":       charmap.Windows1256,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
}

// KnownEncoding reports whether name is a supported encoding.
func KnownEncoding(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "utf-8" || key == "utf8" {
		return true
	}
	_, ok := encodings[key]
	return ok
}

// DelimiterRune maps a configured delimiter name to the separator rune.
func DelimiterRune(name string) (rune, error) {
	switch name {
	case "", ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter %q", name)
}

// =============================================================================
// TABLE
// =============================================================================

// Row is one non-empty data row.
type Row struct {
	// Number is the 1-based data row number (header excluded). Skipped blank
	// rows still consume a number so numbers match the spreadsheet.
	Number int

	Cells []string
}

// Table is a parsed document.
type Table struct {
	Headers []string
	Rows    []Row

	// Source names where the table came from (URL or path) for logs.
	Source string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV document.
//
// PARAMETERS:
//   - r: the raw document bytes.
//   - source: a label for logs and error messages.
//   - settings: delimiter and encoding.
//
// RETURNS:
//   - The header row and every non-blank data row.
//   - ErrEmpty if there is no header row; a wrapped error if the bytes are
//     not CSV at all.
func Parse(r io.Reader, source string, settings Settings) (*Table, error) {
	comma, err := DelimiterRune(settings.Delimiter)
	if err != nil {
		return nil, err
	}

	decoded, err := decode(bufio.NewReader(r), settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV from %s: %w", source, err)
	}

	return build(allRows, source)
}

// ParseFile opens a local CSV file and parses it.
func ParseFile(path string, settings Settings) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file, path, settings)
}

// FromRows builds a Table from rows already split into cells, with the
// first non-blank row as the header. The XLSX reader uses it.
func FromRows(allRows [][]string, source string) (*Table, error) {
	return build(allRows, source)
}

func build(allRows [][]string, source string) (*Table, error) {
	headerIndex := -1
	for i, row := range allRows {
		if !isRowEmpty(row) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrEmpty)
	}

	table := &Table{
		Headers: allRows[headerIndex],
		Rows:    make([]Row, 0, len(allRows)-headerIndex-1),
		Source:  source,
	}

	for i := headerIndex + 1; i < len(allRows); i++ {
		if isRowEmpty(allRows[i]) {
			continue
		}
		table.Rows = append(table.Rows, Row{Number: i - headerIndex, Cells: allRows[i]})
	}

	return table, nil
}

// decode wraps r so the CSV reader sees UTF-8 without a byte-order mark.
func decode(r io.Reader, name string) (io.Reader, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "utf-8" || key == "utf8" {
		return transform.NewReader(r, unicode.BOMOverride(transform.Nop)), nil
	}

	enc, ok := encodings[key]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
