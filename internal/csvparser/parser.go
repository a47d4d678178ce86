// =============================================================================
// Payroll Bank Splitter - CSV Input Parser
// =============================================================================
//
// This module reads payroll sheets exported as CSV. It produces the same
// header-keyed table as the XLSX parser so the rest of the pipeline does not
// care which container the payroll arrived in.
//
// FEATURES:
//   - Comma, semicolon, tab or pipe delimiters (detected from the header line)
//   - UTF-8 byte order mark stripped from the first header
//   - Ragged rows tolerated (missing cells read as empty strings)
//   - Lazy quotes accepted, as produced by several spreadsheet exporters
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/xlsxparser"
)

// utf8BOM is stripped from the start of the input.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV payroll table from a stream.
//
// RETURNS:
//   - The parsed table, header row excluded from Rows.
//   - An error if the CSV is malformed or empty.
func Parse(r io.Reader) (*types.RawTable, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	csvReader := csv.NewReader(bytes.NewReader(data))
	configureReader(csvReader, detectDelimiter(data))

	// Blank lines are skipped by the reader, so each record keeps the line
	// it started on.
	var (
		allRows [][]string
		lines   []int
	)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := csvReader.FieldPos(0)
		allRows = append(allRows, record)
		lines = append(lines, line)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return xlsxparser.BuildTableLines(allRows, lines, "csv"), nil
}

// configureReader configures the CSV reader.
func configureReader(reader *csv.Reader, delimiter rune) {
	reader.Comma = delimiter

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	// Trim leading space from fields.
	reader.TrimLeadingSpace = true
}

// detectDelimiter picks the most frequent candidate delimiter in the header line.
// Comma wins ties and is the fallback.
func detectDelimiter(data []byte) rune {
	header := string(data)
	if i := strings.IndexAny(header, "\r\n"); i >= 0 {
		header = header[:i]
	}

	best, bestCount := ',', strings.Count(header, ",")
	for _, candidate := range []rune{';', '\t', '|'} {
		if n := strings.Count(header, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}
