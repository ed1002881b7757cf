// Package catalog reads the recommendation table shipped as CSV.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/terraincognita07/bloomly/internal/models"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const DefaultEncoding = "ISO-8859-1"

const (
	columnPhase          = "phase"
	columnMood           = "mood"
	columnCategory       = "category"
	columnRecommendation = "recommendation"
)

var requiredColumns = []string{columnPhase, columnCategory, columnRecommendation}

var (
	ErrUnknownEncoding = errors.New("unknown text encoding")
	ErrMissingColumns  = errors.New("recommendation table is missing required columns")
	ErrEmptyTable      = errors.New("recommendation table has no header")
)

// MissingColumnsError lists every required column absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (err *MissingColumnsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingColumns, strings.Join(err.Columns, ", "))
}

func (err *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// SkippedRow is a data row left out of the table because a required cell was blank.
type SkippedRow struct {
	Line    int
	Missing []string
}

func (row SkippedRow) String() string {
	return fmt.Sprintf("line %d: blank %s", row.Line, strings.Join(row.Missing, ", "))
}

// Table is a validated recommendation table in file order.
type Table struct {
	Entries []models.RecommendationEntry
	HasMood bool
	Skipped []SkippedRow
}

// LookupEncoding resolves a WHATWG label such as "latin1" or "utf-8".
func LookupEncoding(label string) (encoding.Encoding, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		trimmed = DefaultEncoding
	}
	enc, err := htmlindex.Get(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	return enc, nil
}

func LoadFile(path string, encodingLabel string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open recommendation table: %w", err)
	}
	defer file.Close()

	table, err := Read(file, encodingLabel)
	if err != nil {
		return Table{}, fmt.Errorf("read recommendation table %s: %w", path, err)
	}
	return table, nil
}

func Read(source io.Reader, encodingLabel string) (Table, error) {
	enc, err := LookupEncoding(encodingLabel)
	if err != nil {
		return Table{}, err
	}
	if enc != unicode.UTF8 {
		source = enc.NewDecoder().Reader(source)
	}

	reader := csv.NewReader(source)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrEmptyTable
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}

	columns := indexColumns(header)
	if missing := missingColumns(columns); len(missing) > 0 {
		return Table{}, &MissingColumnsError{Columns: missing}
	}
	moodIndex, hasMood := columns[columnMood]

	table := Table{Entries: make([]models.RecommendationEntry, 0), HasMood: hasMood}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row %d: %w", len(table.Entries)+2, err)
		}
		if blankRecord(record) {
			continue
		}
		if missing := blankRequiredCells(record, columns); len(missing) > 0 {
			line, _ := reader.FieldPos(0)
			table.Skipped = append(table.Skipped, SkippedRow{Line: line, Missing: missing})
			continue
		}

		entry := models.RecommendationEntry{
			Position:       len(table.Entries) + 1,
			Phase:          field(record, columns[columnPhase]),
			Category:       field(record, columns[columnCategory]),
			Recommendation: field(record, columns[columnRecommendation]),
		}
		if hasMood {
			entry.Mood = field(record, moodIndex)
		}
		table.Entries = append(table.Entries, entry)
	}
	return table, nil
}

// NormalizeHeader makes "Phase", " phase" and a BOM-prefixed "phase" equal.
func NormalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.TrimPrefix(name, "\u00ef\u00bb\u00bf")
	return strings.ToLower(strings.TrimSpace(name))
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for index, name := range header {
		normalized := NormalizeHeader(name)
		if normalized == "" {
			continue
		}
		if _, exists := columns[normalized]; !exists {
			columns[normalized] = index
		}
	}
	return columns
}

func missingColumns(columns map[string]int) []string {
	missing := make([]string, 0)
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func field(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func blankRequiredCells(record []string, columns map[string]int) []string {
	missing := make([]string, 0)
	for _, name := range requiredColumns {
		if field(record, columns[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
