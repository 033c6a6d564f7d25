package excel

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chainbench/internal/errors"
	"chainbench/internal/logging"

	"github.com/go-logr/logr"
	"github.com/xuri/excelize/v2"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// DataReader reads benchmark keys from the first column of a CSV or Excel file
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   logr.Logger
}

// KeySet is what a DataReader produced, plus bookkeeping for diagnostics.
type KeySet struct {
	Keys []string
	// RowsScanned counts non-blank data rows looked at, header excluded.
	RowsScanned int
	// RowsSkipped counts scanned rows whose first column was empty.
	RowsSkipped int
}

// NewDataReader creates a new data reader that handles both Excel and CSV files.
// Anything not ending in .xlsx is read as CSV.
func NewDataReader(filePath string, logger logr.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// LoadKeys is a shorthand for NewDataReader(path, logger).ReadKeys(limit).
func LoadKeys(path string, limit int, logger logr.Logger) (*KeySet, error) {
	return NewDataReader(path, logger).ReadKeys(limit)
}

// ReadKeys returns up to limit non-empty first-column values in file order.
// The first row is always treated as a header. A limit <= 0 reads nothing.
func (r *DataReader) ReadKeys(limit int) (*KeySet, error) {
	r.logger.V(logging.VERBOSE).Info("Reading keys", "path", r.filePath, "type", r.fileType, "limit", limit)

	start := time.Now()
	var (
		set *KeySet
		err error
	)
	switch r.fileType {
	case "xlsx":
		set, err = r.readExcelKeys(limit)
	default:
		set, err = r.readCSVKeys(limit)
	}
	if err != nil {
		return nil, err
	}

	r.logger.V(logging.VERBOSE).Info("Keys read",
		"path", r.filePath,
		"keys", len(set.Keys),
		"rowsScanned", set.RowsScanned,
		"rowsSkipped", set.RowsSkipped,
		"elapsed", time.Since(start))
	return set, nil
}

func (r *DataReader) readCSVKeys(limit int) (*KeySet, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.ReadFailed(r.filePath, err)
	}
	defer file.Close()

	// One key per physical line: a stray quote must not pull later lines
	// into the same field.
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	set := &KeySet{}
	headerSeen := false
	for len(set.Keys) < limit && scanner.Scan() {
		if !headerSeen {
			headerSeen = true
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		set.add([]string{firstField(line)})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.ReadFailed(r.filePath, err)
	}
	return set, nil
}

// firstField returns the first CSV field of a single line. Lines encoding/csv
// rejects, such as an unterminated quote, fall back to the text before the
// first comma.
func firstField(line string) string {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	record, err := reader.Read()
	if err == nil && len(record) > 0 {
		return record[0]
	}
	if i := strings.IndexByte(line, ','); i >= 0 {
		return line[:i]
	}
	return line
}

func (r *DataReader) readExcelKeys(limit int) (*KeySet, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.ReadFailed(r.filePath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &KeySet{}, nil
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, errors.ReadFailed(r.filePath, err)
	}
	defer rows.Close()

	set := &KeySet{}
	headerSeen := false
	for len(set.Keys) < limit && rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, errors.ReadFailed(r.filePath, err)
		}
		if !headerSeen {
			headerSeen = true
			continue
		}
		set.add(cols)
	}
	if err := rows.Error(); err != nil {
		return nil, errors.ReadFailed(r.filePath, err)
	}
	return set, nil
}

func (s *KeySet) add(row []string) {
	s.RowsScanned++
	if len(row) == 0 {
		s.RowsSkipped++
		return
	}
	key := strings.TrimSpace(row[0])
	if key == "" {
		s.RowsSkipped++
		return
	}
	s.Keys = append(s.Keys, key)
}
