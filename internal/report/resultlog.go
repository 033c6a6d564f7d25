package report

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"chainbench/domain/core"
	"chainbench/domain/run"
	"chainbench/internal/errors"
)

// recordFields is the column count of a results-log line.
const recordFields = 6

// ResultLog is the append-only CSV log of benchmark measurements.
type ResultLog struct {
	Path string
}

// NewResultLog returns a log stored at path.
func NewResultLog(path string) *ResultLog {
	return &ResultLog{Path: path}
}

// FormatRecord renders one log line without the trailing newline.
func FormatRecord(r run.Record) string {
	return fmt.Sprintf("%d,%s,%d,%.9f,%.9f,%.9f",
		r.Timestamp.UnixMilli(), r.Order, r.Count,
		r.InsertSeconds, r.SearchSeconds, r.DeleteSeconds)
}

// Append writes one line per ordering of result, all stamped with ts. The
// lines go out in a single write so a run is never half-logged by us.
func (l *ResultLog) Append(ts core.Timestamp, result *run.Result) error {
	var b strings.Builder
	for _, rec := range result.Records(ts) {
		b.WriteString(FormatRecord(rec))
		b.WriteByte('\n')
	}

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.WriteFailed(l.Path, err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return errors.WriteFailed(l.Path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WriteFailed(l.Path, err)
	}
	return nil
}

// ReadAll parses every record in the log. A missing log holds no records.
func (l *ResultLog) ReadAll() ([]run.Record, error) {
	f, err := os.Open(l.Path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ReadFailed(l.Path, err)
	}
	defer f.Close()

	records, err := ParseRecords(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", l.Path)
	}
	return records, nil
}

// ParseRecords reads results-log lines from r.
func ParseRecords(r io.Reader) ([]run.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records []run.Record
	for {
		fields, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		line, _ := reader.FieldPos(0)

		rec, err := parseRecord(fields)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("line %d: %w", line, err))
		}
		records = append(records, rec)
	}
}

func parseRecord(fields []string) (run.Record, error) {
	var rec run.Record
	if len(fields) != recordFields {
		return rec, fmt.Errorf("expected %d fields, got %d", recordFields, len(fields))
	}

	ms, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return rec, fmt.Errorf("timestamp: %w", err)
	}
	order, err := run.ParseOrder(fields[1])
	if err != nil {
		return rec, err
	}
	count, err := strconv.Atoi(fields[2])
	if err != nil {
		return rec, fmt.Errorf("count: %w", err)
	}

	var secs [3]float64
	for i, name := range []string{"insert", "search", "delete"} {
		if secs[i], err = strconv.ParseFloat(fields[3+i], 64); err != nil {
			return rec, fmt.Errorf("%s seconds: %w", name, err)
		}
	}

	return run.Record{
		Timestamp:     core.FromUnixMilli(ms),
		Order:         order,
		Count:         count,
		InsertSeconds: secs[0],
		SearchSeconds: secs[1],
		DeleteSeconds: secs[2],
	}, nil
}
