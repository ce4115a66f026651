package service

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

const utf8BOM = "\ufeff"

// RosterFileKind classifies an uploaded roster by extension.
type RosterFileKind string

const (
	RosterCSV       RosterFileKind = ".csv"
	RosterXLSX      RosterFileKind = ".xlsx"
	RosterLegacyXLS RosterFileKind = ".xls"
)

// DetectRosterKind returns the kind of filename or ErrUnsupportedFile.
func DetectRosterKind(filename string) (RosterFileKind, error) {
	switch kind := RosterFileKind(strings.ToLower(filepath.Ext(filename))); kind {
	case RosterCSV, RosterXLSX, RosterLegacyXLS:
		return kind, nil
	}
	return "", appErrors.Clone(appErrors.ErrUnsupportedFile, "only .csv, .xls and .xlsx files are accepted")
}

// ParseRoster reads a roster file against schema. Legacy .xls workbooks cannot
// be parsed locally.
func ParseRoster(filename string, data []byte, schema models.RosterSchema) (*models.ParseResult, error) {
	kind, err := DetectRosterKind(filename)
	if err != nil {
		return nil, err
	}
	switch kind {
	case RosterCSV:
		return ParseRosterCSV(bytes.NewReader(data), schema)
	case RosterXLSX:
		return ParseRosterXLSX(bytes.NewReader(data), schema)
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFile, "legacy .xls files can only be forwarded")
	}
}

type rawRecord struct {
	line   int
	values []string
}

// ParseRosterCSV decodes RFC 4180 CSV. Quoted fields may contain commas.
func ParseRosterCSV(r io.Reader, schema models.RosterSchema) (*models.ParseResult, error) {
	buffered := bufio.NewReader(r)
	if bom, err := buffered.Peek(len(utf8BOM)); err == nil && string(bom) == utf8BOM {
		_, _ = buffered.Discard(len(utf8BOM))
	}
	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comment = '#'

	records := make([]rawRecord, 0)
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
					fmt.Sprintf("malformed CSV at line %d", parseErr.Line))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read CSV")
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rawRecord{line: line, values: values})
	}
	return buildRoster(records, schema)
}

// ParseRosterXLSX reads the first sheet of a workbook.
func ParseRosterXLSX(r io.Reader, schema models.RosterSchema) (*models.ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to open workbook")
	}
	defer f.Close() //nolint:errcheck

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workbook does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read workbook rows")
	}
	records := make([]rawRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, rawRecord{line: i + 1, values: row})
	}
	return buildRoster(records, schema)
}

func blankRecord(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// buildRoster treats the first non-blank record as the header row.
func buildRoster(records []rawRecord, schema models.RosterSchema) (*models.ParseResult, error) {
	start := 0
	for start < len(records) && blankRecord(records[start].values) {
		start++
	}
	if start == len(records) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}

	headers := make([]string, len(records[start].values))
	index := make(map[string]int, len(headers))
	for i, h := range records[start].values {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.ToLower(strings.TrimSpace(h))
		headers[i] = h
		if _, dup := index[h]; !dup && h != "" {
			index[h] = i
		}
	}

	missing := make([]string, 0)
	for _, col := range schema.Required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrMissingColumns,
			fmt.Sprintf("missing required CSV columns: %s", strings.Join(missing, ", ")))
	}

	result := &models.ParseResult{
		Headers:  headers,
		Accepted: make([]models.RosterRow, 0, len(records)-start-1),
		Rejected: make([]models.RejectedRow, 0),
	}
	for _, rec := range records[start+1:] {
		if blankRecord(rec.values) {
			continue
		}
		fields := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(rec.values) {
				fields[name] = strings.TrimSpace(rec.values[i])
			} else {
				fields[name] = ""
			}
		}
		empty := make([]string, 0)
		for _, col := range schema.Required {
			if fields[col] == "" {
				empty = append(empty, col)
			}
		}
		if len(empty) > 0 {
			result.Rejected = append(result.Rejected, models.RejectedRow{
				RowNumber: rec.line,
				Reason:    "missing " + strings.Join(empty, ", "),
			})
			continue
		}
		result.Accepted = append(result.Accepted, models.RosterRow{RowNumber: rec.line, Fields: fields})
	}
	return result, nil
}
