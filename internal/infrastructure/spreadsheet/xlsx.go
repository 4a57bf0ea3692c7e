// Package spreadsheet reads and writes xlsx workbooks.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/partsdesk/storefront/internal/core/domain"
)

const defaultSheet = "Sheet1"

var ErrEmptyWorkbook = errors.New("spreadsheet: workbook has no rows")

// Codec converts between row data and xlsx bytes.
type Codec struct{}

func NewCodec() *Codec { return &Codec{} }

// Encode writes header and rows to a single sheet. Cells that parse as
// numbers are stored as numbers.
func (Codec) Encode(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	write := func(rowNum int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		out := make([]interface{}, len(values))
		for i, v := range values {
			if n, err := strconv.ParseFloat(v, 64); err == nil && v != "" {
				out[i] = n
			} else {
				out[i] = v
			}
		}
		return f.SetSheetRow(sheet, cell, &out)
	}

	rowNum := 1
	if len(header) > 0 {
		if err := write(rowNum, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		rowNum++
	}
	for _, r := range rows {
		if err := write(rowNum, r); err != nil {
			return nil, fmt.Errorf("write row %d: %w", rowNum, err)
		}
		rowNum++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads the first sheet. The first non-empty row is the header; every
// following non-empty row becomes a SheetRow keyed by header cell.
func (Codec) Decode(data []byte) ([]string, []domain.SheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyWorkbook
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	var header []string
	var rows []domain.SheetRow
	for _, r := range raw {
		if isBlank(r) {
			continue
		}
		if header == nil {
			header = make([]string, len(r))
			for i, c := range r {
				header[i] = strings.TrimSpace(c)
			}
			continue
		}
		row := make(domain.SheetRow, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(r) {
				row[h] = strings.TrimSpace(r[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	if header == nil {
		return nil, nil, ErrEmptyWorkbook
	}
	return header, rows, nil
}

func isBlank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
