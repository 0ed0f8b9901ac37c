package grid

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/bankstmt/internal/apperror"

	"github.com/extrame/xls"
	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// ReadCSV reads delimited text into a Grid. Quotes are parsed lazily and
// rows may have differing field counts.
func ReadCSV(r io.Reader, delimiter rune) (Grid, error) {
	reader, ok := gocsv.LazyCSVReader(r).(*csv.Reader)
	if !ok {
		return nil, fmt.Errorf("unexpected CSV reader implementation")
	}
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return FromStrings(records), nil
}

// ReadXLSX reads the first non-empty worksheet of an Office Open XML
// workbook. Cell values are read raw, so dates arrive as serial numbers.
func ReadXLSX(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error opening XLSX workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in XLSX workbook")
	}

	var rows [][]string
	for _, sheet := range sheets {
		rows, err = f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("error reading sheet %s: %w", sheet, err)
		}
		if len(rows) > 0 {
			break
		}
	}
	return FromStrings(rows), nil
}

// ReadXLS reads the first worksheet of a legacy BIFF workbook.
func ReadXLS(r io.ReadSeeker) (Grid, error) {
	book, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("error opening XLS workbook: %w", err)
	}
	if book.NumSheets() == 0 {
		return nil, fmt.Errorf("no sheets found in XLS workbook")
	}

	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("could not get first sheet")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		values := make([]string, row.LastCol())
		for j := range values {
			values[j] = row.Col(j)
		}
		rows = append(rows, values)
	}
	return FromStrings(rows), nil
}

// ReadFile reads a statement file, choosing the reader by extension.
func ReadFile(path string, delimiter rune) (Grid, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".txt", ".xlsx", ".xlsm", ".xls":
	default:
		return nil, &apperror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "CSV, XLSX or XLS",
			Msg:            fmt.Sprintf("unsupported extension %q", ext),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}

	var g Grid
	switch ext {
	case ".csv", ".txt":
		g, err = ReadCSV(bytes.NewReader(data), delimiter)
	case ".xlsx", ".xlsm":
		g, err = ReadXLSX(bytes.NewReader(data))
	case ".xls":
		g, err = ReadXLS(bytes.NewReader(data))
	}
	if err != nil {
		return nil, &apperror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: strings.TrimPrefix(ext, "."),
			Msg:            "unreadable statement file",
			Err:            err,
		}
	}
	return g, nil
}
