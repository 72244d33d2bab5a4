// Package fieldlist loads the caller-supplied custom field list that drives
// the exported column set.
package fieldlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyFieldList is returned when the field file has no usable rows.
var ErrEmptyFieldList = errors.New("empty field list")

// Field maps one output column to an optional remote custom field. An empty
// ID makes the column display-only: it appears in the output with empty cells.
type Field struct {
	Name string
	Type string
	ID   string
}

// Load reads a field list from a CSV or XLSX file. Column order in the file
// is the column order in the output.
func Load(path string) ([]Field, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = readCSV(path)
	} else {
		rows, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open field list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read field list %s: %w", path, err)
	}
	// Strip a UTF-8 BOM left by spreadsheet exports.
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open field list %s: %w", path, err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read field list sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]Field, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFieldList
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(cell)
	}

	nameIdx := columnIndex(header, "Display name", "Field")
	if nameIdx < 0 {
		nameIdx = 0
	}
	typeIdx := columnIndex(header, "Type")
	idIdx := columnIndex(header, "Field ID", "ID")

	var fields []Field
	for _, row := range rows[1:] {
		name := cellAt(row, nameIdx)
		if name == "" {
			continue
		}
		fields = append(fields, Field{
			Name: name,
			Type: cellAt(row, typeIdx),
			ID:   cellAt(row, idIdx),
		})
	}

	if len(fields) == 0 {
		return nil, ErrEmptyFieldList
	}
	return fields, nil
}

// columnIndex returns the index of the first header cell matching any of the
// candidate names, in candidate priority order, or -1.
func columnIndex(header []string, candidates ...string) int {
	for _, want := range candidates {
		for i, cell := range header {
			if cell == want {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// WriteListing renders the loaded fields as a table, mirroring the columns of
// the input file.
func WriteListing(w io.Writer, fields []Field) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 48},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})

	tw.AppendHeader(table.Row{"Field", "Type", "Field ID"})
	for _, f := range fields {
		tw.AppendRow(table.Row{f.Name, f.Type, f.ID})
	}
	tw.Render()
}
