package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// utf8BOM prefixes the CSV so spreadsheet applications detect the encoding.
const utf8BOM = "\uFEFF"

// WriteCSV writes headers and rows with every cell quoted, CRLF row
// terminators and a leading UTF-8 BOM. Cells missing from a row are empty.
func WriteCSV(w io.Writer, headers []string, rows []Row) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := writeRecord(bw, headers, nil); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRecord(bw, headers, row); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// writeRecord writes one quoted record. With a nil row the headers themselves
// are the record.
func writeRecord(w *bufio.Writer, headers []string, row Row) error {
	for i, header := range headers {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		cell := header
		if row != nil {
			cell = formatCell(row[header])
		}
		if _, err := w.WriteString(quoteCell(cell)); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func quoteCell(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatCell renders a normalized cell value as text.
func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}
