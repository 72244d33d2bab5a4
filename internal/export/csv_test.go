package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"zexport/internal/fieldlist"
	"zexport/internal/window"
	"zexport/internal/zendesk"
)

func TestWriteCSVQuotesEverything(t *testing.T) {
	var buf bytes.Buffer
	headers := []string{"ID", "Subject"}
	rows := []Row{
		{"ID": int64(1), "Subject": "plain"},
		{"ID": int64(2), "Subject": `say "hi"`},
		{"ID": int64(3)},
	}

	if err := WriteCSV(&buf, headers, rows); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatalf("missing BOM prefix")
	}

	expected := "\uFEFF" + strings.Join([]string{
		`"ID","Subject"`,
		`"1","plain"`,
		`"2","say ""hi"""`,
		`"3",""`,
	}, "\r\n") + "\r\n"

	if out != expected {
		t.Fatalf("csv mismatch:\nexpected: %q\nactual:   %q", expected, out)
	}
}

func TestWriteCSVProjectedRows(t *testing.T) {
	ticket := zendesk.Ticket{
		ID:      1,
		Subject: "line1\nline2",
		CustomFields: []zendesk.CustomField{
			{ID: 10003, Value: []any{"a", "b"}},
		},
	}
	resolver := seededResolver(t, nil)
	fields := []fieldlist.Field{{Name: "List value", ID: "10003"}}

	var buf bytes.Buffer
	headers := Headers(fields)
	rows := []Row{Project(&ticket, fields, resolver)}
	if err := WriteCSV(&buf, headers, rows); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"line1 line2"`) {
		t.Fatalf("newline not collapsed: %q", out)
	}
	if !strings.Contains(out, `"[""a"",""b""]"`) {
		t.Fatalf("structured value not serialized: %q", out)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	headers := []string{"ID", "Subject"}
	rows := []Row{{"ID": int64(1), "Subject": "hello"}}

	if err := WriteXLSX(path, headers, rows); err != nil {
		t.Fatalf("WriteXLSX returned error: %v", err)
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer wb.Close()

	got, err := wb.GetCellValue("tickets", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "hello" {
		t.Fatalf("B2 = %q", got)
	}
	head, err := wb.GetCellValue("tickets", "A1")
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if head != "ID" {
		t.Fatalf("A1 = %q", head)
	}
}

func TestWriteRawDump(t *testing.T) {
	var buf bytes.Buffer
	tickets := []zendesk.Ticket{
		{Raw: []byte(`{"id":1}`)},
		{Raw: []byte(`{"id":2}`)},
	}

	if err := WriteRawDump(&buf, tickets); err != nil {
		t.Fatalf("WriteRawDump returned error: %v", err)
	}
	if buf.String() != "{\"id\":1}\n{\"id\":2}\n" {
		t.Fatalf("unexpected dump: %q", buf.String())
	}
}

func TestOutputBase(t *testing.T) {
	if got := OutputBase("report.csv", time.Now()); got != "report" {
		t.Fatalf("explicit name: %q", got)
	}
	if got := OutputBase("report", time.Now()); got != "report" {
		t.Fatalf("explicit extensionless name: %q", got)
	}

	now := time.Date(2025, time.June, 15, 1, 30, 0, 0, time.UTC)
	got := OutputBase("", now)
	// 01:30 UTC is 09:30 AM in the reference timezone.
	want := strings.ToLower(now.In(window.Reference()).Format("20060102_030405_PM"))
	if got != want {
		t.Fatalf("generated name: %q, want %q", got, want)
	}
	if !strings.HasSuffix(got, "_am") {
		t.Fatalf("expected lowercase am suffix: %q", got)
	}
}
