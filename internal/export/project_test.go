package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"zexport/internal/fieldlist"
	"zexport/internal/zendesk"
)

func int64p(v int64) *int64 { return &v }

// seededResolver builds a resolver whose caches are populated from a fake
// bulk-lookup server.
func seededResolver(t *testing.T, tickets []zendesk.Ticket) *zendesk.Resolver {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/organizations/show_many.json":
			w.Write([]byte(`{"organizations":[{"id":1,"name":"Acme"}]}`))
		case "/api/v2/users/show_many.json":
			w.Write([]byte(`{"users":[{"id":7,"name":"Alice"}]}`))
		case "/api/v2/groups/show_many.json":
			w.Write([]byte(`{"groups":[{"id":3,"name":"Support"}]}`))
		}
	}))
	t.Cleanup(srv.Close)

	client := zendesk.NewClient(srv.URL, "agent@acme.test", "tok", zerolog.Nop())
	resolver := zendesk.NewResolver(client)
	if err := resolver.Preload(context.Background(), tickets); err != nil {
		t.Fatalf("Preload returned error: %v", err)
	}
	return resolver
}

func TestProjectStandardColumns(t *testing.T) {
	ticket := zendesk.Ticket{
		ID:             100,
		OrganizationID: int64p(1),
		AssigneeID:     int64p(7),
		GroupID:        int64p(3),
		Status:         "open",
		Type:           "incident",
		Subject:        "Printer on fire",
		Tags:           []string{"urgent", "hardware"},
		CreatedAt:      "2025-03-01T08:00:00Z",
		UpdatedAt:      "2025-03-02T09:00:00Z",
	}
	resolver := seededResolver(t, []zendesk.Ticket{ticket})

	row := Project(&ticket, nil, resolver)
	if row["ID"] != int64(100) {
		t.Fatalf("ID = %v", row["ID"])
	}
	if row["Organization"] != "Acme" || row["Assignee"] != "Alice" || row["Group"] != "Support" {
		t.Fatalf("unexpected resolved names: %v / %v / %v", row["Organization"], row["Assignee"], row["Group"])
	}
	if row["Tags"] != "urgent,hardware" {
		t.Fatalf("Tags = %v", row["Tags"])
	}
	if row["Subject"] != "Printer on fire" || row["Status"] != "open" {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestProjectNormalizesStandardColumns(t *testing.T) {
	ticket := zendesk.Ticket{
		ID:      100,
		Subject: "first line\r\nsecond line",
		Status:  "open",
	}
	resolver := seededResolver(t, nil)

	// Normalization happens in Project itself so consumers that render rows
	// directly, like the terminal preview, never see raw line breaks.
	row := Project(&ticket, nil, resolver)
	if row["Subject"] != "first line  second line" {
		t.Fatalf("Subject = %q", row["Subject"])
	}
	if row["ID"] != int64(100) {
		t.Fatalf("ID should stay a scalar, got %v", row["ID"])
	}
}

func TestProjectAbsentReferencesAreEmpty(t *testing.T) {
	ticket := zendesk.Ticket{ID: 100}
	resolver := seededResolver(t, nil)

	row := Project(&ticket, nil, resolver)
	for _, col := range []string{"Organization", "Assignee", "Group", "Status", "Subject", "Tags"} {
		if row[col] != "" {
			t.Fatalf("%s should be empty, got %v", col, row[col])
		}
	}
}

func TestProjectCustomFields(t *testing.T) {
	ticket := zendesk.Ticket{
		ID: 100,
		CustomFields: []zendesk.CustomField{
			{ID: 10001, Value: "High"},
			{ID: 10002, Value: nil},
			{ID: 10003, Value: []any{"a", "b"}},
		},
	}
	resolver := seededResolver(t, nil)
	fields := []fieldlist.Field{
		{Name: "Priority", Type: "dropdown", ID: "10001"},
		{Name: "Missing", ID: "77777"},
		{Name: "Null value", ID: "10002"},
		{Name: "List value", ID: "10003"},
		{Name: "Display only"},
	}

	row := Project(&ticket, fields, resolver)
	if row["Priority"] != "High" {
		t.Fatalf("Priority = %v", row["Priority"])
	}
	if row["Missing"] != "" || row["Null value"] != "" {
		t.Fatalf("missing/null custom fields should be empty: %v / %v", row["Missing"], row["Null value"])
	}
	if row["List value"] != `["a","b"]` {
		t.Fatalf("List value = %v", row["List value"])
	}
	if row["Display only"] != "" {
		t.Fatalf("display-only column should be empty, got %v", row["Display only"])
	}
}

func TestNormalizeCell(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{nil, ""},
		{"plain", "plain"},
		{"line1\r\nline2", "line1  line2"},
		{"line1\nline2", "line1 line2"},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
		{[]any{float64(1), "x"}, `[1,"x"]`},
		{float64(3.5), float64(3.5)},
		{true, true},
	}
	for _, tc := range cases {
		if got := normalizeCell(tc.in); got != tc.want {
			t.Fatalf("normalizeCell(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestHeaders(t *testing.T) {
	fields := []fieldlist.Field{{Name: "Priority"}, {Name: "Region"}}
	headers := Headers(fields)

	if len(headers) != len(StandardColumns)+2 {
		t.Fatalf("unexpected header count: %d", len(headers))
	}
	if headers[0] != "ID" || headers[len(headers)-1] != "Region" {
		t.Fatalf("unexpected header order: %v", headers)
	}
}
