// Package export builds flat output rows from harvested tickets and writes
// the CSV, XLSX and raw dump artifacts.
package export

import (
	"strings"

	"github.com/goccy/go-json"

	"zexport/internal/fieldlist"
	"zexport/internal/zendesk"
)

// StandardColumns are the fixed leading columns of every export. Custom field
// columns follow in field-list order.
var StandardColumns = []string{
	"ID", "Organization", "Assignee", "Group", "Status", "Type",
	"Subject", "Tags", "Created at", "Updated at",
}

// Row maps column name to cell value. Values are strings after normalization
// except scalars (numbers, booleans), which pass through for typed XLSX cells.
type Row map[string]any

// Headers returns the full ordered column set for the given field list.
func Headers(fields []fieldlist.Field) []string {
	headers := make([]string, 0, len(StandardColumns)+len(fields))
	headers = append(headers, StandardColumns...)
	for _, f := range fields {
		headers = append(headers, f.Name)
	}
	return headers
}

// Project flattens one ticket into a Row. Reference names come from the
// resolver's cache; the caller must have preloaded the chunk. Display-only
// fields (empty ID) produce empty cells so the header set stays stable.
// Every cell is normalized here, once, so the writers and the preview all
// see the same values.
func Project(t *zendesk.Ticket, fields []fieldlist.Field, resolver *zendesk.Resolver) Row {
	row := Row{
		"ID":           t.ID,
		"Organization": resolver.Resolve(zendesk.KindOrganization, zendesk.IDString(t.OrganizationID)),
		"Assignee":     resolver.Resolve(zendesk.KindUser, zendesk.IDString(t.AssigneeID)),
		"Group":        resolver.Resolve(zendesk.KindGroup, zendesk.IDString(t.GroupID)),
		"Status":       t.Status,
		"Type":         t.Type,
		"Subject":      t.Subject,
		"Tags":         strings.Join(t.Tags, ","),
		"Created at":   t.CreatedAt,
		"Updated at":   t.UpdatedAt,
	}
	for _, col := range StandardColumns {
		row[col] = normalizeCell(row[col])
	}

	for _, f := range fields {
		var value any
		if f.ID != "" {
			value, _ = t.CustomValue(f.ID)
		}
		row[f.Name] = normalizeCell(value)
	}

	return row
}

// normalizeCell applies the uniform cell value rules: nil becomes "",
// structured values serialize to compact JSON, text loses CR/LF characters,
// every other scalar passes through unchanged.
func normalizeCell(v any) any {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		value = strings.ReplaceAll(value, "\r", " ")
		return strings.ReplaceAll(value, "\n", " ")
	case map[string]any, []any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return value
	}
}
