package zendesk

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestParseTicket(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 100,
		"organization_id": 1,
		"assignee_id": null,
		"status": "open",
		"subject": "Printer on fire",
		"tags": ["urgent", "hardware"],
		"custom_fields": [
			{"id": 10001, "value": "High"},
			{"id": 10002, "value": null}
		],
		"unexpected_field": {"nested": true}
	}`)

	tk, err := ParseTicket(raw)
	if err != nil {
		t.Fatalf("ParseTicket returned error: %v", err)
	}
	if tk.ID != 100 || tk.Status != "open" || tk.Subject != "Printer on fire" {
		t.Fatalf("unexpected ticket: %+v", tk)
	}
	if IDString(tk.OrganizationID) != "1" {
		t.Fatalf("organization id = %q", IDString(tk.OrganizationID))
	}
	if tk.AssigneeID != nil {
		t.Fatalf("null assignee should stay nil")
	}
	if string(tk.Raw) == "" {
		t.Fatalf("raw payload not preserved")
	}

	v, ok := tk.CustomValue("10001")
	if !ok || v != "High" {
		t.Fatalf("custom 10001 = %v, %v", v, ok)
	}
	v, ok = tk.CustomValue("10002")
	if !ok || v != nil {
		t.Fatalf("custom 10002 should be present with nil value, got %v, %v", v, ok)
	}
	if _, ok := tk.CustomValue("99999"); ok {
		t.Fatalf("missing custom field reported present")
	}
}

func TestParseTicketMalformed(t *testing.T) {
	if _, err := ParseTicket(json.RawMessage(`{"id":`)); err == nil {
		t.Fatalf("expected error for malformed ticket")
	}
}

func TestIDString(t *testing.T) {
	if IDString(nil) != "" {
		t.Fatalf("nil id should stringify to empty")
	}
	v := int64(42)
	if IDString(&v) != "42" {
		t.Fatalf("unexpected id string: %s", IDString(&v))
	}
}
