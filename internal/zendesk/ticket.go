package zendesk

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Ticket is one remote record. Top-level keys the pipeline needs are typed;
// everything else stays available through Raw, which holds the record exactly
// as received (used for the raw dump output). Custom fields are an open list
// so columns the caller's field list does not enumerate are tolerated.
type Ticket struct {
	ID             int64         `json:"id"`
	OrganizationID *int64        `json:"organization_id"`
	AssigneeID     *int64        `json:"assignee_id"`
	RequesterID    *int64        `json:"requester_id"`
	SubmitterID    *int64        `json:"submitter_id"`
	GroupID        *int64        `json:"group_id"`
	Status         string        `json:"status"`
	Type           string        `json:"type"`
	Subject        string        `json:"subject"`
	Tags           []string      `json:"tags"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
	CustomFields   []CustomField `json:"custom_fields"`

	Raw json.RawMessage `json:"-"`
}

// CustomField is one id/value pair from a ticket's custom field collection.
// Values are schema-less: strings, numbers, booleans, lists or objects.
type CustomField struct {
	ID    int64 `json:"id"`
	Value any   `json:"value"`
}

// ParseTicket decodes a raw ticket document, preserving the original bytes.
func ParseTicket(raw json.RawMessage) (Ticket, error) {
	var t Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return Ticket{}, fmt.Errorf("%w: ticket: %v", ErrMalformedResponse, err)
	}
	t.Raw = append(json.RawMessage(nil), raw...)
	return t, nil
}

// CustomValue returns the value of the custom field with the given stringified
// ID, and whether the field is present on the ticket.
func (t *Ticket) CustomValue(id string) (any, bool) {
	for _, cf := range t.CustomFields {
		if strconv.FormatInt(cf.ID, 10) == id {
			return cf.Value, true
		}
	}
	return nil, false
}

// IDString stringifies an optional foreign-key ID; nil becomes "".
func IDString(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
