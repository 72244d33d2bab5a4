package zendesk

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// RefKind selects one of the three foreign-key reference kinds.
type RefKind int

const (
	KindOrganization RefKind = iota
	KindUser
	KindGroup
)

// refEndpoint maps a kind to its bulk lookup path and response collection key.
var refEndpoints = map[RefKind]struct {
	path string
	key  string
}{
	KindOrganization: {"/api/v2/organizations/show_many.json", "organizations"},
	KindUser:         {"/api/v2/users/show_many.json", "users"},
	KindGroup:        {"/api/v2/groups/show_many.json", "groups"},
}

// Resolver converts foreign-key IDs to display names. Lookups are batched per
// kind and cached for the lifetime of the run; referenced entities are assumed
// immutable within a run, so nothing is ever evicted.
type Resolver struct {
	client *Client
	caches map[RefKind]map[string]string
}

// NewResolver returns a resolver with empty caches backed by client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{
		client: client,
		caches: map[RefKind]map[string]string{
			KindOrganization: {},
			KindUser:         {},
			KindGroup:        {},
		},
	}
}

// Preload collects the distinct uncached reference IDs of a chunk of tickets
// and issues at most one bulk lookup per kind. Call it before Resolve.
func (r *Resolver) Preload(ctx context.Context, tickets []Ticket) error {
	wanted := map[RefKind]map[string]struct{}{
		KindOrganization: {},
		KindUser:         {},
		KindGroup:        {},
	}

	add := func(kind RefKind, id *int64) {
		s := IDString(id)
		if s == "" {
			return
		}
		if _, cached := r.caches[kind][s]; cached {
			return
		}
		wanted[kind][s] = struct{}{}
	}

	for i := range tickets {
		t := &tickets[i]
		add(KindOrganization, t.OrganizationID)
		add(KindUser, t.AssigneeID)
		add(KindUser, t.RequesterID)
		add(KindUser, t.SubmitterID)
		add(KindGroup, t.GroupID)
	}

	for _, kind := range []RefKind{KindOrganization, KindUser, KindGroup} {
		if len(wanted[kind]) == 0 {
			continue
		}
		ids := make([]string, 0, len(wanted[kind]))
		for id := range wanted[kind] {
			ids = append(ids, id)
		}
		if err := r.fetchBatch(ctx, kind, ids); err != nil {
			return err
		}
	}
	return nil
}

// Resolve is a pure cache read: it never triggers a network call and returns
// "" for unknown IDs.
func (r *Resolver) Resolve(kind RefKind, id string) string {
	return r.caches[kind][id]
}

func (r *Resolver) fetchBatch(ctx context.Context, kind RefKind, ids []string) error {
	ep := refEndpoints[kind]
	url := fmt.Sprintf("%s%s?ids=%s", r.client.BaseURL(), ep.path, strings.Join(ids, ","))

	var doc map[string][]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := r.client.GetJSON(ctx, url, &doc); err != nil {
		return fmt.Errorf("resolve %s: %w", ep.key, err)
	}

	for _, entity := range doc[ep.key] {
		r.caches[kind][strconv.FormatInt(entity.ID, 10)] = entity.Name
	}
	return nil
}
