package zendesk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"zexport/internal/window"
)

const (
	defaultChunkSize = 50
	defaultPerPage   = 100
	bulkFetchLimit   = 100
)

// HarvestOptions tunes batching. Neither value affects result correctness,
// only I/O batching and progress granularity.
type HarvestOptions struct {
	// ChunkSize bounds the ticket chunks handed to the resolver (default 50).
	ChunkSize int
	// PerPage is the search page size requested from the server (default 100).
	PerPage int
}

// Harvester collects the tickets created inside a set of windows. It searches
// IDs window by window, deduplicates them across overlapping windows and
// pages, then bulk-fetches full records in batches of up to 100.
type Harvester struct {
	client *Client
	opts   HarvestOptions
	seen   map[int64]struct{}
	log    zerolog.Logger
}

// NewHarvester returns a harvester with run-scoped dedup state.
func NewHarvester(client *Client, opts HarvestOptions, log zerolog.Logger) *Harvester {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.PerPage <= 0 {
		opts.PerPage = defaultPerPage
	}
	return &Harvester{
		client: client,
		opts:   opts,
		seen:   make(map[int64]struct{}),
		log:    log,
	}
}

type searchPage struct {
	Pagination
	Results []json.RawMessage `json:"results"`
}

type searchHit struct {
	ID         int64  `json:"id"`
	ResultType string `json:"result_type"`
}

// Harvest returns the deduplicated tickets created within the given windows,
// in first-seen order.
func (h *Harvester) Harvest(ctx context.Context, windows []window.Window) ([]Ticket, error) {
	var ids []int64
	for _, w := range windows {
		windowIDs, err := h.searchWindow(ctx, w)
		if err != nil {
			return nil, err
		}
		ids = append(ids, windowIDs...)
		h.log.Debug().Str("window", w.Label).
			Time("start_utc", w.StartUTC).Time("end_utc", w.EndUTC).
			Int("ids", len(windowIDs)).Msg("window searched")
	}

	tickets, err := h.fetchBulk(ctx, ids)
	if err != nil {
		return nil, err
	}
	h.log.Info().Int("windows", len(windows)).Int("tickets", len(tickets)).Msg("harvest complete")
	return tickets, nil
}

// searchWindow pages through the search endpoint for one window and returns
// the ticket IDs not seen before. Dedup happens here; the bulk-fetch stage
// trusts the ID list.
func (h *Harvester) searchWindow(ctx context.Context, w window.Window) ([]int64, error) {
	query := fmt.Sprintf("type:ticket created>=%s created<=%s",
		w.StartUTC.Format("2006-01-02T15:04:05Z"),
		w.EndUTC.Format("2006-01-02T15:04:05Z"))
	page := fmt.Sprintf("%s/api/v2/search.json?query=%s&per_page=%d",
		h.client.BaseURL(), url.QueryEscape(query), h.opts.PerPage)

	var ids []int64
	for page != "" {
		var doc searchPage
		if err := h.client.GetJSON(ctx, page, &doc); err != nil {
			return nil, fmt.Errorf("search window %s: %w", w.Label, err)
		}
		for _, raw := range doc.Results {
			var hit searchHit
			if err := json.Unmarshal(raw, &hit); err != nil {
				return nil, fmt.Errorf("%w: search result: %v", ErrMalformedResponse, err)
			}
			if hit.ResultType != "ticket" {
				continue
			}
			if _, dup := h.seen[hit.ID]; dup {
				continue
			}
			h.seen[hit.ID] = struct{}{}
			ids = append(ids, hit.ID)
		}
		page = doc.Next()
	}
	return ids, nil
}

// fetchBulk retrieves full ticket records for the already-deduplicated ID
// list, preserving order.
func (h *Harvester) fetchBulk(ctx context.Context, ids []int64) ([]Ticket, error) {
	tickets := make([]Ticket, 0, len(ids))
	for start := 0; start < len(ids); start += bulkFetchLimit {
		end := min(start+bulkFetchLimit, len(ids))
		batch := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			batch = append(batch, strconv.FormatInt(id, 10))
		}

		reqURL := fmt.Sprintf("%s/api/v2/tickets/show_many.json?ids=%s",
			h.client.BaseURL(), strings.Join(batch, ","))
		var doc struct {
			Tickets []json.RawMessage `json:"tickets"`
		}
		if err := h.client.GetJSON(ctx, reqURL, &doc); err != nil {
			return nil, fmt.Errorf("fetch tickets: %w", err)
		}
		for _, raw := range doc.Tickets {
			t, err := ParseTicket(raw)
			if err != nil {
				return nil, err
			}
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

// Process walks tickets in fixed-size chunks, preloading the resolver before
// handing each chunk to fn. Progress is reported per chunk.
func (h *Harvester) Process(ctx context.Context, tickets []Ticket, resolver *Resolver, fn func(chunk []Ticket) error) error {
	for start := 0; start < len(tickets); start += h.opts.ChunkSize {
		end := min(start+h.opts.ChunkSize, len(tickets))
		chunk := tickets[start:end]

		if err := resolver.Preload(ctx, chunk); err != nil {
			return err
		}
		if err := fn(chunk); err != nil {
			return err
		}

		h.log.Info().
			Int("chunk", start/h.opts.ChunkSize+1).
			Int("scanned", len(chunk)).
			Int("accumulated", end).
			Msg("chunk processed")
	}
	return nil
}
