// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Response headers set by the search endpoint.
const (
	HeaderSearchResults = "Search-Results"
	HeaderQuery         = "Query"
)

// LoadGrid fetches the adjudication grid fragment for a canonical key
// (empty for none) and a comma-separated candidate list.
func (client *Client) LoadGrid(ctx context.Context, canonicalKey, candidates string) (string, error) {
	body, _, err := client.do(ctx, http.MethodGet, "load_adj_grid", url.Values{
		"canonical_event_key": {canonicalKey},
		"cand_events":         {candidates},
	})
	return string(body), err
}

// LoadRecentCandidateEvents fetches the fragment listing the
// curator's recently viewed candidate events.
func (client *Client) LoadRecentCandidateEvents(ctx context.Context) (string, error) {
	body, _, err := client.do(ctx, http.MethodPost, "load_recent_candidate_events", nil)
	return string(body), err
}

// LoadRecentCanonicalEvents fetches the fragment listing recently
// viewed canonical events.
func (client *Client) LoadRecentCanonicalEvents(ctx context.Context) (string, error) {
	body, _, err := client.do(ctx, http.MethodPost, "load_recent_canonical_events", nil)
	return string(body), err
}

// autocompleteResponse is the JSON shape of the autocomplete endpoint.
type autocompleteResponse struct {
	Result struct {
		Status int      `json:"status"`
		Data   []string `json:"data"`
	} `json:"result"`
}

// SearchCanonicalAutocomplete returns canonical event keys containing
// term.
func (client *Client) SearchCanonicalAutocomplete(ctx context.Context, term string) ([]string, error) {
	body, _, err := client.do(ctx, http.MethodPost, "search_canonical_autocomplete", url.Values{
		"term": {term},
	})
	if err != nil {
		return nil, err
	}
	var response autocompleteResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("recordservice: decoding autocomplete response: %w", err)
	}
	return response.Result.Data, nil
}

// AddCanonicalRelationship creates an edge of the given type from the
// canonical event keyed key1 (the child) to the one keyed key2 (the
// parent).
func (client *Client) AddCanonicalRelationship(ctx context.Context, key1, key2, relationshipType string) error {
	_, _, err := client.do(ctx, http.MethodPost, "add_canonical_relationship", url.Values{
		"key1": {key1},
		"key2": {key2},
		"type": {relationshipType},
	})
	return err
}

// DeleteCanonicalRelationship deletes the edge of the given type
// between canonical event ids id1 (the child) and id2 (the parent).
func (client *Client) DeleteCanonicalRelationship(ctx context.Context, id1, id2, relationshipType string) error {
	_, _, err := client.do(ctx, http.MethodPost, "delete_canonical_relationship", url.Values{
		"id1":  {id1},
		"id2":  {id2},
		"type": {relationshipType},
	})
	return err
}

// LoadCanonicalHierarchy fetches the hierarchy fragment drawn around
// the canonical event keyed key.
func (client *Client) LoadCanonicalHierarchy(ctx context.Context, key string) (string, error) {
	body, _, err := client.do(ctx, http.MethodPost, "load_canonical_hierarchy", url.Values{
		"key": {key},
	})
	return string(body), err
}

// SearchResult is the response of a search: the results fragment,
// the total match count, and the filter state the service applied.
type SearchResult struct {
	HTML string

	// Count is the Search-Results header value, -1 when the header
	// is missing or not an integer.
	Count int

	// Query is the Query header, a JSON object echoing the submitted
	// form, flattened to strings.
	Query map[string]string
}

// Search runs a search over one population ("candidate" or
// "canonical") with a serialized search form.
func (client *Client) Search(ctx context.Context, population string, form url.Values) (*SearchResult, error) {
	body, header, err := client.do(ctx, http.MethodPost, "do_search/"+url.PathEscape(population), form)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{HTML: string(body), Count: -1}
	if raw := strings.TrimSpace(header.Get(HeaderSearchResults)); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			client.logger.Warn("ignoring malformed search count", "header", raw)
		} else {
			result.Count = count
		}
	}
	if raw := header.Get(HeaderQuery); raw != "" {
		query, err := decodeQuery(raw)
		if err != nil {
			client.logger.Warn("ignoring malformed search query echo", "error", err)
		} else {
			result.Query = query
		}
	}
	return result, nil
}

// decodeQuery flattens the echoed form object to strings. Numbers keep
// their literal form, null becomes "", and a list contributes its
// first element.
func decodeQuery(raw string) (map[string]string, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var object map[string]any
	if err := decoder.Decode(&object); err != nil {
		return nil, fmt.Errorf("decoding query header: %w", err)
	}
	query := make(map[string]string, len(object))
	for name, value := range object {
		if list, ok := value.([]any); ok {
			value = nil
			if len(list) > 0 {
				value = list[0]
			}
		}
		switch typed := value.(type) {
		case nil:
			query[name] = ""
		case string:
			query[name] = typed
		default:
			query[name] = fmt.Sprint(typed)
		}
	}
	return query, nil
}

// AddEventFlag sets flag on a candidate event. Setting "completed"
// clears the event's other flags on the service side.
func (client *Client) AddEventFlag(ctx context.Context, eventID, flag string) error {
	_, _, err := client.do(ctx, http.MethodPost, "add_event_flag", url.Values{
		"event_id": {eventID},
		"flag":     {flag},
	})
	return err
}

// DeleteEventFlag clears flag from a candidate event.
func (client *Client) DeleteEventFlag(ctx context.Context, eventID, flag string) error {
	_, _, err := client.do(ctx, http.MethodPost, "del_event_flag", url.Values{
		"event_id": {eventID},
		"flag":     {flag},
	})
	return err
}

// ModalViewRequest selects the modal form to load.
type ModalViewRequest struct {
	// Variable is "canonical" for the canonical event form, or the
	// name of a grid variable for a value form.
	Variable string

	// Key is the canonical event the form applies to, empty when
	// creating one.
	Key string

	// CandidateEventIDs are the grid's candidates; value forms offer
	// their articles. Ignored for the canonical form.
	CandidateEventIDs []string

	// Edit loads the canonical form prefilled for editing.
	Edit bool
}

// ModalView fetches a modal form fragment.
func (client *Client) ModalView(ctx context.Context, request ModalViewRequest) (string, error) {
	params := url.Values{"variable": {request.Variable}}
	if request.Key != "" {
		params.Set("key", request.Key)
	}
	if request.Variable != "canonical" {
		params.Set("candidate_event_ids", strings.Join(request.CandidateEventIDs, ","))
	}
	if request.Edit {
		params.Set("edit", "true")
	}
	body, _, err := client.do(ctx, http.MethodPost, "modal_view", params)
	return string(body), err
}

// ModalEdit submits a modal form. Mode is "add" or "edit". Returns the
// service's confirmation text.
func (client *Client) ModalEdit(ctx context.Context, variable, mode string, form url.Values) (string, error) {
	target := "modal_edit/" + url.PathEscape(variable) + "/" + url.PathEscape(mode)
	body, _, err := client.do(ctx, http.MethodPost, target, form)
	return string(body), err
}

// AddCanonicalRecord attaches a candidate event datum to a canonical
// event. Returns the fragment for the new canonical cell.
func (client *Client) AddCanonicalRecord(ctx context.Context, canonicalEventID, cecID string) (string, error) {
	body, _, err := client.do(ctx, http.MethodPost, "add_canonical_record", url.Values{
		"canonical_event_id": {canonicalEventID},
		"cec_id":             {cecID},
	})
	return string(body), err
}

// AddCanonicalLink links an article to a canonical event without
// attaching any datum.
func (client *Client) AddCanonicalLink(ctx context.Context, canonicalEventID, articleID string) error {
	_, _, err := client.do(ctx, http.MethodPost, "add_canonical_link", url.Values{
		"canonical_event_id": {canonicalEventID},
		"article_id":         {articleID},
	})
	return err
}

// DeleteCanonicalLink removes an article's link.
func (client *Client) DeleteCanonicalLink(ctx context.Context, articleID string) error {
	_, _, err := client.do(ctx, http.MethodPost, "del_canonical_link", url.Values{
		"article_id": {articleID},
	})
	return err
}

// DeleteCanonicalRecord detaches one datum (by canonical event link
// id) from its canonical event.
func (client *Client) DeleteCanonicalRecord(ctx context.Context, celID string) error {
	_, _, err := client.do(ctx, http.MethodPost, "del_canonical_record", url.Values{
		"cel_id": {celID},
	})
	return err
}

// DeleteCanonical deletes a canonical event with its links and
// relationships. Returns the service's confirmation text.
func (client *Client) DeleteCanonical(ctx context.Context, key string) (string, error) {
	body, _, err := client.do(ctx, http.MethodPost, "delete_canonical", url.Values{
		"key": {key},
	})
	return string(body), err
}

// defaultDownloadName is used when the service sends no filename.
const defaultDownloadName = "canonical-events.csv"

// Download is an open export response. The caller must close Body.
type Download struct {
	// Filename is the attachment name from Content-Disposition,
	// reduced to its base name.
	Filename string

	ContentType string
	Body        io.ReadCloser
}

// DownloadCanonical requests an export of the canonical events with
// the given ids. The body is streamed, not buffered.
func (client *Client) DownloadCanonical(ctx context.Context, ids []string) (*Download, error) {
	target := "download_canonical/" + url.PathEscape(strings.Join(ids, ","))
	response, err := client.send(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer response.Body.Close()
		body, _ := readBounded(response.Body, client.maxResponseBytes)
		return nil, &ServiceError{
			StatusCode: response.StatusCode,
			Method:     http.MethodGet,
			Path:       target,
			Body:       string(body),
		}
	}
	return &Download{
		Filename:    attachmentName(response.Header.Get("Content-Disposition")),
		ContentType: response.Header.Get("Content-Type"),
		Body:        response.Body,
	}, nil
}

// attachmentName extracts a safe file name from a Content-Disposition
// header value.
func attachmentName(disposition string) string {
	if disposition == "" {
		return defaultDownloadName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return defaultDownloadName
	}
	name := path.Base(strings.ReplaceAll(params["filename"], "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return defaultDownloadName
	}
	return name
}

