// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordservice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzhttp"

	"github.com/bureau-foundation/adjudicator/lib/clock"
)

// newTestClient creates a Client backed by the given httptest.Server.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock:      clock.Real(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

// capture records the last request a handler saw, with its form
// already parsed.
type capture struct {
	method string
	path   string
	form   url.Values
	header http.Header
}

func capturing(target *capture, respond func(w http.ResponseWriter)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*target = capture{method: r.Method, path: r.URL.EscapedPath(), form: r.Form, header: r.Header}
		respond(w)
	}
}

func TestNewClient_Validation(t *testing.T) {
	for _, baseURL := range []string{"", "  ", "ftp://records.example.org", "http://", "not a url\x7f"} {
		if _, err := NewClient(Config{BaseURL: baseURL}); err == nil {
			t.Errorf("NewClient(%q) succeeded", baseURL)
		}
	}
	client, err := NewClient(Config{BaseURL: "https://records.example.org/app/"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.BaseURL() != "https://records.example.org/app" {
		t.Errorf("BaseURL = %q", client.BaseURL())
	}
}

func TestClient_LoadGrid(t *testing.T) {
	var seen capture
	server := httptest.NewServer(capturing(&seen, func(w http.ResponseWriter) {
		io.WriteString(w, `<div class="canonical-event-metadata"></div>`)
	}))
	defer server.Close()

	html, err := newTestClient(t, server).LoadGrid(context.Background(), "K1", "A,B")
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	if html != `<div class="canonical-event-metadata"></div>` {
		t.Errorf("html = %q", html)
	}
	if seen.method != http.MethodGet || seen.path != "/load_adj_grid" {
		t.Errorf("request = %s %s", seen.method, seen.path)
	}
	if seen.form.Get("canonical_event_key") != "K1" || seen.form.Get("cand_events") != "A,B" {
		t.Errorf("query = %v", seen.form)
	}
	if seen.header.Get("X-Requested-With") != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", seen.header.Get("X-Requested-With"))
	}
}

func TestClient_SearchHeaders(t *testing.T) {
	var seen capture
	server := httptest.NewServer(capturing(&seen, func(w http.ResponseWriter) {
		w.Header().Set(HeaderSearchResults, "12")
		w.Header().Set(HeaderQuery, `{"candidate_search_input": ["strike"], "candidate_filter_value_0": null, "candidate_filter_field_0": [], "page": 3}`)
		io.WriteString(w, "<table></table>")
	}))
	defer server.Close()

	form := url.Values{"candidate_search_input": {"strike"}}
	result, err := newTestClient(t, server).Search(context.Background(), "candidate", form)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if seen.method != http.MethodPost || seen.path != "/do_search/candidate" {
		t.Errorf("request = %s %s", seen.method, seen.path)
	}
	if seen.header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", seen.header.Get("Content-Type"))
	}
	if seen.form.Get("candidate_search_input") != "strike" {
		t.Errorf("form = %v", seen.form)
	}
	if result.HTML != "<table></table>" || result.Count != 12 {
		t.Errorf("result = %+v", result)
	}
	want := map[string]string{
		"candidate_search_input":   "strike",
		"candidate_filter_value_0": "",
		"candidate_filter_field_0": "",
		"page":                     "3",
	}
	for name, value := range want {
		if got, ok := result.Query[name]; !ok || got != value {
			t.Errorf("Query[%q] = %q (present %t), want %q", name, got, ok, value)
		}
	}
}

func TestClient_SearchWithoutHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderSearchResults, "many")
		w.Header().Set(HeaderQuery, "{not json")
		io.WriteString(w, "<p>results</p>")
	}))
	defer server.Close()

	result, err := newTestClient(t, server).Search(context.Background(), "canonical", url.Values{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Count != -1 || result.Query != nil {
		t.Errorf("malformed headers produced count %d query %v", result.Count, result.Query)
	}
}

func TestClient_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "Relationship of this type already exists.\n")
	}))
	defer server.Close()

	err := newTestClient(t, server).AddCanonicalRelationship(context.Background(), "C", "P", "part-of")
	if !IsBadRequest(err) || IsNotFound(err) {
		t.Fatalf("err = %v, want 400 ServiceError", err)
	}
	var serviceError *ServiceError
	if !errors.As(err, &serviceError) {
		t.Fatalf("err is %T", err)
	}
	if serviceError.Text() != "Relationship of this type already exists." {
		t.Errorf("Text = %q", serviceError.Text())
	}
	if serviceError.Method != http.MethodPost || serviceError.Path != "add_canonical_relationship" {
		t.Errorf("error names %s %s", serviceError.Method, serviceError.Path)
	}
	if !strings.Contains(err.Error(), "HTTP 400") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestServiceError_EmptyBodyUsesStatusText(t *testing.T) {
	err := &ServiceError{StatusCode: http.StatusServiceUnavailable, Method: "GET", Path: "load_adj_grid"}
	if err.Text() != "Service Unavailable" {
		t.Errorf("Text = %q", err.Text())
	}
	if IsServiceError(errors.New("plain")) {
		t.Error("plain error reported as ServiceError")
	}
}

func TestClient_Autocomplete(t *testing.T) {
	var seen capture
	server := httptest.NewServer(capturing(&seen, func(w http.ResponseWriter) {
		io.WriteString(w, `{"result": {"status": 200, "data": ["march-2020", "march-2021"]}}`)
	}))
	defer server.Close()

	keys, err := newTestClient(t, server).SearchCanonicalAutocomplete(context.Background(), "march")
	if err != nil {
		t.Fatalf("SearchCanonicalAutocomplete: %v", err)
	}
	if !slices.Equal(keys, []string{"march-2020", "march-2021"}) {
		t.Errorf("keys = %v", keys)
	}
	if seen.form.Get("term") != "march" {
		t.Errorf("term = %q", seen.form.Get("term"))
	}
}

func TestClient_ModalViewParams(t *testing.T) {
	var seen capture
	server := httptest.NewServer(capturing(&seen, func(w http.ResponseWriter) {
		io.WriteString(w, "<form></form>")
	}))
	defer server.Close()
	client := newTestClient(t, server)
	ctx := context.Background()

	if _, err := client.ModalView(ctx, ModalViewRequest{Variable: "canonical", Key: "K1", CandidateEventIDs: []string{"A"}, Edit: true}); err != nil {
		t.Fatalf("ModalView: %v", err)
	}
	if seen.form.Has("candidate_event_ids") {
		t.Error("canonical modal sent candidate ids")
	}
	if seen.form.Get("edit") != "true" || seen.form.Get("key") != "K1" {
		t.Errorf("form = %v", seen.form)
	}

	if _, err := client.ModalView(ctx, ModalViewRequest{Variable: "location", Key: "K1", CandidateEventIDs: []string{"A", "B"}}); err != nil {
		t.Fatalf("ModalView: %v", err)
	}
	if seen.form.Get("candidate_event_ids") != "A,B" || seen.form.Has("edit") {
		t.Errorf("form = %v", seen.form)
	}

	if _, err := client.ModalEdit(ctx, "start date", "add", url.Values{"value": {"2020"}}); err != nil {
		t.Fatalf("ModalEdit: %v", err)
	}
	if seen.path != "/modal_edit/start%20date/add" || seen.form.Get("value") != "2020" {
		t.Errorf("modal edit = %s %v", seen.path, seen.form)
	}
}

func TestClient_DownloadCanonical(t *testing.T) {
	var seen capture
	server := httptest.NewServer(capturing(&seen, func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="../../etc/events 2026.csv"`)
		io.WriteString(w, "id,key\n1,K1\n")
	}))
	defer server.Close()

	download, err := newTestClient(t, server).DownloadCanonical(context.Background(), []string{"1", "2"})
	if err != nil {
		t.Fatalf("DownloadCanonical: %v", err)
	}
	defer download.Body.Close()
	if seen.path != "/download_canonical/1,2" {
		t.Errorf("path = %q", seen.path)
	}
	if download.Filename != "events 2026.csv" || download.ContentType != "text/csv" {
		t.Errorf("download = %q %q", download.Filename, download.ContentType)
	}
	body, err := io.ReadAll(download.Body)
	if err != nil || string(body) != "id,key\n1,K1\n" {
		t.Errorf("body = %q, %v", body, err)
	}
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		disposition string
		want        string
	}{
		{"", "canonical-events.csv"},
		{"attachment", "canonical-events.csv"},
		{`attachment; filename="x.csv"`, "x.csv"},
		{`attachment; filename="..\\..\\y.csv"`, "y.csv"},
		{`attachment; filename=".."`, "canonical-events.csv"},
		{"garbage;;", "canonical-events.csv"},
	}
	for _, test := range tests {
		if got := attachmentName(test.disposition); got != test.want {
			t.Errorf("attachmentName(%q) = %q, want %q", test.disposition, got, test.want)
		}
	}
}

func TestClient_ResponseLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("x", 2048))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, HTTPClient: server.Client(), MaxResponseBytes: 1024})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.LoadRecentCandidateEvents(context.Background()); err == nil || !strings.Contains(err.Error(), "exceeds 1024 bytes") {
		t.Errorf("err = %v, want size limit error", err)
	}
}

func TestClient_Compression(t *testing.T) {
	page := strings.Repeat(`<div class="event-desc">recent event</div>`, 200)
	handler := gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, page)
	}))
	server := httptest.NewServer(handler)
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, HTTPClient: server.Client(), Compression: true})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	html, err := client.LoadRecentCanonicalEvents(context.Background())
	if err != nil {
		t.Fatalf("LoadRecentCanonicalEvents: %v", err)
	}
	if html != page {
		t.Errorf("decompressed body has %d bytes, want %d", len(html), len(page))
	}
}
