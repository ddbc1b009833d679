// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjudication

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/adjudicator/lib/clock"
	"github.com/bureau-foundation/adjudicator/lib/recordservice"
)

// fakeService is an in-memory RecordService. Every method records a
// call; behavior is overridden per test through the function fields.
type fakeService struct {
	mu    sync.Mutex
	calls []string

	// gridHook, when set, runs at the start of LoadGrid (outside the
	// lock) and may block to reorder responses.
	gridHook func(key, candidates string)
	gridErr  error

	searchCount map[string]int
	searchQuery map[string]map[string]string
	searchErr   map[string]error

	flagErr         error
	relationshipErr error
	deleteEdgeErr   error
	hierarchyHTML   string
	autocomplete    []string
	modalHTML       string
	modalEditErr    error
	recordCell      string
	download        string
}

func newFakeService() *fakeService {
	return &fakeService{
		searchCount: make(map[string]int),
		searchQuery: make(map[string]map[string]string),
		searchErr:   make(map[string]error),
	}
}

func (service *fakeService) record(format string, args ...any) {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.calls = append(service.calls, fmt.Sprintf(format, args...))
}

// callsWithPrefix returns recorded calls starting with prefix.
func (service *fakeService) callsWithPrefix(prefix string) []string {
	service.mu.Lock()
	defer service.mu.Unlock()
	var matched []string
	for _, call := range service.calls {
		if strings.HasPrefix(call, prefix) {
			matched = append(matched, call)
		}
	}
	return matched
}

func (service *fakeService) callCount() int {
	service.mu.Lock()
	defer service.mu.Unlock()
	return len(service.calls)
}

// gridHTML renders a grid fragment shaped like the service's template.
func gridHTML(key, candidates string) string {
	var builder strings.Builder
	canonicalID := ""
	if key != "" {
		canonicalID = "ce-" + key
	}
	fmt.Fprintf(&builder, `<div class="canonical-event-metadata" id="canonical-event-metadata_%s" data-key="%s">`+
		`<a class="glyphicon-remove-sign"></a><a class="edit-canonical">edit</a></div>`, canonicalID, key)
	builder.WriteString(`<div class="expanded-event-variable-name" data-var="location"><a class="add-dummy">+</a></div>`)
	builder.WriteString(`<div id="canonical-event_location"><span class="none">None</span></div>`)
	for _, id := range ParseCandidateSet(candidates).IDs() {
		fmt.Fprintf(&builder, `<div class="candidate-event" id="candidate-event_%s" data-event="%s" data-article="art-%s">`+
			`<a class="remove-candidate">x</a><a class="add-completed">done</a><a class="add-link">link</a>`+
			`<div class="expanded-event-variable" data-var="location_%s" data-key="cec-%s">Chicago <a class="add-val" data-key="cec-%s">+</a></div>`+
			`</div>`, id, id, id, id, id, id)
	}
	return builder.String()
}

func (service *fakeService) LoadGrid(ctx context.Context, key, candidates string) (string, error) {
	if service.gridHook != nil {
		service.gridHook(key, candidates)
	}
	service.record("grid %s|%s", key, candidates)
	if service.gridErr != nil {
		return "", service.gridErr
	}
	return gridHTML(key, candidates), nil
}

func (service *fakeService) LoadRecentCandidateEvents(ctx context.Context) (string, error) {
	service.record("recent-candidates")
	return `<div class="event-desc" data-event="R1">Recent one <a class="cand-makeactive">add</a></div>`, nil
}

func (service *fakeService) LoadRecentCanonicalEvents(ctx context.Context) (string, error) {
	service.record("recent-canonicals")
	return `<div class="event-desc" data-key="K9">Recent canonical <a class="canonical-makeactive">go</a></div>`, nil
}

func (service *fakeService) Search(ctx context.Context, population string, form url.Values) (*recordservice.SearchResult, error) {
	service.record("search %s %s", population, form.Encode())
	service.mu.Lock()
	defer service.mu.Unlock()
	if err := service.searchErr[population]; err != nil {
		return nil, err
	}
	return &recordservice.SearchResult{
		HTML:  searchHTML,
		Count: service.searchCount[population],
		Query: service.searchQuery[population],
	}, nil
}

func (service *fakeService) SearchCanonicalAutocomplete(ctx context.Context, term string) ([]string, error) {
	service.record("autocomplete %s", term)
	return service.autocomplete, nil
}

func (service *fakeService) AddCanonicalRelationship(ctx context.Context, key1, key2, relationshipType string) error {
	service.record("add-relationship %s %s %s", key1, key2, relationshipType)
	return service.relationshipErr
}

func (service *fakeService) DeleteCanonicalRelationship(ctx context.Context, id1, id2, relationshipType string) error {
	service.record("delete-relationship %s %s %s", id1, id2, relationshipType)
	return service.deleteEdgeErr
}

func (service *fakeService) LoadCanonicalHierarchy(ctx context.Context, key string) (string, error) {
	service.record("hierarchy %s", key)
	return service.hierarchyHTML, nil
}

func (service *fakeService) AddEventFlag(ctx context.Context, eventID, flag string) error {
	service.record("add-flag %s %s", eventID, flag)
	return service.flagErr
}

func (service *fakeService) DeleteEventFlag(ctx context.Context, eventID, flag string) error {
	service.record("del-flag %s %s", eventID, flag)
	return service.flagErr
}

func (service *fakeService) ModalView(ctx context.Context, request recordservice.ModalViewRequest) (string, error) {
	service.record("modal-view %s %s %s %t", request.Variable, request.Key, strings.Join(request.CandidateEventIDs, ","), request.Edit)
	return service.modalHTML, nil
}

func (service *fakeService) ModalEdit(ctx context.Context, variable, mode string, form url.Values) (string, error) {
	service.record("modal-edit %s %s %s", variable, mode, form.Encode())
	if service.modalEditErr != nil {
		return "", service.modalEditErr
	}
	return "Canonical event " + mode + "ed.", nil
}

func (service *fakeService) AddCanonicalRecord(ctx context.Context, canonicalEventID, cecID string) (string, error) {
	service.record("add-record %s %s", canonicalEventID, cecID)
	return service.recordCell, nil
}

func (service *fakeService) DeleteCanonicalRecord(ctx context.Context, celID string) error {
	service.record("del-record %s", celID)
	return nil
}

func (service *fakeService) AddCanonicalLink(ctx context.Context, canonicalEventID, articleID string) error {
	service.record("add-link %s %s", canonicalEventID, articleID)
	return nil
}

func (service *fakeService) DeleteCanonicalLink(ctx context.Context, articleID string) error {
	service.record("del-link %s", articleID)
	return nil
}

func (service *fakeService) DeleteCanonical(ctx context.Context, key string) (string, error) {
	service.record("delete-canonical %s", key)
	return "Canonical event deleted.", nil
}

func (service *fakeService) DownloadCanonical(ctx context.Context, ids []string) (*recordservice.Download, error) {
	service.record("download %s", strings.Join(ids, ","))
	return &recordservice.Download{
		Filename: "canonical-events_test.csv",
		Body:     io.NopCloser(strings.NewReader(service.download)),
	}, nil
}

const searchHTML = `<div class="event-desc" data-event="S1" data-key="CK1">First result <a class="cand-makeactive">add</a>` +
	`<a class="canonical-makeactive">select</a><input type="checkbox" class="export-checkbox" value="101"></div>` +
	`<div class="event-desc" data-event="S2" data-key="CK2">Second result <a class="cand-makeactive">add</a>` +
	`<input type="checkbox" class="export-checkbox" value="102"></div>`

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newTestSession returns a session over service starting at location.
func newTestSession(t *testing.T, service *fakeService, location string) (*Session, *clock.FakeClock) {
	t.Helper()
	parsed, err := ParseLocation(location)
	if err != nil {
		t.Fatalf("ParseLocation(%q): %v", location, err)
	}
	fake := clock.Fake(testEpoch)
	session, err := NewSession(Config{
		Service:  service,
		Location: parsed,
		Clock:    fake,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session, fake
}

// openTestSession is newTestSession followed by a successful Open.
func openTestSession(t *testing.T, service *fakeService, location string) (*Session, *clock.FakeClock) {
	t.Helper()
	session, fake := newTestSession(t, service, location)
	if err := session.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return session, fake
}

// findAction returns the first action on panel whose label starts
// with prefix.
func findAction(t *testing.T, panel *Panel, prefix string) Action {
	t.Helper()
	for _, action := range panel.Actions() {
		if strings.HasPrefix(action.Label(), prefix) {
			return action
		}
	}
	var labels []string
	for _, action := range panel.Actions() {
		labels = append(labels, action.Label())
	}
	t.Fatalf("no action %q on panel %s; have %q", prefix, panel.ID(), labels)
	return Action{}
}

func flashText(t *testing.T, flash *Flash) (FlashKind, string) {
	t.Helper()
	message, visible := flash.Current()
	if !visible {
		t.Fatal("flash is empty")
	}
	return message.Kind, message.Text
}
