package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/pitchside/internal/services/tracker/domain/match"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/season"
	"github.com/louisbranch/pitchside/internal/services/tracker/syncqueue"
)

var fixedTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeTracker struct {
	mu    sync.Mutex
	state season.State
}

func (f *fakeTracker) State() season.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

func (f *fakeTracker) Dispatch(act season.Action) season.Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	decision := season.Decide(f.state, act, func() time.Time { return fixedTime })
	f.state = decision.State
	return decision
}

type fakeSync struct{ status syncqueue.Status }

func (f fakeSync) Status() syncqueue.Status { return f.status }

type fakeDrainer struct {
	result syncqueue.DrainResult
	err    error
}

func (f fakeDrainer) Drain(context.Context) (syncqueue.DrainResult, error) { return f.result, f.err }

type decisionBody struct {
	State      json.RawMessage `json:"state"`
	Rejections []noticeView    `json:"rejections"`
	Warnings   []noticeView    `json:"warnings"`
}

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *fakeTracker) {
	t.Helper()
	tracker := &fakeTracker{state: season.NewState("Rovers", "Ana", "Bo")}
	cfg.Tracker = tracker
	cfg.Logf = t.Logf
	srv := httptest.NewServer(NewHandler(cfg))
	t.Cleanup(srv.Close)
	return srv, tracker
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, raw
}

func createMatch(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/season/actions",
		`{"type":"season.create_match","opponent":"City FC","venue":"away","date":"2026-03-01"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create match status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q, want application/json", got)
	}
	if !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("body = %s, want ok status", body)
	}
}

func TestGetSeason(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/season", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var got struct {
		TeamTitle    string            `json:"teamTitle"`
		Squad        []json.RawMessage `json:"squad"`
		CurrentMatch json.RawMessage   `json:"currentMatch"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TeamTitle != "Rovers" {
		t.Fatalf("teamTitle = %q, want Rovers", got.TeamTitle)
	}
	if len(got.Squad) != 2 {
		t.Fatalf("squad len = %d, want 2", len(got.Squad))
	}
	if string(got.CurrentMatch) != "null" {
		t.Fatalf("currentMatch = %s, want null", got.CurrentMatch)
	}
}

func TestPostSeasonActionCreatesMatch(t *testing.T) {
	srv, tracker := newTestServer(t, Config{})
	createMatch(t, srv)

	state := tracker.State()
	current, ok := state.Current()
	if !ok {
		t.Fatal("expected a current match")
	}
	if current.ID != fixedTime.UnixMilli() {
		t.Fatalf("match id = %d, want %d", current.ID, fixedTime.UnixMilli())
	}
	if current.Meta.Venue != match.VenueAway {
		t.Fatalf("venue = %q, want away", current.Meta.Venue)
	}
	if len(current.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(current.Players))
	}
}

func TestPostSeasonActionRejected(t *testing.T) {
	srv, tracker := newTestServer(t, Config{})
	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/v1/season/actions", `{"type":"season.set_team_title","title":"  "}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	var body decisionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Rejections) != 1 || body.Rejections[0].Code != season.RejectionTeamTitleRequired {
		t.Fatalf("rejections = %+v, want %s", body.Rejections, season.RejectionTeamTitleRequired)
	}
	if !strings.Contains(string(body.State), `"teamTitle":"Rovers"`) {
		t.Fatalf("state = %s, want unchanged title", body.State)
	}
	if got := tracker.State().TeamTitle; got != "Rovers" {
		t.Fatalf("team title = %q, want Rovers", got)
	}
}

func TestPostActionBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "not json", path: "/api/v1/season/actions", body: `nope`},
		{name: "missing type", path: "/api/v1/season/actions", body: `{"title":"x"}`},
		{name: "unknown season type", path: "/api/v1/season/actions", body: `{"type":"season.explode"}`},
		{name: "match type on season route", path: "/api/v1/season/actions", body: `{"type":"match.start"}`},
		{name: "bad field", path: "/api/v1/season/actions", body: `{"type":"season.set_team_title","title":7}`},
		{name: "unknown match type", path: "/api/v1/matches/current/actions", body: `{"type":"match.explode"}`},
		{name: "bad match field", path: "/api/v1/matches/current/actions", body: `{"type":"match.sub_on","player_id":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, http.MethodPost, srv.URL+tt.path, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestCurrentMatchNotSelected(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/matches/current", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/v1/matches/current/actions", `{"type":"match.start"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("action status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	var body decisionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Rejections) != 1 || body.Rejections[0].Code != season.RejectionNoCurrentMatch {
		t.Fatalf("rejections = %+v, want %s", body.Rejections, season.RejectionNoCurrentMatch)
	}
}

func TestMatchActions(t *testing.T) {
	srv, tracker := newTestServer(t, Config{})
	createMatch(t, srv)

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/v1/matches/current/actions", `{"type":"match.start"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want %d: %s", resp.StatusCode, http.StatusOK, raw)
	}
	var body decisionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(string(body.State), `"status":"live"`) {
		t.Fatalf("state = %s, want live match", body.State)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/matches/current/actions", `{"type":"match.update_score","field":"teamGoals","delta":1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("score status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	current, _ := tracker.State().Current()
	if current.TeamGoals != 1 {
		t.Fatalf("team goals = %d, want 1", current.TeamGoals)
	}

	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/api/v1/matches/current", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("current status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(string(raw), `"opponent":"City FC"`) {
		t.Fatalf("current = %s, want opponent", raw)
	}
}

func TestMatchTickNotAcceptedFromClients(t *testing.T) {
	srv, tracker := newTestServer(t, Config{})
	createMatch(t, srv)
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/matches/current/actions", `{"type":"match.start"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	for range 3 {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/matches/current/actions", `{"type":"match.tick"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("tick status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	}
	current, _ := tracker.State().Current()
	if current.ElapsedSeconds != 0 {
		t.Fatalf("elapsed = %d, want 0", current.ElapsedSeconds)
	}
}

func TestMatchActionRejected(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createMatch(t, srv)

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/v1/matches/current/actions", `{"type":"match.toggle_clock"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	var body decisionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Rejections) != 1 || body.Rejections[0].Code != match.RejectionNotLive {
		t.Fatalf("rejections = %+v, want %s", body.Rejections, match.RejectionNotLive)
	}
	if !strings.Contains(string(body.State), `"status":"setup"`) {
		t.Fatalf("state = %s, want unchanged setup match", body.State)
	}
}

func TestMatchSummary(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createMatch(t, srv)
	id := strconv.FormatInt(fixedTime.UnixMilli(), 10)

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/v1/matches/"+id+"/summary", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var got matchSummaryResponse
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Opponent != "City FC" || got.Venue != "away" {
		t.Fatalf("summary meta = %q/%q, want City FC/away", got.Opponent, got.Venue)
	}
	if len(got.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(got.Players))
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/matches/42/summary", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/matches/abc/summary", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestSeasonSummary(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/v1/season/summary", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var got seasonSummaryResponse
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TeamTitle != "Rovers" || got.Played != 0 {
		t.Fatalf("summary = %+v, want Rovers with no matches played", got)
	}
}

func TestSyncWithoutRemote(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/api/v1/sync", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(string(raw), `"remote":false`) {
		t.Fatalf("body = %s, want remote false", raw)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/sync/drain", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("drain status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestSyncStatusAndDrain(t *testing.T) {
	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	srv, _ := newTestServer(t, Config{
		Sync: fakeSync{status: syncqueue.Status{Online: true, Pending: 3, LastSync: last}},
		Drainer: fakeDrainer{result: syncqueue.DrainResult{
			Total: 3, Succeeded: 2, Failed: 1, Errors: []error{errors.New("boom")},
		}},
	})

	_, raw := doJSON(t, http.MethodGet, srv.URL+"/api/v1/sync", "")
	var status syncStatusResponse
	if err := json.Unmarshal(raw, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !status.Remote || !status.Online || status.Pending != 3 {
		t.Fatalf("status = %+v, want remote online with 3 pending", status)
	}
	if status.LastSync == nil || !status.LastSync.Equal(last) {
		t.Fatalf("last sync = %v, want %v", status.LastSync, last)
	}

	resp, raw := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sync/drain", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("drain status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var drained drainResponse
	if err := json.Unmarshal(raw, &drained); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if drained.Succeeded != 2 || drained.Failed != 1 || len(drained.Errors) != 1 || drained.Errors[0] != "boom" {
		t.Fatalf("drain = %+v, want 2 succeeded and 1 failure", drained)
	}
}

func TestDrainError(t *testing.T) {
	srv, _ := newTestServer(t, Config{
		Sync:    fakeSync{},
		Drainer: fakeDrainer{err: errors.New("writer stopped")},
	})
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sync/drain", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, Config{AllowedOrigins: []string{"http://localhost:5173"}})
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/season/actions", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q, want http://localhost:5173", got)
	}
}
