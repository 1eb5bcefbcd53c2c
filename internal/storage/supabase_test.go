package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/utils"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

// fakePostgREST serves a single table the way PostgREST does for the eq.
// filters the client sends.
type fakePostgREST struct {
	mu   sync.Mutex
	rows []map[string]any
	fail bool
	seen []*http.Request
}

func (f *fakePostgREST) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakePostgREST) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[len(f.seen)-1]
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, r)

	if r.Header.Get("apikey") != "service-key" || r.Header.Get("Authorization") != "Bearer service-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"down"}`))
		return
	}
	if r.URL.Path != "/rest/v1/cases" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var row map[string]any
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if session, _ := row["vapi_session_id"].(string); session != "" {
			for _, existing := range f.rows {
				if existing["vapi_session_id"] == session {
					w.WriteHeader(http.StatusConflict)
					_, _ = w.Write([]byte(`{"code":"23505","details":"Key (vapi_session_id)=(` + session + `) already exists.","message":"duplicate key value violates unique constraint \"cases_vapi_session_id_key\""}`))
					return
				}
			}
		}
		f.rows = append(f.rows, row)
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		writeRows(w, f.match(r))
	case http.MethodPatch:
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		matched := f.match(r)
		for _, row := range matched {
			for k, v := range patch {
				row[k] = v
			}
		}
		writeRows(w, matched)
	}
}

func (f *fakePostgREST) match(r *http.Request) []map[string]any {
	var out []map[string]any
rows:
	for _, row := range f.rows {
		for key, values := range r.URL.Query() {
			if key == "select" || key == "order" || key == "limit" {
				continue
			}
			want := strings.TrimPrefix(values[0], "eq.")
			if got, _ := row[key].(string); got != want {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out
}

func writeRows(w http.ResponseWriter, rows []map[string]any) {
	if rows == nil {
		rows = []map[string]any{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

func setupSupabase(t *testing.T) (*SupabaseRecords, *fakePostgREST) {
	fake := &fakePostgREST{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewSupabaseRecords(srv.URL+"/", "service-key", ""), fake
}

func testCase() *types.Case {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	return &types.Case{
		CaseID:       "CASEAAAAAAAA",
		ReportID:     "REPORTBBBB",
		TrackingCode: "TRACKCCCCC",
		SecretCode:   "SECRETDDDDDD",
		CaseNumber:   "WB-2026-0042",
		Title:        "Money issue",
		Description:  "desc",
		Category:     types.CategoryFraud,
		Priority:     types.PriorityMedium,
		Status:       types.CaseStatusOpen,
		ReportSource: types.ReportSourceManual,
		IsAnonymous:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSupabaseCreateAndLookup(t *testing.T) {
	records, fake := setupSupabase(t)
	ctx := context.Background()

	if err := records.CreateCase(ctx, testCase()); err != nil {
		t.Fatalf("CreateCase() error = %v", err)
	}
	if got := fake.last().Header.Get("Prefer"); got != "return=minimal" {
		t.Fatalf("insert Prefer = %q", got)
	}

	c, err := records.CaseByTrackingCode(ctx, "TRACKCCCCC")
	if err != nil {
		t.Fatalf("CaseByTrackingCode() error = %v", err)
	}
	if c.CaseID != "CASEAAAAAAAA" || c.SecretCode != "SECRETDDDDDD" || c.Status != types.CaseStatusOpen {
		t.Fatalf("case = %+v", c)
	}
	if !c.CreatedAt.Equal(testCase().CreatedAt) {
		t.Fatalf("created at = %v", c.CreatedAt)
	}

	if _, err := records.CaseByTrackingCode(ctx, "NOPE"); !errors.Is(err, types.ErrCaseNotFound) {
		t.Fatalf("unknown code err = %v, want ErrCaseNotFound", err)
	}
}

func TestSupabaseDuplicateSession(t *testing.T) {
	records, _ := setupSupabase(t)
	ctx := context.Background()

	first := testCase()
	first.ReportSource = types.ReportSourceVoice
	first.VapiSessionID = utils.StringPtr("call_9")
	if err := records.CreateCase(ctx, first); err != nil {
		t.Fatalf("CreateCase() error = %v", err)
	}

	retry := testCase()
	retry.CaseID, retry.TrackingCode = "CASEZZZZZZZZ", "TRACKZZZZZ"
	retry.VapiSessionID = utils.StringPtr("call_9")
	err := records.CreateCase(ctx, retry)
	if !errors.Is(err, types.ErrDuplicateSession) {
		t.Fatalf("CreateCase() err = %v, want ErrDuplicateSession", err)
	}

	c, err := records.CaseBySessionID(ctx, "call_9")
	if err != nil {
		t.Fatalf("CaseBySessionID() error = %v", err)
	}
	if c.CaseID != first.CaseID {
		t.Fatalf("case id = %s, want the first insert", c.CaseID)
	}

	if _, err := records.CaseBySessionID(ctx, "call_unknown"); !errors.Is(err, types.ErrCaseNotFound) {
		t.Fatalf("unknown session err = %v", err)
	}
}

func TestSupabaseUpdateCase(t *testing.T) {
	records, fake := setupSupabase(t)
	records.now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if err := records.CreateCase(ctx, testCase()); err != nil {
		t.Fatalf("CreateCase() error = %v", err)
	}

	c, err := records.UpdateCase(ctx, "CASEAAAAAAAA", map[string]any{"status": types.CaseStatusInProgress})
	if err != nil {
		t.Fatalf("UpdateCase() error = %v", err)
	}
	if c.Status != types.CaseStatusInProgress {
		t.Fatalf("status = %s", c.Status)
	}
	if !c.UpdatedAt.Equal(records.now()) {
		t.Fatalf("updated at = %v, want bumped", c.UpdatedAt)
	}
	if got := fake.last().Header.Get("Prefer"); got != "return=representation" {
		t.Fatalf("patch Prefer = %q", got)
	}

	if _, err := records.UpdateCase(ctx, "MISSING", map[string]any{"status": "closed"}); !errors.Is(err, types.ErrCaseNotFound) {
		t.Fatalf("missing case err = %v", err)
	}
	if _, err := records.UpdateCase(ctx, "CASEAAAAAAAA", map[string]any{"tracking_code": "X"}); err == nil {
		t.Fatal("expected error patching an identifier")
	}
}

func TestSupabaseCasesFilter(t *testing.T) {
	records, fake := setupSupabase(t)
	ctx := context.Background()

	first := testCase()
	second := testCase()
	second.CaseID, second.TrackingCode, second.Status = "CASEEEEEEEEE", "TRACKFFFFF", types.CaseStatusClosed
	for _, c := range []*types.Case{first, second} {
		if err := records.CreateCase(ctx, c); err != nil {
			t.Fatalf("CreateCase() error = %v", err)
		}
	}

	cases, err := records.Cases(ctx, types.CaseFilter{Status: types.CaseStatusClosed, Limit: 10})
	if err != nil {
		t.Fatalf("Cases() error = %v", err)
	}
	if len(cases) != 1 || cases[0].CaseID != "CASEEEEEEEEE" {
		t.Fatalf("cases = %+v", cases)
	}

	q := fake.last().URL.Query()
	if q.Get("order") != "created_at.desc" || q.Get("limit") != "10" || q.Get("status") != "eq.closed" {
		t.Fatalf("query = %v", q)
	}
}

func TestSupabaseErrors(t *testing.T) {
	records, fake := setupSupabase(t)
	fake.setFail(true)
	ctx := context.Background()

	err := records.CreateCase(ctx, testCase())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("CreateCase() err = %v, want status error", err)
	}
	if _, err := records.Cases(ctx, types.CaseFilter{}); err == nil {
		t.Fatal("expected select error")
	}

	bad := NewSupabaseRecords(records.baseURL, "wrong", "")
	fake.setFail(false)
	if err := bad.CreateCase(ctx, testCase()); err == nil {
		t.Fatal("expected unauthorized error")
	}
}
