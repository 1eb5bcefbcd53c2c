package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/utils"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

const defaultCasesTable = "cases"

var caseColumns = utils.StructTagValues(types.Case{})

// SupabaseRecords stores cases through the Supabase REST (PostgREST) API
type SupabaseRecords struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
	now        func() time.Time
}

// NewSupabaseRecords creates a client for table under the project at baseURL,
// e.g. https://<project>.supabase.co
func NewSupabaseRecords(baseURL, apiKey, table string) *SupabaseRecords {
	if table == "" {
		table = defaultCasesTable
	}
	return &SupabaseRecords{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		table:      table,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (s *SupabaseRecords) endpoint(query url.Values) string {
	u := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// CreateCase inserts a fully formed case
func (s *SupabaseRecords) CreateCase(ctx context.Context, c *types.Case) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode case: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPost, s.endpoint(nil), body, "return=minimal")
	if err != nil {
		return fmt.Errorf("failed to insert case: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return conflictError(resp)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("insert", resp)
	}

	return nil
}

// postgrestError is the error body PostgREST relays from Postgres.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// conflictError maps a unique violation on the voice session index to
// types.ErrDuplicateSession.
func conflictError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var pgErr postgrestError
	if err := json.Unmarshal(body, &pgErr); err == nil && pgErr.Code == "23505" &&
		strings.Contains(pgErr.Message, types.VapiSessionConstraint) {
		return fmt.Errorf("insert conflict: %w", errors.Join(types.ErrDuplicateSession, errors.New(pgErr.Message)))
	}

	return fmt.Errorf("insert failed with status %d: %s", resp.StatusCode, string(body))
}

// UpdateCase applies patch to one case and returns the updated row
func (s *SupabaseRecords) UpdateCase(ctx context.Context, caseID string, patch map[string]any) (*types.Case, error) {
	if err := types.ValidateCasePatch(patch, caseColumns); err != nil {
		return nil, fmt.Errorf("update case %s: %w", caseID, err)
	}

	set := make(map[string]any, len(patch)+1)
	for column, value := range patch {
		set[column] = value
	}
	set["updated_at"] = s.now().UTC()

	body, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	query := url.Values{"case_id": {"eq." + caseID}}
	resp, err := s.do(ctx, http.MethodPatch, s.endpoint(query), body, "return=representation")
	if err != nil {
		return nil, fmt.Errorf("failed to update case %s: %w", caseID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("update", resp)
	}

	cases, err := decodeCases(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, types.ErrCaseNotFound
	}

	return cases[0], nil
}

// Cases lists cases matching filter, newest first
func (s *SupabaseRecords) Cases(ctx context.Context, filter types.CaseFilter) ([]*types.Case, error) {
	query := url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	}
	if filter.Status != "" {
		query.Set("status", "eq."+string(filter.Status))
	}
	if filter.Category != "" {
		query.Set("category", "eq."+string(filter.Category))
	}
	if filter.Priority != "" {
		query.Set("priority", "eq."+string(filter.Priority))
	}
	if filter.ReportSource != "" {
		query.Set("report_source", "eq."+string(filter.ReportSource))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.FormatUint(filter.Limit, 10))
	}

	return s.selectCases(ctx, query)
}

// CaseByTrackingCode fetches the case a tracking code belongs to
func (s *SupabaseRecords) CaseByTrackingCode(ctx context.Context, trackingCode string) (*types.Case, error) {
	return s.caseBy(ctx, "tracking_code", trackingCode)
}

// CaseBySessionID fetches the case recorded for a voice session
func (s *SupabaseRecords) CaseBySessionID(ctx context.Context, sessionID string) (*types.Case, error) {
	return s.caseBy(ctx, "vapi_session_id", sessionID)
}

func (s *SupabaseRecords) caseBy(ctx context.Context, column, value string) (*types.Case, error) {
	query := url.Values{
		"select": {"*"},
		column:   {"eq." + value},
		"limit":  {"1"},
	}

	cases, err := s.selectCases(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, types.ErrCaseNotFound
	}

	return cases[0], nil
}

func (s *SupabaseRecords) selectCases(ctx context.Context, query url.Values) ([]*types.Case, error) {
	resp, err := s.do(ctx, http.MethodGet, s.endpoint(query), nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to select cases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("select", resp)
	}

	return decodeCases(resp.Body)
}

func (s *SupabaseRecords) do(ctx context.Context, method, target string, body []byte, prefer string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	return s.httpClient.Do(req)
}

func decodeCases(r io.Reader) ([]*types.Case, error) {
	var cases = make([]*types.Case, 0)
	if err := json.NewDecoder(r).Decode(&cases); err != nil {
		return nil, fmt.Errorf("failed to decode cases: %w", err)
	}
	return cases, nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, string(body))
}
