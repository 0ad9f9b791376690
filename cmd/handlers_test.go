package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeongsedam/policy-cli/internal/config"
	"github.com/jeongsedam/policy-cli/internal/export"
	"github.com/jeongsedam/policy-cli/internal/model"
	"github.com/jeongsedam/policy-cli/internal/session"
	"github.com/jeongsedam/policy-cli/internal/store"
)

func newTestAPI(t *testing.T) (*apiServer, store.Store) {
	t.Helper()

	// Handlers read the package-level config for generation settings.
	cfg = &config.Config{}
	cfg.Generate.Provider = "openai"

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	return &apiServer{
		store:    st,
		session:  session.New(),
		exporter: export.New(st, cfg.Export),
	}, st
}

func doRequest(t *testing.T, api *apiServer, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, req)
	return rec
}

func createAPIPolicy(t *testing.T, api *apiServer) model.Policy {
	t.Helper()
	rec := doRequest(t, api, http.MethodPost, "/api/policies", map[string]string{
		"title":           "대기질 개선 정책",
		"category":        "환경 > 대기질 > 미세먼지 저감",
		"target_audience": "시민",
		"description":     "미세먼지 저감",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var p model.Policy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestHandleHealth(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleCreatePolicy(t *testing.T) {
	api, _ := newTestAPI(t)

	p := createAPIPolicy(t, api)
	assert.NotZero(t, p.ID)
	assert.Equal(t, model.StatusDraft, p.Status)

	// Creation selects the policy in the session.
	assert.Equal(t, p.ID, api.session.Snapshot().CurrentPolicyID)
}

func TestHandleCreatePolicy_Validation(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/api/policies", map[string]string{
		"title":           "",
		"target_audience": "시민",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, api, http.MethodPost, "/api/policies", map[string]string{
		"title":           "제목",
		"target_audience": "외계인",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetPolicy(t *testing.T) {
	api, st := newTestAPI(t)
	p := createAPIPolicy(t, api)

	_, err := st.SaveContent(context.Background(), p.ID, model.ContentTypeAnalysis,
		map[string]any{"objective": "목표"}, nil)
	require.NoError(t, err)

	rec := doRequest(t, api, http.MethodGet, "/api/policies/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Policy   model.Policy          `json:"policy"`
		Contents []model.PolicyContent `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, p.ID, body.Policy.ID)
	assert.Len(t, body.Contents, 1)
}

func TestHandleGetPolicy_NotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/api/policies/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetPolicy_BadID(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/api/policies/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListPolicies(t *testing.T) {
	api, _ := newTestAPI(t)
	createAPIPolicy(t, api)
	createAPIPolicy(t, api)

	rec := doRequest(t, api, http.MethodGet, "/api/policies?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Policies []model.Policy `json:"policies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Policies, 1)
}

func TestHandleListPolicies_BadDate(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/api/policies?date=2024-13-99", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, api, http.MethodGet, "/api/policies?from=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateStatus(t *testing.T) {
	api, _ := newTestAPI(t)
	p := createAPIPolicy(t, api)

	rec := doRequest(t, api, http.MethodPut, "/api/policies/1/status", map[string]string{"status": "published"})
	require.Equal(t, http.StatusOK, rec.Code)

	got := doRequest(t, api, http.MethodGet, "/api/policies/1", nil)
	var body struct {
		Policy model.Policy `json:"policy"`
	}
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &body))
	assert.Equal(t, model.StatusPublished, body.Policy.Status)
	assert.Equal(t, p.ID, body.Policy.ID)
}

func TestHandleUpdateStatus_Validation(t *testing.T) {
	api, _ := newTestAPI(t)
	createAPIPolicy(t, api)

	rec := doRequest(t, api, http.MethodPut, "/api/policies/1/status", map[string]string{"status": "active"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, api, http.MethodPut, "/api/policies/999/status", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAnalyze_BackendUnconfigured(t *testing.T) {
	api, _ := newTestAPI(t)
	createAPIPolicy(t, api)

	// No API key in config.
	rec := doRequest(t, api, http.MethodPost, "/api/policies/1/analyze", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleAnalyze_PolicyNotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/api/policies/999/analyze", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGenerateImages_RequiresAnalysis(t *testing.T) {
	api, _ := newTestAPI(t)
	createAPIPolicy(t, api)

	rec := doRequest(t, api, http.MethodPost, "/api/policies/1/images", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleVideoPrompts(t *testing.T) {
	api, st := newTestAPI(t)
	p := createAPIPolicy(t, api)

	analysis := model.Analysis{}
	analysis.ContentBriefs.VideoBrief.NarrativeArc = "변화의 이야기"
	_, err := st.SaveContent(context.Background(), p.ID, model.ContentTypeAnalysis, analysis, nil)
	require.NoError(t, err)

	rec := doRequest(t, api, http.MethodPost, "/api/policies/1/video-prompts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Prompts map[string]string `json:"prompts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Prompts, 3)
	assert.Contains(t, body.Prompts["documentary"], "변화의 이야기")

	// The prompts are persisted as a content row.
	contents, err := st.GetContents(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, contents, 2)
}

func TestHandleVideoPrompts_RequiresAnalysis(t *testing.T) {
	api, _ := newTestAPI(t)
	createAPIPolicy(t, api)

	rec := doRequest(t, api, http.MethodPost, "/api/policies/1/video-prompts", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleExportZIP(t *testing.T) {
	api, _ := newTestAPI(t)
	createAPIPolicy(t, api)

	rec := doRequest(t, api, http.MethodGet, "/api/policies/1/export.zip", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHandleExport_NotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/api/policies/999/export.zip", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleExport_StoreFailure(t *testing.T) {
	api, st := newTestAPI(t)
	createAPIPolicy(t, api)

	// A failed read is a server error, not a missing policy.
	require.NoError(t, st.Close())
	rec := doRequest(t, api, http.MethodGet, "/api/policies/1/export.zip", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleCategories(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Categories)

	rec = doRequest(t, api, http.MethodGet, "/api/categories?q=대기질&limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Categories)
	assert.LessOrEqual(t, len(body.Categories), 3)
}

func TestHandleSession(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var before session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	assert.Equal(t, session.StepPlanning, before.Step)

	rec = doRequest(t, api, http.MethodPost, "/api/session/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var after session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.NotEqual(t, before.ID, after.ID)
}
