package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jeongsedam/policy-cli/internal/catalog"
	"github.com/jeongsedam/policy-cli/internal/export"
	"github.com/jeongsedam/policy-cli/internal/model"
	"github.com/jeongsedam/policy-cli/internal/planner"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func policyIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          string `json:"title"`
		Category       string `json:"category"`
		TargetAudience string `json:"target_audience"`
		Description    string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	audience := model.TargetAudience(req.TargetAudience)
	if !audience.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown target_audience %q", req.TargetAudience))
		return
	}

	policy, err := s.store.CreatePolicy(r.Context(), req.Title, req.Category, audience, req.Description)
	if err != nil {
		zap.L().Error("create policy", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "create policy failed")
		return
	}

	s.session.SelectPolicy(policy.ID)
	respondJSON(w, http.StatusCreated, policy)
}

func (s *apiServer) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var policies []model.Policy
	var err error
	switch {
	case q.Get("date") != "":
		var day time.Time
		day, err = time.Parse(time.DateOnly, q.Get("date"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		policies, err = s.store.ListPoliciesByDate(r.Context(), day)
	case q.Get("from") != "" || q.Get("to") != "":
		if q.Get("from") == "" || q.Get("to") == "" {
			respondError(w, http.StatusBadRequest, "from and to must be used together")
			return
		}
		var start, end time.Time
		start, err = time.Parse(time.DateOnly, q.Get("from"))
		if err == nil {
			end, err = time.Parse(time.DateOnly, q.Get("to"))
		}
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date range, want YYYY-MM-DD")
			return
		}
		policies, err = s.store.ListPoliciesByDateRange(r.Context(), start, end)
	default:
		limit := 0
		if v := q.Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		policies, err = s.store.ListRecentPolicies(r.Context(), limit)
	}
	if err != nil {
		zap.L().Error("list policies", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "list policies failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"policies": policies})
}

func (s *apiServer) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	id, err := policyIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	policy, err := s.store.GetPolicy(r.Context(), id)
	if err != nil {
		zap.L().Error("get policy", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "get policy failed")
		return
	}
	if policy == nil {
		respondError(w, http.StatusNotFound, "policy not found")
		return
	}

	contents, err := s.store.GetContents(r.Context(), id)
	if err != nil {
		zap.L().Error("get contents", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "get policy failed")
		return
	}
	media, err := s.store.GetMedia(r.Context(), id, "")
	if err != nil {
		zap.L().Error("get media", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "get policy failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"policy":   policy,
		"contents": contents,
		"media":    summarizeMedia(media),
	})
}

func (s *apiServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := policyIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.PolicyStatus(req.Status).Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	policy, err := s.store.GetPolicy(r.Context(), id)
	if err != nil {
		zap.L().Error("get policy", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "update status failed")
		return
	}
	if policy == nil {
		respondError(w, http.StatusNotFound, "policy not found")
		return
	}

	if err := s.store.UpdatePolicyStatus(r.Context(), id, req.Status); err != nil {
		zap.L().Error("update status", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "update status failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id, err := policyIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	var req struct {
		Keywords    string `json:"keywords"`
		Constraints string `json:"constraints"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	policy, err := s.store.GetPolicy(r.Context(), id)
	if err != nil {
		zap.L().Error("get policy", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "analyze failed")
		return
	}
	if policy == nil {
		respondError(w, http.StatusNotFound, "policy not found")
		return
	}

	chat, err := initChatClient()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "analysis backend not configured")
		return
	}

	pl := planner.New(chat, nil, s.store, cfg.Generate)
	analysis, err := pl.Analyze(r.Context(), policy, req.Keywords, req.Constraints)
	if err != nil {
		zap.L().Error("analyze", zap.Int64("policy_id", id), zap.Error(err))
		respondError(w, http.StatusBadGateway, "analysis failed")
		return
	}

	s.session.SelectPolicy(id)
	s.session.SetAnalysis(analysis)
	respondJSON(w, http.StatusOK, analysis)
}

func (s *apiServer) handleGenerateImages(w http.ResponseWriter, r *http.Request) {
	id, err := policyIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	var req struct {
		Brief int `json:"brief"` // 0 = both
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	analysis, err := loadLatestAnalysis(r.Context(), s.store, id)
	if err != nil {
		respondError(w, http.StatusConflict, "no analysis stored for policy; analyze first")
		return
	}

	images, err := initImageGenerator()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "image backend not configured")
		return
	}

	briefs := []model.ImageBrief{analysis.ContentBriefs.ImageBrief1, analysis.ContentBriefs.ImageBrief2}
	switch req.Brief {
	case 0:
	case 1:
		briefs = briefs[:1]
	case 2:
		briefs = briefs[1:]
	default:
		respondError(w, http.StatusBadRequest, "brief must be 0, 1 or 2")
		return
	}

	pl := planner.New(nil, images, s.store, cfg.Generate)
	var saved []model.GeneratedMedia
	for _, brief := range briefs {
		media, err := pl.GenerateImage(r.Context(), id, brief)
		if err != nil {
			zap.L().Error("generate image", zap.Int64("policy_id", id), zap.Error(err))
			respondError(w, http.StatusBadGateway, "image generation failed")
			return
		}
		saved = append(saved, *media)
		s.session.RecordImage()
	}

	respondJSON(w, http.StatusOK, map[string]any{"media": summarizeMedia(saved)})
}

func (s *apiServer) handleVideoPrompts(w http.ResponseWriter, r *http.Request) {
	id, err := policyIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	analysis, err := loadLatestAnalysis(r.Context(), s.store, id)
	if err != nil {
		respondError(w, http.StatusConflict, "no analysis stored for policy; analyze first")
		return
	}

	pl := planner.New(nil, nil, s.store, cfg.Generate)
	prompts, err := pl.SaveVideoPrompts(r.Context(), id, analysis.ContentBriefs.VideoBrief)
	if err != nil {
		zap.L().Error("video prompts", zap.Int64("policy_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "video prompt generation failed")
		return
	}

	s.session.RecordVideoPrompts()
	respondJSON(w, http.StatusOK, map[string]any{"prompts": prompts})
}

func (s *apiServer) handleExportZIP(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "zip")
}

func (s *apiServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "pdf")
}

func (s *apiServer) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	id, err := policyIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	pkg, err := s.exporter.BuildPackage(r.Context(), id)
	if err != nil {
		if errors.Is(err, export.ErrNotFound) {
			respondError(w, http.StatusNotFound, "policy not found")
			return
		}
		zap.L().Error("export: build package", zap.Int64("policy_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "zip":
		data, err = s.exporter.RenderZIP(pkg)
		contentType = "application/zip"
	case "pdf":
		data, err = s.exporter.RenderPDF(pkg)
		contentType = "application/pdf"
	}
	if err != nil {
		zap.L().Error("export", zap.Int64("policy_id", id), zap.String("format", format), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=policy_%d.%s", id, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *apiServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	cat, err := catalog.Load()
	if err != nil {
		zap.L().Error("load catalog", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}

	paths := cat.Paths()
	if q := r.URL.Query().Get("q"); q != "" {
		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		paths = cat.Suggest(q, limit)
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": paths})
}

func (s *apiServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *apiServer) handleResetSession(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	respondJSON(w, http.StatusOK, s.session.Snapshot())
}
