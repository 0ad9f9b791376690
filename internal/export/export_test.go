package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeongsedam/policy-cli/internal/config"
	"github.com/jeongsedam/policy-cli/internal/model"
	"github.com/jeongsedam/policy-cli/internal/store"
)

func newTestExporter(t *testing.T) (*Exporter, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return New(st, config.ExportConfig{}), st
}

func seedPolicy(t *testing.T, st store.Store) *model.Policy {
	t.Helper()
	ctx := context.Background()

	p, err := st.CreatePolicy(ctx, "대기질 개선 정책", "환경 > 대기질 > 미세먼지 저감", model.AudienceCitizens, "미세먼지 저감을 위한 정책")
	require.NoError(t, err)

	analysis := map[string]any{
		"policy_planning": map[string]any{
			"objective":      "미세먼지 30% 저감",
			"key_strategies": []any{"저공해차 보급"},
		},
	}
	_, err = st.SaveContent(ctx, p.ID, model.ContentTypeAnalysis, analysis, map[string]any{"schema_version": "1"})
	require.NoError(t, err)

	_, err = st.SaveContent(ctx, p.ID, model.ContentTypeVideoPrompts,
		map[string]any{"documentary": "다큐 프롬프트", "cinematic": "시네마틱 프롬프트"}, nil)
	require.NoError(t, err)

	_, err = st.SaveMedia(ctx, p.ID, model.MediaInput{
		MediaType: model.MediaTypeImage,
		Data:      []byte("fake-png-bytes"),
		Prompt:    "홍보 이미지",
	})
	require.NoError(t, err)

	return p
}

func TestBuildPackage(t *testing.T) {
	ex, st := newTestExporter(t)
	p := seedPolicy(t, st)

	pkg, err := ex.BuildPackage(context.Background(), p.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, pkg.BundleID)
	assert.Equal(t, p.ID, pkg.Policy.ID)
	require.NotNil(t, pkg.Analysis)
	require.Len(t, pkg.VideoPrompts, 1)
	require.Len(t, pkg.Images, 1)

	plan := pkg.Plan()
	require.NotNil(t, plan)
	assert.Equal(t, "미세먼지 30% 저감", plan.PolicyPlanning.Objective)
}

func TestBuildPackage_LatestAnalysisWins(t *testing.T) {
	ex, st := newTestExporter(t)
	p := seedPolicy(t, st)

	_, err := st.SaveContent(context.Background(), p.ID, model.ContentTypeAnalysis,
		map[string]any{"policy_planning": map[string]any{"objective": "새 목표"}}, nil)
	require.NoError(t, err)

	pkg, err := ex.BuildPackage(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "새 목표", pkg.Plan().PolicyPlanning.Objective)
}

func TestBuildPackage_PolicyNotFound(t *testing.T) {
	ex, _ := newTestExporter(t)

	_, err := ex.BuildPackage(context.Background(), 9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildPackage_NoContent(t *testing.T) {
	ex, st := newTestExporter(t)

	p, err := st.CreatePolicy(context.Background(), "빈 정책", "환경", model.AudienceCitizens, "")
	require.NoError(t, err)

	pkg, err := ex.BuildPackage(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, pkg.Analysis)
	assert.Nil(t, pkg.Plan())
	assert.Empty(t, pkg.Images)
}

func TestRenderZIP(t *testing.T) {
	ex, st := newTestExporter(t)
	p := seedPolicy(t, st)

	pkg, err := ex.BuildPackage(context.Background(), p.ID)
	require.NoError(t, err)

	data, err := ex.RenderZIP(pkg)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = b
	}

	require.Contains(t, files, "policy_info.json")
	require.Contains(t, files, "analysis_full.json")
	require.Contains(t, files, "images/image_1.png")
	require.Contains(t, files, "video_prompts/set_1_cinematic.txt")
	require.Contains(t, files, "video_prompts/set_1_documentary.txt")
	require.Contains(t, files, "README.txt")

	var info model.Policy
	require.NoError(t, json.Unmarshal(files["policy_info.json"], &info))
	assert.Equal(t, p.ID, info.ID)

	assert.Equal(t, []byte("fake-png-bytes"), files["images/image_1.png"])
	assert.Equal(t, "다큐 프롬프트", string(files["video_prompts/set_1_documentary.txt"]))
	assert.Contains(t, string(files["README.txt"]), pkg.BundleID)
	assert.Contains(t, string(files["README.txt"]), p.Title)
}

func TestRenderZIP_WithoutAnalysis(t *testing.T) {
	ex, st := newTestExporter(t)

	p, err := st.CreatePolicy(context.Background(), "빈 정책", "환경", model.AudienceCitizens, "")
	require.NoError(t, err)

	pkg, err := ex.BuildPackage(context.Background(), p.ID)
	require.NoError(t, err)

	data, err := ex.RenderZIP(pkg)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "policy_info.json")
	assert.NotContains(t, names, "analysis_full.json")
}

func TestRenderPDF(t *testing.T) {
	ex, st := newTestExporter(t)
	p := seedPolicy(t, st)
	require.NoError(t, st.UpdatePolicyStatus(context.Background(), p.ID, string(model.StatusPublished)))

	pkg, err := ex.BuildPackage(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AudienceCitizens, pkg.Policy.TargetAudience)
	assert.Equal(t, model.StatusPublished, pkg.Policy.Status)

	data, err := ex.RenderPDF(pkg)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output should be a PDF document")
}
