package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// RenderZIP renders the full export package:
//
//	policy_info.json          policy record
//	analysis_full.json        latest analysis payload (if any)
//	images/image_N.png        generated images, newest first
//	video_prompts/set_N_<style>.txt
//	README.txt
func (e *Exporter) RenderZIP(pkg *Package) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	info, err := json.MarshalIndent(pkg.Policy, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal policy")
	}
	if err := writeZipFile(zw, "policy_info.json", info); err != nil {
		return nil, err
	}

	if pkg.Analysis != nil {
		full, err := json.MarshalIndent(pkg.Analysis, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "export: marshal analysis")
		}
		if err := writeZipFile(zw, "analysis_full.json", full); err != nil {
			return nil, err
		}
	}

	for i, img := range pkg.Images {
		if len(img.Data) == 0 {
			continue
		}
		name := fmt.Sprintf("images/image_%d.png", i+1)
		if err := writeZipFile(zw, name, img.Data); err != nil {
			return nil, err
		}
	}

	for i, set := range pkg.VideoPrompts {
		styles := make([]string, 0, len(set))
		for style := range set {
			styles = append(styles, style)
		}
		sort.Strings(styles)
		for _, style := range styles {
			prompt, ok := set[style].(string)
			if !ok {
				continue
			}
			name := fmt.Sprintf("video_prompts/set_%d_%s.txt", i+1, style)
			if err := writeZipFile(zw, name, []byte(prompt)); err != nil {
				return nil, err
			}
		}
	}

	if err := writeZipFile(zw, "README.txt", []byte(buildReadme(pkg))); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, eris.Wrap(err, "export: close zip")
	}
	return buf.Bytes(), nil
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return eris.Wrapf(err, "export: create zip entry %s", name)
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrapf(err, "export: write zip entry %s", name)
	}
	return nil
}

func buildReadme(pkg *Package) string {
	var b strings.Builder
	fmt.Fprintf(&b, "정책 홍보 패키지\n================\n\n")
	fmt.Fprintf(&b, "정책명: %s\n", pkg.Policy.Title)
	fmt.Fprintf(&b, "카테고리: %s\n", pkg.Policy.Category)
	fmt.Fprintf(&b, "대상: %s\n", pkg.Policy.TargetAudience)
	fmt.Fprintf(&b, "패키지 ID: %s\n", pkg.BundleID)
	fmt.Fprintf(&b, "생성 시각: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("구성:\n")
	b.WriteString("- policy_info.json: 정책 기본 정보\n")
	if pkg.Analysis != nil {
		b.WriteString("- analysis_full.json: AI 분석 결과 전체\n")
	}
	if len(pkg.Images) > 0 {
		fmt.Fprintf(&b, "- images/: 생성 이미지 %d건\n", len(pkg.Images))
	}
	if len(pkg.VideoPrompts) > 0 {
		fmt.Fprintf(&b, "- video_prompts/: 영상 프롬프트 세트 %d건\n", len(pkg.VideoPrompts))
	}
	return b.String()
}
